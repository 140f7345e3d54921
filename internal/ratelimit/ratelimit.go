package ratelimit

import (
	"sync"
	"time"

	"github.com/vestnikbot/vestnik/internal/logger"
)

// Limiter enforces a daily request budget per enrichment provider plus an
// overall budget. Exhausting a budget degrades enrichment to its sentinel
// path, it is never an error.
type Limiter struct {
	mu        sync.Mutex
	counts    map[string]int
	maxPer    map[string]int
	total     int
	maxTotal  int
	resetTime time.Time
}

// New creates a limiter. Zero limits mean unlimited.
func New(maxPerProvider map[string]int, maxTotal int) *Limiter {
	per := make(map[string]int, len(maxPerProvider))
	for k, v := range maxPerProvider {
		per[k] = v
	}
	return &Limiter{
		counts:    make(map[string]int),
		maxPer:    per,
		maxTotal:  maxTotal,
		resetTime: time.Now().Add(24 * time.Hour), // Reset daily
	}
}

// Allow checks whether one more request may go to the provider.
func (rl *Limiter) Allow(provider string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()

	if max := rl.maxPer[provider]; max > 0 && rl.counts[provider] >= max {
		logger.Warn("provider rate limit reached", "provider", provider, "used", rl.counts[provider], "max", max)
		return false
	}

	if rl.maxTotal > 0 && rl.total >= rl.maxTotal {
		logger.Warn("total enrichment rate limit reached", "used", rl.total, "max", rl.maxTotal)
		return false
	}

	return true
}

// Record counts one request against the provider's budget.
func (rl *Limiter) Record(provider string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()
	rl.counts[provider]++
	rl.total++
}

// Used returns today's request counts per provider and in total.
func (rl *Limiter) Used() (map[string]int, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	out := make(map[string]int, len(rl.counts))
	for k, v := range rl.counts {
		out[k] = v
	}
	return out, rl.total
}

// checkReset rolls the daily window. Caller must hold the lock.
func (rl *Limiter) checkReset() {
	if time.Now().Before(rl.resetTime) {
		return
	}
	rl.counts = make(map[string]int)
	rl.total = 0
	rl.resetTime = time.Now().Add(24 * time.Hour)
	logger.Info("enrichment rate limits reset")
}
