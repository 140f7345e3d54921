package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	ArticlesFetched      int64
	DuplicatesFiltered   int64
	ArticlesEnriched     int64
	ReviewerNotified     int64
	NewsPublished        int64
	EnrichmentFailures   int64
	SourceFetchFailures  int64
	DeliveryFailures     int64

	// Timings
	LastCycleTime    time.Duration
	AverageCycleTime time.Duration
	TotalCycleTime   time.Duration
	CycleCount       int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) IncrementFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesFetched += int64(n)
}

func (m *Metrics) IncrementDuplicatesFiltered() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesFiltered++
}

func (m *Metrics) IncrementEnriched() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesEnriched++
}

func (m *Metrics) IncrementReviewerNotified() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReviewerNotified++
}

func (m *Metrics) IncrementPublished() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NewsPublished++
}

func (m *Metrics) IncrementEnrichmentFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EnrichmentFailures++
}

func (m *Metrics) IncrementSourceFetchFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SourceFetchFailures++
}

func (m *Metrics) IncrementDeliveryFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeliveryFailures++
}

func (m *Metrics) RecordCycleTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastCycleTime = duration
	m.TotalCycleTime += duration
	m.CycleCount++

	if m.CycleCount > 0 {
		m.AverageCycleTime = m.TotalCycleTime / time.Duration(m.CycleCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"articles_fetched":      m.ArticlesFetched,
		"duplicates_filtered":   m.DuplicatesFiltered,
		"articles_enriched":     m.ArticlesEnriched,
		"reviewer_notified":     m.ReviewerNotified,
		"news_published":        m.NewsPublished,
		"enrichment_failures":   m.EnrichmentFailures,
		"source_fetch_failures": m.SourceFetchFailures,
		"delivery_failures":     m.DeliveryFailures,
		"last_cycle_time_ms":    m.LastCycleTime.Milliseconds(),
		"average_cycle_time_ms": m.AverageCycleTime.Milliseconds(),
		"last_run_time":         m.LastRunTime.Format(time.RFC3339),
		"last_error_time":       m.LastErrorTime.Format(time.RFC3339),
		"last_error":            m.LastError,
		"is_healthy":            m.IsHealthy,
	}
}
