package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Result is a cached enrichment outcome for one article.
type Result struct {
	Title       string
	Description string
}

type item struct {
	value     Result
	expiresAt time.Time
}

// Cache is an in-memory TTL cache for enrichment results, keyed by a hash
// of the input text. It avoids paying for translation/summarization twice
// when the same body shows up again.
type Cache struct {
	mu       sync.RWMutex
	items    map[string]item
	ttl      time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

func New(ttl time.Duration) *Cache {
	c := &Cache{
		items: make(map[string]item),
		ttl:   ttl,
		stop:  make(chan struct{}),
	}

	// Cleanup expired items every hour
	go c.cleanupLoop()

	return c
}

// Stop terminates the background cleanup. The cache itself stays usable;
// expired entries are still rejected on read.
func (c *Cache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

func (c *Cache) Set(key string, value Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = item{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}
}

func (c *Cache) Get(key string) (Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, exists := c.items[key]
	if !exists {
		return Result{}, false
	}

	if time.Now().After(it.expiresAt) {
		return Result{}, false
	}

	return it.value, true
}

// Key generates a stable cache key from the article title and body.
func Key(title, body string) string {
	h := sha256.New()
	h.Write([]byte(title + body))
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, it := range c.items {
		if now.After(it.expiresAt) {
			delete(c.items, key)
		}
	}
}
