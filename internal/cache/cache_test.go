package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheSetGet(t *testing.T) {
	c := New(time.Hour)

	c.Set("k", Result{Title: "T", Description: "D"})

	got, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "T", got.Title)
	assert.Equal(t, "D", got.Description)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCacheExpiry(t *testing.T) {
	c := New(20 * time.Millisecond)

	c.Set("k", Result{Title: "T"})
	time.Sleep(50 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCacheStopIsIdempotent(t *testing.T) {
	c := New(time.Hour)
	c.Set("k", Result{Title: "T"})

	c.Stop()
	c.Stop()

	// Reads keep working after the cleanup loop is gone
	got, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "T", got.Title)
}

func TestKeyIsStable(t *testing.T) {
	assert.Equal(t, Key("t", "b"), Key("t", "b"))
	assert.NotEqual(t, Key("t", "b"), Key("t", "c"))
}
