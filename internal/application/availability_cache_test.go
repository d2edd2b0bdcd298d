package application

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestAvailabilityCache_TTL(t *testing.T) {
	clock := &manualClock{now: testClock()}
	cache := newAvailabilityCache(10*time.Second, 0, clock.Now)

	key := availabilityCacheKey(1, testClock(), testClock().Add(time.Hour))
	cache.Store(key, true)

	if available, ok := cache.Get(key); !ok || !available {
		t.Fatal("expected cached answer before expiry")
	}

	clock.Advance(11 * time.Second)
	if _, ok := cache.Get(key); ok {
		t.Error("expected entry to expire")
	}
}

func TestAvailabilityCache_Invalidate(t *testing.T) {
	cache := newAvailabilityCache(time.Minute, 0, testClock)

	key := availabilityCacheKey(1, testClock(), testClock().Add(time.Hour))
	cache.Store(key, false)
	cache.Invalidate()

	if _, ok := cache.Get(key); ok {
		t.Error("expected empty cache after invalidation")
	}
}

func TestAvailabilityCache_BoundedSize(t *testing.T) {
	cache := newAvailabilityCache(time.Minute, 4, testClock)

	for i := 0; i < 10; i++ {
		cache.Store(fmt.Sprintf("key-%d", i), true)
	}

	cache.mu.RLock()
	size := len(cache.entries)
	cache.mu.RUnlock()
	if size > 4 {
		t.Errorf("cache exceeded max entries: %d", size)
	}
}

func TestAvailabilityCache_NilSafe(t *testing.T) {
	var cache *availabilityCache
	cache.Store("key", true)
	cache.Invalidate()
	if _, ok := cache.Get("key"); ok {
		t.Error("nil cache must miss")
	}
}

func TestAvailabilityCacheKey_DistinguishesProbes(t *testing.T) {
	start := testClock()
	end := start.Add(time.Hour)

	keys := map[string]struct{}{
		availabilityCacheKey(1, start, end):                   {},
		availabilityCacheKey(2, start, end):                   {},
		availabilityCacheKey(1, start.Add(time.Minute), end):  {},
		availabilityCacheKey(1, start, end.Add(-time.Minute)): {},
	}
	if len(keys) != 4 {
		t.Errorf("expected 4 distinct keys, got %d", len(keys))
	}
}
