package offers

import (
	"context"
	"sync"
	"time"
	"wasgeurtjeInsights/domain"
)

// activeOfferCache is an explicit per-key cache of {value, fetchedAt, ttl}
// with an in-flight guard: concurrent lookups for the same key coalesce
// onto one fetch instead of racing to the store. This replaces the ambient
// module-level cache the storefront used to share.
type activeOfferCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	value     *domain.BundleOffer
	fetchedAt time.Time
	inflight  chan struct{}
}

func newActiveOfferCache(ttl time.Duration) *activeOfferCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &activeOfferCache{
		ttl:     ttl,
		entries: make(map[string]*cacheEntry),
		now:     time.Now,
	}
}

// getOrFetch returns the cached value when fresh, waits on an in-flight
// fetch for the same key, or performs the fetch itself.
func (c *activeOfferCache) getOrFetch(ctx context.Context, key string, fetch func(context.Context) (*domain.BundleOffer, error)) (*domain.BundleOffer, error) {
	for {
		c.mu.Lock()
		entry, ok := c.entries[key]

		if ok && entry.inflight == nil && c.now().Sub(entry.fetchedAt) < c.ttl {
			value := entry.value
			c.mu.Unlock()
			return value, nil
		}

		if ok && entry.inflight != nil {
			waitCh := entry.inflight
			c.mu.Unlock()
			select {
			case <-waitCh:
				continue // re-read the now-populated entry
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		entry = &cacheEntry{inflight: make(chan struct{})}
		c.entries[key] = entry
		c.mu.Unlock()

		value, err := fetch(ctx)

		c.mu.Lock()
		close(entry.inflight)
		if err != nil {
			delete(c.entries, key)
		} else {
			entry.value = value
			entry.fetchedAt = c.now()
			entry.inflight = nil
		}
		c.mu.Unlock()

		return value, err
	}
}

func (c *activeOfferCache) invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if ok && entry.inflight == nil {
		delete(c.entries, key)
	}
}
