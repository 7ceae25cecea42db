package offers

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"wasgeurtjeInsights/domain"
)

func TestActiveOfferCache_ServesFreshValue(t *testing.T) {
	c := newActiveOfferCache(time.Minute)

	var fetches int32
	fetch := func(ctx context.Context) (*domain.BundleOffer, error) {
		atomic.AddInt32(&fetches, 1)
		return &domain.BundleOffer{ID: "o1"}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := c.getOrFetch(context.Background(), "a@b.nl", fetch)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == nil || got.ID != "o1" {
			t.Fatalf("unexpected value: %+v", got)
		}
	}

	if n := atomic.LoadInt32(&fetches); n != 1 {
		t.Errorf("fetched %d times within ttl, want 1", n)
	}
}

func TestActiveOfferCache_ExpiresAfterTTL(t *testing.T) {
	c := newActiveOfferCache(time.Minute)
	current := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	var fetches int32
	fetch := func(ctx context.Context) (*domain.BundleOffer, error) {
		atomic.AddInt32(&fetches, 1)
		return nil, nil
	}

	_, _ = c.getOrFetch(context.Background(), "a@b.nl", fetch)
	current = current.Add(2 * time.Minute)
	_, _ = c.getOrFetch(context.Background(), "a@b.nl", fetch)

	if n := atomic.LoadInt32(&fetches); n != 2 {
		t.Errorf("expected refetch after ttl, got %d fetches", n)
	}
}

func TestActiveOfferCache_CoalescesConcurrentFetches(t *testing.T) {
	c := newActiveOfferCache(time.Minute)

	var fetches int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) (*domain.BundleOffer, error) {
		atomic.AddInt32(&fetches, 1)
		<-release
		return &domain.BundleOffer{ID: "o1"}, nil
	}

	const workers = 8
	var wg sync.WaitGroup
	results := make([]*domain.BundleOffer, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := c.getOrFetch(context.Background(), "a@b.nl", fetch)
			if err != nil {
				t.Errorf("worker %d: %v", i, err)
			}
			results[i] = got
		}(i)
	}

	// give the workers time to pile onto the in-flight guard
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&fetches); n != 1 {
		t.Errorf("concurrent lookups ran %d fetches, want 1", n)
	}
	for i, r := range results {
		if r == nil || r.ID != "o1" {
			t.Errorf("worker %d got %+v", i, r)
		}
	}
}

func TestActiveOfferCache_ErrorNotCached(t *testing.T) {
	c := newActiveOfferCache(time.Minute)

	var fetches int32
	fetch := func(ctx context.Context) (*domain.BundleOffer, error) {
		n := atomic.AddInt32(&fetches, 1)
		if n == 1 {
			return nil, context.DeadlineExceeded
		}
		return &domain.BundleOffer{ID: "o1"}, nil
	}

	if _, err := c.getOrFetch(context.Background(), "a@b.nl", fetch); err == nil {
		t.Fatal("expected error from first fetch")
	}
	got, err := c.getOrFetch(context.Background(), "a@b.nl", fetch)
	if err != nil || got == nil {
		t.Fatalf("second fetch should succeed, got %v / %v", got, err)
	}
}

func TestActiveOfferCache_Invalidate(t *testing.T) {
	c := newActiveOfferCache(time.Minute)

	var fetches int32
	fetch := func(ctx context.Context) (*domain.BundleOffer, error) {
		atomic.AddInt32(&fetches, 1)
		return nil, nil
	}

	_, _ = c.getOrFetch(context.Background(), "a@b.nl", fetch)
	c.invalidate("a@b.nl")
	_, _ = c.getOrFetch(context.Background(), "a@b.nl", fetch)

	if n := atomic.LoadInt32(&fetches); n != 2 {
		t.Errorf("expected refetch after invalidate, got %d fetches", n)
	}
}
