package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "same-key", loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "value" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_UsesCachedValueAfterFirstLoad(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "cached", nil
	}

	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("first GetOrLoad error: %v", err)
	}
	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("second GetOrLoad error: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_InvalidatePrefix(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()

	store.Set(ctx, "rankings:A:male", 1)
	store.Set(ctx, "rankings:B:female", 2)
	store.Set(ctx, "seasons:list", 3)

	store.InvalidatePrefix("rankings:")

	if _, ok := store.Get(ctx, "rankings:A:male"); ok {
		t.Fatalf("expected rankings entry invalidated")
	}
	if _, ok := store.Get(ctx, "rankings:B:female"); ok {
		t.Fatalf("expected rankings entry invalidated")
	}
	if _, ok := store.Get(ctx, "seasons:list"); !ok {
		t.Fatalf("expected unrelated entry to survive")
	}
}

func TestStore_NilStoreLoadsDirectly(t *testing.T) {
	t.Parallel()

	var store *Store
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "direct", nil
	}

	for i := 0; i < 2; i++ {
		v, err := store.GetOrLoad(context.Background(), "k", loader)
		if err != nil {
			t.Fatalf("GetOrLoad on nil store: %v", err)
		}
		if got, _ := v.(string); got != "direct" {
			t.Fatalf("unexpected value: %v", v)
		}
	}

	if got := calls.Load(); got != 2 {
		t.Fatalf("loader called %d times, want 2 (nil store never caches)", got)
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
