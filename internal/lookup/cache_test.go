package lookup

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Foo", "foo"},
		{"foo", "foo"},
		{" foo ", "foo"},
		{"\tЯбълка\n", "ябълка"},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLookupCachesAcrossKeyVariants(t *testing.T) {
	var calls int32
	cache := NewCache(func(ctx context.Context, key string) (*Result, error) {
		atomic.AddInt32(&calls, 1)
		return &Result{Found: true, ID: "w1", Lemma: key}, nil
	})

	for _, key := range []string{"Foo", "foo", " foo ", "FOO"} {
		result, err := cache.Lookup(context.Background(), key)
		if err != nil {
			t.Fatalf("Lookup(%q) failed: %v", key, err)
		}
		if !result.Found || result.ID != "w1" {
			t.Errorf("Lookup(%q) returned unexpected result: %+v", key, result)
		}
	}

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Expected exactly 1 backend call, got %d", got)
	}
}

func TestLookupCachesNegativeResults(t *testing.T) {
	var calls int32
	cache := NewCache(func(ctx context.Context, key string) (*Result, error) {
		atomic.AddInt32(&calls, 1)
		return &Result{Found: false}, nil
	})

	for i := 0; i < 3; i++ {
		result, err := cache.Lookup(context.Background(), "misspelled")
		if err != nil {
			t.Fatalf("Lookup failed: %v", err)
		}
		if result.Found {
			t.Error("Expected a not-found result")
		}
	}

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Not-found result was not cached: %d backend calls", got)
	}
}

func TestInvalidateForcesRefetch(t *testing.T) {
	var calls int32
	cache := NewCache(func(ctx context.Context, key string) (*Result, error) {
		atomic.AddInt32(&calls, 1)
		return &Result{Found: true, ID: "w1"}, nil
	})

	if _, err := cache.Lookup(context.Background(), "foo"); err != nil {
		t.Fatal(err)
	}
	cache.Invalidate("Foo") // normalization applies to invalidation too
	if _, err := cache.Lookup(context.Background(), "foo"); err != nil {
		t.Fatal(err)
	}

	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("Expected 2 backend calls after invalidation, got %d", got)
	}
}

func TestFailedLookupIsNotCached(t *testing.T) {
	var calls int32
	cache := NewCache(func(ctx context.Context, key string) (*Result, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, errors.New("backend unavailable")
		}
		return &Result{Found: true, ID: "w1"}, nil
	})

	if _, err := cache.Lookup(context.Background(), "foo"); err == nil {
		t.Fatal("Expected first lookup to fail")
	}
	if cache.Size() != 0 {
		t.Error("Failed lookup populated the cache")
	}

	result, err := cache.Lookup(context.Background(), "foo")
	if err != nil {
		t.Fatalf("Retry after failure did not succeed: %v", err)
	}
	if !result.Found {
		t.Errorf("Unexpected retry result: %+v", result)
	}
}

func TestConcurrentMissesCoalesce(t *testing.T) {
	release := make(chan struct{})
	var calls int32
	cache := NewCache(func(ctx context.Context, key string) (*Result, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return &Result{Found: true, ID: "w1"}, nil
	})

	const workers = 8
	var wg sync.WaitGroup
	results := make([]*Result, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := cache.Lookup(context.Background(), "foo")
			if err != nil {
				t.Errorf("Lookup failed: %v", err)
				return
			}
			results[i] = result
		}(i)
	}

	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Expected concurrent misses to coalesce into 1 call, got %d", got)
	}
	for i, result := range results {
		if result == nil || result.ID != "w1" {
			t.Errorf("Worker %d saw inconsistent result: %+v", i, result)
		}
	}
}

func TestClear(t *testing.T) {
	var calls int32
	cache := NewCache(func(ctx context.Context, key string) (*Result, error) {
		atomic.AddInt32(&calls, 1)
		return &Result{Found: true}, nil
	})

	_, _ = cache.Lookup(context.Background(), "foo")
	_, _ = cache.Lookup(context.Background(), "bar")
	cache.Clear()

	if cache.Size() != 0 {
		t.Errorf("Expected empty cache after Clear, size is %d", cache.Size())
	}

	_, _ = cache.Lookup(context.Background(), "foo")
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("Expected refetch after Clear, got %d total calls", got)
	}
}
