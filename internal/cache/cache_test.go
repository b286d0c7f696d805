package cache

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"NewsScope/internal/domain"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestCache(t *testing.T, clock *fakeClock) *ResultCache {
	t.Helper()
	c, err := New(8, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func countingCompute(calls *atomic.Int32) ComputeFunc {
	return func(ctx context.Context) (domain.AnalyzedBatch, error) {
		n := calls.Add(1)
		return domain.AnalyzedBatch{
			ID:          string(rune('A' + n - 1)),
			Fingerprint: "topic:science",
			Articles:    []domain.AnalyzedArticle{{Article: domain.RawArticle{Title: "t", URL: "u"}}},
		}, nil
	}
}

func TestGetOrComputeHitWithinTTL(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := newTestCache(t, clock)
	var calls atomic.Int32

	first, err := c.GetOrCompute(context.Background(), "topic:science", countingCompute(&calls))
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	clock.Advance(14 * time.Minute)
	second, err := c.GetOrCompute(context.Background(), "topic:science", countingCompute(&calls))
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if calls.Load() != 1 {
		t.Fatalf("expected one computation, got %d", calls.Load())
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical batches, got %+v and %+v", first, second)
	}
}

func TestGetOrComputeRecomputesAfterTTL(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := newTestCache(t, clock)
	var calls atomic.Int32

	if _, err := c.GetOrCompute(context.Background(), "topic:science", countingCompute(&calls)); err != nil {
		t.Fatalf("first call: %v", err)
	}
	clock.Advance(DefaultTTL)

	if _, ok := c.Get("topic:science"); ok {
		t.Fatal("expired entry must be logically absent")
	}

	for i := 0; i < 3; i++ {
		batch, err := c.GetOrCompute(context.Background(), "topic:science", countingCompute(&calls))
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if batch.ID != "B" {
			t.Fatalf("expected recomputed batch B, got %q", batch.ID)
		}
	}
	if calls.Load() != 2 {
		t.Fatalf("expected exactly one recomputation, got %d total computations", calls.Load())
	}
}

func TestGetOrComputeSharesInFlightComputation(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, &fakeClock{now: time.Unix(0, 0)})
	var calls atomic.Int32
	release := make(chan struct{})

	compute := func(ctx context.Context) (domain.AnalyzedBatch, error) {
		calls.Add(1)
		<-release
		return domain.AnalyzedBatch{ID: "shared"}, nil
	}

	const callers = 8
	var wg sync.WaitGroup
	results := make([]domain.AnalyzedBatch, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.GetOrCompute(context.Background(), "search:mars", compute)
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Fatalf("expected one computation, got %d", calls.Load())
	}
	for i := range results {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if results[i].ID != "shared" {
			t.Fatalf("caller %d got %q", i, results[i].ID)
		}
	}
}

func TestGetOrComputeDoesNotStoreErrors(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, &fakeClock{now: time.Unix(0, 0)})
	boom := errors.New("upstream down")
	var calls atomic.Int32

	failing := func(ctx context.Context) (domain.AnalyzedBatch, error) {
		calls.Add(1)
		return domain.AnalyzedBatch{}, boom
	}

	if _, err := c.GetOrCompute(context.Background(), "topic:world", failing); !errors.Is(err, boom) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if _, err := c.GetOrCompute(context.Background(), "topic:world", failing); !errors.Is(err, boom) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("errors must not be cached, got %d computations", calls.Load())
	}
	if c.Len() != 0 {
		t.Fatalf("expected empty cache, got %d entries", c.Len())
	}
}

func TestGetOrComputeAbandonedWaiterStillStores(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, &fakeClock{now: time.Unix(0, 0)})
	release := make(chan struct{})
	done := make(chan struct{})

	compute := func(ctx context.Context) (domain.AnalyzedBatch, error) {
		defer close(done)
		<-release
		return domain.AnalyzedBatch{ID: "late"}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	if _, err := c.GetOrCompute(ctx, "topic:health", compute); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}

	close(release)
	<-done

	deadline := time.Now().Add(time.Second)
	for {
		if batch, ok := c.Get("topic:health"); ok {
			if batch.ID != "late" {
				t.Fatalf("unexpected batch %q", batch.ID)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("abandoned computation was never stored")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestStoreReplacesEntry(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, &fakeClock{now: time.Unix(0, 0)})
	c.Store("topic:sports", domain.AnalyzedBatch{ID: "old"})
	c.Store("topic:sports", domain.AnalyzedBatch{ID: "new"})

	batch, ok := c.Get("topic:sports")
	if !ok || batch.ID != "new" {
		t.Fatalf("expected replaced entry, got %q ok=%v", batch.ID, ok)
	}
	if c.Len() != 1 {
		t.Fatalf("expected one live entry, got %d", c.Len())
	}
}

func TestSweepDropsExpiredEntries(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Unix(0, 0)}
	c := newTestCache(t, clock)
	c.Store("topic:a", domain.AnalyzedBatch{ID: "a"})
	clock.Advance(10 * time.Minute)
	c.Store("topic:b", domain.AnalyzedBatch{ID: "b"})
	clock.Advance(6 * time.Minute)

	if removed := c.Sweep(); removed != 1 {
		t.Fatalf("expected one removal, got %d", removed)
	}
	if _, ok := c.Get("topic:b"); !ok {
		t.Fatal("fresh entry must survive the sweep")
	}
}

func TestGetOrComputeRejectsEmptyFingerprint(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, &fakeClock{now: time.Unix(0, 0)})
	_, err := c.GetOrCompute(context.Background(), "", func(context.Context) (domain.AnalyzedBatch, error) {
		t.Fatal("compute must not run")
		return domain.AnalyzedBatch{}, nil
	})
	if !errors.Is(err, domain.ErrInvalidFingerprint) {
		t.Fatalf("expected ErrInvalidFingerprint, got %v", err)
	}
}
