package cache

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"NewsScope/internal/domain"
)

const (
	DefaultTTL      = 15 * time.Minute
	DefaultCapacity = 256
)

// ComputeFunc builds the batch for a fingerprint on a miss.
type ComputeFunc func(ctx context.Context) (domain.AnalyzedBatch, error)

// Entry is one stored batch; it is logically absent once its TTL elapses.
type Entry struct {
	Fingerprint string
	Batch       domain.AnalyzedBatch
	CreatedAt   time.Time
	TTL         time.Duration
}

func (e Entry) expired(now time.Time) bool {
	return !now.Before(e.CreatedAt.Add(e.TTL))
}

// ResultCache maps request fingerprints to analyzed batches. At most one
// computation per fingerprint runs at a time; concurrent callers wait for it
// and share its result.
type ResultCache struct {
	ttl            time.Duration
	computeTimeout time.Duration
	now            func() time.Time
	logger         *slog.Logger

	mu      sync.Mutex
	entries *lru.Cache[string, Entry]
	flight  singleflight.Group
}

// Option tunes a ResultCache.
type Option func(*ResultCache)

// WithTTL overrides the entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *ResultCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock injects the time source.
func WithClock(now func() time.Time) Option {
	return func(c *ResultCache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *ResultCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithComputeTimeout bounds a single computation, independent of the
// caller that started it.
func WithComputeTimeout(d time.Duration) Option {
	return func(c *ResultCache) { c.computeTimeout = d }
}

// New creates an empty cache holding up to capacity fingerprints.
func New(capacity int, opts ...Option) (*ResultCache, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	entries, err := lru.New[string, Entry](capacity)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}

	c := &ResultCache{
		ttl:     DefaultTTL,
		now:     time.Now,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		entries: entries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get returns the live entry for fingerprint. Expired entries are dropped.
func (c *ResultCache) Get(fingerprint string) (domain.AnalyzedBatch, bool) {
	entry, ok := c.lookup(fingerprint)
	if !ok {
		return domain.AnalyzedBatch{}, false
	}
	return entry.Batch, true
}

// GetOrCompute returns the cached batch or runs compute once for all
// concurrent callers of the same fingerprint. Failed computations are not
// stored. A caller whose ctx ends stops waiting; the computation itself
// keeps running and its result is still stored for later callers.
func (c *ResultCache) GetOrCompute(ctx context.Context, fingerprint string, compute ComputeFunc) (domain.AnalyzedBatch, error) {
	if fingerprint == "" {
		return domain.AnalyzedBatch{}, domain.ErrInvalidFingerprint
	}

	if entry, ok := c.lookup(fingerprint); ok {
		c.logger.Debug("cache hit", "fingerprint", fingerprint, "age", c.now().Sub(entry.CreatedAt))
		return entry.Batch, nil
	}

	ch := c.flight.DoChan(fingerprint, func() (any, error) {
		// a flight that finished just before this one started may have stored
		if entry, ok := c.lookup(fingerprint); ok {
			return entry.Batch, nil
		}

		c.logger.Debug("cache miss", "fingerprint", fingerprint)

		cctx := context.WithoutCancel(ctx)
		if c.computeTimeout > 0 {
			var cancel context.CancelFunc
			cctx, cancel = context.WithTimeout(cctx, c.computeTimeout)
			defer cancel()
		}

		batch, err := compute(cctx)
		if err != nil {
			return domain.AnalyzedBatch{}, err
		}
		if cctx.Err() != nil {
			// results produced past the deadline are degraded; serve but do not keep
			c.logger.Debug("cache skip store", "fingerprint", fingerprint, "error", cctx.Err())
			return batch, nil
		}
		c.Store(fingerprint, batch)
		return batch, nil
	})

	select {
	case res := <-ch:
		return c.flightResult(fingerprint, res)
	case <-ctx.Done():
		// a flight that finished at the same instant still wins
		select {
		case res := <-ch:
			return c.flightResult(fingerprint, res)
		default:
			return domain.AnalyzedBatch{}, ctx.Err()
		}
	}
}

func (c *ResultCache) flightResult(fingerprint string, res singleflight.Result) (domain.AnalyzedBatch, error) {
	if res.Err != nil {
		return domain.AnalyzedBatch{}, res.Err
	}
	if res.Shared {
		c.logger.Debug("cache shared flight", "fingerprint", fingerprint)
	}
	return res.Val.(domain.AnalyzedBatch), nil
}

// Store replaces any entry for fingerprint.
func (c *ResultCache) Store(fingerprint string, batch domain.AnalyzedBatch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Add(fingerprint, Entry{
		Fingerprint: fingerprint,
		Batch:       batch,
		CreatedAt:   c.now(),
		TTL:         c.ttl,
	})
}

// Sweep drops every expired entry and reports how many were removed.
func (c *ResultCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for _, key := range c.entries.Keys() {
		entry, ok := c.entries.Peek(key)
		if ok && entry.expired(now) {
			c.entries.Remove(key)
			removed++
		}
	}
	return removed
}

// Len reports the number of physically retained entries.
func (c *ResultCache) Len() int {
	return c.entries.Len()
}

func (c *ResultCache) lookup(fingerprint string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries.Get(fingerprint)
	if !ok {
		return Entry{}, false
	}
	if entry.expired(c.now()) {
		c.entries.Remove(fingerprint)
		return Entry{}, false
	}
	return entry, true
}
