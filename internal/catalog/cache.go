package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"khavho-commerce/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNotLoaded = errors.New("catalog has not been loaded yet")
)

// DefaultRefreshInterval is how often the background loop reloads the
// catalog when no explicit interval is configured.
const DefaultRefreshInterval = 30 * time.Second

// Lister fetches the full product collection from the backing store.
type Lister interface {
	ListAll(ctx context.Context) ([]domain.Product, error)
}

// Subscriber is invoked synchronously with the new snapshot after every
// accepted load.
type Subscriber func(snapshot []domain.Product)

// Cache holds an in-process read replica of the product collection.
// The snapshot is replaced wholesale on every accepted load, never
// mutated in place, so readers never observe a half-updated record.
//
// Every load is tagged with a monotonically increasing sequence number
// taken before the fetch starts; a result whose sequence is below the
// last applied one is discarded, so a slow refresh can never overwrite
// a newer snapshot. Failed loads keep the previous snapshot intact.
type Cache struct {
	lister Lister
	logger *zap.Logger

	mu          sync.RWMutex
	snapshot    []domain.Product
	byID        map[uuid.UUID]domain.Product
	loaded      bool
	lastErr     error
	failing     bool
	nextSeq     uint64
	appliedSeq  uint64
	subscribers []Subscriber
}

// NewCache creates a catalog cache backed by the given lister. The
// cache starts empty; Snapshot returns an empty slice until the first
// successful Load.
func NewCache(lister Lister, logger *zap.Logger) *Cache {
	return &Cache{
		lister: lister,
		logger: logger,
		byID:   make(map[uuid.UUID]domain.Product),
	}
}

// Load fetches the entire product collection and replaces the snapshot
// atomically. On failure the previous snapshot is kept and the error is
// recorded; the first failure of an outage is logged, repeats are not.
func (c *Cache) Load(ctx context.Context) error {
	c.mu.Lock()
	c.nextSeq++
	seq := c.nextSeq
	c.mu.Unlock()

	products, err := c.lister.ListAll(ctx)

	c.mu.Lock()
	if err != nil {
		c.lastErr = err
		if !c.failing {
			c.failing = true
			c.logger.Warn("Catalog load failed, keeping last good snapshot",
				zap.Error(err),
				zap.Int("snapshot_size", len(c.snapshot)),
			)
		}
		c.mu.Unlock()
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	if seq <= c.appliedSeq {
		// A newer load already resolved; this result is stale.
		c.mu.Unlock()
		c.logger.Debug("Discarding superseded catalog load",
			zap.Uint64("seq", seq),
		)
		return nil
	}

	c.appliedSeq = seq
	c.snapshot = products
	c.byID = make(map[uuid.UUID]domain.Product, len(products))
	for _, p := range products {
		c.byID[p.ID] = p
	}
	c.loaded = true
	c.lastErr = nil
	if c.failing {
		c.failing = false
		c.logger.Info("Catalog load recovered", zap.Int("products", len(products)))
	}
	subs := make([]Subscriber, len(c.subscribers))
	copy(subs, c.subscribers)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(products)
	}
	return nil
}

// Refresh re-invokes Load. Exposed separately so callers that react to
// admin writes read naturally.
func (c *Cache) Refresh(ctx context.Context) error {
	return c.Load(ctx)
}

// Start runs Load on a fixed interval until ctx is cancelled. Failures
// do not shorten or lengthen the interval.
func (c *Cache) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				// Errors are recorded on the cache itself; the loop keeps going.
				_ = c.Load(ctx)
			}
		}
	}()
}

// Snapshot returns the current product snapshot in store order. It
// never blocks and returns an empty slice before the first load.
func (c *Cache) Snapshot() []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Product, len(c.snapshot))
	copy(out, c.snapshot)
	return out
}

// Lookup returns the product with the given id from the current
// snapshot, if present.
func (c *Cache) Lookup(id uuid.UUID) (domain.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.byID[id]
	return p, ok
}

// Loaded reports whether at least one load has been applied. It lets
// consumers distinguish "not loaded yet" from "loaded but empty".
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// LastError returns the error recorded by the most recent failed load,
// or nil if the last load succeeded.
func (c *Cache) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// Subscribe registers fn to be called synchronously with the new
// snapshot after every accepted load.
func (c *Cache) Subscribe(fn Subscriber) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

// Categories returns the distinct category tags present in the current
// snapshot, in first-seen store order.
func (c *Cache) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := make(map[string]bool)
	categories := []string{}
	for _, p := range c.snapshot {
		if !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	return categories
}
