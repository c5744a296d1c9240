package dataprocessing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"

	"gdpdash/pkg/contracts/domain"
)

// Snapshot is one immutable materialization of the dataset: the wide source
// rows, their reshaped long form, and the fingerprint of the file they came
// from. Callers must treat its slices as read-only.
type Snapshot struct {
	Wide        []domain.WideRecord
	Long        []domain.LongRecord
	Years       domain.YearRange
	Fingerprint string
	LoadedAt    time.Time
}

// Cache memoizes the load+reshape pipeline behind a content fingerprint of
// the source file. Because Reshape is pure, a snapshot stays valid for as
// long as the file bytes do; the cache re-fingerprints at most once per TTL
// and reloads only when the fingerprint changes. Invalidation is explicit
// and owned by the caller, replacing any notion of process-wide implicit
// state.
type Cache struct {
	loader *Loader
	ttl    time.Duration
	logger *slog.Logger

	mu        sync.RWMutex
	snapshot  *Snapshot
	checkedAt time.Time

	hits   metric.Int64Counter
	misses metric.Int64Counter

	group singleflight.Group
}

// NewCache creates a dataset cache over the given loader. A zero ttl means
// every Get re-checks the file fingerprint.
func NewCache(loader *Loader, ttl time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		loader: loader,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "dataset_cache")),
	}
}

// SetMetrics attaches optional hit and miss counters. A snapshot served
// from memory counts as a hit; a reload from disk counts as a miss.
// Call during wiring, before the cache is shared.
func (c *Cache) SetMetrics(hits, misses metric.Int64Counter) {
	c.hits = hits
	c.misses = misses
}

func (c *Cache) recordHit(ctx context.Context) {
	if c.hits != nil {
		c.hits.Add(ctx, 1)
	}
}

func (c *Cache) recordMiss(ctx context.Context) {
	if c.misses != nil {
		c.misses.Add(ctx, 1)
	}
}

// Get returns the current snapshot, loading or reloading as needed.
// Concurrent callers share a single load.
func (c *Cache) Get(ctx context.Context) (*Snapshot, error) {
	c.mu.RLock()
	snapshot := c.snapshot
	fresh := snapshot != nil && c.ttl > 0 && time.Since(c.checkedAt) < c.ttl
	c.mu.RUnlock()

	if fresh {
		c.recordHit(ctx)
		return snapshot, nil
	}

	result, err, _ := c.group.Do("dataset", func() (interface{}, error) {
		return c.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.(*Snapshot), nil
}

// Invalidate discards the cached snapshot. The next Get reloads from disk.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.snapshot = nil
	c.checkedAt = time.Time{}
	c.mu.Unlock()
	c.logger.Info("dataset cache invalidated")
}

// refresh fingerprints the source file and reloads when the content changed
// since the cached snapshot was built.
func (c *Cache) refresh(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fingerprint, err := fingerprintFile(c.loader.cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("fingerprint source file: %w", err)
	}

	c.mu.RLock()
	snapshot := c.snapshot
	c.mu.RUnlock()

	if snapshot != nil && snapshot.Fingerprint == fingerprint {
		c.mu.Lock()
		c.checkedAt = time.Now()
		c.mu.Unlock()
		c.recordHit(ctx)
		return snapshot, nil
	}

	c.recordMiss(ctx)
	wide, years, err := c.loader.Load()
	if err != nil {
		return nil, err
	}
	long, err := Reshape(wide, years)
	if err != nil {
		return nil, err
	}

	snapshot = &Snapshot{
		Wide:        wide,
		Long:        long,
		Years:       years,
		Fingerprint: fingerprint,
		LoadedAt:    time.Now(),
	}

	c.mu.Lock()
	c.snapshot = snapshot
	c.checkedAt = snapshot.LoadedAt
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "dataset snapshot rebuilt",
		slog.String("fingerprint", fingerprint[:12]),
		slog.Int("wide_rows", len(wide)),
		slog.Int("long_rows", len(long)))

	return snapshot, nil
}

func fingerprintFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
