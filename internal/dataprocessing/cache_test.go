package dataprocessing

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"gdpdash/pkg/contracts/domain"
)

func cacheFixture(t *testing.T, ttl time.Duration) (*Cache, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "world_gdp.csv")
	require.NoError(t, os.WriteFile(path, []byte(testCSV), 0644))

	loader := testLoader(t, path, domain.YearRange{Min: 2020, Max: 2022})
	cache := NewCache(loader, ttl, slog.New(slog.NewTextHandler(os.Stdout, nil)))
	return cache, path
}

func TestCache_GetBuildsSnapshot(t *testing.T) {
	cache, _ := cacheFixture(t, time.Minute)

	snapshot, err := cache.Get(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snapshot)

	assert.Len(t, snapshot.Wide, 2)
	assert.Len(t, snapshot.Long, 6, "cardinality |wide| x |years|")
	assert.NotEmpty(t, snapshot.Fingerprint)
	assert.Equal(t, domain.YearRange{Min: 2020, Max: 2022}, snapshot.Years)
}

func TestCache_ReturnsSameSnapshotWhileFresh(t *testing.T) {
	cache, _ := cacheFixture(t, time.Minute)
	ctx := context.Background()

	first, err := cache.Get(ctx)
	require.NoError(t, err)
	second, err := cache.Get(ctx)
	require.NoError(t, err)

	assert.Same(t, first, second, "fresh snapshot must be reused, not recomputed")
}

func TestCache_UnchangedFileKeepsSnapshot(t *testing.T) {
	// Zero TTL forces a fingerprint check on every Get; the snapshot must
	// still be reused while the file bytes are unchanged.
	cache, _ := cacheFixture(t, 0)
	ctx := context.Background()

	first, err := cache.Get(ctx)
	require.NoError(t, err)
	second, err := cache.Get(ctx)
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestCache_ReloadsWhenFileChanges(t *testing.T) {
	cache, path := cacheFixture(t, 0)
	ctx := context.Background()

	first, err := cache.Get(ctx)
	require.NoError(t, err)

	updated := testCSV + `"Japan","JPN","GDP (current US$)","NY.GDP.MKTP.CD","5040107754035","4930837369151","4256410961339"
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0644))

	second, err := cache.Get(ctx)
	require.NoError(t, err)

	assert.NotEqual(t, first.Fingerprint, second.Fingerprint)
	assert.Len(t, second.Wide, 3)
}

func TestCache_Invalidate(t *testing.T) {
	cache, _ := cacheFixture(t, time.Hour)
	ctx := context.Background()

	first, err := cache.Get(ctx)
	require.NoError(t, err)

	cache.Invalidate()

	second, err := cache.Get(ctx)
	require.NoError(t, err)

	// Same file content, so the rebuilt snapshot carries the same
	// fingerprint, but it is a fresh materialization.
	assert.Equal(t, first.Fingerprint, second.Fingerprint)
	assert.NotSame(t, first, second)
}

func counterValue(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "counter %s must be an int64 sum", name)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestCache_RecordsHitsAndMisses(t *testing.T) {
	cache, _ := cacheFixture(t, time.Minute)
	ctx := context.Background()

	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")

	hits, err := meter.Int64Counter("dataset_cache_hits_total")
	require.NoError(t, err)
	misses, err := meter.Int64Counter("dataset_cache_misses_total")
	require.NoError(t, err)
	cache.SetMetrics(hits, misses)

	_, err = cache.Get(ctx) // cold, loads from disk
	require.NoError(t, err)
	_, err = cache.Get(ctx) // fresh, served from memory
	require.NoError(t, err)

	assert.Equal(t, int64(1), counterValue(t, reader, "dataset_cache_misses_total"))
	assert.Equal(t, int64(1), counterValue(t, reader, "dataset_cache_hits_total"))
}

func TestCache_ContextCancellation(t *testing.T) {
	cache, _ := cacheFixture(t, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cache.Get(ctx)
	require.Error(t, err)
}

func TestCache_MissingFile(t *testing.T) {
	loader := testLoader(t, filepath.Join(t.TempDir(), "absent.csv"), domain.YearRange{Min: 2020, Max: 2020})
	cache := NewCache(loader, 0, slog.New(slog.NewTextHandler(os.Stdout, nil)))

	_, err := cache.Get(context.Background())
	require.Error(t, err)
}
