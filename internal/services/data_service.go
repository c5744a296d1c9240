package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"gdpdash/internal/config"
	"gdpdash/internal/dataprocessing"
	"gdpdash/internal/infrastructure"
	ws "gdpdash/internal/websocket"
	"gdpdash/pkg/contracts/domain"
)

// DataService serves GDP series and growth metrics off the cached dataset
// snapshot. All reads go through the cache; the service never touches the
// source file directly.
type DataService struct {
	cache            *dataprocessing.Cache
	hub              *ws.Hub
	metrics          *infrastructure.DatasetMetrics
	logger           *slog.Logger
	defaultCountries []string
	years            domain.YearRange
}

// NewDataService creates a new data service with injected dependencies.
// The hub and metrics may be nil; broadcasts and instrument updates are
// then skipped.
func NewDataService(cache *dataprocessing.Cache, cfg config.DatasetConfig, hub *ws.Hub, metrics *infrastructure.DatasetMetrics, logger *slog.Logger) *DataService {
	if logger == nil {
		logger = slog.Default()
	}

	return &DataService{
		cache:            cache,
		hub:              hub,
		metrics:          metrics,
		logger:           logger.With(slog.String("component", "data_service")),
		defaultCountries: normalizeCountryList(cfg.DefaultCountries),
		years:            domain.YearRange{Min: cfg.MinYear, Max: cfg.MaxYear},
	}
}

func normalizeCountryList(raw []string) []string {
	codes := make([]string, 0, len(raw))
	for _, part := range raw {
		if code := strings.TrimSpace(part); code != "" {
			codes = append(codes, strings.ToUpper(code))
		}
	}
	return codes
}

// DefaultCountries returns the configured default country selection
func (s *DataService) DefaultCountries() []string {
	out := make([]string, len(s.defaultCountries))
	copy(out, s.defaultCountries)
	return out
}

// normalizeFilter fills unset filter fields from the configured defaults and
// clamps the year window to the dataset range.
func (s *DataService) normalizeFilter(filter domain.SeriesFilter) (domain.SeriesFilter, error) {
	// Normalize into a fresh slice; the caller's selection stays untouched
	filter.CountryCodes = normalizeCountryList(filter.CountryCodes)
	if len(filter.CountryCodes) == 0 {
		filter.CountryCodes = s.DefaultCountries()
	}

	if filter.FromYear == 0 {
		filter.FromYear = s.years.Min
	}
	if filter.ToYear == 0 {
		filter.ToYear = s.years.Max
	}

	if filter.FromYear > filter.ToYear {
		return domain.SeriesFilter{}, fmt.Errorf("%w: from %d is after to %d", ErrInvalidYearRange, filter.FromYear, filter.ToYear)
	}
	if filter.FromYear < s.years.Min || filter.ToYear > s.years.Max {
		return domain.SeriesFilter{}, fmt.Errorf("%w: window %d-%d outside dataset range %d-%d",
			ErrInvalidYearRange, filter.FromYear, filter.ToYear, s.years.Min, s.years.Max)
	}

	return filter, nil
}

// GetSeries returns the long-format GDP series for the requested selection.
// Unset filter fields fall back to the configured defaults.
func (s *DataService) GetSeries(ctx context.Context, filter domain.SeriesFilter) ([]domain.LongRecord, domain.YearRange, error) {
	filter, err := s.normalizeFilter(filter)
	if err != nil {
		return nil, domain.YearRange{}, err
	}

	snapshot, err := s.cache.Get(ctx)
	if err != nil {
		return nil, domain.YearRange{}, fmt.Errorf("get snapshot: %w", err)
	}

	series := dataprocessing.FilterSeries(snapshot.Long, filter)

	s.logger.DebugContext(ctx, "series served",
		slog.Int("countries", len(filter.CountryCodes)),
		slog.Int("rows", len(series)),
		slog.Int("from_year", filter.FromYear),
		slog.Int("to_year", filter.ToYear))

	return series, domain.YearRange{Min: filter.FromYear, Max: filter.ToYear}, nil
}

// GetMetrics computes start/end values and growth ratios for the requested
// selection over the given year window. Missing data yields absent fields,
// never an error.
func (s *DataService) GetMetrics(ctx context.Context, countryCodes []string, startYear, endYear int) ([]domain.MetricResult, error) {
	filter, err := s.normalizeFilter(domain.SeriesFilter{
		CountryCodes: countryCodes,
		FromYear:     startYear,
		ToYear:       endYear,
	})
	if err != nil {
		return nil, err
	}

	snapshot, err := s.cache.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	results, err := dataprocessing.ComputeMetrics(snapshot.Long, filter.CountryCodes, filter.FromYear, filter.ToYear)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.MetricComputations.Add(ctx, int64(len(results)),
			metric.WithAttributes(attribute.Int("countries", len(results))))
	}

	return results, nil
}

// GetCountries returns every country present in the dataset, sorted by name
func (s *DataService) GetCountries(ctx context.Context) ([]domain.Country, error) {
	snapshot, err := s.cache.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	countries := make([]domain.Country, 0, len(snapshot.Wide))
	for _, record := range snapshot.Wide {
		countries = append(countries, domain.Country{
			Code: record.CountryCode,
			Name: record.CountryName,
		})
	}

	sort.Slice(countries, func(i, j int) bool {
		return countries[i].Name < countries[j].Name
	})

	return countries, nil
}

// GetYearRange returns the year window the dataset covers
func (s *DataService) GetYearRange(ctx context.Context) (domain.YearRange, error) {
	snapshot, err := s.cache.Get(ctx)
	if err != nil {
		return domain.YearRange{}, fmt.Errorf("get snapshot: %w", err)
	}
	return snapshot.Years, nil
}

// RefreshResult describes the snapshot state after a forced refresh
type RefreshResult struct {
	Fingerprint string    `json:"fingerprint"`
	Countries   int       `json:"countries"`
	Rows        int       `json:"rows"`
	LoadedAt    time.Time `json:"loaded_at"`
}

// Refresh invalidates the cache, rebuilds the snapshot from disk, and
// notifies connected dashboard clients.
func (s *DataService) Refresh(ctx context.Context) (*RefreshResult, error) {
	start := time.Now()
	s.cache.Invalidate()

	snapshot, err := s.cache.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("rebuild snapshot: %w", err)
	}

	if s.metrics != nil {
		s.metrics.DatasetLoadsTotal.Add(ctx, 1)
		s.metrics.DatasetLoadDuration.Record(ctx, time.Since(start).Seconds())
		s.metrics.ReshapeRowsTotal.Add(ctx, int64(len(snapshot.Long)))
	}

	if s.hub != nil {
		s.hub.BroadcastDatasetReload(snapshot.Fingerprint, len(snapshot.Wide))
	}

	s.logger.InfoContext(ctx, "dataset refreshed",
		slog.String("fingerprint", snapshot.Fingerprint),
		slog.Int("countries", len(snapshot.Wide)),
		slog.Duration("elapsed", time.Since(start)))

	return &RefreshResult{
		Fingerprint: snapshot.Fingerprint,
		Countries:   len(snapshot.Wide),
		Rows:        len(snapshot.Long),
		LoadedAt:    snapshot.LoadedAt,
	}, nil
}

// Snapshot exposes the current dataset snapshot for export use
func (s *DataService) Snapshot(ctx context.Context) (*dataprocessing.Snapshot, error) {
	return s.cache.Get(ctx)
}
