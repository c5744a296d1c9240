package http

import (
	"context"

	"gdpdash/internal/dataprocessing"
	"gdpdash/internal/services"
	"gdpdash/pkg/contracts/domain"
)

// DataServiceInterface defines the contract the data handler depends on
type DataServiceInterface interface {
	GetSeries(ctx context.Context, filter domain.SeriesFilter) ([]domain.LongRecord, domain.YearRange, error)
	GetMetrics(ctx context.Context, countryCodes []string, startYear, endYear int) ([]domain.MetricResult, error)
	GetCountries(ctx context.Context) ([]domain.Country, error)
	GetYearRange(ctx context.Context) (domain.YearRange, error)
	DefaultCountries() []string
	Refresh(ctx context.Context) (*services.RefreshResult, error)
	Snapshot(ctx context.Context) (*dataprocessing.Snapshot, error)
}

// HealthServiceInterface defines the contract the health handler depends on
type HealthServiceInterface interface {
	GetHealth(ctx context.Context) *services.HealthStatus
	Readiness(ctx context.Context) error
	Version() services.VersionInfo
}
