package services

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gdpdash/internal/config"
	"gdpdash/internal/dataprocessing"
	"gdpdash/pkg/contracts/domain"
)

const serviceTestCSV = `"Data Source","World Development Indicators",
"Last Updated Date","2025-01-28",

"Country Name","Country Code","Indicator Name","Indicator Code","2020","2021","2022"
"Germany","DEU","GDP (current US$)","NY.GDP.MKTP.CD","3000000000000","3250000000000","3500000000000"
"France","FRA","GDP (current US$)","NY.GDP.MKTP.CD","..","2900000000000","2800000000000"
"Japan","JPN","GDP (current US$)","NY.GDP.MKTP.CD","10","20","25"
`

func serviceFixture(t *testing.T) (*DataService, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "world_gdp.csv")
	require.NoError(t, os.WriteFile(path, []byte(serviceTestCSV), 0644))

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg := config.DatasetConfig{
		CSVPath:          path,
		SkipRows:         3,
		NASentinel:       "..",
		MinYear:          2020,
		MaxYear:          2022,
		CacheTTL:         time.Minute,
		DefaultCountries: []string{"DEU", "FRA"},
	}

	loader := dataprocessing.NewLoader(dataprocessing.LoaderConfig{
		Path:       cfg.CSVPath,
		SkipRows:   cfg.SkipRows,
		NASentinel: cfg.NASentinel,
		Years:      domain.YearRange{Min: cfg.MinYear, Max: cfg.MaxYear},
	}, logger)
	cache := dataprocessing.NewCache(loader, cfg.CacheTTL, logger)

	return NewDataService(cache, cfg, nil, nil, logger), path
}

func TestDataService_GetSeries(t *testing.T) {
	service, _ := serviceFixture(t)

	series, years, err := service.GetSeries(context.Background(), domain.SeriesFilter{
		CountryCodes: []string{"DEU"},
		FromYear:     2020,
		ToYear:       2022,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.YearRange{Min: 2020, Max: 2022}, years)
	require.Len(t, series, 3)
	for _, record := range series {
		assert.Equal(t, "DEU", record.CountryCode)
	}
}

func TestDataService_GetSeriesDefaults(t *testing.T) {
	service, _ := serviceFixture(t)

	series, years, err := service.GetSeries(context.Background(), domain.SeriesFilter{})
	require.NoError(t, err)

	// Defaults are DEU and FRA over the full dataset window
	assert.Equal(t, domain.YearRange{Min: 2020, Max: 2022}, years)
	assert.Len(t, series, 6)
}

func TestDataService_GetSeriesLowercaseCodes(t *testing.T) {
	service, _ := serviceFixture(t)

	series, _, err := service.GetSeries(context.Background(), domain.SeriesFilter{
		CountryCodes: []string{"deu"},
	})
	require.NoError(t, err)
	require.Len(t, series, 3)
	assert.Equal(t, "DEU", series[0].CountryCode)
}

func TestDataService_GetSeriesKeepsCallerSelectionIntact(t *testing.T) {
	service, _ := serviceFixture(t)

	codes := []string{"deu", " fra "}
	_, _, err := service.GetSeries(context.Background(), domain.SeriesFilter{
		CountryCodes: codes,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"deu", " fra "}, codes, "normalization must not write through the caller's slice")
}

func TestDataService_GetSeriesInvalidWindow(t *testing.T) {
	tests := []struct {
		name   string
		filter domain.SeriesFilter
	}{
		{
			name:   "from after to",
			filter: domain.SeriesFilter{FromYear: 2022, ToYear: 2020},
		},
		{
			name:   "window outside dataset range",
			filter: domain.SeriesFilter{FromYear: 1999, ToYear: 2022},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := serviceFixture(t)

			_, _, err := service.GetSeries(context.Background(), tt.filter)
			require.ErrorIs(t, err, ErrInvalidYearRange)
		})
	}
}

func TestDataService_GetMetrics(t *testing.T) {
	service, _ := serviceFixture(t)

	results, err := service.GetMetrics(context.Background(), []string{"JPN"}, 2020, 2022)
	require.NoError(t, err)
	require.Len(t, results, 1)

	require.NotNil(t, results[0].GrowthRatio)
	assert.InDelta(t, 2.5, *results[0].GrowthRatio, 1e-9)
}

func TestDataService_GetMetricsMissingStart(t *testing.T) {
	service, _ := serviceFixture(t)

	results, err := service.GetMetrics(context.Background(), []string{"FRA"}, 2020, 2022)
	require.NoError(t, err, "missing data must not be an error")
	require.Len(t, results, 1)

	assert.Nil(t, results[0].StartValue)
	assert.NotNil(t, results[0].EndValue)
	assert.Nil(t, results[0].GrowthRatio)
}

func TestDataService_GetCountriesSortedByName(t *testing.T) {
	service, _ := serviceFixture(t)

	countries, err := service.GetCountries(context.Background())
	require.NoError(t, err)
	require.Len(t, countries, 3)

	assert.Equal(t, "France", countries[0].Name)
	assert.Equal(t, "Germany", countries[1].Name)
	assert.Equal(t, "Japan", countries[2].Name)
}

func TestDataService_GetYearRange(t *testing.T) {
	service, _ := serviceFixture(t)

	years, err := service.GetYearRange(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.YearRange{Min: 2020, Max: 2022}, years)
}

func TestDataService_Refresh(t *testing.T) {
	service, path := serviceFixture(t)
	ctx := context.Background()

	first, err := service.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Countries)
	assert.Equal(t, 9, first.Rows)

	updated := serviceTestCSV + `"Brazil","BRA","GDP (current US$)","NY.GDP.MKTP.CD","1400000000000","1600000000000","1900000000000"
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0644))

	second, err := service.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, second.Countries)
	assert.NotEqual(t, first.Fingerprint, second.Fingerprint)
}
