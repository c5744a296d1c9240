package app

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gdpdash/internal/config"
	"gdpdash/internal/infrastructure"
)

const appTestCSV = `"Data Source","World Development Indicators",
"Last Updated Date","2025-01-28",

"Country Name","Country Code","Indicator Name","Indicator Code","2020","2021"
"Germany","DEU","GDP (current US$)","NY.GDP.MKTP.CD","3000000000000","3500000000000"
"France","FRA","GDP (current US$)","NY.GDP.MKTP.CD","..","2900000000000"
`

func testApplication(t *testing.T) *Application {
	t.Helper()

	path := filepath.Join(t.TempDir(), "world_gdp.csv")
	require.NoError(t, os.WriteFile(path, []byte(appTestCSV), 0644))

	cfg := config.Default()
	cfg.Dataset.CSVPath = path
	cfg.Dataset.SkipRows = 3
	cfg.Dataset.MinYear = 2020
	cfg.Dataset.MaxYear = 2021
	cfg.Dataset.DefaultCountries = []string{"DEU", "FRA"}
	cfg.Security.RateLimit.Enabled = false

	app := &Application{
		Config:        cfg,
		Logger:        slog.New(slog.NewTextHandler(os.Stdout, nil)),
		OTelProviders: &infrastructure.OTelProviders{},
	}

	require.NoError(t, app.initializeServices())
	app.setupRouter()
	t.Cleanup(app.WebSocketHub.Stop)

	return app
}

func TestApplication_HealthEndpoint(t *testing.T) {
	app := testApplication(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	app.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}

func TestApplication_VersionEndpoint(t *testing.T) {
	app := testApplication(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	app.Router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version":"`+Version+`"`)
	assert.Contains(t, rec.Body.String(), `"name":"GDP Dashboard API"`)
}

func TestApplication_SeriesEndpoint(t *testing.T) {
	app := testApplication(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/gdp/series?countries=DEU", nil)
	app.Router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"country_code":"DEU"`)
}

func TestApplication_MetricsEndpoint(t *testing.T) {
	app := testApplication(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/gdp/metrics?countries=DEU&from=2020&to=2021", nil)
	app.Router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"growth_display":"1.17x"`)
}

func TestApplication_UnknownRouteIsProblemJSON(t *testing.T) {
	app := testApplication(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	app.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "/errors/not-found")
}
