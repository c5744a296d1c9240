package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "gdpdash/internal/errors"
	"gdpdash/internal/exporter"
	"gdpdash/internal/services"
	"gdpdash/pkg/contracts/domain"
)

// DataHandler handles GDP data HTTP requests with RFC 7807 compliance
type DataHandler struct {
	service      DataServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
	csvExporter  *exporter.CSVExporter
	xlsxExporter *exporter.XLSXExporter
}

// NewDataHandler creates a new data handler with RFC 7807 error handling
func NewDataHandler(service DataServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DataHandler {
	return &DataHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "data_handler")),
		errorHandler: errorHandler,
		validate:     validator.New(),
		csvExporter:  exporter.NewCSVExporter(),
		xlsxExporter: exporter.NewXLSXExporter(),
	}
}

// Routes returns the GDP data routes
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/series", h.GetSeries)
	r.Get("/metrics", h.GetMetrics)
	r.Get("/countries", h.GetCountries)
	r.Get("/years", h.GetYearRange)
	r.Post("/refresh", h.Refresh)

	r.Get("/export/series", h.ExportSeries)
	r.Get("/export/metrics", h.ExportMetrics)

	return r
}

// datasetQuery carries the parsed selection parameters shared by the
// series and metrics endpoints.
type datasetQuery struct {
	Countries []string `validate:"dive,alpha,len=3"`
	FromYear  int      `validate:"omitempty,min=1900,max=2100"`
	ToYear    int      `validate:"omitempty,min=1900,max=2100"`
}

// parseQuery extracts countries, from, and to from the request query.
// Absent parameters stay zero; the service fills in its defaults.
func (h *DataHandler) parseQuery(r *http.Request) (datasetQuery, error) {
	var q datasetQuery

	if raw := r.URL.Query().Get("countries"); raw != "" {
		for _, code := range strings.Split(raw, ",") {
			if code = strings.TrimSpace(code); code != "" {
				q.Countries = append(q.Countries, code)
			}
		}
	}

	var err error
	if raw := r.URL.Query().Get("from"); raw != "" {
		if q.FromYear, err = strconv.Atoi(raw); err != nil {
			return q, apierrors.ErrValidation("from", "must be a year")
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if q.ToYear, err = strconv.Atoi(raw); err != nil {
			return q, apierrors.ErrValidation("to", "must be a year")
		}
	}

	if err := h.validate.Struct(q); err != nil {
		return q, apierrors.NewWithDetails(
			http.StatusBadRequest,
			"VALIDATION_FAILED",
			"Request validation failed",
			err.Error(),
		)
	}

	return q, nil
}

// seriesRow is one long-format row of the API response
type seriesRow struct {
	CountryName string   `json:"country_name"`
	CountryCode string   `json:"country_code"`
	Year        int      `json:"year"`
	GDP         *float64 `json:"gdp"`
}

// seriesResponse wraps the series rows with the effective selection
type seriesResponse struct {
	Countries []string    `json:"countries"`
	FromYear  int         `json:"from_year"`
	ToYear    int         `json:"to_year"`
	Rows      []seriesRow `json:"rows"`
}

// GetSeries handles GET /api/gdp/series
func (h *DataHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	series, years, err := h.service.GetSeries(r.Context(), domain.SeriesFilter{
		CountryCodes: q.Countries,
		FromYear:     q.FromYear,
		ToYear:       q.ToYear,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	rows := make([]seriesRow, 0, len(series))
	codes := make([]string, 0, 8)
	seen := make(map[string]bool)
	for _, record := range series {
		rows = append(rows, seriesRow{
			CountryName: record.CountryName,
			CountryCode: record.CountryCode,
			Year:        record.Year,
			GDP:         record.Value,
		})
		if !seen[record.CountryCode] {
			seen[record.CountryCode] = true
			codes = append(codes, record.CountryCode)
		}
	}

	render.JSON(w, r, seriesResponse{
		Countries: codes,
		FromYear:  years.Min,
		ToYear:    years.Max,
		Rows:      rows,
	})
}

// metricRow is one country's growth summary with display renditions
type metricRow struct {
	CountryCode   string   `json:"country_code"`
	StartValue    *float64 `json:"start_value"`
	EndValue      *float64 `json:"end_value"`
	GrowthRatio   *float64 `json:"growth_ratio"`
	GDPDisplay    string   `json:"gdp_display"`
	GrowthDisplay string   `json:"growth_display"`
}

// metricsResponse wraps the metric rows with the year window used
type metricsResponse struct {
	StartYear int         `json:"start_year"`
	EndYear   int         `json:"end_year"`
	Metrics   []metricRow `json:"metrics"`
}

// GetMetrics handles GET /api/gdp/metrics
func (h *DataHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	startYear, endYear, err := h.resolveWindow(r, q)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	results, err := h.service.GetMetrics(r.Context(), q.Countries, startYear, endYear)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	rows := make([]metricRow, 0, len(results))
	for _, result := range results {
		rows = append(rows, metricRow{
			CountryCode:   result.CountryCode,
			StartValue:    result.StartValue,
			EndValue:      result.EndValue,
			GrowthRatio:   result.GrowthRatio,
			GDPDisplay:    exporter.FormatBillions(result.EndValue),
			GrowthDisplay: exporter.FormatGrowth(result.GrowthRatio),
		})
	}

	render.JSON(w, r, metricsResponse{
		StartYear: startYear,
		EndYear:   endYear,
		Metrics:   rows,
	})
}

// resolveWindow fills an unset year window from the dataset range
func (h *DataHandler) resolveWindow(r *http.Request, q datasetQuery) (int, int, error) {
	if q.FromYear != 0 && q.ToYear != 0 {
		return q.FromYear, q.ToYear, nil
	}

	years, err := h.service.GetYearRange(r.Context())
	if err != nil {
		return 0, 0, err
	}

	startYear, endYear := q.FromYear, q.ToYear
	if startYear == 0 {
		startYear = years.Min
	}
	if endYear == 0 {
		endYear = years.Max
	}
	return startYear, endYear, nil
}

// GetCountries handles GET /api/gdp/countries
func (h *DataHandler) GetCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := h.service.GetCountries(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"countries": countries,
		"defaults":  h.service.DefaultCountries(),
	})
}

// GetYearRange handles GET /api/gdp/years
func (h *DataHandler) GetYearRange(w http.ResponseWriter, r *http.Request) {
	years, err := h.service.GetYearRange(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]int{
		"min_year": years.Min,
		"max_year": years.Max,
	})
}

// Refresh handles POST /api/gdp/refresh
func (h *DataHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Refresh(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "dataset refresh requested",
		slog.String("fingerprint", result.Fingerprint),
		slog.Int("countries", result.Countries))

	render.JSON(w, r, result)
}

// ExportSeries handles GET /api/gdp/export/series?format=csv|xlsx
func (h *DataHandler) ExportSeries(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	format, err := exportFormat(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	series, _, err := h.service.GetSeries(r.Context(), domain.SeriesFilter{
		CountryCodes: q.Countries,
		FromYear:     q.FromYear,
		ToYear:       q.ToYear,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	switch format {
	case "csv":
		setDownloadHeaders(w, "gdp_series.csv", "text/csv; charset=utf-8")
		err = h.csvExporter.WriteSeries(w, series)
	case "xlsx":
		setDownloadHeaders(w, "gdp_series.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		err = h.xlsxExporter.WriteSeries(w, series)
	}

	if err != nil {
		// Headers are already sent; all we can do is log
		h.logger.ErrorContext(r.Context(), "series export failed",
			slog.String("format", format),
			slog.String("error", err.Error()))
	}
}

// ExportMetrics handles GET /api/gdp/export/metrics?format=csv|xlsx
func (h *DataHandler) ExportMetrics(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	format, err := exportFormat(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	startYear, endYear, err := h.resolveWindow(r, q)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	results, err := h.service.GetMetrics(r.Context(), q.Countries, startYear, endYear)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	switch format {
	case "csv":
		setDownloadHeaders(w, "gdp_metrics.csv", "text/csv; charset=utf-8")
		err = h.csvExporter.WriteMetrics(w, results, startYear, endYear)
	case "xlsx":
		setDownloadHeaders(w, "gdp_metrics.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		err = h.xlsxExporter.WriteMetrics(w, results, startYear, endYear)
	}

	if err != nil {
		h.logger.ErrorContext(r.Context(), "metrics export failed",
			slog.String("format", format),
			slog.String("error", err.Error()))
	}
}

func exportFormat(r *http.Request) (string, error) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		return "", apierrors.ErrValidation("format", fmt.Sprintf("unsupported export format: %s", format))
	}
	return format, nil
}

func setDownloadHeaders(w http.ResponseWriter, filename, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}

// handleServiceError maps service errors onto API errors before rendering
func (h *DataHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidYearRange):
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusBadRequest,
			"INVALID_PARAMETER",
			"Invalid year window",
			err.Error(),
		))
	case errors.Is(err, services.ErrDatasetUnavailable):
		h.errorHandler.HandleError(w, r, apierrors.ErrDatasetNotFound)
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}
