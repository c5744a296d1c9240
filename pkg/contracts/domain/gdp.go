package domain

import "fmt"

// WideRecord is one row of the raw World Bank table: a single country with
// one GDP value per year. A nil value means the source had no figure for
// that year (the ".." sentinel), which is distinct from zero.
type WideRecord struct {
	CountryName string           `json:"country_name" validate:"required"`
	CountryCode string           `json:"country_code" validate:"required,min=2,max=3"`
	ValueByYear map[int]*float64 `json:"value_by_year" validate:"required"`
}

// LongRecord is the tidy form of the dataset: one row per (country, year).
// This is the canonical shape consumed by the chart and metrics endpoints.
type LongRecord struct {
	CountryName string   `json:"country_name"`
	CountryCode string   `json:"country_code"`
	Year        int      `json:"year"`
	Value       *float64 `json:"value"`
}

// MetricResult summarises one country over a selected year span.
// GrowthRatio is EndValue/StartValue; it is nil whenever either endpoint is
// missing or the start value is zero. Absence is an expected outcome, not an
// error.
type MetricResult struct {
	CountryCode string   `json:"country_code"`
	StartValue  *float64 `json:"start_value"`
	EndValue    *float64 `json:"end_value"`
	GrowthRatio *float64 `json:"growth_ratio"`
}

// YearRange is an inclusive [Min, Max] span of calendar years.
type YearRange struct {
	Min int `json:"min" validate:"required"`
	Max int `json:"max" validate:"required,gtefield=Min"`
}

// Span returns the number of years covered by the range.
func (r YearRange) Span() int {
	return r.Max - r.Min + 1
}

// Contains reports whether year falls inside the range.
func (r YearRange) Contains(year int) bool {
	return year >= r.Min && year <= r.Max
}

// Validate checks basic range sanity.
func (r YearRange) Validate() error {
	if r.Min > r.Max {
		return fmt.Errorf("invalid year range: min %d > max %d", r.Min, r.Max)
	}
	return nil
}

// Country is a selectable entity exposed to the frontend country picker.
type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// SeriesFilter restricts the long table to a country set and year window.
// An empty CountryCodes slice selects nothing (the dashboard shows a
// placeholder for an empty selection).
type SeriesFilter struct {
	CountryCodes []string `json:"country_codes"`
	FromYear     int      `json:"from_year"`
	ToYear       int      `json:"to_year"`
}
