package dataprocessing

import (
	"gdpdash/pkg/contracts/domain"
)

// ComputeMetrics produces one MetricResult per requested country code,
// in the caller-supplied order with duplicates collapsed (first occurrence
// wins). Missing data is a first-class outcome: a country absent from the
// table, or absent for either endpoint year, yields nil values and a nil
// growth ratio rather than an error. The only failure mode is a duplicate
// (country, year) pair in the long table, which breaks the Reshape invariant
// and surfaces as a DataIntegrityError.
//
// The caller guarantees startYear <= endYear; range sanity is validated at
// the transport layer.
func ComputeMetrics(long []domain.LongRecord, countryCodes []string, startYear, endYear int) ([]domain.MetricResult, error) {
	index, err := buildYearIndex(long, startYear, endYear)
	if err != nil {
		return nil, err
	}

	results := make([]domain.MetricResult, 0, len(countryCodes))
	seen := make(map[string]bool, len(countryCodes))

	for _, code := range countryCodes {
		if seen[code] {
			continue
		}
		seen[code] = true

		start := index.lookup(code, startYear)
		end := index.lookup(code, endYear)

		results = append(results, domain.MetricResult{
			CountryCode: code,
			StartValue:  start,
			EndValue:    end,
			GrowthRatio: growthRatio(start, end),
		})
	}

	return results, nil
}

// growthRatio returns end/start, or nil when either endpoint is missing or
// the baseline is zero. Division by zero is ruled out here rather than
// surfaced as +Inf.
func growthRatio(start, end *float64) *float64 {
	if start == nil || end == nil || *start == 0 {
		return nil
	}
	ratio := *end / *start
	return &ratio
}

type yearKey struct {
	code string
	year int
}

// yearIndex is an explicit optional-returning lookup over the long table,
// restricted to the two endpoint years the calculator needs.
type yearIndex struct {
	values map[yearKey]*float64
}

func buildYearIndex(long []domain.LongRecord, years ...int) (*yearIndex, error) {
	wanted := make(map[int]bool, len(years))
	for _, y := range years {
		wanted[y] = true
	}

	idx := &yearIndex{values: make(map[yearKey]*float64)}
	for _, record := range long {
		if !wanted[record.Year] {
			continue
		}
		key := yearKey{code: record.CountryCode, year: record.Year}
		if _, exists := idx.values[key]; exists {
			return nil, NewDataIntegrityError(record.CountryCode, record.Year)
		}
		idx.values[key] = record.Value
	}
	return idx, nil
}

// lookup returns the value for (code, year), or nil when the pair is absent
// or the stored value itself is missing.
func (idx *yearIndex) lookup(code string, year int) *float64 {
	return idx.values[yearKey{code: code, year: year}]
}
