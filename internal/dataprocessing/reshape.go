package dataprocessing

import (
	"gdpdash/pkg/contracts/domain"
)

// Reshape pivots the wide per-country table into the long (country, year,
// value) form. The output has exactly len(wide) * years.Span() rows, grouped
// by country in input order with years ascending within each country.
//
// Every year inside the range must be present as a key on every record;
// a missing key is a SchemaError. Values are carried through untouched, so a
// nil (missing) value stays nil. The function is pure: identical inputs
// always produce identical output, which is what allows callers to memoize
// it (see Cache).
func Reshape(wide []domain.WideRecord, years domain.YearRange) ([]domain.LongRecord, error) {
	long := make([]domain.LongRecord, 0, len(wide)*years.Span())

	for _, record := range wide {
		if record.CountryName == "" {
			return nil, NewSchemaError(ColumnCountryName)
		}
		if record.CountryCode == "" {
			return nil, NewSchemaError(ColumnCountryCode)
		}

		for year := years.Min; year <= years.Max; year++ {
			value, ok := record.ValueByYear[year]
			if !ok {
				return nil, NewSchemaError(yearColumn(year))
			}
			long = append(long, domain.LongRecord{
				CountryName: record.CountryName,
				CountryCode: record.CountryCode,
				Year:        year,
				Value:       value,
			})
		}
	}

	return long, nil
}

// FilterSeries restricts a long table to the given country set and year
// window, preserving table order. Unknown codes simply match nothing; an
// empty selection yields an empty slice, never an error.
func FilterSeries(long []domain.LongRecord, filter domain.SeriesFilter) []domain.LongRecord {
	selected := make(map[string]bool, len(filter.CountryCodes))
	for _, code := range filter.CountryCodes {
		selected[code] = true
	}

	filtered := make([]domain.LongRecord, 0)
	for _, record := range long {
		if !selected[record.CountryCode] {
			continue
		}
		if record.Year < filter.FromYear || record.Year > filter.ToYear {
			continue
		}
		filtered = append(filtered, record)
	}
	return filtered
}
