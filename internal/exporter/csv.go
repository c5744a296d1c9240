package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"gdpdash/pkg/contracts/domain"
)

// CSVExporter streams dashboard tables as CSV
type CSVExporter struct {
	// BOMPrefix adds a UTF-8 BOM so Excel recognizes the encoding
	BOMPrefix bool
}

// NewCSVExporter creates a CSV exporter with Excel-friendly defaults
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{BOMPrefix: true}
}

// WriteSeries writes the long-format series table
func (e *CSVExporter) WriteSeries(w io.Writer, records []domain.LongRecord) error {
	if err := e.writeBOM(w); err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Country Name", "Country Code", "Year", "GDP"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, record := range records {
		row := []string{
			record.CountryName,
			record.CountryCode,
			strconv.Itoa(record.Year),
			formatValue(record.Value),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}

	return writer.Error()
}

// WriteMetrics writes the growth metrics table. Raw values travel next to
// their display renditions so the file works for both analysis and reading.
func (e *CSVExporter) WriteMetrics(w io.Writer, results []domain.MetricResult, startYear, endYear int) error {
	if err := e.writeBOM(w); err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{
		"Country Code",
		fmt.Sprintf("GDP %d", startYear),
		fmt.Sprintf("GDP %d", endYear),
		"Growth",
		fmt.Sprintf("GDP %d Display", endYear),
		"Growth Display",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, result := range results {
		row := []string{
			result.CountryCode,
			formatValue(result.StartValue),
			formatValue(result.EndValue),
			formatValue(result.GrowthRatio),
			FormatBillions(result.EndValue),
			FormatGrowth(result.GrowthRatio),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}

	return writer.Error()
}

func (e *CSVExporter) writeBOM(w io.Writer) error {
	if !e.BOMPrefix {
		return nil
	}
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}
	return nil
}
