package exporter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"gdpdash/pkg/contracts/domain"
)

const sheetName = "GDP"

// XLSXExporter produces dashboard tables as Excel workbooks
type XLSXExporter struct{}

// NewXLSXExporter creates a new XLSX exporter
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// WriteSeries writes the long-format series table as a workbook
func (e *XLSXExporter) WriteSeries(w io.Writer, records []domain.LongRecord) error {
	f, err := newWorkbook()
	if err != nil {
		return err
	}
	defer f.Close()

	if err := writeRow(f, 1, []interface{}{"Country Name", "Country Code", "Year", "GDP"}); err != nil {
		return err
	}

	for i, record := range records {
		row := []interface{}{record.CountryName, record.CountryCode, record.Year}
		if record.Value != nil {
			row = append(row, *record.Value)
		} else {
			row = append(row, nil)
		}
		if err := writeRow(f, i+2, row); err != nil {
			return err
		}
	}

	return f.Write(w)
}

// WriteMetrics writes the growth metrics table as a workbook
func (e *XLSXExporter) WriteMetrics(w io.Writer, results []domain.MetricResult, startYear, endYear int) error {
	f, err := newWorkbook()
	if err != nil {
		return err
	}
	defer f.Close()

	header := []interface{}{
		"Country Code",
		fmt.Sprintf("GDP %d", startYear),
		fmt.Sprintf("GDP %d", endYear),
		"Growth",
	}
	if err := writeRow(f, 1, header); err != nil {
		return err
	}

	for i, result := range results {
		row := []interface{}{
			result.CountryCode,
			cellValue(result.StartValue),
			cellValue(result.EndValue),
			cellValue(result.GrowthRatio),
		}
		if err := writeRow(f, i+2, row); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func newWorkbook() (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	return f, nil
}

func writeRow(f *excelize.File, row int, values []interface{}) error {
	cell := "A" + strconv.Itoa(row)
	if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

func cellValue(value *float64) interface{} {
	if value == nil {
		return nil
	}
	return *value
}
