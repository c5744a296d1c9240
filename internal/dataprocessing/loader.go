package dataprocessing

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gdpdash/pkg/contracts/domain"
)

// Well-known column labels of the World Bank GDP export.
const (
	ColumnCountryName = "Country Name"
	ColumnCountryCode = "Country Code"
)

func yearColumn(year int) string {
	return strconv.Itoa(year)
}

// LoaderConfig describes the on-disk shape of the source file: a delimited
// table whose header sits below a fixed number of metadata rows, with a
// sentinel token for unavailable figures.
type LoaderConfig struct {
	Path       string
	SkipRows   int
	NASentinel string
	Years      domain.YearRange
}

// Loader reads the wide World Bank table from disk.
type Loader struct {
	cfg    LoaderConfig
	logger *slog.Logger
}

// NewLoader creates a loader for the given source file layout.
func NewLoader(cfg LoaderConfig, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "loader")),
	}
}

// Load reads and parses the source file into wide records.
// A required column (country name, country code, or any year inside the
// configured range) missing from the header is a SchemaError. Missing values
// inside rows are not errors; the NA sentinel and empty cells become nil.
func (l *Loader) Load() ([]domain.WideRecord, domain.YearRange, error) {
	file, err := os.Open(l.cfg.Path)
	if err != nil {
		return nil, domain.YearRange{}, fmt.Errorf("open source file: %w", err)
	}
	defer file.Close()

	records, err := l.parse(file)
	if err != nil {
		return nil, domain.YearRange{}, err
	}

	l.logger.Info("loaded GDP source file",
		slog.String("path", l.cfg.Path),
		slog.Int("countries", len(records)),
		slog.Int("min_year", l.cfg.Years.Min),
		slog.Int("max_year", l.cfg.Years.Max))

	return records, l.cfg.Years, nil
}

func (l *Loader) parse(r io.Reader) ([]domain.WideRecord, error) {
	buffered := bufio.NewReader(r)

	// The World Bank export carries a few physical lines of file metadata
	// (including a blank line) before the actual header row. Skip them by
	// line, not by CSV record, since encoding/csv swallows blank lines.
	for i := 0; i < l.cfg.SkipRows; i++ {
		if _, err := buffered.ReadString('\n'); err != nil {
			return nil, fmt.Errorf("skip metadata row %d: %w", i+1, err)
		}
	}

	reader := csv.NewReader(buffered)
	reader.FieldsPerRecord = -1 // trailing rows can be ragged

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header row: %w", err)
	}

	columns, err := l.mapColumns(header)
	if err != nil {
		return nil, err
	}

	var records []domain.WideRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read data row: %w", err)
		}

		record, ok := l.parseRow(row, columns)
		if !ok {
			continue
		}
		records = append(records, record)
	}

	return records, nil
}

// columnMap holds the positions of the columns we consume. Year columns are
// keyed by their normalized integer year.
type columnMap struct {
	name  int
	code  int
	years map[int]int
}

// mapColumns locates the required columns by header label, the same way the
// header may shuffle between export revisions. Year labels are normalized to
// integers regardless of their source representation ("2020", "2020.0", or
// padded with whitespace); non-year columns such as Indicator Name are
// ignored.
func (l *Loader) mapColumns(header []string) (columnMap, error) {
	columns := columnMap{name: -1, code: -1, years: make(map[int]int)}

	for i, label := range header {
		label = strings.TrimSpace(strings.TrimPrefix(label, "\ufeff"))
		switch label {
		case ColumnCountryName:
			columns.name = i
		case ColumnCountryCode:
			columns.code = i
		default:
			year, ok := parseYearLabel(label)
			if ok && l.cfg.Years.Contains(year) {
				columns.years[year] = i
			}
		}
	}

	if columns.name == -1 {
		return columnMap{}, NewSchemaError(ColumnCountryName)
	}
	if columns.code == -1 {
		return columnMap{}, NewSchemaError(ColumnCountryCode)
	}
	for year := l.cfg.Years.Min; year <= l.cfg.Years.Max; year++ {
		if _, ok := columns.years[year]; !ok {
			return columnMap{}, NewSchemaError(yearColumn(year))
		}
	}

	return columns, nil
}

// parseRow extracts one wide record. Rows too short to carry the identifying
// columns, or with an empty country code, are skipped (trailing totals and
// blank lines in the export).
func (l *Loader) parseRow(row []string, columns columnMap) (domain.WideRecord, bool) {
	if columns.name >= len(row) || columns.code >= len(row) {
		return domain.WideRecord{}, false
	}

	name := strings.TrimSpace(row[columns.name])
	code := strings.TrimSpace(row[columns.code])
	if code == "" {
		return domain.WideRecord{}, false
	}

	values := make(map[int]*float64, len(columns.years))
	for year, idx := range columns.years {
		values[year] = l.parseValue(row, idx)
	}

	return domain.WideRecord{
		CountryName: name,
		CountryCode: code,
		ValueByYear: values,
	}, true
}

// parseValue coerces one cell to a value pointer. The NA sentinel, empty
// cells, and unparseable tokens all map to nil, never to zero.
func (l *Loader) parseValue(row []string, idx int) *float64 {
	if idx >= len(row) {
		return nil
	}
	cell := strings.TrimSpace(row[idx])
	if cell == "" || cell == l.cfg.NASentinel {
		return nil
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64)
	if err != nil {
		return nil
	}
	return &value
}

// parseYearLabel normalizes a header label to an integer year. Labels like
// "2020.0" show up when the export round-trips through spreadsheet tools.
func parseYearLabel(label string) (int, bool) {
	if year, err := strconv.Atoi(label); err == nil {
		return year, true
	}
	f, err := strconv.ParseFloat(label, 64)
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}
