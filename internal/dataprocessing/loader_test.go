package dataprocessing

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gdpdash/pkg/contracts/domain"
)

const testCSV = `"Data Source","World Development Indicators",
"Last Updated Date","2025-01-28",

"Country Name","Country Code","Indicator Name","Indicator Code","2020","2021","2022"
"Germany","DEU","GDP (current US$)","NY.GDP.MKTP.CD","3889668973954","4278504514091","4082469176823"
"France","FRA","GDP (current US$)","NY.GDP.MKTP.CD","..","2957879759264","not reported"
"Not classified","","GDP (current US$)","NY.GDP.MKTP.CD","..","..",".."
`

func writeTestCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "world_gdp.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func testLoader(t *testing.T, path string, years domain.YearRange) *Loader {
	t.Helper()
	return NewLoader(LoaderConfig{
		Path:       path,
		SkipRows:   3,
		NASentinel: "..",
		Years:      years,
	}, slog.New(slog.NewTextHandler(os.Stdout, nil)))
}

func TestLoader_Load(t *testing.T) {
	path := writeTestCSV(t, testCSV)
	loader := testLoader(t, path, domain.YearRange{Min: 2020, Max: 2022})

	wide, years, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, domain.YearRange{Min: 2020, Max: 2022}, years)

	// The row with an empty country code is dropped.
	require.Len(t, wide, 2)

	deu := wide[0]
	assert.Equal(t, "Germany", deu.CountryName)
	assert.Equal(t, "DEU", deu.CountryCode)
	require.NotNil(t, deu.ValueByYear[2020])
	assert.Equal(t, 3889668973954.0, *deu.ValueByYear[2020])

	fra := wide[1]
	assert.Nil(t, fra.ValueByYear[2020], "NA sentinel must become nil")
	require.NotNil(t, fra.ValueByYear[2021])
	assert.Nil(t, fra.ValueByYear[2022], "unparseable cell must become nil, not zero")
}

func TestLoader_YearWindowNarrowerThanFile(t *testing.T) {
	path := writeTestCSV(t, testCSV)
	loader := testLoader(t, path, domain.YearRange{Min: 2021, Max: 2022})

	wide, _, err := loader.Load()
	require.NoError(t, err)
	require.NotEmpty(t, wide)

	_, has2020 := wide[0].ValueByYear[2020]
	assert.False(t, has2020, "years outside the configured range are ignored")
	assert.Len(t, wide[0].ValueByYear, 2)
}

func TestLoader_MissingYearColumn(t *testing.T) {
	path := writeTestCSV(t, testCSV)
	loader := testLoader(t, path, domain.YearRange{Min: 2020, Max: 2023})

	_, _, err := loader.Load()
	require.Error(t, err)

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "2023", schemaErr.Column)
}

func TestLoader_MissingRequiredColumns(t *testing.T) {
	tests := []struct {
		name       string
		csv        string
		wantColumn string
	}{
		{
			name: "no country code column",
			csv: `meta
meta
meta
"Country Name","2020"
"Germany","1"
`,
			wantColumn: ColumnCountryCode,
		},
		{
			name: "no country name column",
			csv: `meta
meta
meta
"Country Code","2020"
"DEU","1"
`,
			wantColumn: ColumnCountryName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTestCSV(t, tt.csv)
			loader := testLoader(t, path, domain.YearRange{Min: 2020, Max: 2020})

			_, _, err := loader.Load()
			require.Error(t, err)

			var schemaErr *SchemaError
			require.ErrorAs(t, err, &schemaErr)
			assert.Equal(t, tt.wantColumn, schemaErr.Column)
		})
	}
}

func TestLoader_FileNotFound(t *testing.T) {
	loader := testLoader(t, filepath.Join(t.TempDir(), "missing.csv"), domain.YearRange{Min: 2020, Max: 2020})
	_, _, err := loader.Load()
	require.Error(t, err)
}

func TestParseYearLabel(t *testing.T) {
	tests := []struct {
		label string
		want  int
		ok    bool
	}{
		{"2020", 2020, true},
		{"2020.0", 2020, true},
		{"1960", 1960, true},
		{"Indicator Name", 0, false},
		{"2020.5", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := parseYearLabel(tt.label)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
