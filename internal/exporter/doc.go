// Package exporter provides CSV and XLSX export functionality for the GDP
// dashboard, plus the display formatting used by the API responses.
//
// CSVExporter streams the long-format series or the growth metrics table to
// an io.Writer, prefixed with a UTF-8 BOM for Excel compatibility.
// XLSXExporter produces the same tables as a workbook.
package exporter
