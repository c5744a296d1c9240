package exporter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// billion is the display unit for GDP values
const billion = 1e9

// FormatBillions renders a GDP value in whole billions with thousands
// grouping, e.g. "3,890B". Absent values render as "n/a".
func FormatBillions(value *float64) string {
	if value == nil {
		return "n/a"
	}
	rounded := int64(math.Round(*value / billion))
	return groupThousands(rounded) + "B"
}

// FormatGrowth renders a growth ratio with two decimals, e.g. "1.17x".
// Absent ratios render as "n/a".
func FormatGrowth(ratio *float64) string {
	if ratio == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2fx", *ratio)
}

// formatValue renders a raw value for tabular export, empty when absent
func formatValue(value *float64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatFloat(*value, 'f', -1, 64)
}

// groupThousands inserts comma separators into an integer's digits
func groupThousands(n int64) string {
	digits := strconv.FormatInt(n, 10)

	negative := strings.HasPrefix(digits, "-")
	if negative {
		digits = digits[1:]
	}

	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}

	if negative {
		return "-" + b.String()
	}
	return b.String()
}
