package exporter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 { return &v }

func TestFormatBillions(t *testing.T) {
	tests := []struct {
		name  string
		value *float64
		want  string
	}{
		{name: "germany sized economy", value: floatPtr(3889668973954), want: "3,890B"},
		{name: "exact billions", value: floatPtr(1500000000000), want: "1,500B"},
		{name: "sub billion rounds down", value: floatPtr(400000000), want: "0B"},
		{name: "rounds half up", value: floatPtr(1500000000), want: "2B"},
		{name: "negative rounds away from zero", value: floatPtr(-1500000000), want: "-2B"},
		{name: "negative near zero", value: floatPtr(-400000000), want: "0B"},
		{name: "absent value", value: nil, want: "n/a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBillions(tt.value))
		})
	}
}

func TestFormatGrowth(t *testing.T) {
	tests := []struct {
		name  string
		ratio *float64
		want  string
	}{
		{name: "two decimals", ratio: floatPtr(1.16666), want: "1.17x"},
		{name: "exact multiple", ratio: floatPtr(2.5), want: "2.50x"},
		{name: "flat", ratio: floatPtr(1), want: "1.00x"},
		{name: "absent ratio", ratio: nil, want: "n/a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatGrowth(tt.ratio))
		})
	}
}

func TestGroupThousands(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-1234567, "-1,234,567"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, groupThousands(tt.in))
		})
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", formatValue(nil), "absent values export as empty cells")
	assert.Equal(t, "2.5", formatValue(floatPtr(2.5)))
}
