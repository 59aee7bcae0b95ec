package money

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		decimals int32
		want     float64
	}{
		{name: "no rounding needed", value: 1.23, decimals: 2, want: 1.23},
		{name: "half rounds up", value: 1.005, decimals: 2, want: 1.01},
		{name: "half rounds up at third decimal", value: 2.345, decimals: 2, want: 2.35},
		{name: "rounds down below half", value: 1.004, decimals: 2, want: 1.0},
		{name: "negative half rounds away from zero", value: -1.005, decimals: 2, want: -1.01},
		{name: "zero decimals", value: 2.5, decimals: 0, want: 3},
		{name: "NaN rounds to zero", value: math.NaN(), decimals: 2, want: 0},
		{name: "Inf rounds to zero", value: math.Inf(1), decimals: 2, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Round(tt.value, tt.decimals), 1e-9)
		})
	}
}

func TestToAPINumber(t *testing.T) {
	assert.InDelta(t, 1.01, ToAPINumber(1.005, 0), 1e-9)
	assert.InDelta(t, 5.0, ToAPINumber(math.NaN(), 5.0), 1e-9)
	assert.InDelta(t, 0.0, ToAPINumber(math.Inf(-1), 0), 1e-9)
}

func TestFormatDisplay(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		decimals int
		want     string
	}{
		{name: "grouped thousands", value: 1234.56, decimals: 2, want: "1,234.56"},
		{name: "zero", value: 0, decimals: 2, want: "0.00"},
		{name: "NaN", value: math.NaN(), decimals: 2, want: "0.00"},
		{name: "pads decimals", value: 7.5, decimals: 2, want: "7.50"},
		{name: "millions", value: 1234567.891, decimals: 2, want: "1,234,567.89"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDisplay(tt.value, tt.decimals))
		})
	}
}

func TestFormatInputDisplay(t *testing.T) {
	assert.Equal(t, "", FormatInputDisplay(0, 2))
	assert.Equal(t, "", FormatInputDisplay(math.NaN(), 2))
	assert.Equal(t, "1,234.50", FormatInputDisplay(1234.5, 2))
}

func TestParseInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		def   float64
		want  float64
	}{
		{name: "plain", input: "123.45", def: 0, want: 123.45},
		{name: "thousands separators stripped", input: "1,234.56", def: 0, want: 1234.56},
		{name: "empty uses default", input: "", def: 9, want: 9},
		{name: "whitespace uses default", input: "   ", def: 9, want: 9},
		{name: "garbage uses default", input: "abc", def: 7, want: 7},
		{name: "rounds to two places", input: "1.005", def: 0, want: 1.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParseInput(tt.input, tt.def), 1e-9)
		})
	}
}

func TestVatAmount(t *testing.T) {
	assert.InDelta(t, 7.0, VatAmount(100, 7), 1e-9)
	assert.InDelta(t, 8.62, VatAmount(123.15, 7), 1e-9)
	assert.InDelta(t, 0.0, VatAmount(math.NaN(), 7), 1e-9)
}

func TestWithholdingAmount(t *testing.T) {
	assert.InDelta(t, 3.0, WithholdingAmount(100, 3), 1e-9)
	assert.InDelta(t, 30.0, WithholdingAmount(1000, 3), 1e-9)
}

func TestIsBalanced(t *testing.T) {
	tests := []struct {
		name string
		a    float64
		b    float64
		want bool
	}{
		{name: "equal", a: 100.00, b: 100.00, want: true},
		{name: "within epsilon after rounding", a: 100.00, b: 100.004, want: true},
		{name: "exactly epsilon apart", a: 100.00, b: 100.01, want: true},
		{name: "outside epsilon", a: 100.00, b: 100.02, want: false},
		{name: "negative amounts", a: -50.005, b: -50.01, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBalanced(tt.a, tt.b))
		})
	}
}

func TestIsBalancedEpsilon(t *testing.T) {
	assert.True(t, IsBalancedEpsilon(10, 10.4, 0.5))
	assert.False(t, IsBalancedEpsilon(10, 10.6, 0.5))
}
