// Package money provides the numeric helpers used throughout the accounting
// client: half-up rounding, display formatting with Thai locale grouping,
// input parsing, and the debit/credit balance check.
package money

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Decimal places used for calculation and display. Changing these changes
// the whole system.
const (
	DecimalPlaces        = 2
	DisplayDecimalPlaces = 2

	// Epsilon is the tolerance accepted when comparing two amounts for
	// balance (debit = credit).
	Epsilon = 0.01
)

var printer = message.NewPrinter(language.Thai)

// Round rounds a value to the given number of decimal places using half-up
// rounding. Non-numeric input (NaN, Inf) rounds to 0.
func Round(value float64, decimals int32) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	f, _ := decimal.NewFromFloat(value).Round(decimals).Float64()
	return f
}

// ToAPINumber normalizes a value for transmission to the backend: rounded
// to DecimalPlaces, with defaultValue substituted for non-numeric input.
func ToAPINumber(value, defaultValue float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return defaultValue
	}
	return Round(value, DecimalPlaces)
}

// FormatDisplay renders a value with thousands separators and a fixed
// number of decimal places, e.g. "1,234.56". Non-numeric input renders as
// "0.00".
func FormatDisplay(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		value = 0
	}
	return printer.Sprint(number.Decimal(Round(value, int32(decimals)),
		number.Scale(decimals)))
}

// FormatInputDisplay is FormatDisplay for input fields: exact zero renders
// as the empty string so unset amounts show blank rather than "0.00".
func FormatInputDisplay(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) || value == 0 {
		return ""
	}
	return FormatDisplay(value, decimals)
}

// ParseInput parses a user-entered amount, stripping thousands separators.
// Empty or unparseable input yields defaultValue. The result is rounded to
// DecimalPlaces.
func ParseInput(value string, defaultValue float64) float64 {
	cleaned := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if cleaned == "" {
		return defaultValue
	}
	num, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(num) || math.IsInf(num, 0) {
		return defaultValue
	}
	return Round(num, DecimalPlaces)
}

// VatAmount computes VAT from a base amount and a percentage rate.
func VatAmount(base, rate float64) float64 {
	b := decimal.NewFromFloat(ToAPINumber(base, 0))
	r := decimal.NewFromFloat(ToAPINumber(rate, 0))
	f, _ := b.Mul(r).Div(decimal.NewFromInt(100)).Round(DecimalPlaces).Float64()
	return f
}

// WithholdingAmount computes withholding tax from a base amount and a
// percentage rate.
func WithholdingAmount(base, rate float64) float64 {
	return VatAmount(base, rate)
}

// IsBalanced reports whether two amounts are equal within Epsilon after
// rounding. This is the accounting debit/credit equality check.
func IsBalanced(a, b float64) bool {
	return IsBalancedEpsilon(a, b, Epsilon)
}

// IsBalancedEpsilon is IsBalanced with an explicit tolerance.
func IsBalancedEpsilon(a, b, epsilon float64) bool {
	da := decimal.NewFromFloat(ToAPINumber(a, 0))
	db := decimal.NewFromFloat(ToAPINumber(b, 0))
	return da.Sub(db).Abs().Cmp(decimal.NewFromFloat(epsilon)) <= 0
}
