package money

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when a value cannot be used as a price.
var ErrInvalidAmount = errors.New("invalid amount")

// currency markers the catalog data is known to carry in front of prices
var symbols = []string{"₹", "$", "Rs.", "INR"}

// Parse turns a raw price into a decimal. Numbers, numeric strings and strings
// prefixed with a currency symbol are accepted; anything else, NaN, infinities
// and negative values are rejected.
func Parse(v any) (decimal.Decimal, error) {
	switch t := v.(type) {
	case decimal.Decimal:
		return nonNegative(t)
	case int:
		return nonNegative(decimal.NewFromInt(int64(t)))
	case int64:
		return nonNegative(decimal.NewFromInt(t))
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidAmount, t)
		}
		return nonNegative(decimal.NewFromFloat(t))
	case string:
		s := strings.TrimSpace(t)
		for _, sym := range symbols {
			s = strings.TrimSpace(strings.TrimPrefix(s, sym))
		}
		s = strings.ReplaceAll(s, ",", "")
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, t)
		}
		return nonNegative(d)
	default:
		return decimal.Zero, fmt.Errorf("%w: unsupported type %T", ErrInvalidAmount, v)
	}
}

func nonNegative(d decimal.Decimal) (decimal.Decimal, error) {
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s is negative", ErrInvalidAmount, d.String())
	}
	return d, nil
}

// Format renders an amount with exactly two decimal places.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatFloat is Format for raw floats; NaN and infinities render as "0.00".
func FormatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "0.00"
	}
	return Format(decimal.NewFromFloat(f))
}
