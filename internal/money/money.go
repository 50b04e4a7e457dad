// Package money formats and parses currency amounts held as decimals.
// Rounding is half away from zero, which is what decimal.Round does.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount   = errors.New("invalid_amount")
	ErrTooManyDecimals = errors.New("too_many_decimals")
)

var compactTiers = []string{"", "k", "M", "B", "T"}

var thousand = decimal.NewFromInt(1000)

// Format renders d as $1,234.50 (negative: -$3.00).
func Format(d decimal.Decimal) string {
	r := d.Round(2)
	sign := ""
	if r.IsNegative() {
		sign = "-"
		r = r.Neg()
	}
	whole, frac, _ := strings.Cut(r.StringFixed(2), ".")
	return sign + "$" + group(whole) + "." + frac
}

// FormatCompact renders large amounts with a k/M/B/T suffix for dashboards.
// Amounts below 1000 use Format. The scaled value keeps one decimal below 100
// and none above it; rounding that reaches 1000 moves to the next tier.
// That is three significant digits, so 123456 prints $123k rather than
// $123.5k, and 999500 rounds up to $1M instead of $999.5k.
func FormatCompact(d decimal.Decimal) string {
	sign := ""
	v := d
	if v.IsNegative() {
		sign = "-"
		v = v.Neg()
	}
	if v.LessThan(thousand) {
		return Format(d)
	}
	tier := 0
	for v.GreaterThanOrEqual(thousand) && tier < len(compactTiers)-1 {
		v = v.Div(thousand)
		tier++
	}
	r := roundCompact(v)
	if r.GreaterThanOrEqual(thousand) && tier < len(compactTiers)-1 {
		tier++
		r = roundCompact(r.Div(thousand))
	}
	s := r.StringFixed(1)
	s = strings.TrimSuffix(s, ".0")
	return sign + "$" + s + compactTiers[tier]
}

func roundCompact(v decimal.Decimal) decimal.Decimal {
	if v.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return v.Round(0)
	}
	return v.Round(1)
}

// Parse reads user input such as "1,234.5" or "$99". It rejects more than two
// decimal places instead of rounding them away.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.Equal(d.Round(2)) {
		return decimal.Zero, ErrTooManyDecimals
	}
	return d, nil
}

// LineTotal is quantity times unit price.
func LineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// Sum adds values, returning zero for none.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Percent returns part/whole*100 rounded to two places, zero when whole is zero.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100)).Round(2)
}

func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
