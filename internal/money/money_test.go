package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1234.5", "$1,234.50"},
		{"-3", "-$3.00"},
		{"0", "$0.00"},
		{"0.005", "$0.01"},
		{"-0.005", "-$0.01"},
		{"-0.004", "$0.00"},
		{"999", "$999.00"},
		{"1000", "$1,000.00"},
		{"1234567.891", "$1,234,567.89"},
		{"100000", "$100,000.00"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(d(tt.in)))
		})
	}
}

func TestFormatCompact(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"999", "$999.00"},
		{"1500", "$1.5k"},
		{"999500", "$1M"},
		{"1000", "$1k"},
		{"12345", "$12.3k"},
		{"123456", "$123k"},
		{"3400000", "$3.4M"},
		{"2000000000", "$2B"},
		{"-1500", "-$1.5k"},
		{"-12", "-$12.00"},
		{"5000000000000000", "$5000T"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCompact(d(tt.in)))
		})
	}
}

func TestParse(t *testing.T) {
	got, err := Parse(" $1,234.5 ")
	require.NoError(t, err)
	assert.True(t, got.Equal(d("1234.5")))

	got, err = Parse("10.00")
	require.NoError(t, err)
	assert.Equal(t, "10.00", got.StringFixed(2))

	_, err = Parse("1.234")
	assert.ErrorIs(t, err, ErrTooManyDecimals)

	for _, bad := range []string{"", "abc", "$", "1.2.3"} {
		_, err := Parse(bad)
		assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", bad)
	}
}

func TestArithmetic(t *testing.T) {
	assert.True(t, LineTotal(3, d("19.99")).Equal(d("59.97")))
	assert.True(t, Sum().IsZero())
	assert.True(t, Sum(d("0.1"), d("0.2")).Equal(d("0.3")), "decimal sums must be exact")
	assert.Equal(t, "33.33", Percent(d("1"), d("3")).StringFixed(2))
	assert.Equal(t, "66.67", Percent(d("2"), d("3")).StringFixed(2))
	assert.True(t, Percent(d("5"), decimal.Zero).IsZero())
}
