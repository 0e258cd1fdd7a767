package currency_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"steeze/internal/currency"
	"steeze/internal/domain"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		code   string
		rates  currency.Rates
		want   string
	}{
		{"zero base", 0, "NGN", currency.Rates{}, "₦0"},
		{"base grouping", 10000, "NGN", nil, "₦10,000"},
		{"empty code is base", 2500, "", nil, "₦2,500"},
		{"usd one unit", 1600, "USD", currency.Rates{"USD": 1600}, "$1.00"},
		{"gbp rounding", 5000, "GBP", currency.Rates{"GBP": 2000}, "£2.50"},
		{"usd thirds", 1000, "USD", currency.Rates{"USD": 3}, "$333.33"},
		{"missing rate keeps amount", 1500, "USD", currency.Rates{}, "$1,500.00"},
		{"zero rate ignored", 1500, "USD", currency.Rates{"USD": 0}, "$1,500.00"},
		{"lowercase code", 1600, "usd", currency.Rates{"USD": 1600}, "$1.00"},
		{"nan is zero", math.NaN(), "NGN", nil, "₦0"},
		{"negative", -2500, "NGN", nil, "-₦2,500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, currency.Format(tt.amount, tt.code, tt.rates))
		})
	}
}

func TestFormatString_InvalidIsZero(t *testing.T) {
	assert.Equal(t, "₦0", currency.FormatString("abc", "NGN", nil))
	assert.Equal(t, "₦1,200", currency.FormatString("1,200", "NGN", nil))
}

func TestRatesFromSettings(t *testing.T) {
	s := domain.Settings{"rateUSD": "1600", "rateGBP": 2000.0}
	r := currency.RatesFrom(s)
	assert.Equal(t, 1600.0, r["USD"])
	assert.Equal(t, 2000.0, r["GBP"])
	assert.Equal(t, "$1.00", currency.Format(1600, "USD", r))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "GBP", currency.Normalize(" gbp "))
	assert.Equal(t, "NGN", currency.Normalize("EUR"))
}
