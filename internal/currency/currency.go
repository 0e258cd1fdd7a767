// Package currency renders base-currency amounts for display in the
// shopper's chosen currency.
package currency

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"steeze/internal/domain"
)

// Base is the currency every price is stored in.
const Base = "NGN"

// Supported lists the currencies a shopper may pick.
var Supported = []string{"NGN", "USD", "GBP"}

var symbols = map[string]string{
	"NGN": "₦",
	"USD": "$",
	"GBP": "£",
}

// Rates maps a currency code to how many base units one unit of it costs.
type Rates map[string]float64

// RatesFrom reads the live exchange rates out of site settings.
func RatesFrom(s domain.Settings) Rates {
	return Rates{
		"USD": s.Float(domain.SettingRateUSD),
		"GBP": s.Float(domain.SettingRateGBP),
	}
}

var printer = message.NewPrinter(language.English)

// Format converts amount (in base currency, no minor-unit scaling) to code
// and renders it with grouping. The base currency has no decimals, every
// other currency has two. NaN and infinities render as zero.
func Format(amount float64, code string, rates Rates) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = Base
	}

	d := decimal.NewFromFloat(amount)
	places := int32(2)
	if code == Base {
		places = 0
	} else if r := rates[code]; r > 0 && !math.IsInf(r, 0) {
		d = d.Div(decimal.NewFromFloat(r))
	}
	d = d.Round(places)

	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	f, _ := d.Float64()
	digits := printer.Sprint(number.Decimal(f, number.Scale(int(places))))

	sym, ok := symbols[code]
	if !ok {
		sym = code + " "
	}
	return sign + sym + digits
}

// FormatAmount is Format for a stored amount.
func FormatAmount(a domain.Amount, code string, rates Rates) string {
	return Format(float64(a), code, rates)
}

// FormatString parses raw text first; unparseable input renders as zero.
func FormatString(raw, code string, rates Rates) string {
	return FormatAmount(domain.ParseAmount(raw), code, rates)
}

// Normalize returns a supported code, defaulting to Base.
func Normalize(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, c := range Supported {
		if c == code {
			return c
		}
	}
	return Base
}
