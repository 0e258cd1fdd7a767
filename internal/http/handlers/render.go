package handlers

import (
	"html/template"

	"github.com/gofiber/fiber/v2"

	"steeze/internal/currency"
	"steeze/internal/domain"
	"steeze/internal/services"
	"steeze/internal/theme"
)

// Money formats amounts for the currency the shopper picked.
type Money struct {
	Code  string
	Rates currency.Rates
}

func (m Money) Format(a domain.Amount) string { return currency.FormatAmount(a, m.Code, m.Rates) }

// Base always formats in the store currency (admin screens, receipts).
func (m Money) Base(a domain.Amount) string { return currency.FormatAmount(a, currency.Base, m.Rates) }

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	st := stateOf(c)
	settings := settingsOf(c)
	data["State"] = st
	data["Settings"] = settings
	if st != nil {
		data["Customer"] = st.Customer
		data["IsAdmin"] = st.IsAdmin
		data["CartCount"] = st.CartCount()
	}
	code := currency.Base
	if st != nil {
		code = st.Currency
	}
	data["Money"] = Money{Code: code, Rates: currency.RatesFrom(settings)}
	data["Currencies"] = currency.Supported
	data["ThemeCSS"] = theme.Style(settings.String(domain.SettingTheme), settings.String(domain.SettingFont))
	data["Path"] = c.Path()
	if f := takeFlash(c); f != nil {
		data["Flash"] = f
	}

	// Pick up the token the CSRF middleware put into Locals
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		tok = c.Cookies("csrf_")
	}
	data["CSRFToken"] = tok
	return c.Render(tmpl, data)
}

// notFound renders the friendly error page with status.
func notFound(c *fiber.Ctx, status int, msg string) error {
	return render(c.Status(status), "notfound", fiber.Map{"Message": msg})
}

// Funcs are the helpers registered on the template engine.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"add":   func(a, b int) int { return a + b },
		"stars": stars,
		"avail": func(p domain.Product) string { return string(services.StockLevel(p)) },
		"paid":  func(s domain.OrderStatus) bool { return s.IsPaid() },
		"title": services.InvoiceTitle,
		"dict":  dict,
	}
}

// dict builds a map from alternating keys and values, for passing several
// values into a sub-template.
func dict(pairs ...any) map[string]any {
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		if k, ok := pairs[i].(string); ok {
			m[k] = pairs[i+1]
		}
	}
	return m
}

func stars(n domain.Int) string {
	out := ""
	for i := 1; i <= 5; i++ {
		if i <= int(n) {
			out += "★"
		} else {
			out += "☆"
		}
	}
	return out
}
