package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Settings is the site-wide key/value bag edited from the admin panel.
type Settings map[string]any

// Well-known keys.
const (
	SettingTheme        = "active_theme"
	SettingFont         = "font_style"
	SettingRateUSD      = "rateUSD"
	SettingRateGBP      = "rateGBP"
	SettingHeroTitle    = "hero_title"
	SettingHeroSubtitle = "hero_subtitle"
	SettingAnnouncement = "announcement"
	SettingShowFeatured = "show_featured"
	SettingShowSale     = "show_sale"
	SettingShowReviews  = "show_reviews"
	SettingBankName     = "bank_name"
	SettingAccountName  = "account_name"
	SettingAccountNo    = "account_number"
)

// EditableSettings are the keys the admin settings form exposes, in display order.
var EditableSettings = []string{
	SettingTheme, SettingFont, SettingRateUSD, SettingRateGBP,
	SettingHeroTitle, SettingHeroSubtitle, SettingAnnouncement,
	SettingShowFeatured, SettingShowSale, SettingShowReviews,
	SettingBankName, SettingAccountName, SettingAccountNo,
}

func (s Settings) String(key string) string {
	v, ok := s[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// Bool treats "1", "true", "yes", "on" as true. Missing keys use def.
func (s Settings) Bool(key string, def bool) bool {
	if _, ok := s[key]; !ok {
		return def
	}
	switch strings.ToLower(s.String(key)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Float parses a numeric setting; missing or malformed values are zero.
func (s Settings) Float(key string) float64 {
	f, err := strconv.ParseFloat(s.String(key), 64)
	if err != nil {
		return 0
	}
	return f
}

type Settlement struct {
	BankName      string
	AccountName   string
	AccountNumber string
}

func (s Settings) Settlement() Settlement {
	return Settlement{
		BankName:      s.String(SettingBankName),
		AccountName:   s.String(SettingAccountName),
		AccountNumber: s.String(SettingAccountNo),
	}
}
