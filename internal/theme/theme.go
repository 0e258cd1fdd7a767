// Package theme maps the admin-selected theme and font to CSS custom properties.
package theme

import (
	"html/template"
	"sort"
	"strings"
)

const (
	DefaultTheme = "classic"
	DefaultFont  = "modern"
)

var themes = map[string]map[string]string{
	"classic": {
		"--color-bg":      "#ffffff",
		"--color-surface": "#f6f6f6",
		"--color-text":    "#111111",
		"--color-muted":   "#6b6b6b",
		"--color-primary": "#111111",
		"--color-accent":  "#c8a24a",
	},
	"midnight": {
		"--color-bg":      "#0d0f14",
		"--color-surface": "#171a22",
		"--color-text":    "#f1f1f1",
		"--color-muted":   "#9aa0ab",
		"--color-primary": "#f1f1f1",
		"--color-accent":  "#7c5cff",
	},
	"sand": {
		"--color-bg":      "#faf5ec",
		"--color-surface": "#efe6d6",
		"--color-text":    "#3b2f22",
		"--color-muted":   "#8a7a66",
		"--color-primary": "#3b2f22",
		"--color-accent":  "#c06b3e",
	},
	"forest": {
		"--color-bg":      "#f3f6f1",
		"--color-surface": "#e2eadd",
		"--color-text":    "#1d2b1f",
		"--color-muted":   "#5d6f5f",
		"--color-primary": "#1f4d2b",
		"--color-accent":  "#d4a017",
	},
}

var fonts = map[string]map[string]string{
	"modern": {
		"--font-body":    "'Inter', system-ui, sans-serif",
		"--font-heading": "'Inter', system-ui, sans-serif",
	},
	"serif": {
		"--font-body":    "'Georgia', 'Times New Roman', serif",
		"--font-heading": "'Playfair Display', Georgia, serif",
	},
	"mono": {
		"--font-body":    "'JetBrains Mono', ui-monospace, monospace",
		"--font-heading": "'JetBrains Mono', ui-monospace, monospace",
	},
}

// Themes and Fonts return the known keys, sorted, for the settings form.
func Themes() []string { return keys(themes) }
func Fonts() []string  { return keys(fonts) }

// Vars resolves the custom properties for a theme/font pair. Unknown keys
// fall back to the defaults.
func Vars(themeKey, fontKey string) map[string]string {
	t, ok := themes[strings.ToLower(strings.TrimSpace(themeKey))]
	if !ok {
		t = themes[DefaultTheme]
	}
	f, ok := fonts[strings.ToLower(strings.TrimSpace(fontKey))]
	if !ok {
		f = fonts[DefaultFont]
	}
	out := make(map[string]string, len(t)+len(f))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Style renders Vars as a :root rule, properties sorted for stable output.
func Style(themeKey, fontKey string) template.CSS {
	vars := Vars(themeKey, fontKey)
	var b strings.Builder
	b.WriteString(":root{")
	for _, k := range keys(vars) {
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(vars[k])
		b.WriteByte(';')
	}
	b.WriteString("}")
	return template.CSS(b.String())
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func ValidTheme(key string) bool {
	_, ok := themes[key]
	return ok
}

func ValidFont(key string) bool {
	_, ok := fonts[key]
	return ok
}
