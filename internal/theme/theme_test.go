package theme_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"steeze/internal/theme"
)

func TestVarsFallsBackToDefaults(t *testing.T) {
	got := theme.Vars("no-such-theme", "")
	want := theme.Vars(theme.DefaultTheme, theme.DefaultFont)
	assert.Equal(t, want, got)
}

func TestVarsMergesThemeAndFont(t *testing.T) {
	v := theme.Vars("Midnight", "mono")
	assert.Equal(t, "#0d0f14", v["--color-bg"])
	assert.Contains(t, v["--font-body"], "JetBrains Mono")
}

func TestStyleIsSortedAndStable(t *testing.T) {
	s := string(theme.Style("sand", "serif"))
	assert.True(t, strings.HasPrefix(s, ":root{--color-accent:"))
	assert.Equal(t, s, string(theme.Style("sand", "serif")))
	assert.True(t, strings.HasSuffix(s, ";}"))
}
