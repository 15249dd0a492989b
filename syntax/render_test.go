package syntax

import (
	"regexp"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

func init() {
	// Force ANSI output in tests (lipgloss disables colors without a TTY).
	lipgloss.SetColorProfile(termenv.ANSI256)
}

func TestRender_PreservesText(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"kotlin snippet", "fun main() { val x = 1 // c\n }"},
		{"multiline", "package demo\n\nfun main() {\n}\n"},
		{"plain text", "no markers here"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := Scan(tt.input, DefaultKotlinRules())
			assert.Equal(t, tt.input, stripANSI(Render(st)))
		})
	}
}

func TestRender_StylesKeywords(t *testing.T) {
	st := Scan("fun x", DefaultKotlinRules())
	out := Render(st)
	assert.True(t, ansiRegex.MatchString(out), "expected ANSI codes in %q", out)
	assert.Equal(t, "fun x", stripANSI(out))
}

func TestRender_OverlaysKeepText(t *testing.T) {
	text := "one\ntwo\nthree"
	st := Scan(text, nil)
	st = SearchOverlay(st, "two", false, false)
	st = ErrorOverlay(st, map[int]struct{}{2: {}})
	assert.Equal(t, text, stripANSI(Render(st)))
}
