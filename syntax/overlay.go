package syntax

import (
	"sort"
	"strings"
	"unicode"

	"github.com/meysamhadeli/kotpad/syntax/models"
)

// SearchOverlay tags every non-overlapping match of query in the full text
// with the search-match overlay category. Matching is literal, optionally
// case-insensitive and optionally word-bounded. An empty or blank query is
// a no-op: the input is returned unchanged. The base classification is
// never disturbed.
func SearchOverlay(st models.StyledText, query string, caseSensitive, wholeWord bool) models.StyledText {
	if strings.TrimSpace(query) == "" {
		return st
	}

	haystack := []rune(st.Text)
	needle := []rune(query)
	if !caseSensitive {
		haystack = lowerRunes(haystack)
		needle = lowerRunes(needle)
	}

	var spans []models.Span
	for i := 0; i+len(needle) <= len(haystack); {
		if !matchAt(haystack, i, needle) {
			i++
			continue
		}
		if wholeWord && !wordBounded(haystack, i, i+len(needle)) {
			i++
			continue
		}
		spans = append(spans, models.Span{
			Start:    i,
			End:      i + len(needle),
			Category: models.CategorySearchMatch,
		})
		i += len(needle)
	}

	return st.WithOverlays(spans...)
}

// ErrorOverlay tags the full character span of each requested 1-based line
// with the error-line overlay category. Line boundaries are computed from
// the full text, not from prior spans. Out-of-range line numbers are
// silently ignored.
func ErrorOverlay(st models.StyledText, lines map[int]struct{}) models.StyledText {
	if len(lines) == 0 {
		return st
	}

	starts := lineStarts([]rune(st.Text))
	total := len(starts) - 1 // last entry is end-of-text

	wanted := make([]int, 0, len(lines))
	for ln := range lines {
		if ln >= 1 && ln <= total {
			wanted = append(wanted, ln)
		}
	}
	sort.Ints(wanted)

	var spans []models.Span
	for _, ln := range wanted {
		if starts[ln-1] == starts[ln] {
			continue // empty trailing line
		}
		spans = append(spans, models.Span{
			Start:    starts[ln-1],
			End:      starts[ln],
			Category: models.CategoryErrorLine,
		})
	}

	return st.WithOverlays(spans...)
}

// lineStarts returns the rune offset of each line start plus a final entry
// for end of text, so line n (1-based) spans [starts[n-1], starts[n]).
func lineStarts(src []rune) []int {
	starts := []int{0}
	for i, r := range src {
		if r == '\n' {
			starts = append(starts, i+1)
		}
	}
	return append(starts, len(src))
}

func wordBounded(src []rune, start, end int) bool {
	if start > 0 && isWordRune(src[start-1]) {
		return false
	}
	if end < len(src) && isWordRune(src[end]) {
		return false
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func lowerRunes(src []rune) []rune {
	out := make([]rune, len(src))
	for i, r := range src {
		out[i] = unicode.ToLower(r)
	}
	return out
}
