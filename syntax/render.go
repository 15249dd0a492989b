package syntax

import (
	"sort"
	"strings"

	"github.com/meysamhadeli/kotpad/syntax/models"
)

// Render converts a StyledText to an ANSI-styled string. Base categories
// pick the foreground style; overlay categories add a background on top,
// so a keyword inside an error line inside a search match shows all three.
// When both overlays cover an offset the error background takes visual
// precedence.
func Render(st models.StyledText) string {
	src := []rune(st.Text)
	if len(src) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, seg := range segments(st, len(src)) {
		style := categoryStyle(seg.base)
		if seg.search {
			style = style.Background(SearchMatchBackground)
		}
		if seg.errorLine {
			style = style.Background(ErrorLineBackground)
		}
		text := string(src[seg.start:seg.end])

		// Styling a run that contains newlines would repaint the background
		// across line breaks, so render each line piece separately.
		for i, piece := range strings.Split(text, "\n") {
			if i > 0 {
				sb.WriteByte('\n')
			}
			if piece != "" {
				sb.WriteString(style.Render(piece))
			}
		}
	}
	return sb.String()
}

// segment is a maximal run of runes with one base category and one set of
// overlay flags.
type segment struct {
	start, end int
	base       models.Category
	search     bool
	errorLine  bool
}

// segments cuts [0, runeLen) at every span boundary and resolves the
// categories active inside each piece.
func segments(st models.StyledText, runeLen int) []segment {
	cuts := map[int]struct{}{0: {}, runeLen: {}}
	for _, s := range st.Base {
		cuts[s.Start] = struct{}{}
		cuts[s.End] = struct{}{}
	}
	for _, s := range st.Overlays {
		cuts[s.Start] = struct{}{}
		cuts[s.End] = struct{}{}
	}

	bounds := make([]int, 0, len(cuts))
	for c := range cuts {
		if c >= 0 && c <= runeLen {
			bounds = append(bounds, c)
		}
	}
	sort.Ints(bounds)

	var segs []segment
	for i := 0; i+1 < len(bounds); i++ {
		start, end := bounds[i], bounds[i+1]
		if start == end {
			continue
		}
		seg := segment{start: start, end: end, base: models.CategoryPlain}
		for _, s := range st.Base {
			if s.Contains(start) {
				seg.base = s.Category
				break
			}
		}
		for _, s := range st.Overlays {
			if !s.Contains(start) {
				continue
			}
			switch s.Category {
			case models.CategorySearchMatch:
				seg.search = true
			case models.CategoryErrorLine:
				seg.errorLine = true
			}
		}
		segs = append(segs, seg)
	}
	return segs
}
