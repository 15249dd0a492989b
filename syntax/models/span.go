package models

// Category classifies a contiguous range of source text for display.
type Category int

const (
	CategoryPlain Category = iota
	CategoryKeyword
	CategoryType
	CategoryString
	CategoryComment
	CategoryNumber

	// Overlay categories. These are layered on top of the base
	// classification and never replace it.
	CategorySearchMatch
	CategoryErrorLine
)

// String returns the display name of the category.
func (c Category) String() string {
	switch c {
	case CategoryPlain:
		return "plain"
	case CategoryKeyword:
		return "keyword"
	case CategoryType:
		return "type"
	case CategoryString:
		return "string"
	case CategoryComment:
		return "comment"
	case CategoryNumber:
		return "number"
	case CategorySearchMatch:
		return "search-match"
	case CategoryErrorLine:
		return "error-line"
	default:
		return "unknown"
	}
}

// IsOverlay reports whether the category belongs to an overlay layer
// rather than the base lexical classification.
func (c Category) IsOverlay() bool {
	return c == CategorySearchMatch || c == CategoryErrorLine
}

// Span is a half-open [Start, End) range of rune offsets tagged with a category.
type Span struct {
	Start    int
	End      int
	Category Category
}

// Len returns the number of runes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Contains reports whether the rune offset pos falls inside the span.
func (s Span) Contains(pos int) bool {
	return pos >= s.Start && pos < s.End
}

// StyledText is source text plus its base classification and overlay layers.
// The base spans partition [0, RuneLen) exactly; overlay spans may overlap
// each other and the base layer. StyledText values are never mutated in
// place: overlay application returns a new value.
type StyledText struct {
	Text     string
	Base     []Span
	Overlays []Span
}

// RuneLen returns the length of the text in runes. Span offsets are rune
// offsets, so this is the exclusive upper bound of the base partition.
func (st StyledText) RuneLen() int {
	n := 0
	for range st.Text {
		n++
	}
	return n
}

// CategoriesAt returns every category present at the given rune offset,
// base layer first, then overlays in application order.
func (st StyledText) CategoriesAt(pos int) []Category {
	var cats []Category
	for _, s := range st.Base {
		if s.Contains(pos) {
			cats = append(cats, s.Category)
			break
		}
	}
	for _, s := range st.Overlays {
		if s.Contains(pos) {
			cats = append(cats, s.Category)
		}
	}
	return cats
}

// WithOverlays returns a copy of st with the given spans appended to its
// overlay layer. The receiver is left untouched.
func (st StyledText) WithOverlays(spans ...Span) StyledText {
	if len(spans) == 0 {
		return st
	}
	overlays := make([]Span, 0, len(st.Overlays)+len(spans))
	overlays = append(overlays, st.Overlays...)
	overlays = append(overlays, spans...)
	return StyledText{Text: st.Text, Base: st.Base, Overlays: overlays}
}
