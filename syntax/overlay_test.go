package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meysamhadeli/kotpad/syntax/models"
)

func overlaysAt(st models.StyledText, pos int) []models.Category {
	var cats []models.Category
	for _, s := range st.Overlays {
		if s.Contains(pos) {
			cats = append(cats, s.Category)
		}
	}
	return cats
}

func TestSearchOverlay_Matches(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		query         string
		caseSensitive bool
		wholeWord     bool
		wantSpans     []models.Span
	}{
		{
			name:  "simple literal match",
			text:  "abc abc",
			query: "abc",
			wantSpans: []models.Span{
				{Start: 0, End: 3, Category: models.CategorySearchMatch},
				{Start: 4, End: 7, Category: models.CategorySearchMatch},
			},
		},
		{
			name:  "case insensitive by default",
			text:  "Foo foo FOO",
			query: "foo",
			wantSpans: []models.Span{
				{Start: 0, End: 3, Category: models.CategorySearchMatch},
				{Start: 4, End: 7, Category: models.CategorySearchMatch},
				{Start: 8, End: 11, Category: models.CategorySearchMatch},
			},
		},
		{
			name:          "case sensitive",
			text:          "Foo foo",
			query:         "foo",
			caseSensitive: true,
			wantSpans: []models.Span{
				{Start: 4, End: 7, Category: models.CategorySearchMatch},
			},
		},
		{
			name:      "whole word skips substrings",
			text:      "val value val",
			query:     "val",
			wholeWord: true,
			wantSpans: []models.Span{
				{Start: 0, End: 3, Category: models.CategorySearchMatch},
				{Start: 10, End: 13, Category: models.CategorySearchMatch},
			},
		},
		{
			name:      "non-overlapping matches",
			text:      "aaaa",
			query:     "aa",
			wantSpans: []models.Span{
				{Start: 0, End: 2, Category: models.CategorySearchMatch},
				{Start: 2, End: 4, Category: models.CategorySearchMatch},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := Scan(tt.text, nil)
			st := SearchOverlay(base, tt.query, tt.caseSensitive, tt.wholeWord)
			assert.Equal(t, tt.wantSpans, st.Overlays)
		})
	}
}

func TestSearchOverlay_EmptyQueryIsNoOp(t *testing.T) {
	base := Scan("fun main() {}", DefaultKotlinRules())
	assert.Equal(t, base, SearchOverlay(base, "", false, false))
	assert.Equal(t, base, SearchOverlay(base, "   ", false, false))
}

func TestSearchOverlay_DoesNotTouchBase(t *testing.T) {
	base := Scan("fun main() {}", DefaultKotlinRules())
	st := SearchOverlay(base, "main", false, false)
	assert.Equal(t, base.Base, st.Base)
	assert.Empty(t, base.Overlays, "input value must not be mutated")
}

func TestErrorOverlay_TagsFullLines(t *testing.T) {
	text := "line one\nline two\nline three"
	base := Scan(text, nil)

	st := ErrorOverlay(base, map[int]struct{}{2: {}})
	require.Len(t, st.Overlays, 1)
	assert.Equal(t, models.Span{Start: 9, End: 18, Category: models.CategoryErrorLine}, st.Overlays[0])
}

func TestErrorOverlay_LastLineWithoutNewline(t *testing.T) {
	text := "a\nb"
	base := Scan(text, nil)

	st := ErrorOverlay(base, map[int]struct{}{2: {}})
	require.Len(t, st.Overlays, 1)
	assert.Equal(t, models.Span{Start: 2, End: 3, Category: models.CategoryErrorLine}, st.Overlays[0])
}

func TestErrorOverlay_OutOfRangeIsIgnored(t *testing.T) {
	base := Scan("one\ntwo\nthree", nil)

	st := ErrorOverlay(base, map[int]struct{}{9999: {}, 0: {}, -3: {}})
	assert.Equal(t, base, st)
}

func TestErrorOverlay_MultipleLinesSorted(t *testing.T) {
	base := Scan("a\nb\nc\n", nil)

	st := ErrorOverlay(base, map[int]struct{}{3: {}, 1: {}})
	require.Len(t, st.Overlays, 2)
	assert.Equal(t, 0, st.Overlays[0].Start)
	assert.Equal(t, 4, st.Overlays[1].Start)
}

func TestOverlayComposition_Additive(t *testing.T) {
	text := "fun main() {\n    val x = 1\n}"
	base := Scan(text, DefaultKotlinRules())

	st := SearchOverlay(base, "val", false, false)
	st = ErrorOverlay(st, map[int]struct{}{2: {}})

	// Base classification survives untouched at every offset.
	assert.Equal(t, base.Base, st.Base)

	// "val" sits on line 2: keyword base plus both overlays at once.
	pos := runeIndex([]rune(text), "val")
	assert.Equal(t, models.CategoryKeyword, categoryAt(st, pos))
	assert.ElementsMatch(t,
		[]models.Category{models.CategorySearchMatch, models.CategoryErrorLine},
		overlaysAt(st, pos))
}
