package syntax

import (
	"unicode"

	"github.com/meysamhadeli/kotpad/syntax/models"
)

// Scan classifies text with a single left-to-right character scan and no
// backtracking. At each position the checks apply in priority order: block
// comment, line comment, string, number, identifier, then a single plain
// character. Every character lands in exactly one base span and the scan
// always advances, so unterminated comments and strings are tagged through
// end of text instead of looping or erroring.
//
// A nil RuleSet produces a single plain span covering the whole input.
func Scan(text string, rules *RuleSet) models.StyledText {
	src := []rune(text)
	st := models.StyledText{Text: text}
	if len(src) == 0 {
		return st
	}
	if rules == nil {
		st.Base = []models.Span{{Start: 0, End: len(src), Category: models.CategoryPlain}}
		return st
	}

	blockStart, blockEnd := []rune(rules.blockStart), []rune(rules.blockEnd)
	lineComment := []rune(rules.lineComment)
	quote := []rune(rules.stringQuote)

	var spans []models.Span
	emit := func(start, end int, cat models.Category) {
		// Coalesce runs of plain characters into one span.
		if n := len(spans); n > 0 && cat == models.CategoryPlain &&
			spans[n-1].Category == models.CategoryPlain && spans[n-1].End == start {
			spans[n-1].End = end
			return
		}
		spans = append(spans, models.Span{Start: start, End: end, Category: cat})
	}

	i := 0
	for i < len(src) {
		switch {
		case len(blockStart) > 0 && len(blockEnd) > 0 && matchAt(src, i, blockStart):
			end := scanThrough(src, i+len(blockStart), blockEnd)
			emit(i, end, models.CategoryComment)
			i = end

		case len(lineComment) > 0 && matchAt(src, i, lineComment):
			end := i + len(lineComment)
			for end < len(src) && src[end] != '\n' {
				end++
			}
			emit(i, end, models.CategoryComment)
			i = end

		case len(quote) > 0 && matchAt(src, i, quote):
			end := scanString(src, i+len(quote), quote)
			emit(i, end, models.CategoryString)
			i = end

		case unicode.IsDigit(src[i]):
			end := i + 1
			for end < len(src) && (unicode.IsDigit(src[end]) || src[end] == '.') {
				end++
			}
			emit(i, end, models.CategoryNumber)
			i = end

		case isIdentStart(src[i]):
			end := i + 1
			for end < len(src) && isIdentPart(src[end]) {
				end++
			}
			ident := string(src[i:end])
			cat := models.CategoryPlain
			if rules.IsKeyword(ident) {
				cat = models.CategoryKeyword
			} else if rules.IsType(ident) {
				cat = models.CategoryType
			}
			emit(i, end, cat)
			i = end

		default:
			emit(i, i+1, models.CategoryPlain)
			i++
		}
	}

	st.Base = spans
	return st
}

// scanThrough consumes runes from pos until just past the terminator, or to
// end of input when the terminator never appears.
func scanThrough(src []rune, pos int, terminator []rune) int {
	for pos < len(src) {
		if matchAt(src, pos, terminator) {
			return pos + len(terminator)
		}
		pos++
	}
	return len(src)
}

// scanString consumes a string body from pos until just past the closing
// quote, honoring backslash escapes. An unterminated string runs to end of
// input.
func scanString(src []rune, pos int, quote []rune) int {
	for pos < len(src) {
		if src[pos] == '\\' {
			pos += 2
			continue
		}
		if matchAt(src, pos, quote) {
			return pos + len(quote)
		}
		pos++
	}
	return len(src)
}

func matchAt(src []rune, pos int, token []rune) bool {
	if len(token) == 0 || pos+len(token) > len(src) {
		return false
	}
	for j, r := range token {
		if src[pos+j] != r {
			return false
		}
	}
	return true
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
