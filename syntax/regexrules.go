package syntax

import (
	"regexp"

	"github.com/meysamhadeli/kotpad/syntax/models"
)

// rulePass is one independently-fallible classification pass: a regex
// pattern painting its matches with a category.
type rulePass struct {
	pattern  string
	category models.Category
}

// ApplyRules classifies text by layering regex passes over an all-plain
// base: keywords, then types, then comments, then strings. Later passes
// win at identical offsets. A pass whose pattern fails to compile is
// skipped silently; the remaining passes still apply. A nil RuleSet yields
// plain-only classification.
func ApplyRules(text string, rules *RuleSet) models.StyledText {
	if rules == nil {
		return Scan(text, nil)
	}

	src := []rune(text)
	st := models.StyledText{Text: text}
	if len(src) == 0 {
		return st
	}

	// Byte offset -> rune offset table for translating regexp match indexes.
	byteToRune := make([]int, len(text)+1)
	n := 0
	for i := range text {
		byteToRune[i] = n
		n++
	}
	byteToRune[len(text)] = n

	paint := make([]models.Category, len(src))
	for _, pass := range buildPasses(rules) {
		re, err := regexp.Compile(pass.pattern)
		if err != nil {
			continue
		}
		for _, m := range re.FindAllStringIndex(text, -1) {
			for i := byteToRune[m[0]]; i < byteToRune[m[1]]; i++ {
				paint[i] = pass.category
			}
		}
	}

	st.Base = compress(paint)
	return st
}

// buildPasses assembles the pass pipeline for the given rules in fixed
// application order.
func buildPasses(rules *RuleSet) []rulePass {
	var passes []rulePass
	for _, kw := range rules.Keywords() {
		passes = append(passes, rulePass{
			pattern:  `\b` + regexp.QuoteMeta(kw) + `\b`,
			category: models.CategoryKeyword,
		})
	}
	for _, tn := range rules.Types() {
		passes = append(passes, rulePass{
			pattern:  `\b` + regexp.QuoteMeta(tn) + `\b`,
			category: models.CategoryType,
		})
	}
	if lc := rules.LineComment(); lc != "" {
		passes = append(passes, rulePass{
			pattern:  regexp.QuoteMeta(lc) + `[^\n]*`,
			category: models.CategoryComment,
		})
	}
	if start, end := rules.BlockComment(); start != "" && end != "" {
		passes = append(passes, rulePass{
			pattern:  `(?s)` + regexp.QuoteMeta(start) + `.*?` + regexp.QuoteMeta(end),
			category: models.CategoryComment,
		})
	}
	if q := rules.StringQuote(); q != "" {
		passes = append(passes, rulePass{
			pattern:  regexp.QuoteMeta(q) + `.*?` + regexp.QuoteMeta(q),
			category: models.CategoryString,
		})
	}
	return passes
}

// compress folds the per-rune paint array into a minimal span partition.
func compress(paint []models.Category) []models.Span {
	var spans []models.Span
	start := 0
	for i := 1; i <= len(paint); i++ {
		if i == len(paint) || paint[i] != paint[start] {
			spans = append(spans, models.Span{Start: start, End: i, Category: paint[start]})
			start = i
		}
	}
	return spans
}
