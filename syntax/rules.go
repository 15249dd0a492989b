package syntax

import (
	"sort"
	"strings"

	"github.com/zeebo/xxh3"
)

// RuleSet describes a language's lexical categories: keyword and type-name
// lists plus the comment and string marker tokens. All fields are optional;
// a nil *RuleSet is valid and means "no semantic classification".
// RuleSets are immutable once constructed.
type RuleSet struct {
	keywords    map[string]struct{}
	types       map[string]struct{}
	lineComment string
	blockStart  string
	blockEnd    string
	stringQuote string
	fingerprint uint64
}

// NewRuleSet builds an immutable RuleSet from the given lexical tables.
// Empty marker strings disable the corresponding rule.
func NewRuleSet(keywords, types []string, lineComment, blockStart, blockEnd, stringQuote string) *RuleSet {
	rs := &RuleSet{
		keywords:    make(map[string]struct{}, len(keywords)),
		types:       make(map[string]struct{}, len(types)),
		lineComment: lineComment,
		blockStart:  blockStart,
		blockEnd:    blockEnd,
		stringQuote: stringQuote,
	}
	for _, kw := range keywords {
		rs.keywords[kw] = struct{}{}
	}
	for _, tn := range types {
		rs.types[tn] = struct{}{}
	}
	rs.fingerprint = rs.computeFingerprint()
	return rs
}

// IsKeyword reports whether ident is in the keyword table.
func (rs *RuleSet) IsKeyword(ident string) bool {
	if rs == nil {
		return false
	}
	_, ok := rs.keywords[ident]
	return ok
}

// IsType reports whether ident is in the type-name table.
func (rs *RuleSet) IsType(ident string) bool {
	if rs == nil {
		return false
	}
	_, ok := rs.types[ident]
	return ok
}

// Keywords returns the keyword table as a sorted slice.
func (rs *RuleSet) Keywords() []string {
	return sortedKeys(rs.keywords)
}

// Types returns the type-name table as a sorted slice.
func (rs *RuleSet) Types() []string {
	return sortedKeys(rs.types)
}

// LineComment returns the line-comment marker, or "" if none.
func (rs *RuleSet) LineComment() string {
	if rs == nil {
		return ""
	}
	return rs.lineComment
}

// BlockComment returns the block-comment start and end markers, or "", ""
// if block comments are not configured.
func (rs *RuleSet) BlockComment() (start, end string) {
	if rs == nil {
		return "", ""
	}
	return rs.blockStart, rs.blockEnd
}

// StringQuote returns the string-quote token, or "" if none.
func (rs *RuleSet) StringQuote() string {
	if rs == nil {
		return ""
	}
	return rs.stringQuote
}

// Fingerprint returns a stable hash of the rule tables, used as part of
// highlight cache keys. A nil RuleSet has fingerprint 0.
func (rs *RuleSet) Fingerprint() uint64 {
	if rs == nil {
		return 0
	}
	return rs.fingerprint
}

func (rs *RuleSet) computeFingerprint() uint64 {
	var sb strings.Builder
	for _, kw := range sortedKeys(rs.keywords) {
		sb.WriteString(kw)
		sb.WriteByte(0)
	}
	sb.WriteByte(1)
	for _, tn := range sortedKeys(rs.types) {
		sb.WriteString(tn)
		sb.WriteByte(0)
	}
	sb.WriteByte(1)
	sb.WriteString(rs.lineComment)
	sb.WriteByte(1)
	sb.WriteString(rs.blockStart)
	sb.WriteByte(1)
	sb.WriteString(rs.blockEnd)
	sb.WriteByte(1)
	sb.WriteString(rs.stringQuote)
	return xxh3.HashString(sb.String())
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DefaultKotlinRules returns the built-in rule table for Kotlin sources.
func DefaultKotlinRules() *RuleSet {
	return NewRuleSet(
		[]string{
			"package", "import", "class", "interface", "object", "fun", "val", "var",
			"if", "else", "when", "for", "while", "do", "return", "break", "continue",
			"in", "is", "as", "null", "true", "false", "this", "super", "throw",
			"try", "catch", "finally", "companion", "data", "sealed", "enum",
			"override", "open", "abstract", "private", "public", "protected", "internal",
			"lateinit", "const", "suspend", "typealias", "by", "it",
		},
		[]string{
			"Int", "Long", "Short", "Byte", "Double", "Float", "Boolean", "Char",
			"String", "Unit", "Any", "Nothing", "Array", "List", "MutableList",
			"Map", "MutableMap", "Set", "MutableSet", "Pair", "Triple",
		},
		"//", "/*", "*/", `"`,
	)
}
