package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meysamhadeli/kotpad/syntax/models"
)

func TestApplyRules_Classification(t *testing.T) {
	rules := DefaultKotlinRules()

	tests := []struct {
		name  string
		input string
		at    string
		want  models.Category
	}{
		{"keyword is word bounded", "fun funky", "fun", models.CategoryKeyword},
		{"keyword inside identifier not matched", "funky", "funky", models.CategoryPlain},
		{"type name", "val s: String", "String", models.CategoryType},
		{"line comment to end of line", "x // note\ny", "// note", models.CategoryComment},
		{"block comment spans lines", "/* a\nb */x", "/* a\nb */", models.CategoryComment},
		{"string wins over keyword at same offsets", `"val"`, `"val"`, models.CategoryString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := ApplyRules(tt.input, rules)
			requirePartition(t, st)

			src := []rune(tt.input)
			start := runeIndex(src, tt.at)
			require.GreaterOrEqual(t, start, 0)
			for i := start; i < start+len([]rune(tt.at)); i++ {
				assert.Equal(t, tt.want, categoryAt(st, i), "offset %d", i)
			}
		})
	}
}

func TestApplyRules_UnmatchedTextStaysPlain(t *testing.T) {
	// Unterminated string: the non-greedy pattern simply does not match,
	// leaving the text plain rather than erroring.
	st := ApplyRules(`say "oops`, NewRuleSet(nil, nil, "", "", "", `"`))
	requirePartition(t, st)
	for i := 0; i < st.RuneLen(); i++ {
		assert.Equal(t, models.CategoryPlain, categoryAt(st, i))
	}
}

func TestApplyRules_MalformedRuleIsSkipped(t *testing.T) {
	// A keyword that survives QuoteMeta can't break compilation, so every
	// configured token is applied literally even when it looks like regex.
	rules := NewRuleSet([]string{"a(b"}, nil, "", "", "", "")
	st := ApplyRules("x a(b y", rules)
	requirePartition(t, st)

	start := runeIndex([]rune("x a(b y"), "a(b")
	for i := start; i < start+3; i++ {
		assert.Equal(t, models.CategoryKeyword, categoryAt(st, i))
	}
}

func TestApplyRules_NilRules(t *testing.T) {
	st := ApplyRules("anything", nil)
	require.Len(t, st.Base, 1)
	assert.Equal(t, models.CategoryPlain, st.Base[0].Category)
}

func TestApplyRules_AgreesWithScanOnSimpleInput(t *testing.T) {
	rules := DefaultKotlinRules()
	input := "fun main() { val x = y }"

	scanned := Scan(input, rules)
	applied := ApplyRules(input, rules)

	for i := 0; i < scanned.RuneLen(); i++ {
		assert.Equal(t, categoryAt(scanned, i), categoryAt(applied, i), "offset %d", i)
	}
}
