package syntax

import (
	"os"

	"github.com/spf13/viper"
)

// rulesDocument mirrors the external rules file shape. All fields are optional.
type rulesDocument struct {
	Keywords []string `mapstructure:"keywords"`
	Types    []string `mapstructure:"types"`
	Comments struct {
		Line       string `mapstructure:"line"`
		BlockStart string `mapstructure:"blockStart"`
		BlockEnd   string `mapstructure:"blockEnd"`
	} `mapstructure:"comments"`
	Strings string `mapstructure:"strings"`
}

// LoadRules reads a declarative rule description (YAML or JSON) from path.
// Any failure (missing file, unreadable, not parseable, wrong shape) yields
// nil, which the tokenizer treats as "plain-only classification". Loading
// never blocks editing with a hard failure.
func LoadRules(path string) *RuleSet {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil
	}

	var doc rulesDocument
	if err := v.Unmarshal(&doc); err != nil {
		return nil
	}

	return NewRuleSet(
		doc.Keywords,
		doc.Types,
		doc.Comments.Line,
		doc.Comments.BlockStart,
		doc.Comments.BlockEnd,
		doc.Strings,
	)
}
