package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meysamhadeli/kotpad/constants/lipgloss"
	"github.com/meysamhadeli/kotpad/syntax"
	"github.com/meysamhadeli/kotpad/syntax/models"
	"github.com/meysamhadeli/kotpad/utils"
)

// highlightCmd: kotpad highlight <file>
var highlightCmd = &cobra.Command{
	Use:   "highlight <file>",
	Short: "Highlight a source file in the terminal.",
	Long: `Highlight reads a source file and prints it with ANSI colors. Kotlin
files use the built-in lexical scanner, files with a configured rules file
use the rule-driven pipeline, and anything else falls back to Chroma.
Search matches and error lines can be layered on top of the base colors.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		deps := handleRootCommand(cmd)
		if deps == nil {
			os.Exit(1)
		}
		if err := handleHighlightCommand(cmd, deps, args[0]); err != nil {
			fmt.Println(lipgloss.Red.Render(err.Error()))
			os.Exit(1)
		}
	},
}

func init() {
	highlightCmd.Flags().String("query", "", "Search query to highlight on top of the base colors.")
	highlightCmd.Flags().Bool("case-sensitive", false, "Match the search query case-sensitively.")
	highlightCmd.Flags().Bool("word", false, "Match the search query on whole words only.")
	highlightCmd.Flags().IntSlice("error-lines", nil, "Line numbers (1-based) to mark as error lines.")
	highlightCmd.Flags().String("rules", "", "Path to an external highlighting rules file, overriding the configured one.")
	rootCmd.AddCommand(highlightCmd)
}

func handleHighlightCommand(cmd *cobra.Command, deps *RootDependencies, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	text := string(data)

	if rulesOverride, _ := cmd.Flags().GetString("rules"); rulesOverride != "" {
		deps.Config.RulesFile = rulesOverride
	}

	rules := rulesForFile(deps.Config, path)
	if rules == nil && deps.Config.RulesFile == "" && !kotlinExtension(path) {
		// No lexical rules apply, let Chroma pick a lexer from the extension.
		return utils.RenderSourceWithChroma(os.Stdout, text, utils.DetectLanguageFromExtension(path), deps.Config.Theme)
	}

	var st models.StyledText
	if deps.Config.RulesFile != "" {
		st = syntax.ApplyRules(text, rules)
	} else {
		st = syntax.Scan(text, rules)
	}

	query, _ := cmd.Flags().GetString("query")
	caseSensitive, _ := cmd.Flags().GetBool("case-sensitive")
	wholeWord, _ := cmd.Flags().GetBool("word")
	st = syntax.SearchOverlay(st, query, caseSensitive, wholeWord)

	errorLines, _ := cmd.Flags().GetIntSlice("error-lines")
	if len(errorLines) > 0 {
		set := make(map[int]struct{}, len(errorLines))
		for _, ln := range errorLines {
			set[ln] = struct{}{}
		}
		st = syntax.ErrorOverlay(st, set)
	}

	fmt.Println(syntax.Render(st))
	return nil
}
