package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/meysamhadeli/kotpad/bridge/models"
	"github.com/meysamhadeli/kotpad/constants/lipgloss"
	"github.com/meysamhadeli/kotpad/session"
	"github.com/meysamhadeli/kotpad/syntax"
	"github.com/meysamhadeli/kotpad/utils"
)

// editCmd: kotpad edit
var editCmd = &cobra.Command{
	Use:   "edit [file]",
	Short: "Edit a Kotlin scratch buffer interactively with live highlighting.",
	Long: `The 'edit' subcommand opens an interactive scratch buffer. Typed lines are
appended to the buffer and re-rendered with syntax colors after each entry.
Slash commands compile the buffer through the bridge, search the highlighted
text, mark compiler error lines, and undo or redo edits within the session.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rootDependencies := handleRootCommand(cmd)
		if rootDependencies == nil {
			os.Exit(1)
		}
		file := ""
		if len(args) == 1 {
			file = args[0]
		}
		handleEditCommand(rootDependencies, file)
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
}

// editState carries the search overlay settings across loop iterations.
type editState struct {
	query         string
	caseSensitive bool
	wholeWord     bool
}

func handleEditCommand(rootDependencies *RootDependencies, file string) {

	// Create a context with cancel function
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	filename := "Main.kt"
	initial := ""
	if file != "" {
		filename = file
		if data, err := os.ReadFile(file); err == nil {
			initial = string(data)
		}
	}

	rules := rulesForFile(rootDependencies.Config, filename)

	var compileSpinner *pterm.SpinnerPrinter
	sess := session.NewSession(rootDependencies.CompileBridge, session.Options{
		Filename:      filename,
		Rules:         rules,
		Stats:         rootDependencies.Stats,
		ArtifactCache: rootDependencies.ArtifactCache,
		OnCompileLine: func(line string) {
			if compileSpinner != nil {
				_ = compileSpinner.Stop()
				compileSpinner = nil
			}
			fmt.Println(line)
		},
	})
	defer sess.Close()
	if initial != "" {
		sess.SetText(initial)
	}

	if rootDependencies.Config.WatchRules && rootDependencies.Config.RulesFile != "" {
		if err := session.WatchRules(ctx, rootDependencies.Config.RulesFile, func(rs *syntax.RuleSet) {
			sess.SetRules(rs)
			fmt.Println(lipgloss.Info.Render("Highlighting rules reloaded."))
		}); err != nil {
			fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("%v", err)))
		}
	}

	reader := bufio.NewReader(os.Stdin)

	editOptionsBox := lipgloss.BoxStyle.Render("/help  Help for edit subcommand")
	fmt.Println(editOptionsBox)

	if initial != "" {
		fmt.Println(sess.Highlight("", false, false))
	}

	state := &editState{}

	for {
		select {
		case <-ctx.Done():
			return

		default:
			// Get user input with context cancellation support
			userInput, err := utils.InputPromptWithContext(ctx, reader)

			if err != nil {
				// Check if the error is due to context cancellation (Ctrl+C)
				if err == context.Canceled {
					fmt.Println(lipgloss.Yellow.Render("\nExiting..."))
					return
				}
				fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
				continue
			}

			if userInput == "" {
				fmt.Print("\r")
				continue
			}

			handled, exit := findEditSubCommand(ctx, userInput, rootDependencies, sess, state, &compileSpinner)

			if handled {
				continue
			}

			if exit {
				return
			}

			// Plain input appends a line to the scratch buffer.
			sess.SetText(sess.Text() + userInput + "\n")
			fmt.Println(sess.Highlight(state.query, state.caseSensitive, state.wholeWord))
		}
	}
}

func findEditSubCommand(ctx context.Context, command string, rootDependencies *RootDependencies, sess *session.Session, state *editState, compileSpinner **pterm.SpinnerPrinter) (bool, bool) {
	switch command {
	case "/help":
		helps := "/compile  Compile the buffer through the bridge\n/show  Re-render the buffer with current overlays\n/search <query>  Highlight matches of a query\n/search-word <query>  Highlight whole-word matches\n/search-off  Clear the search overlay\n/errors  List the error lines from the last compile\n/undo  Undo the last edit\n/redo  Redo an undone edit\n/stats  Session statistics\n/clear  Clear screen\n/reset  Empty the scratch buffer\n/exit  Exit from kotpad"
		styledHelps := lipgloss.BoxStyle.Render(helps)
		fmt.Println(styledHelps)
		return true, false
	case "/clear":
		fmt.Print("\033[2J\033[H")
		return true, false
	case "/exit":
		return false, true
	case "/compile":
		runEditCompile(ctx, sess, compileSpinner)
		return true, false
	case "/show":
		fmt.Println(sess.Highlight(state.query, state.caseSensitive, state.wholeWord))
		return true, false
	case "/search-off":
		state.query = ""
		state.wholeWord = false
		fmt.Println(sess.Highlight("", false, false))
		return true, false
	case "/errors":
		diags := sess.Diagnostics()
		if len(diags) == 0 {
			fmt.Println(lipgloss.Green.Render("No error lines recorded."))
		} else {
			fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Errors on lines: %v", diags)))
		}
		return true, false
	case "/undo":
		if !sess.Undo() {
			fmt.Println(lipgloss.Yellow.Render("Nothing to undo."))
		} else {
			fmt.Println(sess.Highlight(state.query, state.caseSensitive, state.wholeWord))
		}
		return true, false
	case "/redo":
		if !sess.Redo() {
			fmt.Println(lipgloss.Yellow.Render("Nothing to redo."))
		} else {
			fmt.Println(sess.Highlight(state.query, state.caseSensitive, state.wholeWord))
		}
		return true, false
	case "/stats":
		rootDependencies.Stats.DisplayStats()
		return true, false
	case "/reset":
		sess.SetText("")
		fmt.Println(lipgloss.Info.Render("Buffer cleared."))
		return true, false
	default:
		if query, ok := strings.CutPrefix(command, "/search-word "); ok {
			state.query = strings.TrimSpace(query)
			state.wholeWord = true
			fmt.Println(sess.Highlight(state.query, state.caseSensitive, state.wholeWord))
			return true, false
		}
		if query, ok := strings.CutPrefix(command, "/search "); ok {
			state.query = strings.TrimSpace(query)
			state.wholeWord = false
			fmt.Println(sess.Highlight(state.query, state.caseSensitive, state.wholeWord))
			return true, false
		}
		return false, false
	}
}

func runEditCompile(ctx context.Context, sess *session.Session, compileSpinner **pterm.SpinnerPrinter) {
	if !sess.Connected() {
		connectSpinner, _ := pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgLightBlue)).Start("Checking compiler bridge...")
		err := sess.Connect(ctx)
		_ = connectSpinner.Stop()
		if err != nil {
			fmt.Println(lipgloss.Red.Render(err.Error()))
			return
		}
	}

	*compileSpinner, _ = pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgLightBlue)).Start("Compiling...")
	err := sess.Compile(ctx)
	if *compileSpinner != nil {
		_ = (*compileSpinner).Stop()
		*compileSpinner = nil
	}
	if err != nil {
		fmt.Println(lipgloss.Red.Render(err.Error()))
		return
	}

	switch state := sess.State(); state.Phase {
	case models.PhaseSuccess:
		fmt.Println(lipgloss.Green.Render(fmt.Sprintf("Compiled successfully: %s", state.ArtifactPath)))
	case models.PhaseFailure:
		fmt.Println(lipgloss.Red.Render(state.Reason))
		if diags := sess.Diagnostics(); len(diags) > 0 {
			fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Errors on lines: %v", diags)))
		}
	}
}
