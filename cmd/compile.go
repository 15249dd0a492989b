package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/meysamhadeli/kotpad/bridge/models"
	"github.com/meysamhadeli/kotpad/constants/lipgloss"
	"github.com/meysamhadeli/kotpad/session"
)

// compileCmd: kotpad compile <file>
var compileCmd = &cobra.Command{
	Use:   "compile <file>",
	Short: "Compile a source file through the local compiler bridge.",
	Long: `Compile sends a source file to the companion bridge process and streams
the compiler output as it arrives. Lines matching the compiler's error
format are collected as diagnostics, and the command exits non-zero when
the compilation fails.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		deps := handleRootCommand(cmd)
		if deps == nil {
			os.Exit(1)
		}
		if err := handleCompileCommand(cmd, deps, args[0]); err != nil {
			os.Exit(1)
		}
	},
}

func init() {
	compileCmd.Flags().Bool("stats", false, "Print session statistics after the compilation.")
	rootCmd.AddCommand(compileCmd)
}

func handleCompileCommand(cmd *cobra.Command, deps *RootDependencies, path string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error reading %s: %v", path, err)))
		return err
	}

	var compileSpinner *pterm.SpinnerPrinter
	sess := session.NewSession(deps.CompileBridge, session.Options{
		Filename:      filepath.Base(path),
		Rules:         rulesForFile(deps.Config, path),
		Stats:         deps.Stats,
		ArtifactCache: deps.ArtifactCache,
		OnCompileLine: func(line string) {
			if compileSpinner != nil {
				_ = compileSpinner.Stop()
				compileSpinner = nil
			}
			fmt.Println(line)
		},
	})
	defer sess.Close()
	sess.SetText(string(data))

	connectSpinner, _ := pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgLightBlue)).Start("Checking compiler bridge...")
	if err := sess.Connect(ctx); err != nil {
		_ = connectSpinner.Stop()
		fmt.Println(lipgloss.Red.Render(err.Error()))
		return err
	}
	_ = connectSpinner.Stop()

	compileSpinner, _ = pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgLightBlue)).Start(fmt.Sprintf("Compiling %s...", filepath.Base(path)))
	err = sess.Compile(ctx)
	if compileSpinner != nil {
		_ = compileSpinner.Stop()
		compileSpinner = nil
	}
	if err != nil {
		fmt.Println(lipgloss.Red.Render(err.Error()))
		return err
	}

	showStats, _ := cmd.Flags().GetBool("stats")
	defer func() {
		if showStats {
			deps.Stats.DisplayStats()
		}
	}()

	switch state := sess.State(); state.Phase {
	case models.PhaseSuccess:
		fmt.Println(lipgloss.Green.Render(fmt.Sprintf("Compiled successfully: %s", state.ArtifactPath)))
		return nil
	case models.PhaseFailure:
		fmt.Println(lipgloss.Red.Render(state.Reason))
		if diags := sess.Diagnostics(); len(diags) > 0 {
			fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Errors on lines: %v", diags)))
		}
		return fmt.Errorf("%s", state.Reason)
	default:
		return fmt.Errorf("compilation interrupted")
	}
}
