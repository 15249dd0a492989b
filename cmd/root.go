package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/meysamhadeli/kotpad/bridge"
	bridge_contracts "github.com/meysamhadeli/kotpad/bridge/contracts"
	"github.com/meysamhadeli/kotpad/config"
	"github.com/meysamhadeli/kotpad/constants/lipgloss"
	"github.com/meysamhadeli/kotpad/session"
	"github.com/meysamhadeli/kotpad/stats"
	stats_contracts "github.com/meysamhadeli/kotpad/stats/contracts"
	"github.com/meysamhadeli/kotpad/syntax"
)

// RootDependencies holds the wired collaborators shared by all subcommands.
type RootDependencies struct {
	Config        *config.Config
	Cwd           string
	CompileBridge bridge_contracts.ICompileBridge
	Stats         stats_contracts.ISessionStats
	ArtifactCache *session.ArtifactCache
}

// rootCmd: kotpad
var rootCmd = &cobra.Command{
	Use:   "kotpad",
	Short: "A Kotlin scratchpad with syntax highlighting and a local compile bridge.",
	Long: `Kotpad is a terminal scratchpad for Kotlin snippets. It highlights source
files with configurable lexical rules, layers search and compiler-error
overlays on top, and compiles through a companion bridge process on the
loopback interface, streaming the compiler output as it arrives.`,
	Run: func(cmd *cobra.Command, args []string) {
		if version, _ := cmd.Flags().GetBool("version"); version {
			fmt.Println(config.DefaultConfig.Version)
			return
		}
		_ = cmd.Help()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		os.Exit(1)
	}
}

func init() {
	config.InitFlags(rootCmd)
}

// handleRootCommand loads configuration and wires the shared dependencies.
func handleRootCommand(cmd *cobra.Command) *RootDependencies {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error getting current directory: %v", err)))
		return nil
	}

	cfg := config.LoadConfigs(cmd.Root(), cwd)

	compileBridge := bridge.NewCompileBridge(&bridge.BridgeConfig{
		Host:           cfg.Bridge.Host,
		Port:           cfg.Bridge.Port,
		ConnectTimeout: time.Duration(cfg.Bridge.ConnectTimeoutSeconds) * time.Second,
		HeaderTimeout:  time.Duration(cfg.Bridge.HeaderTimeoutSeconds) * time.Second,
	})

	var artifactCache *session.ArtifactCache
	if cfg.EnableCache {
		artifactCache, err = session.NewArtifactCache(cfg.CacheDir)
		if err != nil {
			fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Compile cache disabled: %v", err)))
			artifactCache = nil
		}
	}

	return &RootDependencies{
		Config:        cfg,
		Cwd:           cwd,
		CompileBridge: compileBridge,
		Stats:         stats.NewSessionStats(),
		ArtifactCache: artifactCache,
	}
}

// rulesForFile resolves the active RuleSet for a source file: an external
// rules file when configured, the built-in Kotlin table for Kotlin sources,
// otherwise none.
func rulesForFile(cfg *config.Config, path string) *syntax.RuleSet {
	if cfg.RulesFile != "" {
		return syntax.LoadRules(cfg.RulesFile)
	}
	if kotlinExtension(path) {
		return syntax.DefaultKotlinRules()
	}
	return nil
}

func kotlinExtension(path string) bool {
	for _, ext := range []string{".kt", ".kts"} {
		if len(path) > len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}
