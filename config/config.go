// Package config loads kotpad configuration from file, flags, and
// environment variables.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meysamhadeli/kotpad/constants/lipgloss"
)

// BridgeConfig holds the compile bridge connection settings.
type BridgeConfig struct {
	Host                  string `mapstructure:"host"`
	Port                  int    `mapstructure:"port"`
	ConnectTimeoutSeconds int    `mapstructure:"connect_timeout_seconds"`
	HeaderTimeoutSeconds  int    `mapstructure:"header_timeout_seconds"`
}

// Config represents the structure of the configuration file.
type Config struct {
	Version     string        `mapstructure:"version"`
	Theme       string        `mapstructure:"theme"`
	RulesFile   string        `mapstructure:"rules_file"`
	WatchRules  bool          `mapstructure:"watch_rules"`
	EnableCache bool          `mapstructure:"enable_cache"`
	CacheDir    string        `mapstructure:"cache_dir"`
	Bridge      *BridgeConfig `mapstructure:"bridge"`
}

// DefaultConfig values
var DefaultConfig = Config{
	Version:     "0.3.0",
	Theme:       "dracula",
	RulesFile:   "",
	WatchRules:  false,
	EnableCache: true,
	CacheDir:    "",
	Bridge: &BridgeConfig{
		Host:                  "127.0.0.1",
		Port:                  8177,
		ConnectTimeoutSeconds: 3,
		HeaderTimeoutSeconds:  10,
	},
}

// cfgFile holds the path to the configuration file (set via CLI)
var cfgFile string

// LoadConfigs initializes the configuration from file, flags, and
// environment variables, and returns the final config.
func LoadConfigs(rootCmd *cobra.Command, cwd string) *Config {
	var config *Config

	setDefaults()

	viper.AutomaticEnv()
	bindEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error reading config file: %v", err)))
			os.Exit(1)
		}
	} else {
		viper.SetConfigName("kotpad-config")
		viper.AddConfigPath(cwd)
		viper.SetConfigType("yaml")
		if err := viper.ReadInConfig(); err != nil {
			viper.SetConfigType("json")
			// No config file at all is fine: defaults plus flags and env apply.
			_ = viper.ReadInConfig()
		}
	}

	bindFlags(rootCmd)

	if err := viper.Unmarshal(&config); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Unable to decode into struct: %v", err)))
		os.Exit(1)
	}

	return config
}

// setDefaults sets all default configuration values
func setDefaults() {
	viper.SetDefault("version", DefaultConfig.Version)
	viper.SetDefault("theme", DefaultConfig.Theme)
	viper.SetDefault("rules_file", DefaultConfig.RulesFile)
	viper.SetDefault("watch_rules", DefaultConfig.WatchRules)
	viper.SetDefault("enable_cache", DefaultConfig.EnableCache)
	viper.SetDefault("cache_dir", DefaultConfig.CacheDir)
	viper.SetDefault("bridge.host", DefaultConfig.Bridge.Host)
	viper.SetDefault("bridge.port", DefaultConfig.Bridge.Port)
	viper.SetDefault("bridge.connect_timeout_seconds", DefaultConfig.Bridge.ConnectTimeoutSeconds)
	viper.SetDefault("bridge.header_timeout_seconds", DefaultConfig.Bridge.HeaderTimeoutSeconds)
}

// bindEnv explicitly binds environment variables to configuration keys
func bindEnv() {
	_ = viper.BindEnv("theme", "THEME")
	_ = viper.BindEnv("rules_file", "RULES_FILE")
	_ = viper.BindEnv("watch_rules", "WATCH_RULES")
	_ = viper.BindEnv("enable_cache", "ENABLE_CACHE")
	_ = viper.BindEnv("cache_dir", "CACHE_DIR")
	_ = viper.BindEnv("bridge.host", "BRIDGE_HOST")
	_ = viper.BindEnv("bridge.port", "BRIDGE_PORT")
}

// bindFlags binds the CLI flags to configuration values.
func bindFlags(rootCmd *cobra.Command) {
	_ = viper.BindPFlag("theme", rootCmd.PersistentFlags().Lookup("theme"))
	_ = viper.BindPFlag("rules_file", rootCmd.PersistentFlags().Lookup("rules_file"))
	_ = viper.BindPFlag("watch_rules", rootCmd.PersistentFlags().Lookup("watch_rules"))
	_ = viper.BindPFlag("enable_cache", rootCmd.PersistentFlags().Lookup("enable_cache"))
	_ = viper.BindPFlag("cache_dir", rootCmd.PersistentFlags().Lookup("cache_dir"))
	_ = viper.BindPFlag("bridge.host", rootCmd.PersistentFlags().Lookup("bridge_host"))
	_ = viper.BindPFlag("bridge.port", rootCmd.PersistentFlags().Lookup("bridge_port"))
}

// InitFlags initializes the flags for the root command.
func InitFlags(rootCmd *cobra.Command) {
	// Use PersistentFlags so that these flags are available in all subcommands
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Specifies the path to a configuration file (JSON or YAML) that contains all the settings for the application.")

	rootCmd.PersistentFlags().String("theme", DefaultConfig.Theme, "Chroma theme for the fallback highlighter (e.g., 'dracula', 'monokai').")
	rootCmd.PersistentFlags().String("rules_file", DefaultConfig.RulesFile, "Path to an external highlighting rules file (YAML or JSON).")
	rootCmd.PersistentFlags().Bool("watch_rules", DefaultConfig.WatchRules, "Reload the rules file automatically when it changes.")
	rootCmd.PersistentFlags().Bool("enable_cache", DefaultConfig.EnableCache, "Enable the compile artifact cache.")
	rootCmd.PersistentFlags().String("cache_dir", DefaultConfig.CacheDir, "Directory for the compile artifact cache (default '.kotpad-cache').")

	rootCmd.Flags().BoolP("version", "v", false, "Specifies the version of the application.")

	rootCmd.PersistentFlags().String("bridge_host", DefaultConfig.Bridge.Host, "Host of the compiler bridge process.")
	rootCmd.PersistentFlags().Int("bridge_port", DefaultConfig.Bridge.Port, "Port of the compiler bridge process.")
}
