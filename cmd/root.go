// Package cmd provides the command-line interface for bundlecfg.
//
// Configuration System:
//
//	Settings come from several sources with clear precedence:
//	1. Command-line flags (--config, --port, etc.) - highest priority
//	2. BUNDLECFG_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (BUNDLECFG_OUTPUT, BUNDLECFG_DEV_SERVER_PORT, etc.)
//	4. Configuration file (.bundlecfg.yml) - lowest priority
//
// The build mode is not a setting: it is read once from the variable named
// by mode_env (NODE_ENV unless configured) and passed down explicitly.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bundlecfg",
	Short: "Derive and run the front-end build configuration for a project",
	Long: `bundlecfg derives a complete front-end build configuration from the
project layout and the build mode, then hands it to esbuild.

The mode is read from NODE_ENV (or the variable named by mode_env):
"development" selects the development profile, anything else production.

Quick Start:
  bundlecfg print                 Show the derived configuration
  bundlecfg validate              Check the project layout
  bundlecfg build                 Build into the output directory
  bundlecfg serve                 Start the dev server on port 3000
  bundlecfg watch                 Rebuild when sources change`,
	SilenceUsage: true,
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .bundlecfg.yml, can also use BUNDLECFG_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig selects the config file and enables BUNDLECFG_ environment
// overrides.
//
// Config file priority (highest to lowest):
//  1. --config flag
//  2. BUNDLECFG_CONFIG_FILE environment variable
//  3. .bundlecfg.yml in the current directory
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("BUNDLECFG_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".bundlecfg")
	}

	// BUNDLECFG_DEV_SERVER_PORT, BUNDLECFG_TEMPLATES_DIR, ...
	viper.SetEnvPrefix("BUNDLECFG")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing file leaves the defaults in place.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
