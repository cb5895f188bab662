// Package cmd provides the stanza command-line interface.
//
// Configuration is resolved from three sources with clear precedence:
//  1. Command-line flags (--port, --drafts, ...) - highest priority
//  2. Environment variables with the STANZA_ prefix (STANZA_SERVER_PORT, ...)
//  3. The .stanza.yml file in the site root - lowest priority
package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/stanza-dev/stanza/internal/logging"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "stanza",
	Short: "A static site generator for personal sites and localized blogs",
	Long: `Stanza renders a personal portfolio site with a localized blog from
plain Markdown files. It generates the homepage feature grid, blog indexes,
tag and archive pages, RSS/Atom feeds, and a sitemap, and ships a
development server with live reload.

Quick Start:
  stanza init my-site             Create a starter site
  stanza serve                    Start the development server
  stanza build                    Render the site into public/
  stanza check                    Validate content and internal links`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Accept underscores in flag names, config keys use them
	rootCmd.SetGlobalNormalizationFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .stanza.yml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig wires viper to the config file and STANZA_ environment
// variables. A missing config file is not an error; defaults apply.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("STANZA_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".stanza")
	}

	viper.SetEnvPrefix("STANZA")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	_ = viper.ReadInConfig()
}

// newLogger builds the process logger from the log-level setting.
func newLogger() logging.Logger {
	logConfig := logging.DefaultConfig()
	logConfig.Level = logging.ParseLevel(viper.GetString("log-level"))
	return logging.NewLogger(logConfig)
}
