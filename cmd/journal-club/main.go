// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the journal-club CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pdiddy/journal-club/internal/config"
	"github.com/pdiddy/journal-club/internal/logging"
	"github.com/pdiddy/journal-club/internal/secrets"
	"github.com/pdiddy/journal-club/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// v holds defaults, the config file and environment overrides.
	v = config.New()

	// loadedSecrets holds credentials loaded from .secrets/ at startup.
	loadedSecrets map[string]string

	// logger is the root logger, built once the config file is read.
	logger = zerolog.Nop()
)

// rootCmd is the base command for the journal-club CLI.
var rootCmd = &cobra.Command{
	Use:   "journal-club",
	Short: "Daily arXiv journal club posted to Slack",
	Long: `journal-club reads the day's arXiv listing for a category, lets a model
pick the interesting papers, and holds a three-persona discussion of each
one: a graduate student summarizes, a postdoc criticizes, a staff researcher
answers. Each discussion is translated into Japanese and posted to Slack as
a thread.

Papers are processed one at a time. A failure on one paper is reported in
the channel and the run moves on to the next.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfgFile, _ := cmd.Flags().GetString("config")
		used, err := config.ReadFile(v, cfgFile)
		if err != nil {
			return err
		}

		logger = logging.New(types.LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
			Output: v.GetString("logging.output"),
		})
		if used != "" {
			logger.Debug().Str("file", used).Msg("using config file")
		}

		secretsDir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(secretsDir, logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug().Strs("keys", keys).Msg("loaded secrets")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./journal-club.yaml or ~/.config/journal-club/config.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", secrets.DefaultDir, "directory of credential files")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().String("category", "", "arXiv category (default from config, hep-ph)")

	bindFlag("logging.level", "log-level")
	bindFlag("repository.category", "category")
}

// bindFlag lets a persistent flag override a config key when it is set.
func bindFlag(key, flag string) {
	// BindPFlag only fails on a nil flag.
	_ = v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag))
}

// loadConfig validates the full configuration. Commands that talk to models
// or Slack call it; history does not.
func loadConfig() (types.Config, error) {
	return config.Load(v, loadedSecrets)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
