package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/docsync/internal/config"
	"github.com/dshills/docsync/internal/logger"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	flagRoot  string
	flagDebug bool

	// appConfig is loaded once per invocation, before any command runs
	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "docsync",
	Short: "Sync a documentation tree into a vector search index",
	Long: `docsync walks a tree of markdown and MDX documents, splits each changed
document into heading-delimited sections, embeds every section and stores
the result. Unchanged documents are skipped by checksum, so a run only pays
for what changed since the last one.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagRoot, "root", "", "documentation root (overrides DOCSYNC_ROOT)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
}

// loadConfig reads configuration, applies flag overrides and installs the
// default logger. Logs go to stderr; stdout carries results and MCP traffic.
func loadConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if flagRoot != "" {
		cfg.Root = flagRoot
	}
	if flagDebug {
		cfg.LogLevel = "debug"
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log, err := logger.New(os.Stderr, level, cfg.LogFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(log)

	appConfig = cfg
	return nil
}
