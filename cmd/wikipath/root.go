package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/wikipath-mcp/internal/config"
	"github.com/dshills/wikipath-mcp/internal/pagesource"
)

var (
	cfgFile string

	// v holds defaults, the config file, environment and bound flags
	v = config.New()

	// cfg and logger are set by the root command before any subcommand runs
	cfg    *config.Config
	logger *slog.Logger

	rootCmd = &cobra.Command{
		Use:   "wikipath",
		Short: "wikipath: find link paths between Wikipedia pages",
		Long: `wikipath crawls Wikipedia links from a source page toward a target page,
expanding the links whose titles best match the words of the target page.

It runs as a command line tool or as an MCP server (wikipath serve).
Fetched pages are cached in SQLite so repeated crawls stay fast.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.wikipath.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")
	flags.String("source", pagesource.KindWikipedia, "page source (wikipedia, fixture)")
	flags.String("fixture", "", "JSON link graph used by the fixture source")
	flags.String("db", "", "page cache database path (default is ~/.wikipath/wikipath.db)")
	flags.Bool("cache", true, "cache fetched pages in memory and SQLite")
	flags.String("endpoint", "", "MediaWiki API endpoint")
	flags.Bool("all-namespaces", false, "follow links outside the main article namespace")

	// Bind flags to viper
	bindFlag(flags.Lookup("log-level"), "log.level")
	bindFlag(flags.Lookup("log-format"), "log.format")
	bindFlag(flags.Lookup("source"), "source.kind")
	bindFlag(flags.Lookup("fixture"), "source.fixture_path")
	bindFlag(flags.Lookup("db"), "cache.db_path")
	bindFlag(flags.Lookup("cache"), "cache.enabled")
	bindFlag(flags.Lookup("endpoint"), "wiki.endpoint")
	bindFlag(flags.Lookup("all-namespaces"), "wiki.all_namespaces")
}

// initConfig reads in the config file and ENV variables and builds the logger
func initConfig(cmd *cobra.Command, args []string) error {
	if err := config.ReadFile(v, cfgFile); err != nil {
		return err
	}

	// --fixture alone selects the fixture source
	if f := cmd.Flags().Lookup("fixture"); f != nil && f.Changed {
		if s := cmd.Flags().Lookup("source"); s == nil || !s.Changed {
			v.Set("source.kind", pagesource.KindFixture)
		}
	}

	loaded, err := config.Load(v)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg = loaded

	logger = newLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	if used := v.ConfigFileUsed(); used != "" {
		logger.Debug("using config file", "path", used)
	}
	return nil
}

// newLogger builds the stderr logger. stdout is reserved for command output
// and the MCP protocol.
func newLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
