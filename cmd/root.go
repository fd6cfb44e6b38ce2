package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/aflcorr/internal/config"
	"github.com/pable/aflcorr/internal/storage"
	"github.com/pable/aflcorr/pkg/logger"
)

// version is overridden at build time with -ldflags "-X .../cmd.version=...".
var version = "dev"

var (
	dbPath     string
	configPath string
	logLevel   string
	noColor    bool

	cfg *config.Config
	log logger.Logger
)

var rootCmd = &cobra.Command{
	Use:               "aflcorr",
	Short:             "AFL player correlation matrices",
	Long:              "Import per-round AFL team statistics and build player-to-player correlation matrices, ordered by position.",
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaultDB := filepath.Join(mustUserHome(), ".aflcorr", "aflcorr.db")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "path to SQLite database")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (or $AFLCORR_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable coloured output")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(heatmapCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(duoCmd)
	rootCmd.AddCommand(teamsCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(dropCmd)
}

// setup loads configuration and initializes logging before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	if cfg, err = config.Load(cmd.Context(), configPath); err != nil {
		return err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := logger.Init(); err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return err
	}
	log = logger.Named(cmd.Name())
	if noColor {
		color.NoColor = true
	}
	return nil
}

// openDB opens the store, creating its directory on first use.
func openDB() (*storage.DB, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}

func mustUserHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
