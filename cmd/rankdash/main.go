// Package main provides the CLI entry point for the ranking dashboard.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AdrianWisniewskiKaggle/Country-Specific-User-Ranking-Dashboard/internal/board"
	"github.com/AdrianWisniewskiKaggle/Country-Specific-User-Ranking-Dashboard/internal/cli"
	"github.com/AdrianWisniewskiKaggle/Country-Specific-User-Ranking-Dashboard/internal/config"
	"github.com/AdrianWisniewskiKaggle/Country-Specific-User-Ranking-Dashboard/internal/dataset"
	"github.com/AdrianWisniewskiKaggle/Country-Specific-User-Ranking-Dashboard/internal/etl"
	"github.com/AdrianWisniewskiKaggle/Country-Specific-User-Ranking-Dashboard/internal/logger"
	"github.com/AdrianWisniewskiKaggle/Country-Specific-User-Ranking-Dashboard/internal/metrics"
	"github.com/AdrianWisniewskiKaggle/Country-Specific-User-Ranking-Dashboard/internal/server"
)

// Exit codes
const (
	ExitSuccess      = 0
	ExitConfigError  = 1
	ExitDatasetError = 2
	ExitRuntimeError = 3
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	configPath string

	// Render command flags
	renderCountry         string
	renderAchievementType string
	renderWhere           string
	renderJSON            bool

	// Refresh command flags
	refreshUsers        string
	refreshAchievements string
	refreshOutput       string

	// Build information (set via ldflags during build)
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitRuntimeError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rankdash",
	Short: "Rankdash - Country-specific user ranking dashboard",
	Long: `Rankdash serves an interactive leaderboard over the joined
user-achievement table.

The dataset is loaded once at startup and is immutable afterwards; every
filter change triggers a fresh render against the full table.

Examples:
  # Serve the dashboard
  rankdash serve --config config.yaml

  # Rebuild the parquet table from the raw CSV exports
  rankdash refresh --users conf/Users.csv --achievements conf/UserAchievements.csv

  # Render once to stdout
  rankdash render --country US --achievement-type Competitions`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// Flag-level logging config; refined after the config file loads
		if verbose {
			logger.SetLevel(slog.LevelDebug)
		} else if quiet {
			logger.SetLevel(slog.LevelError)
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard and its JSON API",
	Long: `Serve the dashboard over HTTP.

The persisted parquet table is loaded once at startup. A load failure is
fatal; the server never starts without a valid table.

Exit codes:
  0 - Clean shutdown
  1 - Configuration errors
  2 - Dataset load errors
  3 - Runtime errors`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rebuild the parquet table from the raw CSV exports",
	Long: `Join Users.csv and UserAchievements.csv into the denormalized
parquet table the dashboard serves.

Achievement rows without usable ranking values are dropped; the profile
URL is derived from the user name. Paths default to the refresh section
of the configuration file.`,
	Args: cobra.NoArgs,
	Run:  runRefresh,
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the filtered leaderboard once to stdout",
	Long: `Render the leaderboard for the given filters and print it.

Useful for scripting; --json emits the rows as a JSON array instead of
a text table.

Examples:
  rankdash render --country US
  rankdash render --achievement-type Competitions --where "TotalGold > 0"
  rankdash render --json | jq '.[0]'`,
	Args: cobra.NoArgs,
	Run:  runRender,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print version, commit hash, and build date information.",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("rankdash %s (commit %s, built %s)\n", version, commit, buildDate)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the configuration file")

	renderCmd.Flags().StringVar(&renderCountry, "country", "", "Exact-match country filter")
	renderCmd.Flags().StringVar(&renderAchievementType, "achievement-type", "", "Exact-match achievement type filter")
	renderCmd.Flags().StringVar(&renderWhere, "where", "", "Expression predicate (e.g. 'TotalGold > 0')")
	renderCmd.Flags().BoolVar(&renderJSON, "json", false, "Emit rows as JSON")

	refreshCmd.Flags().StringVar(&refreshUsers, "users", "", "Path to Users.csv (defaults to config)")
	refreshCmd.Flags().StringVar(&refreshAchievements, "achievements", "", "Path to UserAchievements.csv (defaults to config)")
	refreshCmd.Flags().StringVar(&refreshOutput, "out", "", "Output parquet path (defaults to config)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves configuration and applies its logging settings,
// exiting on failure. Flags take precedence over the config file.
func loadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(ExitConfigError)
	}
	applyLogging(cfg)
	return cfg
}

func applyLogging(cfg *config.Config) {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	} else if quiet {
		level = slog.LevelError
	}

	format := logger.FormatJSON
	if cfg.LogFormat == "human" {
		format = logger.FormatHuman
	}
	logger.SetLevelAndFormat(level, format)
}

// loadTable loads the dataset, exiting on failure.
func loadTable(cfg *config.Config) *dataset.Table {
	table, err := dataset.Load(cfg.DatasetPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(ExitDatasetError)
	}
	return table
}

func runServe(_ *cobra.Command, _ []string) {
	cfg := loadConfig()
	table := loadTable(cfg)

	metrics.Init(cfg.MetricsAddr)
	metrics.DatasetRecords.Set(float64(table.Len()))

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.New(cfg, table).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("dashboard listening", "addr", cfg.ListenAddr, "records", table.Len())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err.Error())
			os.Exit(ExitRuntimeError)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err.Error())
			os.Exit(ExitRuntimeError)
		}
	}
}

func runRefresh(_ *cobra.Command, _ []string) {
	cfg := loadConfig()

	opts := etl.Options{
		UsersCSV:        cfg.Refresh.UsersCSV,
		AchievementsCSV: cfg.Refresh.AchievementsCSV,
		OutputPath:      cfg.Refresh.OutputPath,
	}
	if refreshUsers != "" {
		opts.UsersCSV = refreshUsers
	}
	if refreshAchievements != "" {
		opts.AchievementsCSV = refreshAchievements
	}
	if refreshOutput != "" {
		opts.OutputPath = refreshOutput
	}

	summary, err := etl.Refresh(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Metadata refresh failed: %v\n", err)
		os.Exit(ExitRuntimeError)
	}
	cli.PrintRefreshSummary(summary, opts.OutputPath, cli.OutputOptions{Verbose: verbose, Quiet: quiet})
}

func runRender(_ *cobra.Command, _ []string) {
	cfg := loadConfig()
	table := loadTable(cfg)

	rows, err := board.Render(table, board.Criteria{
		Country:         renderCountry,
		AchievementType: renderAchievementType,
		Where:           renderWhere,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Render failed: %v\n", err)
		os.Exit(ExitConfigError)
	}
	if len(rows) > cfg.MaxPageSize {
		rows = rows[:cfg.MaxPageSize]
	}

	if err := cli.PrintRows(rows, cli.OutputOptions{Verbose: verbose, Quiet: quiet, JSON: renderJSON}); err != nil {
		fmt.Fprintf(os.Stderr, "✗ Output failed: %v\n", err)
		os.Exit(ExitRuntimeError)
	}
}
