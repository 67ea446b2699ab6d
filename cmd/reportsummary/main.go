package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/nvandessel/reportsummary/internal/config"
	"github.com/nvandessel/reportsummary/internal/logging"
	"github.com/nvandessel/reportsummary/internal/store"
	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, newPrinter(rootCmd.ErrOrStderr()).errorLine(err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "reportsummary",
		Short: "Multi-run averaging for DTN simulator reports",
		Long: `reportsummary averages the reports of several simulation runs of the
same scenario, one run per seed directory, and renders the averaged
metrics as charts.

Runs of different length are aligned on the longest run's axis and padded
per metric before averaging.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for agent consumption)")
	rootCmd.PersistentFlags().String("root", ".", "Workspace root directory (archive and traces live in <root>/.reportsummary)")
	rootCmd.PersistentFlags().String("config", "", "Config file layered over ~/.reportsummary/config.yaml")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: info, debug or trace (default from config)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newAverageCmd(),
		newFamiliesCmd(),
		newExportCmd(),
		newHistoryCmd(),
		newBackupCmd(),
		newRestoreCmd(),
		newConfigCmd(),
		newMCPServerCmd(),
	)
	return rootCmd
}

// loadConfig loads the effective configuration: defaults, home config,
// --config file, environment, then --log-level. The result is not
// validated so callers can apply their own flags first.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadWithFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	return cfg, nil
}

// newLogger writes operational logs to stderr so stdout stays parseable.
func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
}

// openStore opens the summary archive for the workspace root.
func openStore(root string, cfg *config.Config) (*store.SQLiteSummaryStore, error) {
	st, err := store.NewSQLiteSummaryStore(cfg.StorePath(root))
	if err != nil {
		return nil, fmt.Errorf("failed to open summary archive: %w", err)
	}
	return st, nil
}

// signalContext returns a context that is cancelled on interrupt.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	notifySignals(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()
	return ctx, cancel
}
