// Package main provides the CLI entrypoint for winstack.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/winstack/internal/config"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// altScreen marks commands that own the terminal, so logs must not go to stderr.
const altScreen = "alt-screen"

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose    bool
		configPath string
		logFile    string
	}
	logger  *slog.Logger
	logSink *os.File
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "winstack",
	Short: "Gesture-driven window stack playground",
	Long: `winstack manages a stack of full-screen windows that can be pushed,
popped, dragged down, flung away and lowered with pointer gestures.

Running winstack without a subcommand launches the interactive TUI, where
mouse drags act as touch pans. Use "winstack replay" to run scripted
interactions headlessly and print the resulting callbacks.`,
	Version:     fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	Annotations: map[string]string{altScreen: "true"},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Setup logging
		if err := setupLogger(cmd.Annotations[altScreen] == "true"); err != nil {
			return err
		}

		// Load configuration
		var err error
		cfg, err = config.Load(configPath())
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logSink != nil {
			return logSink.Close()
		}
		return nil
	},
	// Default to TUI when no subcommand is provided
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, args)
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/winstack/config.toml)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.logFile, "log-file", "",
		"Write logs to this file (the TUI discards logs otherwise)")
}

// setupLogger configures the global slog logger. Commands that take over the
// terminal log to --log-file or nowhere.
func setupLogger(quiet bool) error {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	// Log to stderr so stdout is clean for output
	var w io.Writer = os.Stderr
	switch {
	case globalOpts.logFile != "":
		f, err := os.OpenFile(globalOpts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		logSink = f
		w = f
	case quiet:
		w = io.Discard
	}

	logger = slog.New(slog.NewTextHandler(w, opts))
	slog.SetDefault(logger)
	return nil
}

// configPath returns the --config path or the default.
func configPath() string {
	if globalOpts.configPath != "" {
		return globalOpts.configPath
	}
	return config.Path()
}

// getConfig returns the global config instance.
func getConfig() *config.Config {
	return cfg
}
