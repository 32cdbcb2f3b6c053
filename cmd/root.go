// Package cmd implements the CLI commands for grasskernel.
package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"grasskernel/kernelerr"
	"grasskernel/logging"
)

// Version information set at build time.
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// Global flags
var (
	globalConfig    string
	globalLog       string
	globalLogFormat string
	globalDebug     bool
)

// rootCmd is the base command for grasskernel.
var rootCmd = &cobra.Command{
	Use:   "grasskernel",
	Short: "A cooperatively-preemptive toy kernel core",
	Long: `grasskernel boots a small multi-process kernel core in a single
OS process: a round-robin scheduler, synchronous rendezvous IPC, and a
first-fit heap allocator, all driven by simulated processes running as
goroutines.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()
		return nil
	},
}

// Execute runs the root command. It wires kernelerr's fatal handler to
// os.Exit(1): a FATAL kernel condition (spec.md §7) is unrecoverable, so
// the binary reports it and stops rather than unwinding a panic up
// through cobra.
func Execute() error {
	kernelerr.OnFatal = func(err error) { os.Exit(1) }
	return rootCmd.Execute()
}

// GetContext returns a context that cancels on SIGINT/SIGTERM.
func GetContext() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	return ctx
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalConfig, "config", "", "path to a boot.yaml (default: built-in defaults)")
	rootCmd.PersistentFlags().StringVar(&globalLog, "log", "", "set the log file path")
	rootCmd.PersistentFlags().StringVar(&globalLogFormat, "log-format", "text", "set the format for log output (text or json)")
	rootCmd.PersistentFlags().BoolVar(&globalDebug, "debug", false, "enable debug logging")
}

func setupLogging() {
	var logOutput = os.Stderr
	if globalLog != "" {
		f, err := os.OpenFile(globalLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err == nil {
			logOutput = f
		}
	}

	logLevel := slog.LevelInfo
	if globalDebug {
		logLevel = slog.LevelDebug
	}

	if globalLogFormat == "json" || globalLog != "" || globalDebug {
		logger := logging.NewLogger(logging.Config{
			Level:  logLevel,
			Format: globalLogFormat,
			Output: logOutput,
		})
		logging.SetDefault(logger)
	}
}
