// Package cmd provides the CLI commands for the piwake daemon.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tilmanv/piwake/internal/adapters/storage"
	"github.com/tilmanv/piwake/internal/config"
	"github.com/tilmanv/piwake/internal/domain"
	"github.com/tilmanv/piwake/internal/ports"
	"github.com/tilmanv/piwake/internal/services"
)

var (
	// Version info (set at build time via ldflags)
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"

	// Global flags
	dbPath     string
	logLevel   string
	brokerFlag string
	panelMode  bool

	// Global dependencies
	appConfig   *config.Config
	logger      *slog.Logger
	store       ports.Storage
	clockConfig *domain.Config
	events      *domain.Publisher
	persistence *services.Persistence
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "piwake",
	Short: "piwake - a bedside alarm clock daemon for the Raspberry Pi",
	Long: `piwake drives a bedside alarm clock: it schedules recurring and
one-time alarms, plays internet radio streams through mpv, and reads the
front panel buttons and rotary encoder over GPIO.

Run "piwake" with no arguments to start the clock. Use --panel to drive
it from a terminal instead of the GPIO front panel.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeServices()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return cleanupServices()
	},
	RunE: runClock,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the database file (default: ~/.piwake/piwake.db)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.Flags().StringVar(&brokerFlag, "broker", "", "MQTT broker URL for telemetry (overrides config)")
	rootCmd.Flags().BoolVar(&panelMode, "panel", false, "Drive the clock from a terminal panel instead of GPIO")

	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("piwake\nVersion: {{.Version}}\n")

	rootCmd.AddCommand(alarmsCmd)
	rootCmd.AddCommand(streamsCmd)
}

// initializeServices sets up configuration, logging, storage and the
// in-memory clock state shared by all commands.
func initializeServices() error {
	var err error
	appConfig, err = config.Load()
	if err != nil {
		// If config loading fails, use defaults
		appConfig = config.DefaultConfig()
	}

	logger = newLogger()
	slog.SetDefault(logger)

	if dbPath == "" {
		dbPath = config.GetDBPath(appConfig)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	store, err = storage.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	clockConfig = domain.NewConfig(appConfig.ToDomainSettings())
	events = domain.NewPublisher()

	persistence = services.NewPersistence(store, clockConfig, logger)
	if err := persistence.Load(context.Background()); err != nil {
		return fmt.Errorf("failed to load stored alarms: %w", err)
	}

	return nil
}

// cleanupServices closes all resources.
func cleanupServices() error {
	if store != nil {
		return store.Close()
	}
	return nil
}

// newLogger builds the process logger. The terminal panel owns stderr
// while it runs, so panel mode logs to a file instead.
func newLogger() *slog.Logger {
	var level slog.Level
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var out io.Writer = os.Stderr
	if panelMode {
		logPath := filepath.Join(appConfig.Storage.DataDir, "piwake.log")
		if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644); err == nil {
			out = f
		}
	}

	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
}

// setupSignalHandler sets up a context that cancels on interrupt signals.
func setupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
	}()

	return ctx
}
