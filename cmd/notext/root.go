// Package main provides the CLI entrypoint for notext.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	godbus "github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/notext/internal/config"
	"github.com/jmylchreest/notext/internal/dbus"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	globalOpts struct {
		verbose    bool
		configPath string
		busName    string
		objectPath string
		timeout    time.Duration
	}
	logger *slog.Logger

	// conn is the shared session bus connection
	conn *godbus.Conn
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "notext",
	Short: "Control a running notextd",
	Long: `notext talks to notextd over the session bus.

It moves the cursor through the active notifications, dismisses or expands
the selected one, invokes its default action, lists what is active and can
submit notifications of its own.

Bind the navigation commands to keys or to clicks on your bar:
  notext next
  notext prev
  notext close
  notext expand
  notext invoke`,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()

		// The control bus name and path come from the daemon's config unless
		// given on the command line.
		cfg, err := config.LoadDaemonConfig(globalOpts.configPath)
		if err != nil {
			logger.Warn("failed to load config, using defaults", "error", err)
			cfg = config.DefaultDaemonConfig()
		}
		if globalOpts.busName == "" {
			globalOpts.busName = cfg.Control.BusName
		}
		if globalOpts.objectPath == "" {
			globalOpts.objectPath = cfg.Control.Path
		}

		conn, err = godbus.ConnectSessionBus()
		if err != nil {
			return fmt.Errorf("failed to connect to session bus: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if conn != nil {
			return conn.Close()
		}
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to notextd config file (default: ~/.config/notext/notextd.toml)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.busName, "bus-name", "",
		"Bus name of the control service (default: from config)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.objectPath, "path", "",
		"Object path of the control service (default: from config)")
	rootCmd.PersistentFlags().DurationVar(&globalOpts.timeout, "timeout", 5*time.Second,
		"How long to wait for notextd to answer")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, opts)
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// callContext returns a context bounded by --timeout.
func callContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), globalOpts.timeout)
}

// controlClient returns a client for the configured control service.
func controlClient() *dbus.ControlClient {
	return dbus.NewControlClient(conn, globalOpts.busName, godbus.ObjectPath(globalOpts.objectPath))
}
