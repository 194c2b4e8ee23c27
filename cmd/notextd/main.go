// Package main is the entry point for the notextd notification daemon.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	godbus "github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/notext/internal/config"
	"github.com/jmylchreest/notext/internal/daemon"
	"github.com/jmylchreest/notext/internal/dbus"
	"github.com/jmylchreest/notext/internal/registry"
	"github.com/jmylchreest/notext/internal/render"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

var globalOpts struct {
	verbose    bool
	logLevel   string
	configPath string
}

var rootCmd = &cobra.Command{
	Use:   "notextd",
	Short: "Text-only notification daemon for status bars",
	Long: `notextd owns org.freedesktop.Notifications on the session bus and keeps
the active notifications in an ordered list with a cursor.

The selected notification is printed to stdout as a record of
"tag|type|value" lines every time something changes. Use notext to
navigate, dismiss or act on it.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage:  true,
	Args:          cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := setupLogger()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return run(ctx, logger)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.logLevel, "log-level", "",
		"Log level: debug, info, warn, error (overrides --verbose)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/notext/notextd.toml)")
}

// setupLogger configures the global slog logger.
func setupLogger() (*slog.Logger, error) {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}
	if globalOpts.logLevel != "" {
		if err := level.UnmarshalText([]byte(globalOpts.logLevel)); err != nil {
			return nil, fmt.Errorf("invalid --log-level: %w", err)
		}
	}

	// stdout belongs to the renderer
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, nil
}

// run wires the daemon together and blocks until ctx is cancelled.
func run(ctx context.Context, logger *slog.Logger) error {
	logger.Info("starting notextd", "version", version)

	cfg, err := config.LoadDaemonConfig(globalOpts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	conn, err := godbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	defer func() { _ = conn.Close() }()

	reg := registry.New()
	changes := registry.NewChanges()

	d := daemon.New(reg, changes, dbus.NewSignalEmitter(conn, logger), daemon.Options{
		DefaultTimeout: cfg.Timeouts.Default.Duration(),
		MaxTimeout:     cfg.Timeouts.Max.Duration(),
		Logger:         logger,
	})
	defer d.Stop()

	notifications := dbus.NewNotificationServer(conn, d, logger)
	notifications.SetServerInfo(serverInfo(cfg))
	if err := notifications.Start(); err != nil {
		return fmt.Errorf("failed to start notification service: %w", err)
	}
	defer func() { _ = notifications.Stop() }()

	control := dbus.NewControlServer(conn, d, cfg.Control.BusName, godbus.ObjectPath(cfg.Control.Path), logger)
	if err := control.Start(); err != nil {
		return fmt.Errorf("failed to start control service: %w", err)
	}
	defer func() { _ = control.Stop() }()

	printer := render.NewPrinter(reg, changes, os.Stdout, logger)
	printer.SetBodyLimit(cfg.Render.BodyLimit)

	internalNotifier := daemon.NewInternalNotifier(d.Notify, logger)
	internalNotifier.SetEnabled(cfg.Internal.NotifyReload)
	internalNotifier.SetMinInterval(cfg.Internal.MinInterval.Duration())

	// Initialize config watcher for hot-reload
	configWatcher, err := config.NewWatcher(globalOpts.configPath, logger)
	if err != nil {
		logger.Warn("failed to create config watcher", "error", err)
	} else {
		configWatcher.SetReloadCallback(func(newConfig *config.DaemonConfig) {
			d.SetTimeouts(newConfig.Timeouts.Default.Duration(), newConfig.Timeouts.Max.Duration())
			printer.SetBodyLimit(newConfig.Render.BodyLimit)
			notifications.SetServerInfo(serverInfo(newConfig))
			internalNotifier.SetEnabled(newConfig.Internal.NotifyReload)
			internalNotifier.SetMinInterval(newConfig.Internal.MinInterval.Duration())

			if newConfig.Control != cfg.Control {
				logger.Warn("control bus name or path changed, restart notextd to apply")
			}
			internalNotifier.NotifyConfigReloaded()
		})
		configWatcher.SetErrorCallback(func(err error) {
			internalNotifier.NotifyConfigError(err)
		})
		if err := configWatcher.Start(ctx, cfg); err != nil {
			logger.Warn("failed to start config watcher", "error", err)
		}
		defer func() { _ = configWatcher.Stop() }()
	}

	logger.Info("notextd ready",
		"dbus_interface", dbus.DBusInterface,
		"control_bus_name", cfg.Control.BusName,
		"control_path", cfg.Control.Path)

	err = printer.Run(ctx)
	changes.Close()
	if err != nil {
		return fmt.Errorf("renderer stopped: %w", err)
	}

	logger.Info("notextd stopped")
	return nil
}

func serverInfo(cfg *config.DaemonConfig) dbus.ServerInfo {
	return dbus.ServerInfo{
		Name:        cfg.Server.Name,
		Vendor:      cfg.Server.Vendor,
		Version:     version,
		SpecVersion: cfg.Server.SpecVersion,
	}
}
