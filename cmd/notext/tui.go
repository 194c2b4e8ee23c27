package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/notext/internal/dbus"
	"github.com/jmylchreest/notext/internal/model"
	"github.com/jmylchreest/notext/internal/tui"
)

var tuiOpts struct {
	refresh   time.Duration
	clipboard string
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive controller for notextd",
	Long: `Launch an interactive terminal view of the active notifications.

The list refreshes from notextd while it is open. The notification that is
selected in the daemon is marked with '▶'.

Key bindings:
  j/k, ↑/↓   Move the highlight
  n/p        Select next/previous in notextd
  x          Dismiss the selected notification
  e          Expand the selected notification
  o          Invoke the selected notification
  d          Close the highlighted notification
  enter      View details
  c / s      Copy body / summary
  /          Search or filter
  ?          Help
  q          Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	tuiCmd.Flags().DurationVar(&tuiOpts.refresh, "refresh", time.Second,
		"How often to poll notextd")
	tuiCmd.Flags().StringVar(&tuiOpts.clipboard, "clipboard", "",
		"Clipboard command (default: wl-copy, xclip or xsel)")
}

func runTUI(cmd *cobra.Command, args []string) error {
	return tui.Run(tui.Options{
		Backend: busBackend{
			control:       controlClient(),
			notifications: dbus.NewNotificationClient(conn),
		},
		RefreshInterval:  tuiOpts.refresh,
		CallTimeout:      globalOpts.timeout,
		ClipboardCommand: tuiOpts.clipboard,
	})
}

// busBackend drives the TUI over the session bus.
type busBackend struct {
	control       *dbus.ControlClient
	notifications *dbus.NotificationClient
}

func (b busBackend) Snapshot(ctx context.Context) ([]model.Notification, int, error) {
	return fetch(ctx)
}

func (b busBackend) Call(ctx context.Context, method string) error {
	return b.control.Call(ctx, method)
}

func (b busBackend) Close(ctx context.Context, id uint32) error {
	return b.notifications.Close(ctx, id)
}
