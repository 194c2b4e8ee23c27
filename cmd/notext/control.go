package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/notext/internal/dbus"
)

var closeOpts struct {
	id uint32
}

// controlCommand builds a command that calls one argument-less control method.
func controlCommand(use, method, short, long string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := callContext()
			defer cancel()

			logger.Debug("calling control method", "method", method, "bus_name", globalOpts.busName)
			return controlClient().Call(ctx, method)
		},
	}
}

var nextCmd = controlCommand("next", "Next",
	"Select the next notification",
	`Move the cursor to the next notification, wrapping from the last to the first.`)

var prevCmd = controlCommand("prev", "Prev",
	"Select the previous notification",
	`Move the cursor to the previous notification, wrapping from the first to the last.`)

var expandCmd = controlCommand("expand", "ExpandCurrent",
	"Show the full body of the selected notification",
	`Ask notextd to print the selected notification with its body untruncated.`)

var invokeCmd = controlCommand("invoke", "Invoke",
	"Invoke the default action of the selected notification",
	`Emit ActionInvoked with the "default" key for the selected notification.
The notification stays active; the sending application decides what to do.`)

var closeCmd = &cobra.Command{
	Use:   "close",
	Short: "Dismiss the selected notification",
	Long: `Dismiss the selected notification. Its sender receives NotificationClosed
with reason 2 (dismissed by the user).

With --id, close that notification through the notification service instead,
as an application would; the sender receives reason 3.

Examples:
  # Dismiss whatever is selected
  notext close

  # Close every active notification
  notext list --format ids | xargs -n1 notext close --id`,
	Args: cobra.NoArgs,
	RunE: runClose,
}

func init() {
	rootCmd.AddCommand(nextCmd, prevCmd, expandCmd, invokeCmd, closeCmd)

	closeCmd.Flags().Uint32Var(&closeOpts.id, "id", 0,
		"Close the notification with this id instead of the selected one")
}

func runClose(cmd *cobra.Command, args []string) error {
	ctx, cancel := callContext()
	defer cancel()

	if closeOpts.id == 0 {
		return controlClient().Call(ctx, "CloseCurrent")
	}

	if err := dbus.NewNotificationClient(conn).Close(ctx, closeOpts.id); err != nil {
		return fmt.Errorf("failed to close notification %d: %w", closeOpts.id, err)
	}
	return nil
}
