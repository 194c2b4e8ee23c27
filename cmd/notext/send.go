package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/notext/internal/adapter/input"
	"github.com/jmylchreest/notext/internal/dbus"
	"github.com/jmylchreest/notext/internal/model"
)

var sendOpts struct {
	appName  string
	replaces uint32
	timeout  int32
	printID  bool
	from     string
}

var sendCmd = &cobra.Command{
	Use:   "send <summary> [body]",
	Short: "Submit a notification",
	Long: `Submit a notification through org.freedesktop.Notifications, like notify-send.

It works against any notification server, not only notextd.

Examples:
  notext send "Build finished" "all 42 tests passed"

  # Update the same notification in place
  id=$(notext send --print-id "Downloading" "0%")
  notext send --replaces "$id" "Downloading" "50%"

  # Never expire
  notext send --expire-timeout 0 "Reminder" "stand up"

  # Submit a batch, one JSON object per line or a JSON array
  notext send --from batch.jsonl
	Args: func(cmd *cobra.Command, args []string) error {
		if sendOpts.from != "" {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.RangeArgs(1, 2)(cmd, args)
	},
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd, infoCmd)

	sendCmd.Flags().StringVarP(&sendOpts.appName, "app", "a", "notext",
		"Application name")
	sendCmd.Flags().Uint32VarP(&sendOpts.replaces, "replaces", "r", 0,
		"Id of the notification to replace")
	sendCmd.Flags().Int32VarP(&sendOpts.timeout, "expire-timeout", "t", model.TimeoutDefault,
		"Milliseconds until the notification expires (-1 = server default, 0 = never)")
	sendCmd.Flags().BoolVarP(&sendOpts.printID, "print-id", "p", false,
		"Print the id assigned by the server")
	sendCmd.Flags().StringVar(&sendOpts.from, "from", "",
		"Read submissions as JSON from a file, or '-' for stdin")
}

func runSend(cmd *cobra.Command, args []string) error {
	if sendOpts.from != "" {
		return runSendBatch()
	}

	s := model.Submission{
		AppName:       sendOpts.appName,
		ReplacesID:    sendOpts.replaces,
		Summary:       args[0],
		ExpireTimeout: sendOpts.timeout,
	}
	if len(args) > 1 {
		s.Body = args[1]
	}
	if err := s.Validate(); err != nil {
		return err
	}

	ctx, cancel := callContext()
	defer cancel()

	id, err := dbus.NewNotificationClient(conn).Send(ctx, s)
	if err != nil {
		return err
	}
	logger.Debug("notification sent", "id", id, "app", s.AppName)

	if sendOpts.printID {
		fmt.Println(id)
	}
	return nil
}

// runSendBatch submits every entry read from --from. Entries without an
// app name get --app. It keeps going after a failed entry and reports all
// failures at the end.
func runSendBatch() error {
	adapter, err := input.NewAdapter(sendOpts.from)
	if err != nil {
		return err
	}

	ctx, cancel := callContext()
	defer cancel()

	submissions, err := adapter.Import(ctx)
	if err != nil {
		return err
	}

	client := dbus.NewNotificationClient(conn)
	var errs []error
	for _, s := range submissions {
		if s.AppName == "" {
			s.AppName = sendOpts.appName
		}
		id, err := client.Send(ctx, s)
		if err != nil {
			errs = append(errs, fmt.Errorf("%q: %w", s.Summary, err))
			continue
		}
		if sendOpts.printID {
			fmt.Println(id)
		}
	}

	logger.Debug("batch sent", "source", adapter.Name(), "count", len(submissions), "failed", len(errs))
	return errors.Join(errs...)
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show which notification server is running",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := callContext()
		defer cancel()

		info, err := dbus.NewNotificationClient(conn).ServerInformation(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("name:         %s\n", info.Name)
		fmt.Printf("vendor:       %s\n", info.Vendor)
		fmt.Printf("version:      %s\n", info.Version)
		fmt.Printf("spec version: %s\n", info.SpecVersion)
		return nil
	},
}
