package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/notext/internal/adapter/output"
	"github.com/jmylchreest/notext/internal/core"
	"github.com/jmylchreest/notext/internal/model"
)

var listOpts struct {
	// Filter options
	since  string
	app    string
	search string
	filter string
	limit  int

	// Sort options
	sortBy    string
	sortOrder string

	// Output options
	format   string
	template string
	bodyLen  int
	noTime   bool
}

var showOpts struct {
	field  string
	format string
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List active notifications",
	Long: `List the active notifications in display order.

The selected notification is marked with '*' in plain output.

Examples:
  # Human readable
  notext list

  # Machine readable
  notext list --format json
  notext list --format yaml

  # Only recent Slack notifications mentioning a meeting
  notext list --app Slack --since 30m --search meeting

  # Filter expressions (see 'notext list --help')
  notext list --filter 'summary~error,id>10'

  # Pick one with a launcher
  notext list --format dmenu | fuzzel -d`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var showCmd = &cobra.Command{
	Use:   "show [index|#id]",
	Short: "Print one notification",
	Long: `Print one notification, or a single field of it.

Without an argument the selected notification is printed. An index is
1-based in display order; an id is written with a leading '#'.

Examples:
  # Copy the body of the selected notification
  notext show --field body | wl-copy

  # The third notification as JSON
  notext show 3 --format json

  # By id
  notext show '#12'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(listCmd, showCmd)

	// Filter flags
	listCmd.Flags().StringVar(&listOpts.since, "since", "",
		"Show notifications received within the duration (e.g., 10m, 1h, 1d)")
	listCmd.Flags().StringVar(&listOpts.app, "app", "",
		"Filter by application name (exact match)")
	listCmd.Flags().StringVarP(&listOpts.search, "search", "s", "",
		"Search in summary and body")
	listCmd.Flags().StringVar(&listOpts.filter, "filter", "",
		"Filter expression: field=value,... (fields: app, summary, body, id, timestamp; ops: = != ~ ~= > < >= <=)")
	listCmd.Flags().IntVarP(&listOpts.limit, "limit", "n", 0,
		"Maximum number of notifications to show (0=unlimited)")

	// Sort flags
	listCmd.Flags().StringVar(&listOpts.sortBy, "sort", "position",
		"Sort by field (position, timestamp, app, id)")
	listCmd.Flags().StringVar(&listOpts.sortOrder, "order", "asc",
		"Sort order (asc, desc)")

	// Output flags
	listCmd.Flags().StringVarP(&listOpts.format, "format", "f", "plain",
		fmt.Sprintf("Output format %v", output.FormatTypes))
	listCmd.Flags().StringVar(&listOpts.template, "template", "",
		"Custom Go template for plain/dmenu output")
	listCmd.Flags().IntVar(&listOpts.bodyLen, "body-width", 80,
		"Maximum body width in columns (0=unlimited)")
	listCmd.Flags().BoolVar(&listOpts.noTime, "no-time", false,
		"Hide the relative receive time")

	showCmd.Flags().StringVar(&showOpts.field, "field", "",
		"Output single field (id, app, summary, body, all)")
	showCmd.Flags().StringVarP(&showOpts.format, "format", "f", "plain",
		fmt.Sprintf("Output format when --field is not set %v", output.FormatTypes))
}

// fetch returns the active notifications and the 1-based selected index.
// The two calls are not atomic; the list may change in between.
func fetch(ctx context.Context) ([]model.Notification, int, error) {
	client := controlClient()
	notifications, err := client.List(ctx)
	if err != nil {
		return nil, 0, err
	}
	index, _, err := client.Status(ctx)
	if err != nil {
		return nil, 0, err
	}
	if int(index) > len(notifications) {
		index = 0
	}
	return notifications, int(index), nil
}

func runList(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormatType(listOpts.format)
	if err != nil {
		return err
	}
	since, err := core.ParseDuration(listOpts.since)
	if err != nil {
		return err
	}
	expr, err := core.ParseFilter(listOpts.filter)
	if err != nil {
		return err
	}
	sortField, err := core.ParseSortField(listOpts.sortBy)
	if err != nil {
		return err
	}
	sortOrder, err := core.ParseSortOrder(listOpts.sortOrder)
	if err != nil {
		return err
	}

	ctx, cancel := callContext()
	defer cancel()

	notifications, index, err := fetch(ctx)
	if err != nil {
		return err
	}

	var selectedID uint32
	if current := core.LookupByIndex(notifications, index); current != nil {
		selectedID = current.ID
	}

	notifications = core.Search(notifications, listOpts.search)
	notifications = core.FilterWithExpr(notifications, expr)
	core.Sort(notifications, core.SortOptions{Field: sortField, Order: sortOrder})
	notifications = core.Filter(notifications, core.FilterOptions{
		Since:     since,
		AppFilter: listOpts.app,
		Limit:     listOpts.limit,
	})

	opts := output.DefaultFormatterOptions()
	opts.Template = listOpts.template
	opts.BodyMaxWidth = listOpts.bodyLen
	opts.ShowTime = !listOpts.noTime
	// Filtering and sorting move the selected notification
	for i, n := range notifications {
		if n.ID == selectedID {
			opts.Current = i + 1
		}
	}

	return output.NewFormatter(format, opts).Format(os.Stdout, notifications)
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx, cancel := callContext()
	defer cancel()

	notifications, index, err := fetch(ctx)
	if err != nil {
		return err
	}

	var n *model.Notification
	if len(args) == 1 {
		n, err = core.Lookup(notifications, args[0])
		if err != nil {
			return err
		}
	} else {
		n = core.LookupByIndex(notifications, index)
		if n == nil {
			return errors.New("no notification selected")
		}
	}

	if showOpts.field != "" {
		fmt.Println(output.FormatField(n, showOpts.field))
		return nil
	}

	format, err := output.ParseFormatType(showOpts.format)
	if err != nil {
		return err
	}
	opts := output.DefaultFormatterOptions()
	opts.ShowIndex = false
	opts.BodyMaxWidth = 0
	opts.IncludeNewline = true
	return output.NewFormatter(format, opts).Format(os.Stdout, []model.Notification{*n})
}
