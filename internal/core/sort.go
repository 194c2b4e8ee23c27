package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jmylchreest/notext/internal/model"
)

// SortField represents a field to sort by.
type SortField string

const (
	SortByPosition  SortField = "position" // Display order as held by the daemon
	SortByTimestamp SortField = "timestamp"
	SortByApp       SortField = "app"
	SortByID        SortField = "id"
)

// SortOrder represents ascending or descending order.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortOptions specifies sorting criteria.
type SortOptions struct {
	Field SortField // Field to sort by
	Order SortOrder // Sort order (asc/desc)
}

// DefaultSortOptions returns default sort options (display order).
func DefaultSortOptions() SortOptions {
	return SortOptions{
		Field: SortByPosition,
		Order: SortAsc,
	}
}

// Sort sorts notifications in place based on the provided options.
// SortByPosition keeps the input order, reversed for SortDesc.
func Sort(notifications []model.Notification, opts SortOptions) {
	if len(notifications) == 0 {
		return
	}

	if opts.Field == SortByPosition || opts.Field == "" {
		if opts.Order == SortDesc {
			for i, j := 0, len(notifications)-1; i < j; i, j = i+1, j-1 {
				notifications[i], notifications[j] = notifications[j], notifications[i]
			}
		}
		return
	}

	sort.SliceStable(notifications, func(i, j int) bool {
		var less bool

		switch opts.Field {
		case SortByApp:
			less = strings.ToLower(notifications[i].AppName) < strings.ToLower(notifications[j].AppName)
		case SortByID:
			less = notifications[i].ID < notifications[j].ID
		default:
			less = notifications[i].ReceivedAt.Before(notifications[j].ReceivedAt)
		}

		if opts.Order == SortDesc {
			return !less
		}
		return less
	})
}

// ParseSortField parses a sort field string.
func ParseSortField(s string) (SortField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "position", "pos", "p":
		return SortByPosition, nil
	case "timestamp", "time", "t":
		return SortByTimestamp, nil
	case "app", "appname", "a":
		return SortByApp, nil
	case "id":
		return SortByID, nil
	default:
		return "", fmt.Errorf("invalid sort field: %s (use position, timestamp, app or id)", s)
	}
}

// ParseSortOrder parses a sort order string.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending", "a":
		return SortAsc, nil
	case "desc", "descending", "d":
		return SortDesc, nil
	default:
		return "", fmt.Errorf("invalid sort order: %s (use asc or desc)", s)
	}
}
