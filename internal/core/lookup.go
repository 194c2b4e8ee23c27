package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jmylchreest/notext/internal/model"
)

// LookupByID finds a notification by its id.
// Returns nil if not found.
func LookupByID(notifications []model.Notification, id uint32) *model.Notification {
	for i := range notifications {
		if notifications[i].ID == id {
			return &notifications[i]
		}
	}
	return nil
}

// LookupByIndex finds a notification by its index (1-based for user-friendliness).
// Returns nil if index is out of bounds.
func LookupByIndex(notifications []model.Notification, index int) *model.Notification {
	// Convert to 0-based
	idx := index - 1
	if idx < 0 || idx >= len(notifications) {
		return nil
	}
	return &notifications[idx]
}

// Lookup resolves a reference typed by a user: "3" is the third
// notification in display order, "#12" is the notification with id 12.
func Lookup(notifications []model.Notification, ref string) (*model.Notification, error) {
	ref = strings.TrimSpace(ref)

	if idStr, found := strings.CutPrefix(ref, "#"); found {
		id, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid id: %s", ref)
		}
		n := LookupByID(notifications, uint32(id))
		if n == nil {
			return nil, fmt.Errorf("no notification with id %d", id)
		}
		return n, nil
	}

	index, err := strconv.Atoi(ref)
	if err != nil {
		return nil, fmt.Errorf("invalid reference %q (use an index like 3 or an id like #12)", ref)
	}
	n := LookupByIndex(notifications, index)
	if n == nil {
		return nil, fmt.Errorf("index %d out of range (1-%d)", index, len(notifications))
	}
	return n, nil
}

// Search finds notifications matching a search term in summary or body.
// Case-insensitive substring match.
func Search(notifications []model.Notification, term string) []model.Notification {
	if term == "" {
		return notifications
	}

	term = strings.ToLower(term)
	var result []model.Notification

	for _, n := range notifications {
		if strings.Contains(strings.ToLower(n.Summary), term) ||
			strings.Contains(strings.ToLower(n.Body), term) {
			result = append(result, n)
		}
	}

	return result
}
