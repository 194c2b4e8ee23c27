package dbus

import (
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/notext/internal/model"
)

// DBusNotification represents an incoming D-Bus Notify call.
// It contains the raw parameters from the org.freedesktop.Notifications.Notify method.
type DBusNotification struct {
	AppName       string
	ReplacesID    uint32
	AppIcon       string
	Summary       string
	Body          string
	Actions       []string // Alternating key, label pairs
	Hints         map[string]dbus.Variant
	ExpireTimeout int32 // -1 = server default, 0 = never expire
}

// Submission returns the plain-text fields notext stores.
// Icon, actions and hints are accepted on the wire but not modeled.
func (n *DBusNotification) Submission() model.Submission {
	return model.Submission{
		AppName:       n.AppName,
		ReplacesID:    n.ReplacesID,
		Summary:       n.Summary,
		Body:          n.Body,
		ExpireTimeout: n.ExpireTimeout,
	}
}

// ServerCapabilities lists the capabilities advertised by notextd.
// Bodies are reduced to plain text, so nothing optional is supported.
var ServerCapabilities = []string{}

// ServerInfo contains information about the notification server.
type ServerInfo struct {
	Name        string // "notext"
	Vendor      string // "CatThingy"
	Version     string // Build version
	SpecVersion string // "1.2"
}

// DefaultServerInfo returns the default server information.
func DefaultServerInfo() ServerInfo {
	return ServerInfo{
		Name:        "notext",
		Vendor:      "CatThingy",
		Version:     "0.1.0", // Will be replaced by build-time version
		SpecVersion: "1.2",
	}
}

// ListEntry is one active notification as returned by the control service's
// List method. It is marshaled as the struct (usssx).
type ListEntry struct {
	ID         uint32
	AppName    string
	Summary    string
	Body       string
	ReceivedAt int64 // Unix seconds
}

// NewListEntry converts a stored notification.
func NewListEntry(n model.Notification) ListEntry {
	return ListEntry{
		ID:         n.ID,
		AppName:    n.AppName,
		Summary:    n.Summary,
		Body:       n.Body,
		ReceivedAt: n.ReceivedAt.Unix(),
	}
}

// Notification converts the entry back to the model form.
// ExpireTimeout is not carried over the control service.
func (e ListEntry) Notification() model.Notification {
	return model.Notification{
		ID:         e.ID,
		AppName:    e.AppName,
		Summary:    e.Summary,
		Body:       e.Body,
		ReceivedAt: time.Unix(e.ReceivedAt, 0),
	}
}
