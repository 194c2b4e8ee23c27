// Package model defines the core data structures for notext.
package model

import (
	"errors"
	"time"
)

// Expire timeout sentinels from the freedesktop.org notification specification.
const (
	// TimeoutDefault asks the server to pick its own timeout.
	TimeoutDefault int32 = -1
	// TimeoutNever means the notification stays until it is closed.
	TimeoutNever int32 = 0
)

// DefaultActionKey is the action key emitted when the current notification is invoked.
const DefaultActionKey = "default"

// CloseReason represents the reason for closing a notification.
// These values are defined by the freedesktop.org notification specification.
type CloseReason uint32

const (
	// CloseReasonExpired indicates the notification expired (timeout reached).
	CloseReasonExpired CloseReason = 1
	// CloseReasonDismissed indicates the user dismissed the notification.
	CloseReasonDismissed CloseReason = 2
	// CloseReasonClosed indicates the notification was closed via CloseNotification.
	CloseReasonClosed CloseReason = 3
	// CloseReasonUndefined is reserved/undefined by the notification specification.
	CloseReasonUndefined CloseReason = 4
)

// String returns the string representation of the close reason.
func (r CloseReason) String() string {
	switch r {
	case CloseReasonExpired:
		return "expired"
	case CloseReasonDismissed:
		return "dismissed"
	case CloseReasonClosed:
		return "closed"
	case CloseReasonUndefined:
		return "undefined"
	default:
		return "unknown"
	}
}

// Notification is a single active notification as held by the registry.
// Body has already been passed through StripMarkup.
type Notification struct {
	ID            uint32    `json:"id" yaml:"id"`
	AppName       string    `json:"app_name" yaml:"app_name"`
	Summary       string    `json:"summary" yaml:"summary"`
	Body          string    `json:"body" yaml:"body"`
	ExpireTimeout int32     `json:"expire_timeout" yaml:"expire_timeout"`
	ReceivedAt    time.Time `json:"received_at" yaml:"received_at"`
}

// Submission is a producer request to create or replace a notification.
// It carries only the plain-text fields; icons, actions and hints are ignored.
type Submission struct {
	AppName       string
	ReplacesID    uint32
	Summary       string
	Body          string
	ExpireTimeout int32
}

// ErrInvalidTimeout is returned for expire timeouts below the -1 sentinel.
var ErrInvalidTimeout = errors.New("expire_timeout must be -1, 0 or a positive number of milliseconds")

// Validate checks the submission fields that the server depends on.
func (s *Submission) Validate() error {
	if s.ExpireTimeout < TimeoutDefault {
		return ErrInvalidTimeout
	}
	return nil
}

// Notification builds the stored form of the submission for the given id.
// The body is stripped of inline markup exactly once here.
func (s *Submission) Notification(id uint32, now time.Time) Notification {
	return Notification{
		ID:            id,
		AppName:       s.AppName,
		Summary:       s.Summary,
		Body:          StripMarkup(s.Body),
		ExpireTimeout: s.ExpireTimeout,
		ReceivedAt:    now,
	}
}

// Expiry resolves an expire timeout to a duration.
// It returns false for TimeoutNever. The default sentinel resolves to def and
// explicit values are clamped to limit when it is positive.
func Expiry(timeout int32, def, limit time.Duration) (time.Duration, bool) {
	switch {
	case timeout == TimeoutNever:
		return 0, false
	case timeout < 0:
		return def, def > 0
	}
	d := time.Duration(timeout) * time.Millisecond
	if limit > 0 && d > limit {
		d = limit
	}
	return d, true
}
