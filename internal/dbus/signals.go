package dbus

import (
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/notext/internal/model"
)

// SignalEmitter sends the notification service's signals on a bus connection.
type SignalEmitter struct {
	conn   *dbus.Conn
	logger *slog.Logger
}

// NewSignalEmitter creates a SignalEmitter for conn.
func NewSignalEmitter(conn *dbus.Conn, logger *slog.Logger) *SignalEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SignalEmitter{conn: conn, logger: logger}
}

// NotificationClosed emits the NotificationClosed signal.
// This signal is emitted when a notification is closed, either by timeout,
// user dismissal, or explicit close request.
func (e *SignalEmitter) NotificationClosed(id uint32, reason model.CloseReason) error {
	if e.conn == nil {
		return fmt.Errorf("not connected to D-Bus")
	}

	err := e.conn.Emit(DBusPath, DBusInterface+".NotificationClosed", id, uint32(reason))
	if err != nil {
		return fmt.Errorf("failed to emit NotificationClosed signal: %w", err)
	}

	e.logger.Debug("emitted NotificationClosed signal", "id", id, "reason", reason.String())
	return nil
}

// ActionInvoked emits the ActionInvoked signal.
// This signal is emitted when the user invokes an action on a notification.
func (e *SignalEmitter) ActionInvoked(id uint32, actionKey string) error {
	if e.conn == nil {
		return fmt.Errorf("not connected to D-Bus")
	}

	err := e.conn.Emit(DBusPath, DBusInterface+".ActionInvoked", id, actionKey)
	if err != nil {
		return fmt.Errorf("failed to emit ActionInvoked signal: %w", err)
	}

	e.logger.Debug("emitted ActionInvoked signal", "id", id, "action_key", actionKey)
	return nil
}
