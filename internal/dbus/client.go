package dbus

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/notext/internal/model"
)

// ControlClient calls the control service of a running notextd.
type ControlClient struct {
	obj dbus.BusObject
}

// NewControlClient creates a client for the control service at busName/path.
// Empty values select the defaults.
func NewControlClient(conn *dbus.Conn, busName string, path dbus.ObjectPath) *ControlClient {
	if busName == "" {
		busName = DefaultControlBusName
	}
	if path == "" {
		path = DefaultControlPath
	}
	return &ControlClient{obj: conn.Object(busName, path)}
}

// Call invokes an argument-less control method such as "Next" or "CloseCurrent".
func (c *ControlClient) Call(ctx context.Context, method string) error {
	if err := c.obj.CallWithContext(ctx, ControlInterface+"."+method, 0).Err; err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

// List returns the active notifications in display order.
func (c *ControlClient) List(ctx context.Context) ([]model.Notification, error) {
	var entries []ListEntry
	if err := c.obj.CallWithContext(ctx, ControlInterface+".List", 0).Store(&entries); err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	out := make([]model.Notification, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Notification())
	}
	return out, nil
}

// Status returns the 1-based selected index (0 if none) and the count.
func (c *ControlClient) Status(ctx context.Context) (index, length uint32, err error) {
	if err := c.obj.CallWithContext(ctx, ControlInterface+".Status", 0).Store(&index, &length); err != nil {
		return 0, 0, fmt.Errorf("Status: %w", err)
	}
	return index, length, nil
}

// NotificationClient submits notifications to whichever server owns
// org.freedesktop.Notifications.
type NotificationClient struct {
	obj dbus.BusObject
}

// NewNotificationClient creates a client for the notification service.
func NewNotificationClient(conn *dbus.Conn) *NotificationClient {
	return &NotificationClient{obj: conn.Object(DBusBusName, DBusPath)}
}

// Send calls Notify and returns the id the server assigned.
func (c *NotificationClient) Send(ctx context.Context, s model.Submission) (uint32, error) {
	var id uint32
	call := c.obj.CallWithContext(ctx, DBusInterface+".Notify", 0,
		s.AppName,
		s.ReplacesID,
		"",
		s.Summary,
		s.Body,
		[]string{},
		map[string]dbus.Variant{},
		s.ExpireTimeout,
	)
	if err := call.Store(&id); err != nil {
		return 0, fmt.Errorf("Notify: %w", err)
	}
	return id, nil
}

// Close calls CloseNotification.
func (c *NotificationClient) Close(ctx context.Context, id uint32) error {
	if err := c.obj.CallWithContext(ctx, DBusInterface+".CloseNotification", 0, id).Err; err != nil {
		return fmt.Errorf("CloseNotification: %w", err)
	}
	return nil
}

// ServerInformation calls GetServerInformation.
func (c *NotificationClient) ServerInformation(ctx context.Context) (ServerInfo, error) {
	var info ServerInfo
	err := c.obj.CallWithContext(ctx, DBusInterface+".GetServerInformation", 0).
		Store(&info.Name, &info.Vendor, &info.Version, &info.SpecVersion)
	if err != nil {
		return ServerInfo{}, fmt.Errorf("GetServerInformation: %w", err)
	}
	return info, nil
}
