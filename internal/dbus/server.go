package dbus

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/jmylchreest/notext/internal/model"
)

const (
	// DBusInterface is the notification interface name.
	DBusInterface = "org.freedesktop.Notifications"
	// DBusPath is the notification object path.
	DBusPath = "/org/freedesktop/Notifications"
	// DBusBusName is the bus name to claim.
	DBusBusName = "org.freedesktop.Notifications"
)

// NotificationBackend stores notifications submitted by producers.
type NotificationBackend interface {
	Notify(s model.Submission) (uint32, error)
	CloseNotification(id uint32) error
}

// NotificationServer implements the org.freedesktop.Notifications D-Bus interface.
type NotificationServer struct {
	conn    *dbus.Conn
	logger  *slog.Logger
	backend NotificationBackend

	mu         sync.RWMutex
	serverInfo ServerInfo
	running    bool
}

// NewNotificationServer creates a new NotificationServer on conn.
func NewNotificationServer(conn *dbus.Conn, backend NotificationBackend, logger *slog.Logger) *NotificationServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationServer{
		conn:       conn,
		logger:     logger,
		backend:    backend,
		serverInfo: DefaultServerInfo(),
	}
}

// SetServerInfo sets the server information returned by GetServerInformation.
func (s *NotificationServer) SetServerInfo(info ServerInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.serverInfo = info
}

// Start exports the notification service and claims its bus name.
func (s *NotificationServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("server already running")
	}
	if s.conn == nil {
		return fmt.Errorf("not connected to D-Bus")
	}

	node := &introspect.Node{
		Name: DBusPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    DBusInterface,
				Methods: notificationMethods(),
				Signals: notificationSignals(),
			},
		},
	}
	if err := export(s.conn, s, DBusPath, DBusInterface, node); err != nil {
		return err
	}
	if err := requestName(s.conn, DBusBusName); err != nil {
		return err
	}

	s.running = true
	s.logger.Info("D-Bus notification server started", "interface", DBusInterface, "path", DBusPath)
	return nil
}

// Stop releases the bus name.
func (s *NotificationServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	if _, err := s.conn.ReleaseName(DBusBusName); err != nil {
		s.logger.Warn("failed to release bus name", "name", DBusBusName, "error", err)
	}
	s.logger.Info("D-Bus notification server stopped")
	return nil
}

// GetCapabilities returns the list of capabilities supported by this server.
// D-Bus method: GetCapabilities() -> as
func (s *NotificationServer) GetCapabilities() ([]string, *dbus.Error) {
	s.logger.Debug("GetCapabilities called")
	return ServerCapabilities, nil
}

// GetServerInformation returns information about the notification server.
// D-Bus method: GetServerInformation() -> (ssss)
func (s *NotificationServer) GetServerInformation() (string, string, string, string, *dbus.Error) {
	s.logger.Debug("GetServerInformation called")
	s.mu.RLock()
	info := s.serverInfo
	s.mu.RUnlock()
	return info.Name, info.Vendor, info.Version, info.SpecVersion, nil
}

// Notify handles incoming notification requests.
// D-Bus method: Notify(susssasa{sv}i) -> u
func (s *NotificationServer) Notify(
	appName string,
	replacesID uint32,
	appIcon string,
	summary string,
	body string,
	actions []string,
	hints map[string]dbus.Variant,
	expireTimeout int32,
) (uint32, *dbus.Error) {
	notification := &DBusNotification{
		AppName:       appName,
		ReplacesID:    replacesID,
		AppIcon:       appIcon,
		Summary:       summary,
		Body:          body,
		Actions:       actions,
		Hints:         hints,
		ExpireTimeout: expireTimeout,
	}

	s.logger.Debug("Notify called",
		"app_name", appName,
		"replaces_id", replacesID,
		"summary", summary,
		"expire_timeout", expireTimeout,
	)

	id, err := s.backend.Notify(notification.Submission())
	if err != nil {
		s.logger.Warn("Notify failed", "app_name", appName, "error", err)
		return 0, dbus.MakeFailedError(err)
	}
	return id, nil
}

// CloseNotification closes a notification by ID.
// D-Bus method: CloseNotification(u) -> nothing
func (s *NotificationServer) CloseNotification(id uint32) *dbus.Error {
	s.logger.Debug("CloseNotification called", "id", id)

	if err := s.backend.CloseNotification(id); err != nil {
		s.logger.Warn("CloseNotification failed", "id", id, "error", err)
		return dbus.MakeFailedError(err)
	}
	return nil
}

// export publishes v and its introspection data at path.
func export(conn *dbus.Conn, v any, path dbus.ObjectPath, iface string, node *introspect.Node) error {
	if err := conn.Export(v, path, iface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}
	if err := conn.Export(introspect.NewIntrospectable(node), path,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}
	return nil
}

// requestName claims name, failing if another process owns it.
func requestName(conn *dbus.Conn, name string) error {
	reply, err := conn.RequestName(name, dbus.NameFlagDoNotQueue|dbus.NameFlagReplaceExisting)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken", name)
	}
	return nil
}

// notificationMethods returns the D-Bus method introspection data.
func notificationMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "GetCapabilities",
			Args: []introspect.Arg{
				{Name: "capabilities", Type: "as", Direction: "out"},
			},
		},
		{
			Name: "GetServerInformation",
			Args: []introspect.Arg{
				{Name: "name", Type: "s", Direction: "out"},
				{Name: "vendor", Type: "s", Direction: "out"},
				{Name: "version", Type: "s", Direction: "out"},
				{Name: "spec_version", Type: "s", Direction: "out"},
			},
		},
		{
			Name: "Notify",
			Args: []introspect.Arg{
				{Name: "app_name", Type: "s", Direction: "in"},
				{Name: "replaces_id", Type: "u", Direction: "in"},
				{Name: "app_icon", Type: "s", Direction: "in"},
				{Name: "summary", Type: "s", Direction: "in"},
				{Name: "body", Type: "s", Direction: "in"},
				{Name: "actions", Type: "as", Direction: "in"},
				{Name: "hints", Type: "a{sv}", Direction: "in"},
				{Name: "expire_timeout", Type: "i", Direction: "in"},
				{Name: "id", Type: "u", Direction: "out"},
			},
		},
		{
			Name: "CloseNotification",
			Args: []introspect.Arg{
				{Name: "id", Type: "u", Direction: "in"},
			},
		},
	}
}

// notificationSignals returns the D-Bus signal introspection data.
func notificationSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: "NotificationClosed",
			Args: []introspect.Arg{
				{Name: "id", Type: "u"},
				{Name: "reason", Type: "u"},
			},
		},
		{
			Name: "ActionInvoked",
			Args: []introspect.Arg{
				{Name: "id", Type: "u"},
				{Name: "action_key", Type: "s"},
			},
		},
	}
}
