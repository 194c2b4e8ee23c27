package dbus

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/jmylchreest/notext/internal/model"
	"github.com/jmylchreest/notext/internal/registry"
)

const (
	// ControlInterface is the control service interface name.
	ControlInterface = "io.github.jmylchreest.notext.Control"
	// DefaultControlPath is the control object path.
	DefaultControlPath = "/io/github/jmylchreest/notext/Control"
	// DefaultControlBusName is the bus name the control service claims.
	DefaultControlBusName = "io.github.jmylchreest.notext"
)

// ControlBackend is driven by the operator through the control service.
type ControlBackend interface {
	CloseCurrent() error
	ExpandCurrent() error
	Next() error
	Prev() error
	Invoke() error
	List() []model.Notification
	Status() registry.View
}

// ControlServer exposes navigation and dismissal of the selected notification.
type ControlServer struct {
	conn    *dbus.Conn
	logger  *slog.Logger
	backend ControlBackend

	busName string
	path    dbus.ObjectPath

	mu      sync.Mutex
	running bool
}

// NewControlServer creates a ControlServer. Empty busName or path select the defaults.
func NewControlServer(conn *dbus.Conn, backend ControlBackend, busName string, path dbus.ObjectPath, logger *slog.Logger) *ControlServer {
	if logger == nil {
		logger = slog.Default()
	}
	if busName == "" {
		busName = DefaultControlBusName
	}
	if path == "" {
		path = DefaultControlPath
	}
	return &ControlServer{
		conn:    conn,
		logger:  logger,
		backend: backend,
		busName: busName,
		path:    path,
	}
}

// Start exports the control service and claims its bus name.
func (c *ControlServer) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return fmt.Errorf("control server already running")
	}
	if c.conn == nil {
		return fmt.Errorf("not connected to D-Bus")
	}

	node := &introspect.Node{
		Name: string(c.path),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    ControlInterface,
				Methods: controlMethods(),
			},
		},
	}
	if err := export(c.conn, c, c.path, ControlInterface, node); err != nil {
		return err
	}
	if err := requestName(c.conn, c.busName); err != nil {
		return err
	}

	c.running = true
	c.logger.Info("D-Bus control server started", "name", c.busName, "path", c.path)
	return nil
}

// Stop releases the control bus name.
func (c *ControlServer) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil
	}
	c.running = false

	if _, err := c.conn.ReleaseName(c.busName); err != nil {
		c.logger.Warn("failed to release bus name", "name", c.busName, "error", err)
	}
	c.logger.Info("D-Bus control server stopped")
	return nil
}

// CloseCurrent dismisses the selected notification.
// D-Bus method: CloseCurrent()
func (c *ControlServer) CloseCurrent() *dbus.Error {
	return c.call("CloseCurrent", c.backend.CloseCurrent)
}

// ExpandCurrent asks the renderer for the full view.
// D-Bus method: ExpandCurrent()
func (c *ControlServer) ExpandCurrent() *dbus.Error {
	return c.call("ExpandCurrent", c.backend.ExpandCurrent)
}

// Next selects the following notification.
// D-Bus method: Next()
func (c *ControlServer) Next() *dbus.Error {
	return c.call("Next", c.backend.Next)
}

// Prev selects the preceding notification.
// D-Bus method: Prev()
func (c *ControlServer) Prev() *dbus.Error {
	return c.call("Prev", c.backend.Prev)
}

// Invoke emits the default action of the selected notification.
// D-Bus method: Invoke()
func (c *ControlServer) Invoke() *dbus.Error {
	return c.call("Invoke", c.backend.Invoke)
}

// List returns every active notification in display order.
// D-Bus method: List() -> a(usssx)
func (c *ControlServer) List() ([]ListEntry, *dbus.Error) {
	c.logger.Debug("List called")
	active := c.backend.List()
	entries := make([]ListEntry, 0, len(active))
	for _, n := range active {
		entries = append(entries, NewListEntry(n))
	}
	return entries, nil
}

// Status returns the 1-based selected index (0 if none) and the count.
// D-Bus method: Status() -> (uu)
func (c *ControlServer) Status() (uint32, uint32, *dbus.Error) {
	c.logger.Debug("Status called")
	v := c.backend.Status()
	var index uint32
	if v.Has {
		index = uint32(v.Index + 1)
	}
	return index, uint32(v.Len), nil
}

func (c *ControlServer) call(method string, fn func() error) *dbus.Error {
	c.logger.Debug(method + " called")
	if err := fn(); err != nil {
		c.logger.Warn(method+" failed", "error", err)
		return dbus.MakeFailedError(err)
	}
	return nil
}

// controlMethods returns the control interface introspection data.
func controlMethods() []introspect.Method {
	return []introspect.Method{
		{Name: "CloseCurrent"},
		{Name: "ExpandCurrent"},
		{Name: "Next"},
		{Name: "Prev"},
		{Name: "Invoke"},
		{
			Name: "List",
			Args: []introspect.Arg{
				{Name: "notifications", Type: "a(usssx)", Direction: "out"},
			},
		},
		{
			Name: "Status",
			Args: []introspect.Arg{
				{Name: "index", Type: "u", Direction: "out"},
				{Name: "len", Type: "u", Direction: "out"},
			},
		},
	}
}
