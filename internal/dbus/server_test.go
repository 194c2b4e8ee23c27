package dbus

import (
	"errors"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/notext/internal/model"
	"github.com/jmylchreest/notext/internal/registry"
)

type fakeNotificationBackend struct {
	submitted []model.Submission
	closed    []uint32
	nextID    uint32
	err       error
}

func (b *fakeNotificationBackend) Notify(s model.Submission) (uint32, error) {
	if b.err != nil {
		return 0, b.err
	}
	b.submitted = append(b.submitted, s)
	b.nextID++
	return b.nextID, nil
}

func (b *fakeNotificationBackend) CloseNotification(id uint32) error {
	if b.err != nil {
		return b.err
	}
	b.closed = append(b.closed, id)
	return nil
}

type fakeControlBackend struct {
	calls []string
	list  []model.Notification
	view  registry.View
	err   error
}

func (b *fakeControlBackend) record(name string) error {
	b.calls = append(b.calls, name)
	return b.err
}

func (b *fakeControlBackend) CloseCurrent() error { return b.record("CloseCurrent") }
func (b *fakeControlBackend) ExpandCurrent() error { return b.record("ExpandCurrent") }
func (b *fakeControlBackend) Next() error { return b.record("Next") }
func (b *fakeControlBackend) Prev() error { return b.record("Prev") }
func (b *fakeControlBackend) Invoke() error { return b.record("Invoke") }
func (b *fakeControlBackend) List() []model.Notification { return b.list }
func (b *fakeControlBackend) Status() registry.View { return b.view }

func TestNotificationServer_Notify(t *testing.T) {
	backend := &fakeNotificationBackend{}
	s := NewNotificationServer(nil, backend, nil)

	id, derr := s.Notify("App1", 0, "icon", "Hi", "body", []string{"default", "Open"},
		map[string]dbus.Variant{"urgency": dbus.MakeVariant(byte(1))}, -1)

	require.Nil(t, derr)
	assert.Equal(t, uint32(1), id)
	require.Len(t, backend.submitted, 1)
	assert.Equal(t, model.Submission{
		AppName:       "App1",
		Summary:       "Hi",
		Body:          "body",
		ExpireTimeout: -1,
	}, backend.submitted[0])
}

func TestNotificationServer_NotifyError(t *testing.T) {
	backend := &fakeNotificationBackend{err: model.ErrInvalidTimeout}
	s := NewNotificationServer(nil, backend, nil)

	id, derr := s.Notify("App1", 0, "", "Hi", "", nil, nil, -9)

	require.NotNil(t, derr)
	assert.Equal(t, uint32(0), id)
	assert.Equal(t, "org.freedesktop.DBus.Error.Failed", derr.Name)
}

func TestNotificationServer_CloseNotification(t *testing.T) {
	backend := &fakeNotificationBackend{}
	s := NewNotificationServer(nil, backend, nil)

	assert.Nil(t, s.CloseNotification(5))
	assert.Equal(t, []uint32{5}, backend.closed)

	backend.err = errors.New("signal failed")
	assert.NotNil(t, s.CloseNotification(6))
}

func TestNotificationServer_Information(t *testing.T) {
	s := NewNotificationServer(nil, &fakeNotificationBackend{}, nil)

	caps, derr := s.GetCapabilities()
	require.Nil(t, derr)
	assert.Empty(t, caps)

	s.SetServerInfo(ServerInfo{Name: "notext", Vendor: "CatThingy", Version: "1.0.0", SpecVersion: "1.2"})
	name, vendor, version, spec, derr := s.GetServerInformation()
	require.Nil(t, derr)
	assert.Equal(t, []string{"notext", "CatThingy", "1.0.0", "1.2"}, []string{name, vendor, version, spec})
}

func TestNotificationServer_StartWithoutConnection(t *testing.T) {
	s := NewNotificationServer(nil, &fakeNotificationBackend{}, nil)
	assert.Error(t, s.Start())
	assert.NoError(t, s.Stop())
}

func TestControlServer_Commands(t *testing.T) {
	backend := &fakeControlBackend{}
	c := NewControlServer(nil, backend, "", "", nil)

	assert.Nil(t, c.CloseCurrent())
	assert.Nil(t, c.ExpandCurrent())
	assert.Nil(t, c.Next())
	assert.Nil(t, c.Prev())
	assert.Nil(t, c.Invoke())

	assert.Equal(t, []string{"CloseCurrent", "ExpandCurrent", "Next", "Prev", "Invoke"}, backend.calls)
	assert.Equal(t, DefaultControlBusName, c.busName)
	assert.Equal(t, dbus.ObjectPath(DefaultControlPath), c.path)
}

func TestControlServer_CommandError(t *testing.T) {
	backend := &fakeControlBackend{err: errors.New("bus gone")}
	c := NewControlServer(nil, backend, "", "", nil)

	derr := c.Invoke()

	require.NotNil(t, derr)
	assert.Equal(t, "org.freedesktop.DBus.Error.Failed", derr.Name)
	assert.Contains(t, derr.Error(), "bus gone")
}

func TestControlServer_ListAndStatus(t *testing.T) {
	received := time.Unix(1700000000, 0)
	backend := &fakeControlBackend{
		list: []model.Notification{
			{ID: 1, AppName: "a", Summary: "one", ReceivedAt: received},
			{ID: 2, AppName: "b", Summary: "two", ReceivedAt: received},
		},
		view: registry.View{Index: 1, Len: 2, Has: true},
	}
	c := NewControlServer(nil, backend, "", "", nil)

	entries, derr := c.List()
	require.Nil(t, derr)
	require.Len(t, entries, 2)
	assert.Equal(t, uint32(2), entries[1].ID)
	assert.Equal(t, int64(1700000000), entries[0].ReceivedAt)

	index, length, derr := c.Status()
	require.Nil(t, derr)
	assert.Equal(t, uint32(2), index)
	assert.Equal(t, uint32(2), length)

	backend.view = registry.View{Index: registry.NoSelection}
	index, length, _ = c.Status()
	assert.Equal(t, uint32(0), index)
	assert.Equal(t, uint32(0), length)
}
