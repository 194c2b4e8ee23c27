package dbus

import (
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/notext/internal/model"
)

func TestSubmission(t *testing.T) {
	n := &DBusNotification{
		AppName:       "firefox",
		ReplacesID:    4,
		AppIcon:       "firefox",
		Summary:       "Download complete",
		Body:          "<b>file.zip</b>",
		Actions:       []string{"default", "Open"},
		Hints:         map[string]dbus.Variant{"urgency": dbus.MakeVariant(byte(2))},
		ExpireTimeout: -1,
	}

	s := n.Submission()

	assert.Equal(t, model.Submission{
		AppName:       "firefox",
		ReplacesID:    4,
		Summary:       "Download complete",
		Body:          "<b>file.zip</b>",
		ExpireTimeout: -1,
	}, s)
}

func TestListEntry(t *testing.T) {
	received := time.Unix(1767225600, 0)
	n := model.Notification{
		ID:            9,
		AppName:       "mail",
		Summary:       "New mail",
		Body:          "from bob",
		ExpireTimeout: 0,
		ReceivedAt:    received,
	}

	e := NewListEntry(n)

	assert.Equal(t, ListEntry{ID: 9, AppName: "mail", Summary: "New mail", Body: "from bob", ReceivedAt: 1767225600}, e)
	back := e.Notification()
	assert.Equal(t, n.ID, back.ID)
	assert.Equal(t, n.Body, back.Body)
	assert.True(t, received.Equal(back.ReceivedAt))
}

func TestListEntrySignature(t *testing.T) {
	sig := dbus.SignatureOf([]ListEntry{})
	assert.Equal(t, "a(usssx)", sig.String())
}

func TestDefaultServerInfo(t *testing.T) {
	info := DefaultServerInfo()
	assert.Equal(t, "notext", info.Name)
	assert.Equal(t, "CatThingy", info.Vendor)
	assert.Equal(t, "1.2", info.SpecVersion)
	assert.NotEmpty(t, info.Version)
}

func TestServerCapabilities(t *testing.T) {
	assert.NotNil(t, ServerCapabilities)
	assert.Empty(t, ServerCapabilities)
}
