package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/notext/internal/model"
)

type fakeBackend struct {
	mu            sync.Mutex
	notifications []model.Notification
	current       int
	calls         []string
	closed        []uint32
	err           error
}

func (b *fakeBackend) Snapshot(ctx context.Context) ([]model.Notification, int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return nil, 0, b.err
	}
	return append([]model.Notification(nil), b.notifications...), b.current, nil
}

func (b *fakeBackend) Call(ctx context.Context, method string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, method)
	return b.err
}

func (b *fakeBackend) Close(ctx context.Context, id uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = append(b.closed, id)
	return b.err
}

func testNotifications() []model.Notification {
	received := time.Now().Add(-time.Minute)
	return []model.Notification{
		{ID: 4, AppName: "Slack", Summary: "standup", Body: "in five minutes", ReceivedAt: received},
		{ID: 7, AppName: "mail", Summary: "invoice", Body: "payment received", ReceivedAt: received},
		{ID: 9, AppName: "build", Summary: "pipeline failed", Body: "error in step 3", ReceivedAt: received},
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// newTestModel returns a sized model that has applied one snapshot.
func newTestModel(t *testing.T, backend *fakeBackend) Model {
	t.Helper()
	m := New(Options{Backend: backend})

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = updated.(Model)

	msg := m.refresh()()
	updated, _ = m.Update(msg)
	return updated.(Model)
}

func TestIsFilterExpression(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected bool
	}{
		{"app_equal", "app=discord", true},
		{"app_not_equal", "app!=slack", true},
		{"body_contains", "body~meeting", true},
		{"summary_regex", "summary~=(?i)error", true},
		{"id_greater", "id>10", true},
		{"id_less_eq", "id<=3", true},
		{"timestamp", "timestamp<1h", true},
		{"multiple", "app=slack,summary~standup", true},
		{"uppercase_field", "APP=discord", true},

		{"plain_word", "meeting", false},
		{"plain_phrase", "important message", false},
		{"email_address", "user@example.com", false},
		{"url", "https://example.com", false},
		{"unknown_field", "unknown=value", false},
		{"just_equals", "=value", false},
		{"number", "12345", false},
		{"empty", "", false},
		{"bad_regex", "body~=(", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isFilterExpression(tt.query))
		})
	}
}

func TestMatchQuery(t *testing.T) {
	notifications := testNotifications()

	tests := []struct {
		name  string
		query string
		want  []int // positions
	}{
		{"empty keeps all", "", []int{1, 2, 3}},
		{"plain term in body", "error", []int{3}},
		{"plain term in app", "slack", []int{1}},
		{"filter expression", "id>5", []int{2, 3}},
		{"no match", "nothing", []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchQuery(notifications, tt.query)
			positions := make([]int, 0, len(got))
			for _, p := range got {
				positions = append(positions, p.position)
			}
			assert.Equal(t, tt.want, positions)
		})
	}
}

func TestModel_SnapshotMarksCurrent(t *testing.T) {
	backend := &fakeBackend{notifications: testNotifications(), current: 2}
	m := newTestModel(t, backend)

	items := m.list.Items()
	require.Len(t, items, 3)
	for i, item := range items {
		ni := item.(notificationItem)
		assert.Equal(t, i == 1, ni.current, "item %d", i)
	}
}

func TestModel_SnapshotErrorShowsStatus(t *testing.T) {
	backend := &fakeBackend{err: errors.New("no reply")}
	m := newTestModel(t, backend)

	assert.True(t, m.statusErr)
	assert.Contains(t, m.statusMsg, "no reply")
	assert.Empty(t, m.list.Items())
}

func TestModel_ControlKeys(t *testing.T) {
	tests := []struct {
		key    string
		method string
	}{
		{"n", "Next"},
		{"p", "Prev"},
		{"x", "CloseCurrent"},
		{"e", "ExpandCurrent"},
		{"o", "Invoke"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			backend := &fakeBackend{notifications: testNotifications(), current: 1}
			m := newTestModel(t, backend)

			_, cmd := m.Update(runes(tt.key))
			require.NotNil(t, cmd)

			msg := cmd()
			result, ok := msg.(actionResultMsg)
			require.True(t, ok)
			assert.NoError(t, result.err)
			assert.Equal(t, []string{tt.method}, backend.calls)
		})
	}
}

func TestModel_CloseHighlighted(t *testing.T) {
	backend := &fakeBackend{notifications: testNotifications(), current: 1}
	m := newTestModel(t, backend)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = updated.(Model)

	_, cmd := m.Update(runes("d"))
	require.NotNil(t, cmd)
	cmd()

	assert.Equal(t, []uint32{7}, backend.closed)
	assert.Empty(t, backend.calls)
}

func TestModel_HighlightSurvivesRefresh(t *testing.T) {
	backend := &fakeBackend{notifications: testNotifications(), current: 1}
	m := newTestModel(t, backend)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	updated, _ = updated.(Model).Update(tea.KeyMsg{Type: tea.KeyDown})
	m = updated.(Model)
	require.Equal(t, uint32(9), m.highlighted().ID)

	// The first notification goes away; #9 stays highlighted.
	backend.notifications = backend.notifications[1:]
	updated, _ = m.Update(m.refresh()())
	m = updated.(Model)

	assert.Equal(t, uint32(9), m.highlighted().ID)
}

func TestModel_SearchFiltersList(t *testing.T) {
	backend := &fakeBackend{notifications: testNotifications(), current: 3}
	m := newTestModel(t, backend)

	updated, _ := m.Update(runes("/"))
	m = updated.(Model)
	require.Equal(t, ModeSearch, m.mode)

	for _, r := range "invoice" {
		updated, _ = m.Update(runes(string(r)))
		m = updated.(Model)
	}

	items := m.list.Items()
	require.Len(t, items, 1)
	ni := items[0].(notificationItem)
	assert.Equal(t, uint32(7), ni.notification.ID)
	assert.Equal(t, 2, ni.position)
	assert.False(t, ni.current)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)
	assert.Equal(t, ModeList, m.mode)
	assert.Len(t, m.list.Items(), 3)
}

func TestModel_DetailLeavesWhenNotificationCloses(t *testing.T) {
	backend := &fakeBackend{notifications: testNotifications(), current: 1}
	m := newTestModel(t, backend)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	require.Equal(t, ModeDetail, m.mode)
	assert.Equal(t, uint32(4), m.detailID)
	assert.Contains(t, m.View(), "Notification #4")

	backend.notifications = backend.notifications[1:]
	updated, _ = m.Update(m.refresh()())
	m = updated.(Model)

	assert.Equal(t, ModeList, m.mode)
}

func TestModel_QuitKey(t *testing.T) {
	m := newTestModel(t, &fakeBackend{})

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestExpiryText(t *testing.T) {
	assert.Equal(t, "never", expiryText(model.Notification{ExpireTimeout: model.TimeoutNever}))

	n := model.Notification{ExpireTimeout: 60000, ReceivedAt: time.Now().Add(-2 * time.Minute)}
	assert.Equal(t, "1 minute ago", expiryText(n))
}
