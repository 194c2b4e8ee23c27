// Package tui provides a BubbleTea terminal controller for a running notextd.
package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/notext/internal/core"
	"github.com/jmylchreest/notext/internal/model"
)

// Backend is the daemon as seen by the TUI.
type Backend interface {
	// Snapshot returns the active notifications in display order and the
	// 1-based selected index, 0 if nothing is selected.
	Snapshot(ctx context.Context) ([]model.Notification, int, error)
	// Call invokes a control method: Next, Prev, CloseCurrent, ExpandCurrent or Invoke.
	Call(ctx context.Context, method string) error
	// Close closes one notification by id.
	Close(ctx context.Context, id uint32) error
}

// Mode represents the current UI mode.
type Mode int

const (
	ModeList Mode = iota
	ModeDetail
	ModeSearch
	ModeHelp
)

// Options configures the TUI.
type Options struct {
	Backend          Backend
	RefreshInterval  time.Duration
	CallTimeout      time.Duration
	ClipboardCommand string
}

// Model is the main TUI model.
type Model struct {
	backend   Backend
	interval  time.Duration
	timeout   time.Duration
	clipboard string

	// Current mode
	mode Mode

	// Components
	list        list.Model
	viewport    viewport.Model
	searchInput textinput.Model
	help        help.Model

	// State
	notifications []model.Notification
	current       int // 1-based position of the daemon's selection
	detailID      uint32
	searchQuery   string
	width         int
	height        int
	ready         bool

	// Key bindings
	keys KeyMap

	// Status message
	statusMsg string
	statusErr bool
}

// notificationItem wraps a notification for the list component.
type notificationItem struct {
	notification model.Notification
	position     int
	current      bool
}

func (i notificationItem) Title() string {
	return i.notification.Summary
}

func (i notificationItem) Description() string {
	return fmt.Sprintf("[%s] %s - %s",
		i.notification.AppName,
		relativeTime(i.notification.ReceivedAt),
		flatten(i.notification.Body))
}

func (i notificationItem) FilterValue() string {
	return i.notification.Summary + " " + i.notification.Body + " " + i.notification.AppName
}

// notificationDelegate marks the daemon's selection in the list.
type notificationDelegate struct {
	list.DefaultDelegate
}

func newNotificationDelegate() notificationDelegate {
	return notificationDelegate{DefaultDelegate: list.NewDefaultDelegate()}
}

// Render renders a list item. The notification selected in the daemon gets
// a marker; the highlighted row follows the list cursor.
func (d notificationDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ni, ok := item.(notificationItem)
	if !ok {
		d.DefaultDelegate.Render(w, m, index, item)
		return
	}

	itemWidth := m.Width() - d.Styles.NormalTitle.GetHorizontalPadding()

	titleStyle, descStyle := d.Styles.NormalTitle, d.Styles.NormalDesc
	if index == m.Index() {
		titleStyle, descStyle = d.Styles.SelectedTitle, d.Styles.SelectedDesc
	}

	title := ni.Title()
	if ni.current {
		title = "▶ " + title
		titleStyle = titleStyle.Foreground(lipgloss.Color("11"))
	}

	if itemWidth > 0 {
		title = runewidth.Truncate(title, itemWidth, "…")
	}
	desc := ni.Description()
	if itemWidth > 0 {
		desc = runewidth.Truncate(desc, itemWidth, "…")
	}

	fmt.Fprint(w, titleStyle.Render(title))
	fmt.Fprint(w, "\n")
	fmt.Fprint(w, descStyle.Render(desc))
}

// New creates a new TUI model.
func New(opts Options) Model {
	l := list.New([]list.Item{}, newNotificationDelegate(), 0, 0)
	l.Title = "notext"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	ti := textinput.New()
	ti.Placeholder = "Search or filter (app=slack,summary~error)"
	ti.CharLimit = 200

	interval := opts.RefreshInterval
	if interval <= 0 {
		interval = time.Second
	}
	timeout := opts.CallTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	h := help.New()
	h.ShowAll = true

	return Model{
		backend:     opts.Backend,
		interval:    interval,
		timeout:     timeout,
		clipboard:   opts.ClipboardCommand,
		mode:        ModeList,
		list:        l,
		searchInput: ti,
		help:        h,
		keys:        DefaultKeyMap(),
	}
}

// Messages
type snapshotMsg struct {
	notifications []model.Notification
	current       int
	err           error
}

type tickMsg struct{}

type actionResultMsg struct {
	text string
	err  error
}

type copyResultMsg struct {
	what string
	err  error
}

type clearStatusMsg struct{}

// Init starts polling the daemon.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refresh(), m.tick())
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// refresh fetches a new snapshot from the daemon.
func (m Model) refresh() tea.Cmd {
	backend, timeout := m.backend, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		notifications, current, err := backend.Snapshot(ctx)
		return snapshotMsg{notifications: notifications, current: current, err: err}
	}
}

// call runs a control method and reports the result.
func (m Model) call(method, done string) tea.Cmd {
	backend, timeout := m.backend, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return actionResultMsg{text: done, err: backend.Call(ctx, method)}
	}
}

// closeID closes the notification with the given id.
func (m Model) closeID(id uint32) tea.Cmd {
	backend, timeout := m.backend, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return actionResultMsg{text: fmt.Sprintf("Closed #%d", id), err: backend.Close(ctx, id)}
	}
}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 1
		footerHeight := 2
		listHeight := max(msg.Height-headerHeight-footerHeight, 1)

		m.list.SetSize(msg.Width, listHeight)
		m.viewport = viewport.New(msg.Width, listHeight)
		m.ready = true
		if m.mode == ModeDetail {
			m.setDetailContent()
		}
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.refresh(), m.tick())

	case snapshotMsg:
		if msg.err != nil {
			m.statusMsg = "Refresh failed: " + msg.err.Error()
			m.statusErr = true
			return m, nil
		}
		if m.statusErr && strings.HasPrefix(m.statusMsg, "Refresh failed") {
			m.statusMsg = ""
			m.statusErr = false
		}
		m.notifications = msg.notifications
		m.current = msg.current
		m.updateList()
		if m.mode == ModeDetail {
			if core.LookupByID(m.notifications, m.detailID) == nil {
				m.mode = ModeList
			} else {
				m.setDetailContent()
			}
		}
		return m, nil

	case actionResultMsg:
		if msg.err != nil {
			m.statusMsg = msg.err.Error()
			m.statusErr = true
		} else {
			m.statusMsg = msg.text
			m.statusErr = false
		}
		return m, tea.Batch(m.refresh(), clearStatusAfter(2*time.Second))

	case copyResultMsg:
		if msg.err != nil {
			m.statusMsg = "Copy failed: " + msg.err.Error()
			m.statusErr = true
		} else {
			m.statusMsg = "Copied " + msg.what + " to clipboard"
			m.statusErr = false
		}
		return m, clearStatusAfter(2 * time.Second)

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Update components
	switch m.mode {
	case ModeList:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		cmds = append(cmds, cmd)
	case ModeDetail:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	case ModeSearch:
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys
	if key.Matches(msg, m.keys.Quit) && m.mode != ModeSearch {
		return m, tea.Quit
	}

	switch m.mode {
	case ModeHelp:
		if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Back) {
			m.mode = ModeList
		}
		return m, nil
	case ModeSearch:
		return m.handleSearchKey(msg)
	case ModeDetail:
		return m.handleDetailKey(msg)
	default:
		return m.handleListKey(msg)
	}
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Help):
		m.mode = ModeHelp
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.mode = ModeSearch
		m.searchInput.SetValue(m.searchQuery)
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.Back):
		if m.searchQuery != "" {
			m.searchQuery = ""
			m.updateList()
		}
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		if n := m.highlighted(); n != nil {
			m.detailID = n.ID
			m.mode = ModeDetail
			m.setDetailContent()
			m.viewport.GotoTop()
		}
		return m, nil

	case key.Matches(msg, m.keys.Next):
		return m, m.call("Next", "Selected next")
	case key.Matches(msg, m.keys.Prev):
		return m, m.call("Prev", "Selected previous")
	case key.Matches(msg, m.keys.Dismiss):
		return m, m.call("CloseCurrent", "Dismissed")
	case key.Matches(msg, m.keys.Expand):
		return m, m.call("ExpandCurrent", "Expanded")
	case key.Matches(msg, m.keys.Invoke):
		return m, m.call("Invoke", "Invoked")

	case key.Matches(msg, m.keys.Close):
		if n := m.highlighted(); n != nil {
			return m, m.closeID(n.ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		if n := m.highlighted(); n != nil {
			return m, m.copyToClipboard(n.Body, "body")
		}
		return m, nil

	case key.Matches(msg, m.keys.CopySummary):
		if n := m.highlighted(); n != nil {
			return m, m.copyToClipboard(n.Summary, "summary")
		}
		return m, nil

	case key.Matches(msg, m.keys.CopyAllJSON):
		return m, m.copyAll("json")

	case key.Matches(msg, m.keys.CopyAllYAML):
		return m, m.copyAll("yaml")

	case key.Matches(msg, m.keys.Refresh):
		return m, m.refresh()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := core.LookupByID(m.notifications, m.detailID)

	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = ModeList
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.mode = ModeHelp
		return m, nil
	case key.Matches(msg, m.keys.Close):
		m.mode = ModeList
		return m, m.closeID(m.detailID)
	case key.Matches(msg, m.keys.Copy):
		if n != nil {
			return m, m.copyToClipboard(n.Body, "body")
		}
		return m, nil
	case key.Matches(msg, m.keys.CopySummary):
		if n != nil {
			return m, m.copyToClipboard(n.Summary, "summary")
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeList
		m.searchInput.Blur()
		m.searchQuery = ""
		m.updateList()
		return m, nil
	case tea.KeyEnter:
		m.mode = ModeList
		m.searchInput.Blur()
		return m, nil
	case tea.KeyUp, tea.KeyDown:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.searchQuery = m.searchInput.Value()
	m.updateList()
	return m, cmd
}

// updateList rebuilds the list items, keeping the highlighted notification
// under the cursor when it is still visible.
func (m *Model) updateList() {
	var keep uint32
	if n := m.highlighted(); n != nil {
		keep = n.ID
	}

	items := m.buildListItems()
	m.list.SetItems(items)

	for i, item := range items {
		if item.(notificationItem).notification.ID == keep {
			m.list.Select(i)
			return
		}
	}
	if m.list.Index() >= len(items) && len(items) > 0 {
		m.list.Select(len(items) - 1)
	}
}

// buildListItems applies the search query to the current snapshot.
func (m Model) buildListItems() []list.Item {
	visible := matchQuery(m.notifications, m.searchQuery)

	items := make([]list.Item, 0, len(visible))
	for _, v := range visible {
		items = append(items, notificationItem{
			notification: v.notification,
			position:     v.position,
			current:      v.position == m.current,
		})
	}
	return items
}

type positioned struct {
	notification model.Notification
	position     int
}

// matchQuery filters notifications by a filter expression or a plain search
// term over app name, summary and body. Positions stay 1-based display positions.
func matchQuery(notifications []model.Notification, query string) []positioned {
	query = strings.TrimSpace(query)

	var expr *core.FilterExpr
	if isFilterExpression(query) {
		expr, _ = core.ParseFilter(query)
	}
	term := strings.ToLower(query)

	out := make([]positioned, 0, len(notifications))
	for i, n := range notifications {
		switch {
		case expr != nil:
			if !expr.Match(n) {
				continue
			}
		case term != "":
			if !strings.Contains(strings.ToLower(n.AppName), term) &&
				len(core.Search([]model.Notification{n}, term)) == 0 {
				continue
			}
		}
		out = append(out, positioned{notification: n, position: i + 1})
	}
	return out
}

// isFilterExpression reports whether the query parses as a filter expression
// rather than a plain search term.
func isFilterExpression(query string) bool {
	if !strings.ContainsAny(query, "=~<>") {
		return false
	}
	expr, err := core.ParseFilter(query)
	return err == nil && len(expr.Conditions) > 0
}

// highlighted returns the notification under the list cursor.
func (m Model) highlighted() *model.Notification {
	item, ok := m.list.SelectedItem().(notificationItem)
	if !ok {
		return nil
	}
	n := item.notification
	return &n
}

func (m *Model) setDetailContent() {
	if n := core.LookupByID(m.notifications, m.detailID); n != nil {
		m.viewport.SetContent(m.renderDetail(*n))
	}
}

// renderDetail renders the detail view for a notification.
func (m Model) renderDetail(n model.Notification) string {
	var b strings.Builder

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8"))

	b.WriteString(headerStyle.Render(n.Summary) + "\n\n")

	b.WriteString(labelStyle.Render("ID: ") + fmt.Sprintf("%d", n.ID) + "\n")
	b.WriteString(labelStyle.Render("App: ") + n.AppName + "\n")
	b.WriteString(labelStyle.Render("Received: ") + relativeTime(n.ReceivedAt) + "\n")
	b.WriteString(labelStyle.Render("Expires: ") + expiryText(n) + "\n")

	b.WriteString("\n" + labelStyle.Render("Body:") + "\n")
	if m.width > 0 {
		b.WriteString(lipgloss.NewStyle().Width(m.width).Render(n.Body))
	} else {
		b.WriteString(n.Body)
	}
	b.WriteString("\n")

	return b.String()
}

func expiryText(n model.Notification) string {
	if n.ExpireTimeout == model.TimeoutNever {
		return "never"
	}
	at := n.ReceivedAt.Add(time.Duration(n.ExpireTimeout) * time.Millisecond)
	return humanize.Time(at)
}

func relativeTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return humanize.Time(t)
}

func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// copyToClipboard copies text to the system clipboard.
func (m Model) copyToClipboard(text, what string) tea.Cmd {
	command := m.clipboard
	return func() tea.Msg {
		return copyResultMsg{what: what, err: copyText(text, command)}
	}
}

// copyAll copies every visible notification in the given format.
func (m Model) copyAll(format string) tea.Cmd {
	visible := matchQuery(m.notifications, m.searchQuery)
	notifications := make([]model.Notification, 0, len(visible))
	for _, v := range visible {
		notifications = append(notifications, v.notification)
	}
	command := m.clipboard

	return func() tea.Msg {
		var data []byte
		var err error
		if format == "yaml" {
			data, err = yaml.Marshal(notifications)
		} else {
			data, err = json.MarshalIndent(notifications, "", "  ")
		}
		if err != nil {
			return copyResultMsg{what: format, err: err}
		}
		what := fmt.Sprintf("%d notifications as %s", len(notifications), strings.ToUpper(format))
		return copyResultMsg{what: what, err: copyText(string(data), command)}
	}
}

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Connecting..."
	}

	switch m.mode {
	case ModeList:
		return m.viewList()
	case ModeDetail:
		return m.viewDetail()
	case ModeSearch:
		return m.viewSearch()
	case ModeHelp:
		return m.viewHelp()
	default:
		return ""
	}
}

func (m Model) viewList() string {
	s := m.list.View()

	if m.statusMsg != "" {
		statusStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))
		if m.statusErr {
			statusStyle = statusStyle.Foreground(lipgloss.Color("9"))
		}
		s += "\n" + statusStyle.Render(m.statusMsg)
	} else {
		s += "\n" + m.buildKeybindBar(m.width, ModeList)
	}

	return s
}

func (m Model) viewDetail() string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1)

	header := headerStyle.Render(fmt.Sprintf("Notification #%d", m.detailID))

	return header + "\n" + m.viewport.View() + "\n" + m.buildKeybindBar(m.width, ModeDetail)
}

func (m Model) viewSearch() string {
	countStr := fmt.Sprintf("(%d matches)", len(m.list.Items()))

	searchBar := "Search: " + m.searchInput.View() + " " +
		lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(countStr)

	return searchBar + "\n" + m.list.View() + "\n" + m.buildKeybindBar(m.width, ModeSearch)
}

func (m Model) viewHelp() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginBottom(1)

	s := titleStyle.Render("Keyboard Shortcuts") + "\n\n"
	s += m.help.View(m.keys) + "\n\n"
	s += lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("Press ? or esc to return")
	return s
}

// keybind represents a keybind hint with priority.
type keybind struct {
	key  string
	desc string
}

// buildKeybindBar renders as many hints for mode as fit in width.
func (m Model) buildKeybindBar(width int, mode Mode) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	var binds []keybind

	switch mode {
	case ModeList:
		// Most important first
		binds = []keybind{
			{"q", "quit"},
			{"n/p", "select"},
			{"x", "dismiss"},
			{"e", "expand"},
			{"o", "invoke"},
			{"enter", "view"},
			{"?", "help"},
			{"/", "search"},
			{"d", "close"},
			{"c", "copy"},
		}
	case ModeDetail:
		binds = []keybind{
			{"q", "quit"},
			{"esc", "back"},
			{"d", "close"},
			{"c", "copy body"},
			{"s", "copy summary"},
			{"j/k", "scroll"},
		}
	case ModeSearch:
		binds = []keybind{
			{"enter", "apply"},
			{"esc", "clear"},
			{"↑/↓", "navigate"},
		}
	}

	const separator = "  "
	result := ""
	for _, b := range binds {
		item := keyStyle.Render(b.key) + " " + b.desc
		testLen := lipgloss.Width(result) + len(separator) + runewidth.StringWidth(b.key+" "+b.desc)
		if width > 0 && testLen > width {
			break
		}
		if result != "" {
			result += separator
		}
		result += item
	}

	return style.Render(result)
}

// Run starts the TUI and blocks until the user quits.
func Run(opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
