// Package state implements the bubbletea model of the interactive inbox.
package state

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cristianoliveira/motinbox/internal/app"
	"github.com/cristianoliveira/motinbox/internal/domain"
	"github.com/cristianoliveira/motinbox/internal/notice"
	"github.com/cristianoliveira/motinbox/internal/settings"
	"github.com/cristianoliveira/motinbox/internal/tui/render"
)

const (
	// title, column header, footer and notice line
	headerFooterLines     = 4
	defaultViewportWidth  = 80
	defaultViewportHeight = 24
	noticeDuration        = 5 * time.Second
	noticeBuffer          = 16

	actionLoad     = "load"
	actionLoadMore = "load-more"
)

// Inbox is the controller surface the model drives.
type Inbox interface {
	Role() domain.Role
	Skipped() bool
	Load(ctx context.Context) error
	LoadMore(ctx context.Context) (bool, error)
	List() []domain.Notification
	UnreadCount() int
	HasMore() bool
	Loading() bool
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}

// Options configures a Model.
type Options struct {
	// Context bounds every load and mutation. Defaults to context.Background.
	Context context.Context
	// Events receives the controller callbacks. Defaults to a fresh queue.
	Events *Events
	// Notices stores notices shown in the footer. Defaults to a handler
	// feeding Events.
	Notices *notice.TUIHandler
	// Hook runs post-action scripts; nil disables them.
	Hook app.ActionHook
	// Settings are the initial view preferences. Defaults to settings.DefaultSettings.
	Settings *settings.Settings
	// SaveSettings persists the preferences after they change; nil skips saving.
	SaveSettings func(*settings.Settings) error
	Now          func() time.Time
}

// Model is the interactive inbox.
type Model struct {
	ctx     context.Context
	inbox   Inbox
	events  *Events
	notices *notice.TUIHandler
	hook    app.ActionHook
	keys    keyMap
	uiState *UIState
	now     func() time.Time

	settings     settings.Settings
	saveSettings func(*settings.Settings) error

	items   []domain.Notification
	loaded  int
	unread  int
	hasMore bool
	pending int
	notice  *notice.Message
}

// NewModel creates the inbox model for inbox.
func NewModel(inbox Inbox, opts Options) *Model {
	if inbox == nil {
		panic("NewModel: inbox dependency cannot be nil")
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Events == nil {
		opts.Events = NewEvents()
	}
	if opts.Notices == nil {
		opts.Notices = notice.NewTUIHandler(opts.Events.Notice)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Settings == nil {
		opts.Settings = settings.DefaultSettings()
	}
	m := &Model{
		ctx:     opts.Context,
		inbox:   inbox,
		events:  opts.Events,
		notices: opts.Notices,
		hook:    opts.Hook,
		keys:    defaultKeyMap(),
		uiState: NewUIState(),
		now:     opts.Now,

		settings:     *opts.Settings,
		saveSettings: opts.SaveSettings,
	}
	m.refresh()
	return m
}

// Init loads the first page and starts listening for controller events.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.load(actionLoad), m.events.wait(m.ctx))
}

// Update handles messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.uiState.Resize(msg.Width, msg.Height)
		m.updateViewportContent()
		return m, nil
	case changedMsg:
		m.refresh()
		return m, m.events.wait(m.ctx)
	case noticeMsg:
		n := msg.message
		m.notice = &n
		return m, tea.Batch(m.events.wait(m.ctx), clearNoticeAfter(n.Timestamp, noticeDuration))
	case clearNoticeMsg:
		if m.notice != nil && m.notice.Timestamp.Equal(msg.at) {
			m.notice = nil
		}
		return m, nil
	case actionDoneMsg:
		m.handleActionDone(msg)
		return m, nil
	}
	return m, nil
}

// View renders the TUI.
func (m *Model) View() string {
	var s strings.Builder
	s.WriteString(render.Title(render.HeaderState{
		Role:    m.inbox.Role(),
		Unread:  m.unread,
		Loaded:  m.loaded,
		HasMore: m.hasMore,
		Loading: m.pending > 0,
		Width:   m.uiState.Width(),
		View:    m.viewLabel(),
	}))
	s.WriteString("\n")
	s.WriteString(render.Header(m.uiState.Width()))
	s.WriteString("\n")
	s.WriteString(m.uiState.Viewport().View())
	s.WriteString("\n")
	s.WriteString(render.Footer(render.FooterState{
		ConfirmClear: m.uiState.ConfirmingClear(),
		HasMore:      m.hasMore,
		Notice:       m.notice,
	}))
	return s.String()
}

// refresh copies the controller state into the model, applying the view
// settings to the list.
func (m *Model) refresh() {
	all := m.inbox.List()
	m.loaded = len(all)
	m.items = domain.Filter{ReadFilter: m.settings.ReadFilter}.Apply(all)
	if m.settings.UnreadFirst {
		m.items = app.OrderUnreadFirst(m.items)
	}
	m.unread = m.inbox.UnreadCount()
	m.hasMore = m.inbox.HasMore()
	m.uiState.AdjustCursorBounds(len(m.items))
	m.updateViewportContent()
}

// updateViewportContent renders the rows into the viewport.
func (m *Model) updateViewportContent() {
	vp := m.uiState.Viewport()
	if len(m.items) == 0 {
		vp.SetContent(render.Empty(m.inbox.Skipped()))
		return
	}

	now := m.now()
	rows := make([]string, len(m.items))
	for i, n := range m.items {
		rows[i] = render.Row(render.RowState{
			Notification: n,
			Width:        m.uiState.Width(),
			Selected:     i == m.uiState.Cursor(),
			Now:          now,
		})
	}
	vp.SetContent(strings.Join(rows, "\n"))
	m.uiState.EnsureCursorVisible(len(m.items))
}

// viewLabel describes the active view settings for the title.
func (m *Model) viewLabel() string {
	var parts []string
	if m.settings.ReadFilter != "" {
		parts = append(parts, m.settings.ReadFilter+" only")
	}
	if m.settings.UnreadFirst {
		parts = append(parts, "unread first")
	}
	return strings.Join(parts, ", ")
}

// selected returns the notification under the cursor.
func (m *Model) selected() (domain.Notification, bool) {
	if len(m.items) == 0 {
		return domain.Notification{}, false
	}
	return m.items[m.uiState.Cursor()], true
}
