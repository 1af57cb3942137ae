package state

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianoliveira/motinbox/internal/app"
	"github.com/cristianoliveira/motinbox/internal/domain"
	"github.com/cristianoliveira/motinbox/internal/notice"
	"github.com/cristianoliveira/motinbox/internal/settings"
)

type fakeInbox struct {
	mu      sync.Mutex
	role    domain.Role
	skipped bool
	items   []domain.Notification
	hasMore bool
	err     error
	calls   []string
}

func newFakeInbox(items ...domain.Notification) *fakeInbox {
	return &fakeInbox{role: domain.RoleDriver, items: items}
}

func (f *fakeInbox) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeInbox) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeInbox) Role() domain.Role { return f.role }
func (f *fakeInbox) Skipped() bool     { return f.skipped }

func (f *fakeInbox) Load(ctx context.Context) error { return f.record("load") }

func (f *fakeInbox) LoadMore(ctx context.Context) (bool, error) {
	if err := f.record("load-more"); err != nil {
		return true, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, domain.Notification{ID: "older", Event: domain.EventDescriptor{Type: "booking_confirmed"}, Read: true})
	f.hasMore = false
	return true, nil
}

func (f *fakeInbox) List() []domain.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Notification(nil), f.items...)
}

func (f *fakeInbox) UnreadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, item := range f.items {
		if !item.Read {
			n++
		}
	}
	return n
}

func (f *fakeInbox) HasMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasMore
}

func (f *fakeInbox) Loading() bool { return false }

func (f *fakeInbox) MarkRead(ctx context.Context, id string) error {
	if err := f.record("mark-read " + id); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Read = true
		}
	}
	return nil
}

func (f *fakeInbox) MarkAllRead(ctx context.Context) error {
	if err := f.record("mark-all-read"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		f.items[i].Read = true
	}
	return nil
}

func (f *fakeInbox) Delete(ctx context.Context, id string) error {
	if err := f.record("delete " + id); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.items[:0]
	for _, item := range f.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	f.items = kept
	return nil
}

func (f *fakeInbox) DeleteAll(ctx context.Context) error {
	if err := f.record("delete-all"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = nil
	return nil
}

type hookCall struct {
	role   domain.Role
	action string
	id     string
}

type fakeHook struct {
	mu    sync.Mutex
	calls []hookCall
	err   error
}

func (h *fakeHook) RunAction(ctx context.Context, role domain.Role, action, id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, hookCall{role: role, action: action, id: id})
	return h.err
}

var _ app.ActionHook = (*fakeHook)(nil)

func sampleItems() []domain.Notification {
	return []domain.Notification{
		{ID: "n1", Event: domain.EventDescriptor{Type: "mot_expiry_reminder", Text: "MOT due soon"}},
		{ID: "n2", Event: domain.EventDescriptor{Type: "booking_confirmed", Text: "Booking confirmed"}, Read: true},
		{ID: "n3", Event: domain.EventDescriptor{Type: "booking_cancelled", Text: "Booking cancelled"}},
	}
}

func newTestModel(t *testing.T, inbox *fakeInbox, hook app.ActionHook) *Model {
	t.Helper()
	return NewModel(inbox, Options{
		Hook: hook,
		Now:  func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
	})
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a key and runs the resulting command, feeding its message back.
func press(t *testing.T, m *Model, msg tea.KeyMsg) tea.Msg {
	t.Helper()
	_, cmd := m.Update(msg)
	if cmd == nil {
		return nil
	}
	result := cmd()
	if done, ok := result.(actionDoneMsg); ok {
		m.Update(done)
	}
	return result
}

func TestNewModelPanicsOnNilInbox(t *testing.T) {
	assert.PanicsWithValue(t, "NewModel: inbox dependency cannot be nil", func() {
		NewModel(nil, Options{})
	})
}

func TestNewModelCopiesInboxState(t *testing.T) {
	inbox := newFakeInbox(sampleItems()...)
	inbox.hasMore = true

	m := newTestModel(t, inbox, nil)

	assert.Len(t, m.items, 3)
	assert.Equal(t, 2, m.unread)
	assert.True(t, m.hasMore)
	assert.Equal(t, 0, m.uiState.Cursor())

	view := m.View()
	assert.Contains(t, view, "DRIVER inbox: 2 unread, 3 loaded (more available)")
	assert.Contains(t, view, "MOT due soon")
	assert.Contains(t, view, "m: more")
}

func TestViewShowsEmptyAndSkippedPlaceholders(t *testing.T) {
	m := newTestModel(t, newFakeInbox(), nil)
	assert.Contains(t, m.View(), "No notifications found")

	skipped := newFakeInbox()
	skipped.skipped = true
	m = newTestModel(t, skipped, nil)
	assert.Contains(t, m.View(), "Not signed in for this role")
}

func TestCursorNavigation(t *testing.T) {
	m := newTestModel(t, newFakeInbox(sampleItems()...), nil)

	press(t, m, keyRunes("j"))
	assert.Equal(t, 1, m.uiState.Cursor())
	press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, m.uiState.Cursor())
	press(t, m, keyRunes("j"))
	assert.Equal(t, 2, m.uiState.Cursor(), "cursor stays on the last row")

	press(t, m, keyRunes("k"))
	press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	press(t, m, keyRunes("k"))
	assert.Equal(t, 0, m.uiState.Cursor())
}

func TestMarkReadSelected(t *testing.T) {
	inbox := newFakeInbox(sampleItems()...)
	hook := &fakeHook{}
	m := newTestModel(t, inbox, hook)

	msg := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	require.IsType(t, actionDoneMsg{}, msg)
	assert.Equal(t, []string{"mark-read n1"}, inbox.Calls())
	assert.Equal(t, 1, m.unread)
	assert.Equal(t, 0, m.pending)
	assert.Equal(t, []hookCall{{role: domain.RoleDriver, action: app.ActionMarkRead, id: "n1"}}, hook.calls)

	latest, ok := m.notices.Latest()
	require.True(t, ok)
	assert.Equal(t, notice.TypeSuccess, latest.Type)
	assert.Equal(t, "Notification n1 marked as read", latest.Text)
}

func TestMarkReadSkipsReadNotification(t *testing.T) {
	inbox := newFakeInbox(sampleItems()...)
	m := newTestModel(t, inbox, nil)

	press(t, m, keyRunes("j"))
	msg := press(t, m, keyRunes("r"))

	assert.Nil(t, msg)
	assert.Empty(t, inbox.Calls())
}

func TestMarkAllRead(t *testing.T) {
	inbox := newFakeInbox(sampleItems()...)
	m := newTestModel(t, inbox, nil)

	press(t, m, keyRunes("R"))

	assert.Equal(t, []string{"mark-all-read"}, inbox.Calls())
	assert.Equal(t, 0, m.unread)

	// nothing left to mark
	assert.Nil(t, press(t, m, keyRunes("R")))
}

func TestDeleteSelectedKeepsCursorInBounds(t *testing.T) {
	inbox := newFakeInbox(sampleItems()...)
	hook := &fakeHook{}
	m := newTestModel(t, inbox, hook)

	press(t, m, keyRunes("j"))
	press(t, m, keyRunes("j"))
	press(t, m, keyRunes("d"))

	assert.Equal(t, []string{"delete n3"}, inbox.Calls())
	assert.Len(t, m.items, 2)
	assert.Equal(t, 1, m.uiState.Cursor())
	assert.Equal(t, app.ActionDelete, hook.calls[0].action)
}

func TestDeleteAllAsksForConfirmation(t *testing.T) {
	inbox := newFakeInbox(sampleItems()...)
	m := newTestModel(t, inbox, nil)

	assert.Nil(t, press(t, m, keyRunes("D")))
	assert.True(t, m.uiState.ConfirmingClear())
	assert.Contains(t, m.View(), "Delete all notifications? y: yes")

	// other keys are ignored while the prompt is shown
	assert.Nil(t, press(t, m, keyRunes("d")))
	assert.True(t, m.uiState.ConfirmingClear())

	press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.uiState.ConfirmingClear())
	assert.Empty(t, inbox.Calls())

	press(t, m, keyRunes("D"))
	press(t, m, keyRunes("y"))
	assert.False(t, m.uiState.ConfirmingClear())
	assert.Equal(t, []string{"delete-all"}, inbox.Calls())
	assert.Empty(t, m.items)

	latest, ok := m.notices.Latest()
	require.True(t, ok)
	assert.Equal(t, "All notifications deleted", latest.Text)
}

func TestDeleteAllIgnoredOnEmptyInbox(t *testing.T) {
	m := newTestModel(t, newFakeInbox(), nil)

	press(t, m, keyRunes("D"))

	assert.False(t, m.uiState.ConfirmingClear())
}

func TestLoadMoreOnlyWhenMoreAvailable(t *testing.T) {
	inbox := newFakeInbox(sampleItems()...)
	m := newTestModel(t, inbox, nil)

	assert.Nil(t, press(t, m, keyRunes("m")))
	assert.Empty(t, inbox.Calls())

	inbox.hasMore = true
	m.refresh()
	press(t, m, keyRunes("m"))

	assert.Equal(t, []string{"load-more"}, inbox.Calls())
	assert.Len(t, m.items, 4)
	assert.False(t, m.hasMore)
}

func TestLoadFailureRaisesErrorNotice(t *testing.T) {
	inbox := newFakeInbox()
	inbox.err = errors.New("load driver notifications: offline")
	hook := &fakeHook{}
	m := newTestModel(t, inbox, hook)

	press(t, m, keyRunes("g"))

	assert.Equal(t, []string{"load"}, inbox.Calls())
	latest, ok := m.notices.Latest()
	require.True(t, ok)
	assert.Equal(t, notice.TypeError, latest.Type)
	assert.Equal(t, "load driver notifications: offline", latest.Text)
	assert.Empty(t, hook.calls, "loads never run hooks")
}

func TestMutationFailureSkipsHookAndSuccessNotice(t *testing.T) {
	inbox := newFakeInbox(sampleItems()...)
	inbox.err = errors.New("server error")
	hook := &fakeHook{}
	m := newTestModel(t, inbox, hook)

	press(t, m, keyRunes("d"))

	assert.Empty(t, hook.calls)
	_, ok := m.notices.Latest()
	assert.False(t, ok)
	assert.Equal(t, 0, m.pending)
}

func TestHookFailureRaisesWarning(t *testing.T) {
	inbox := newFakeInbox(sampleItems()...)
	hook := &fakeHook{err: errors.New("exit status 1")}
	m := newTestModel(t, inbox, hook)

	press(t, m, keyRunes("r"))

	latest, ok := m.notices.Latest()
	require.True(t, ok)
	assert.Equal(t, notice.TypeWarning, latest.Type)
	assert.Equal(t, "post-action hook failed: exit status 1", latest.Text)
}

func TestPendingActionShowsLoading(t *testing.T) {
	m := newTestModel(t, newFakeInbox(sampleItems()...), nil)

	_, cmd := m.Update(keyRunes("g"))
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "loading...")

	m.Update(cmd())
	assert.NotContains(t, m.View(), "loading...")
}

func TestChangedMessageRefreshesList(t *testing.T) {
	inbox := newFakeInbox(sampleItems()...)
	m := newTestModel(t, inbox, nil)

	inbox.mu.Lock()
	inbox.items = append([]domain.Notification{{ID: "n0", Event: domain.EventDescriptor{Type: "garage_reply"}}}, inbox.items...)
	inbox.mu.Unlock()

	_, cmd := m.Update(changedMsg{})

	assert.NotNil(t, cmd, "the model keeps waiting for events")
	assert.Len(t, m.items, 4)
	assert.Equal(t, 3, m.unread)
}

func TestNoticeMessageShownUntilCleared(t *testing.T) {
	m := newTestModel(t, newFakeInbox(), nil)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	_, cmd := m.Update(noticeMsg{message: notice.Message{Text: "booking updated", Type: notice.TypeInfo, Timestamp: at}})
	assert.NotNil(t, cmd)
	assert.Contains(t, m.View(), "booking updated")

	// a stale clear does not hide a newer notice
	m.Update(clearNoticeMsg{at: at.Add(-time.Second)})
	assert.Contains(t, m.View(), "booking updated")

	m.Update(clearNoticeMsg{at: at})
	assert.NotContains(t, m.View(), "booking updated")
}

func TestWindowResize(t *testing.T) {
	m := newTestModel(t, newFakeInbox(sampleItems()...), nil)

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})

	assert.Equal(t, 120, m.uiState.Width())
	assert.Equal(t, 30-headerFooterLines, m.uiState.Viewport().Height)
}

func TestQuitKey(t *testing.T) {
	m := newTestModel(t, newFakeInbox(), nil)

	_, cmd := m.Update(keyRunes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestEventsWait(t *testing.T) {
	events := NewEvents()

	events.Changed()
	events.Changed()
	assert.Equal(t, changedMsg{}, events.wait(context.Background())())

	events.Notice(notice.Message{Text: "hello"})
	msg := events.wait(context.Background())()
	require.IsType(t, noticeMsg{}, msg)
	assert.Equal(t, "hello", msg.(noticeMsg).message.Text)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Nil(t, events.wait(ctx)())
}

func TestEventsDropNoticesBeyondBuffer(t *testing.T) {
	events := NewEvents()
	for i := 0; i < noticeBuffer+5; i++ {
		events.Notice(notice.Message{Text: "n"})
	}
	assert.Len(t, events.notices, noticeBuffer)
}

func TestFilterCyclesAndSavesSettings(t *testing.T) {
	inbox := newFakeInbox(sampleItems()...)
	var saved []settings.Settings
	m := NewModel(inbox, Options{
		SaveSettings: func(s *settings.Settings) error {
			saved = append(saved, *s)
			return nil
		},
	})

	press(t, m, keyRunes("j"))
	_, cmd := m.Update(keyRunes("f"))
	require.NotNil(t, cmd)
	assert.Nil(t, cmd())

	assert.Equal(t, 0, m.uiState.Cursor(), "changing the view resets the cursor")
	require.Len(t, m.items, 2)
	assert.Equal(t, "n1", m.items[0].ID)
	assert.Contains(t, m.View(), "2 unread, 3 loaded [unread only]")
	assert.Equal(t, []settings.Settings{{ReadFilter: "unread"}}, saved)

	press(t, m, keyRunes("f"))
	require.Len(t, m.items, 1)
	assert.Equal(t, "n2", m.items[0].ID)

	press(t, m, keyRunes("f"))
	assert.Len(t, m.items, 3)
	assert.Len(t, saved, 3)
}

func TestUnreadFirstOrdering(t *testing.T) {
	inbox := newFakeInbox(sampleItems()...)
	m := NewModel(inbox, Options{Settings: &settings.Settings{UnreadFirst: true}})

	ids := func() []string {
		out := make([]string, len(m.items))
		for i, n := range m.items {
			out[i] = n.ID
		}
		return out
	}
	assert.Equal(t, []string{"n1", "n3", "n2"}, ids())
	assert.Contains(t, m.View(), "[unread first]")

	press(t, m, keyRunes("u"))
	assert.Equal(t, []string{"n1", "n2", "n3"}, ids())
	assert.NotContains(t, m.View(), "unread first]")
}

func TestSettingsSaveFailureRaisesWarning(t *testing.T) {
	m := NewModel(newFakeInbox(sampleItems()...), Options{
		SaveSettings: func(*settings.Settings) error { return errors.New("read-only file system") },
	})

	_, cmd := m.Update(keyRunes("u"))
	require.NotNil(t, cmd)
	cmd()

	latest, ok := m.notices.Latest()
	require.True(t, ok)
	assert.Equal(t, notice.TypeWarning, latest.Type)
	assert.Equal(t, "settings not saved: read-only file system", latest.Text)
}
