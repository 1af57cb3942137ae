package state

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/key"

	"github.com/cristianoliveira/motinbox/internal/app"
)

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.uiState.ConfirmingClear() {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			m.uiState.SetConfirmClear(false)
			return m.run(app.ActionClear, "", m.inbox.DeleteAll)
		case key.Matches(msg, m.keys.Cancel):
			m.uiState.SetConfirmClear(false)
		}
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.uiState.MoveCursorUp()
		m.updateViewportContent()
	case key.Matches(msg, m.keys.Down):
		m.uiState.MoveCursorDown(len(m.items))
		m.updateViewportContent()
	case key.Matches(msg, m.keys.MarkRead):
		n, ok := m.selected()
		if !ok || n.Read {
			return nil
		}
		return m.run(app.ActionMarkRead, n.ID, func(ctx context.Context) error {
			return m.inbox.MarkRead(ctx, n.ID)
		})
	case key.Matches(msg, m.keys.MarkAllRead):
		if m.unread == 0 {
			return nil
		}
		return m.run(app.ActionMarkAllRead, "", m.inbox.MarkAllRead)
	case key.Matches(msg, m.keys.Delete):
		n, ok := m.selected()
		if !ok {
			return nil
		}
		return m.run(app.ActionDelete, n.ID, func(ctx context.Context) error {
			return m.inbox.Delete(ctx, n.ID)
		})
	case key.Matches(msg, m.keys.DeleteAll):
		if len(m.items) > 0 {
			m.uiState.SetConfirmClear(true)
		}
	case key.Matches(msg, m.keys.LoadMore):
		if !m.hasMore {
			return nil
		}
		return m.load(actionLoadMore)
	case key.Matches(msg, m.keys.Reload):
		return m.load(actionLoad)
	case key.Matches(msg, m.keys.Filter):
		m.settings.NextReadFilter()
		return m.applySettings()
	case key.Matches(msg, m.keys.UnreadFirst):
		m.settings.UnreadFirst = !m.settings.UnreadFirst
		return m.applySettings()
	}
	return nil
}

// applySettings redraws the list and saves the preferences off the update loop.
func (m *Model) applySettings() tea.Cmd {
	m.uiState.ResetCursor()
	m.refresh()
	if m.saveSettings == nil {
		return nil
	}
	current, save, notices := m.settings, m.saveSettings, m.notices
	return func() tea.Msg {
		if err := save(&current); err != nil {
			notices.Warning(fmt.Sprintf("settings not saved: %v", err))
		}
		return nil
	}
}

// load fetches the cursor page (actionLoad) or the next page (actionLoadMore).
func (m *Model) load(action string) tea.Cmd {
	fn := m.inbox.Load
	if action == actionLoadMore {
		fn = func(ctx context.Context) error {
			_, err := m.inbox.LoadMore(ctx)
			return err
		}
	}
	return m.run(action, "", fn)
}

// run starts fn off the update loop. Successful mutations run the
// post-action hook before reporting back.
func (m *Model) run(action, id string, fn func(context.Context) error) tea.Cmd {
	m.pending++
	ctx, hook, role := m.ctx, m.hook, m.inbox.Role()
	return func() tea.Msg {
		err := fn(ctx)
		done := actionDoneMsg{action: action, id: id, err: err}
		if err == nil && hook != nil && isMutation(action) {
			done.hookErr = hook.RunAction(ctx, role, action, id)
		}
		return done
	}
}

func (m *Model) handleActionDone(msg actionDoneMsg) {
	if m.pending > 0 {
		m.pending--
	}
	m.refresh()

	switch {
	case msg.err != nil && !isMutation(msg.action):
		m.notices.Error(msg.err.Error())
	case msg.err != nil:
		// the controller already raised the mutation notice
	case msg.hookErr != nil:
		m.notices.Warning(fmt.Sprintf("post-action hook failed: %v", msg.hookErr))
	default:
		if text := successText(msg.action, msg.id); text != "" {
			m.notices.Success(text)
		}
	}
}

func isMutation(action string) bool {
	switch action {
	case app.ActionMarkRead, app.ActionMarkAllRead, app.ActionDelete, app.ActionClear:
		return true
	}
	return false
}

func successText(action, id string) string {
	switch action {
	case app.ActionMarkRead:
		return fmt.Sprintf("Notification %s marked as read", id)
	case app.ActionMarkAllRead:
		return "All notifications marked as read"
	case app.ActionDelete:
		return fmt.Sprintf("Notification %s deleted", id)
	case app.ActionClear:
		return "All notifications deleted"
	}
	return ""
}
