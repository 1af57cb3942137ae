package state

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cristianoliveira/motinbox/internal/notice"
)

// changedMsg is sent when the controller list or unread counter changed.
type changedMsg struct{}

// noticeMsg is sent when a notice was raised.
type noticeMsg struct {
	message notice.Message
}

// actionDoneMsg is sent when a load or mutation finished.
type actionDoneMsg struct {
	action  string
	id      string
	err     error
	hookErr error
}

// clearNoticeMsg hides the notice raised at the given time.
type clearNoticeMsg struct {
	at time.Time
}

func clearNoticeAfter(at time.Time, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearNoticeMsg{at: at}
	})
}
