package state

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cristianoliveira/motinbox/internal/notice"
)

// Events carries controller callbacks into the bubbletea loop. The sends
// never block: a pending change already covers a newer one, and notices
// beyond the buffer are dropped.
type Events struct {
	changed chan struct{}
	notices chan notice.Message
}

// NewEvents creates an empty event queue.
func NewEvents() *Events {
	return &Events{
		changed: make(chan struct{}, 1),
		notices: make(chan notice.Message, noticeBuffer),
	}
}

// Changed is the controller OnChange callback.
func (e *Events) Changed() {
	select {
	case e.changed <- struct{}{}:
	default:
	}
}

// Notice is the notice.TUIHandler callback.
func (e *Events) Notice(m notice.Message) {
	select {
	case e.notices <- m:
	default:
	}
}

// wait returns a command delivering the next event, or nil once ctx is done.
func (e *Events) wait(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-e.changed:
			return changedMsg{}
		case m := <-e.notices:
			return noticeMsg{message: m}
		case <-ctx.Done():
			return nil
		}
	}
}
