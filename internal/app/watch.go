package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/cristianoliveira/motinbox/internal/colors"
	"github.com/cristianoliveira/motinbox/internal/controller"
	"github.com/cristianoliveira/motinbox/internal/format"
)

// Watcher is an inbox that can subscribe to push events.
type Watcher interface {
	Inbox
	Mount(ctx context.Context, conn controller.Connection)
	Unmount()
}

// WatchOptions holds watch parameters.
type WatchOptions struct {
	// Conn is the shared push connection; nil means no endpoint is configured.
	Conn   controller.Connection
	Output io.Writer
	// Ready, when set, is closed once the inbox is subscribed.
	Ready chan<- struct{}
}

// WatchUseCase keeps an inbox subscribed to push events until the context
// ends. Alerts reach the user through the inbox's sink; Changed prints the
// unread counter whenever it moves.
type WatchUseCase struct {
	inbox Watcher

	mu         sync.Mutex
	out        io.Writer
	lastUnread int
	started    bool
}

// NewWatchUseCase creates a watch use-case.
func NewWatchUseCase(inbox Watcher) *WatchUseCase {
	if inbox == nil {
		panic("NewWatchUseCase: inbox dependency cannot be nil")
	}
	return &WatchUseCase{inbox: inbox, out: os.Stdout}
}

// Execute blocks until ctx is done.
func (u *WatchUseCase) Execute(ctx context.Context, opts WatchOptions) error {
	if err := requireActive(u.inbox); err != nil {
		return err
	}
	if opts.Conn == nil {
		return ErrHeadless
	}
	if opts.Output != nil {
		u.mu.Lock()
		u.out = opts.Output
		u.mu.Unlock()
	}

	if err := u.inbox.Load(ctx); err != nil {
		colors.Warning(fmt.Sprintf("initial load failed: %v", err))
	}
	u.printStatus()
	colors.LogInfo(fmt.Sprintf("Watching %s notifications (Ctrl+C to stop)...", u.inbox.Role()))

	u.inbox.Mount(ctx, opts.Conn)
	defer u.inbox.Unmount()
	if opts.Ready != nil {
		close(opts.Ready)
	}

	<-ctx.Done()
	return nil
}

// Changed is the inbox OnChange callback.
func (u *WatchUseCase) Changed() {
	u.printStatus()
}

// printStatus prints the summary line the first time and whenever the
// unread counter changed since the last line.
func (u *WatchUseCase) printStatus() {
	unread := u.inbox.UnreadCount()
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.started && unread == u.lastUnread {
		return
	}
	u.started = true
	u.lastUnread = unread
	status := format.Status{
		Role:    u.inbox.Role(),
		Unread:  unread,
		Loaded:  len(u.inbox.List()),
		HasMore: u.inbox.HasMore(),
	}
	_, _ = fmt.Fprintln(u.out, format.Summary(status))
}
