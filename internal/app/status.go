package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cristianoliveira/motinbox/internal/domain"
	"github.com/cristianoliveira/motinbox/internal/format"
	"github.com/cristianoliveira/motinbox/internal/formatter"
)

// StatusOptions holds status parameters after flag parsing.
type StatusOptions struct {
	Format format.StatusFormat
	// Template is a formatter preset name or a {{variable}} template; it
	// overrides Format when set.
	Template string
	Offline  bool
}

// StatusUseCase coordinates status behavior.
type StatusUseCase struct {
	inbox     Inbox
	snapshots SnapshotLoader
}

// NewStatusUseCase creates a status use-case.
func NewStatusUseCase(inbox Inbox, snapshots SnapshotLoader) *StatusUseCase {
	if inbox == nil {
		panic("NewStatusUseCase: inbox dependency cannot be nil")
	}
	return &StatusUseCase{inbox: inbox, snapshots: snapshots}
}

// Execute prints the unread counter and paging state of the role.
func (u *StatusUseCase) Execute(ctx context.Context, opts StatusOptions, w io.Writer) error {
	status, items, err := u.status(ctx, opts.Offline)
	if err != nil {
		return err
	}
	if opts.Template == "" {
		return format.FormatStatus(status, opts.Format, w)
	}

	vars := formatter.NewVariableContext(status.Role, status.Unread, items)
	vars.HasMore, vars.Offline, vars.SavedAt = status.HasMore, status.Offline, status.SavedAt
	line, err := formatter.Render(opts.Template, vars)
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}
	_, err = fmt.Fprintln(w, line)
	return err
}

func (u *StatusUseCase) status(ctx context.Context, offline bool) (format.Status, []domain.Notification, error) {
	role := u.inbox.Role()
	if offline {
		if u.snapshots == nil {
			return format.Status{}, nil, errors.New("status: offline snapshots are not available")
		}
		snap, err := u.snapshots.Load(ctx, role)
		if errors.Is(err, domain.ErrNoSnapshot) {
			return format.Status{Role: role, Offline: true}, nil, nil
		}
		if err != nil {
			return format.Status{}, nil, fmt.Errorf("status: load snapshot: %w", err)
		}
		return format.Status{Role: role, Unread: snap.Unread, Loaded: len(snap.Items), Offline: true, SavedAt: snap.SavedAt}, snap.Items, nil
	}

	if err := requireActive(u.inbox); err != nil {
		return format.Status{}, nil, err
	}
	if err := u.inbox.Load(ctx); err != nil {
		return format.Status{}, nil, fmt.Errorf("status: %w", err)
	}
	items := u.inbox.List()
	return format.Status{
		Role:    role,
		Unread:  u.inbox.UnreadCount(),
		Loaded:  len(items),
		HasMore: u.inbox.HasMore(),
	}, items, nil
}
