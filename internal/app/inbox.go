// Package app holds one use case per CLI command. Use cases drive a
// role-scoped inbox and print results through the colors package.
package app

import (
	"context"

	"github.com/cristianoliveira/motinbox/internal/controller"
	"github.com/cristianoliveira/motinbox/internal/domain"
)

// Inbox is the controller surface the use cases drive.
type Inbox interface {
	Role() domain.Role
	Skipped() bool
	Load(ctx context.Context) error
	LoadMore(ctx context.Context) (bool, error)
	List() []domain.Notification
	UnreadCount() int
	HasMore() bool
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}

var _ Inbox = (*controller.Controller)(nil)

// SnapshotLoader reads the last saved feed of a role.
type SnapshotLoader interface {
	Load(ctx context.Context, role domain.Role) (domain.Snapshot, error)
}

// ActionHook runs user scripts after a successful mutation.
type ActionHook interface {
	RunAction(ctx context.Context, role domain.Role, action, id string) error
}

// Action names passed to ActionHook.
const (
	ActionMarkRead    = "mark-read"
	ActionMarkAllRead = "mark-all-read"
	ActionDelete      = "delete"
	ActionClear       = "clear"
)

func requireActive(inbox Inbox) error {
	if inbox.Skipped() {
		return ErrNotSignedIn
	}
	return nil
}
