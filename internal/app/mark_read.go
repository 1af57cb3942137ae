package app

import (
	"context"
	"fmt"

	"github.com/cristianoliveira/motinbox/internal/colors"
)

// MarkReadUseCase coordinates mark-read and mark-all-read behavior.
type MarkReadUseCase struct {
	inbox Inbox
	hook  ActionHook
}

// NewMarkReadUseCase creates a mark-read use-case. hook may be nil.
func NewMarkReadUseCase(inbox Inbox, hook ActionHook) *MarkReadUseCase {
	if inbox == nil {
		panic("NewMarkReadUseCase: inbox dependency cannot be nil")
	}
	return &MarkReadUseCase{inbox: inbox, hook: hook}
}

// Execute marks each id read, stopping at the first failure.
func (u *MarkReadUseCase) Execute(ctx context.Context, ids []string) error {
	if err := requireActive(u.inbox); err != nil {
		return err
	}
	for _, id := range ids {
		if err := u.inbox.MarkRead(ctx, id); err != nil {
			return fmt.Errorf("mark-read: %w", err)
		}
		runHook(ctx, u.hook, u.inbox, ActionMarkRead, id)
		colors.Success(fmt.Sprintf("Notification %s marked as read", id))
	}
	return nil
}

// ExecuteAll marks every notification of the role read.
func (u *MarkReadUseCase) ExecuteAll(ctx context.Context) error {
	if err := requireActive(u.inbox); err != nil {
		return err
	}
	if err := u.inbox.MarkAllRead(ctx); err != nil {
		return fmt.Errorf("mark-all-read: %w", err)
	}
	runHook(ctx, u.hook, u.inbox, ActionMarkAllRead, "")
	colors.Success("All notifications marked as read")
	return nil
}

// runHook reports hook failures as warnings; the mutation already succeeded.
func runHook(ctx context.Context, hook ActionHook, inbox Inbox, action, id string) {
	if hook == nil {
		return
	}
	if err := hook.RunAction(ctx, inbox.Role(), action, id); err != nil {
		colors.Warning(fmt.Sprintf("%s hook: %v", action, err))
	}
}
