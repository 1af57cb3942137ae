package app

import (
	"context"
	"fmt"

	"github.com/cristianoliveira/motinbox/internal/colors"
)

// DeleteUseCase coordinates delete and clear behavior.
type DeleteUseCase struct {
	inbox Inbox
	hook  ActionHook
}

// NewDeleteUseCase creates a delete use-case. hook may be nil.
func NewDeleteUseCase(inbox Inbox, hook ActionHook) *DeleteUseCase {
	if inbox == nil {
		panic("NewDeleteUseCase: inbox dependency cannot be nil")
	}
	return &DeleteUseCase{inbox: inbox, hook: hook}
}

// Execute deletes each id, stopping at the first failure.
func (u *DeleteUseCase) Execute(ctx context.Context, ids []string) error {
	if err := requireActive(u.inbox); err != nil {
		return err
	}
	for _, id := range ids {
		if err := u.inbox.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete: %w", err)
		}
		runHook(ctx, u.hook, u.inbox, ActionDelete, id)
		colors.Success(fmt.Sprintf("Notification %s deleted", id))
	}
	return nil
}

// ClearInput represents clear command inputs.
type ClearInput struct {
	// Confirm asks the user; nil means confirmed.
	Confirm func() bool
}

// Clear deletes every notification of the role after confirmation.
func (u *DeleteUseCase) Clear(ctx context.Context, input ClearInput) error {
	if err := requireActive(u.inbox); err != nil {
		return err
	}
	if input.Confirm != nil && !input.Confirm() {
		colors.Info("Operation cancelled")
		return nil
	}
	if err := u.inbox.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	runHook(ctx, u.hook, u.inbox, ActionClear, "")
	colors.Success("All notifications deleted")
	return nil
}
