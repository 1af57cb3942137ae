package hooks

import (
	"context"

	"github.com/cristianoliveira/motinbox/internal/domain"
)

// Sink runs the on-notification hook for every alert, exposing it as
// MOTINBOX_TITLE, MOTINBOX_BODY, MOTINBOX_ID and MOTINBOX_CHANNEL.
type Sink struct {
	Runner *Runner
	Role   domain.Role
}

// Notify runs the hook scripts synchronously, or starts them when the
// runner is async.
func (s Sink) Notify(ctx context.Context, alert domain.Alert) error {
	env := map[string]string{
		"MOTINBOX_TITLE": alert.Title,
		"MOTINBOX_BODY":  alert.Body,
		"MOTINBOX_ROLE":  s.Role.Slug(),
	}
	if info, ok := domain.PushInfoFrom(ctx); ok {
		env["MOTINBOX_ID"] = info.ID
		env["MOTINBOX_CHANNEL"] = info.Channel
	}
	return s.Runner.Run(ctx, PointNotification, env)
}

// RunAction runs the post-action hook. id is empty for bulk actions.
func (r *Runner) RunAction(ctx context.Context, role domain.Role, action, id string) error {
	return r.Run(ctx, PointAction, map[string]string{
		"MOTINBOX_ACTION": action,
		"MOTINBOX_ROLE":   role.Slug(),
		"MOTINBOX_ID":     id,
	})
}
