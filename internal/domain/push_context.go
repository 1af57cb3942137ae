package domain

import "context"

// PushInfo identifies the push event an alert was resolved from.
type PushInfo struct {
	ID      string
	Channel string
}

type pushInfoKey struct{}

// WithPushInfo returns a context carrying the push event metadata.
func WithPushInfo(ctx context.Context, info PushInfo) context.Context {
	return context.WithValue(ctx, pushInfoKey{}, info)
}

// PushInfoFrom returns the push metadata stored by WithPushInfo, if any.
func PushInfoFrom(ctx context.Context) (PushInfo, bool) {
	info, ok := ctx.Value(pushInfoKey{}).(PushInfo)
	return info, ok
}
