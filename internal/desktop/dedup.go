package desktop

import (
	"context"

	"github.com/cristianoliveira/motinbox/internal/dedup"
	"github.com/cristianoliveira/motinbox/internal/domain"
)

type dedupSink struct {
	next   Sink
	filter *dedup.Filter
}

// Dedup drops alerts the filter has already let through within its window.
// A disabled filter returns next unchanged.
func Dedup(next Sink, opts dedup.Options) Sink {
	if !opts.Enabled() {
		return next
	}
	return dedupSink{next: next, filter: dedup.NewFilter(opts)}
}

// Notify implements Sink.
func (s dedupSink) Notify(ctx context.Context, alert domain.Alert) error {
	if !s.filter.Allow(alert) {
		return nil
	}
	return s.next.Notify(ctx, alert)
}
