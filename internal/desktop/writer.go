package desktop

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/cristianoliveira/motinbox/internal/colors"
	"github.com/cristianoliveira/motinbox/internal/domain"
)

// WriterSink prints each alert as one colored line. Used by the watch command.
type WriterSink struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

// NewWriterSink creates a sink writing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w, now: time.Now}
}

// Notify implements Sink.
func (s *WriterSink) Notify(ctx context.Context, alert domain.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	channel := ""
	if info, ok := domain.PushInfoFrom(ctx); ok && info.Channel != "" {
		channel = " [" + info.Channel + "]"
	}
	_, err := fmt.Fprintf(s.w, "%s %s%s%s%s %s\n",
		s.now().Format("15:04:05"), colors.Blue, alert.Title, colors.Reset, channel, alert.Body)
	return err
}
