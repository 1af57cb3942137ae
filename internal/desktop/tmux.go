package desktop

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/cristianoliveira/motinbox/internal/domain"
)

// TmuxSink shows alerts in the tmux status line with display-message.
// Outside a tmux session it does nothing.
type TmuxSink struct {
	runner Runner
	getenv func(string) string
}

// NewTmuxSink creates a TmuxSink.
func NewTmuxSink(runner Runner) *TmuxSink {
	return &TmuxSink{runner: runner, getenv: os.Getenv}
}

// Notify implements Sink.
func (s *TmuxSink) Notify(ctx context.Context, alert domain.Alert) error {
	if s.getenv("TMUX") == "" {
		return nil
	}
	// '#' starts a tmux format sequence.
	msg := strings.ReplaceAll(fmt.Sprintf("%s: %s", alert.Title, alert.Body), "#", "##")
	_, stderr, err := s.runner.Run(ctx, "tmux", "display-message", msg)
	if err != nil {
		return fmt.Errorf("tmux display-message failed: %w (stderr: %s)", err, stderr)
	}
	return nil
}
