package desktop

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/cristianoliveira/motinbox/internal/domain"
)

// AppName is the application name shown by notify-send.
const AppName = "motinbox"

// CommandSink shows alerts through a notifier binary (notify-send or osascript).
// When the binary is not installed every Notify is a no-op.
type CommandSink struct {
	binary string
	runner Runner

	once      sync.Once
	available bool
}

// NewCommandSink creates a sink that runs binary through runner.
func NewCommandSink(binary string, runner Runner) *CommandSink {
	return &CommandSink{binary: binary, runner: runner}
}

// Available reports whether the notifier binary is installed.
func (s *CommandSink) Available() bool {
	s.once.Do(func() {
		_, err := s.runner.LookPath(s.binary)
		s.available = err == nil
	})
	return s.available
}

// Notify implements Sink.
func (s *CommandSink) Notify(ctx context.Context, alert domain.Alert) error {
	if !s.Available() {
		return nil
	}
	_, stderr, err := s.runner.Run(ctx, s.binary, s.args(alert)...)
	if err != nil {
		return fmt.Errorf("%s failed: %w (stderr: %s)", s.binary, err, stderr)
	}
	return nil
}

func (s *CommandSink) args(alert domain.Alert) []string {
	if s.binary == BackendOsascript {
		script := fmt.Sprintf("display notification %s with title %s", strconv.Quote(alert.Body), strconv.Quote(alert.Title))
		return []string{"-e", script}
	}
	return []string{"--app-name", AppName, alert.Title, alert.Body}
}
