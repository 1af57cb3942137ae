// Package desktop delivers push alerts to the user's desktop.
//
// Every sink is best effort: a missing notifier binary is a silent no-op
// and failures are returned to the caller, which only logs them.
package desktop

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/cristianoliveira/motinbox/internal/domain"
)

// Backend names accepted by FromConfig.
const (
	BackendAuto       = "auto"
	BackendNotifySend = "notify-send"
	BackendOsascript  = "osascript"
	BackendTmux       = "tmux"
	BackendNone       = "none"
)

// Backends lists the valid desktop backends.
var Backends = []string{BackendAuto, BackendNotifySend, BackendOsascript, BackendTmux, BackendNone}

// Sink shows one alert.
type Sink interface {
	Notify(ctx context.Context, alert domain.Alert) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, alert domain.Alert) error

// Notify calls f.
func (f SinkFunc) Notify(ctx context.Context, alert domain.Alert) error {
	return f(ctx, alert)
}

// Nop discards every alert.
type Nop struct{}

// Notify implements Sink.
func (Nop) Notify(context.Context, domain.Alert) error { return nil }

// Multi fans an alert out to several sinks. Every sink is called even when
// an earlier one fails; the errors are joined.
type Multi []Sink

// Notify implements Sink.
func (m Multi) Notify(ctx context.Context, alert domain.Alert) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := Safe(s).Notify(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type safeSink struct {
	next Sink
}

// Safe wraps a sink so that a panic is returned as an error.
func Safe(s Sink) Sink {
	if _, ok := s.(safeSink); ok {
		return s
	}
	return safeSink{next: s}
}

func (s safeSink) Notify(ctx context.Context, alert domain.Alert) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("desktop sink panic: %v", r)
		}
	}()
	return s.next.Notify(ctx, alert)
}

// FromConfig returns the sink for backend. "auto" picks osascript on macOS,
// tmux inside a tmux session and notify-send elsewhere.
func FromConfig(backend string, runner Runner) (Sink, error) {
	if runner == nil {
		runner = NewExecRunner(DefaultTimeout)
	}
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendAuto, "":
		return autoSink(runner), nil
	case BackendNotifySend:
		return NewCommandSink(BackendNotifySend, runner), nil
	case BackendOsascript:
		return NewCommandSink(BackendOsascript, runner), nil
	case BackendTmux:
		return NewTmuxSink(runner), nil
	case BackendNone:
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown desktop backend %q (want one of %s)", backend, strings.Join(Backends, ", "))
	}
}

func autoSink(runner Runner) Sink {
	if runtime.GOOS == "darwin" {
		return NewCommandSink(BackendOsascript, runner)
	}
	if os.Getenv("TMUX") != "" {
		return Multi{NewCommandSink(BackendNotifySend, runner), NewTmuxSink(runner)}
	}
	return NewCommandSink(BackendNotifySend, runner)
}
