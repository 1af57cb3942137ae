// Package notice delivers short user-visible messages, such as
// "Failed to delete notification: ...", to whichever surface is active.
package notice

import (
	"sync"
	"time"

	"github.com/cristianoliveira/motinbox/internal/colors"
)

// Handler shows notices to the user.
type Handler interface {
	Error(msg string)
	Warning(msg string)
	Info(msg string)
	Success(msg string)
}

// Output prints formatted console lines.
type Output interface {
	Error(msgs ...string)
	Warning(msgs ...string)
	Info(msgs ...string)
	Success(msgs ...string)
}

// ColorsOutput adapts the colors package to Output.
type ColorsOutput struct{}

var _ Output = ColorsOutput{}

func (ColorsOutput) Error(msgs ...string)   { colors.Error(msgs...) }
func (ColorsOutput) Warning(msgs ...string) { colors.Warning(msgs...) }
func (ColorsOutput) Info(msgs ...string)    { colors.Info(msgs...) }
func (ColorsOutput) Success(msgs ...string) { colors.Success(msgs...) }

// DefaultRepeatWindow is how long the CLI handler suppresses a repeated
// error or warning.
const DefaultRepeatWindow = 5 * time.Second

// CLIHandler prints notices to the console. An error or warning identical to
// the previous one is dropped while inside the repeat window, so a watch
// session that keeps failing the same way prints the failure once.
type CLIHandler struct {
	out    Output
	window time.Duration
	now    func() time.Time

	mu       sync.Mutex
	lastText string
	lastType Type
	lastAt   time.Time
}

var _ Handler = (*CLIHandler)(nil)

// NewCLIHandler returns a handler writing to out with DefaultRepeatWindow.
func NewCLIHandler(out Output) *CLIHandler {
	return &CLIHandler{out: out, window: DefaultRepeatWindow, now: time.Now}
}

// NewDefaultCLIHandler creates a CLI handler using ColorsOutput.
func NewDefaultCLIHandler() *CLIHandler {
	return NewCLIHandler(ColorsOutput{})
}

// WithRepeatWindow sets the suppression window; zero disables suppression.
func (h *CLIHandler) WithRepeatWindow(d time.Duration) *CLIHandler {
	h.window = d
	return h
}

func (h *CLIHandler) Error(msg string) {
	if h.repeated(msg, TypeError) {
		return
	}
	h.out.Error(msg)
}

func (h *CLIHandler) Warning(msg string) {
	if h.repeated(msg, TypeWarning) {
		return
	}
	h.out.Warning(msg)
}

func (h *CLIHandler) Info(msg string)    { h.out.Info(msg) }
func (h *CLIHandler) Success(msg string) { h.out.Success(msg) }

func (h *CLIHandler) repeated(msg string, typ Type) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	now := h.now()
	if h.window > 0 && msg == h.lastText && typ == h.lastType && now.Sub(h.lastAt) < h.window {
		return true
	}
	h.lastText, h.lastType, h.lastAt = msg, typ, now
	return false
}
