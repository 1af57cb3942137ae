// Package colors prints user-facing console messages and mirrors them to the
// structured logger.
package colors

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Color constants
const (
	Red    = "\033[0;31m"
	Green  = "\033[0;32m"
	Yellow = "\033[1;33m"
	Blue   = "\033[0;34m"
	Cyan   = "\033[0;36m"
	Reset  = "\033[0m"
)

const checkmark = "✓"

// DebugEnv enables debug output when set to "1" or "true".
const DebugEnv = "MOTINBOX_DEBUG"

// Logger defines the interface for structured logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

var (
	debugEnabled bool
	quiet        bool
	logger       Logger
	stdout       io.Writer = os.Stdout
	stderr       io.Writer = os.Stderr
	mu           sync.RWMutex
	// inFallback guards against a failing writer reporting its own failure forever.
	inFallback bool
)

func init() {
	if val := os.Getenv(DebugEnv); val == "true" || val == "1" {
		debugEnabled = true
	}
}

// SetDebug enables or disables debug output.
func SetDebug(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	debugEnabled = enabled
}

// DebugEnabled reports whether debug output is on.
func DebugEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return debugEnabled
}

// SetQuiet suppresses informational console output. Messages are still
// mirrored to the logger.
func SetQuiet(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	quiet = enabled
}

// SetLogger sets the structured logger to mirror console output.
func SetLogger(l Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}

// SetOutput redirects console output and returns a function restoring the
// previous writers. Nil keeps the current writer.
func SetOutput(out, errOut io.Writer) (restore func()) {
	mu.Lock()
	defer mu.Unlock()
	prevOut, prevErr := stdout, stderr
	if out != nil {
		stdout = out
	}
	if errOut != nil {
		stderr = errOut
	}
	return func() {
		mu.Lock()
		defer mu.Unlock()
		stdout, stderr = prevOut, prevErr
	}
}

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
)

func emit(lvl level, toStderr bool, format string, msgs []string, extra ...any) {
	msg := strings.Join(msgs, " ")

	mu.RLock()
	l := logger
	w := stdout
	if toStderr {
		w = stderr
	}
	silent := quiet && lvl == levelInfo
	mu.RUnlock()

	if l != nil {
		switch lvl {
		case levelDebug:
			l.Debug(msg, extra...)
		case levelInfo:
			l.Info(msg, extra...)
		case levelWarn:
			l.Warn(msg, extra...)
		case levelError:
			l.Error(msg, extra...)
		}
	}

	if silent {
		return
	}
	if _, err := fmt.Fprintf(w, format, msg); err != nil {
		fallback("failed to print message: " + err.Error())
	}
}

// fallback writes to the real stderr once, without colors or mirroring.
func fallback(msg string) {
	mu.Lock()
	if inFallback {
		mu.Unlock()
		return
	}
	inFallback = true
	mu.Unlock()

	fmt.Fprintf(os.Stderr, "%s\n", msg)

	mu.Lock()
	inFallback = false
	mu.Unlock()
}

// Error outputs an error message to stderr.
func Error(msgs ...string) {
	emit(levelError, true, Red+"Error:"+Reset+" %s"+Reset+"\n", msgs)
}

// Success outputs a success message to stdout.
func Success(msgs ...string) {
	emit(levelInfo, false, Green+checkmark+Reset+" %s"+Reset+"\n", msgs, "type", "success")
}

// Warning outputs a warning message to stderr.
func Warning(msgs ...string) {
	emit(levelWarn, true, Yellow+"Warning:"+Reset+" %s"+Reset+"\n", msgs)
}

// Info outputs an informational message to stdout.
func Info(msgs ...string) {
	emit(levelInfo, false, Blue+"%s"+Reset+"\n", msgs)
}

// LogInfo outputs an informational message to stderr, keeping stdout clean
// for command output.
func LogInfo(msgs ...string) {
	emit(levelInfo, true, Blue+"%s"+Reset+"\n", msgs)
}

// Debug outputs a debug message to stderr if debug is enabled.
func Debug(msgs ...string) {
	if !DebugEnabled() {
		return
	}
	emit(levelDebug, true, Cyan+"Debug:"+Reset+" %s"+Reset+"\n", msgs)
}
