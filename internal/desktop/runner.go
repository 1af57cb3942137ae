package desktop

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	"github.com/cristianoliveira/motinbox/internal/colors"
	"github.com/stretchr/testify/mock"
)

// DefaultTimeout bounds a single notifier command.
const DefaultTimeout = 5 * time.Second

// Runner executes notifier commands.
type Runner interface {
	// LookPath reports the path of name, or an error when it is not installed.
	LookPath(name string) (string, error)
	// Run executes name with args and returns stdout and stderr.
	Run(ctx context.Context, name string, args ...string) (string, string, error)
}

// ExecRunner runs commands with os/exec under a timeout.
type ExecRunner struct {
	timeout time.Duration
}

// NewExecRunner creates an ExecRunner. A non-positive timeout uses DefaultTimeout.
func NewExecRunner(timeout time.Duration) *ExecRunner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ExecRunner{timeout: timeout}
}

// LookPath implements Runner.
func (r *ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	start := time.Now()
	colors.StructuredDebug("desktop", "run", "started", nil, name, map[string]interface{}{"args_count": len(args)})
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	duration := time.Since(start).Seconds()
	if err != nil {
		colors.StructuredError("desktop", "run", "failed", err, name, map[string]interface{}{"duration_seconds": duration, "stderr": stderr.String()})
	} else {
		colors.StructuredDebug("desktop", "run", "completed", nil, name, map[string]interface{}{"duration_seconds": duration})
	}
	return stdout.String(), stderr.String(), err
}

// MockRunner is a testify mock of Runner.
//
// Example usage:
//
//	runner := new(desktop.MockRunner)
//	runner.On("LookPath", "notify-send").Return("/usr/bin/notify-send", nil)
//	runner.On("Run", mock.Anything, "notify-send", []string{"Title", "Body"}).Return("", "", nil)
type MockRunner struct {
	mock.Mock
}

// LookPath returns the mocked path.
func (m *MockRunner) LookPath(name string) (string, error) {
	args := m.Called(name)
	return args.String(0), args.Error(1)
}

// Run returns the mocked output. Arguments are matched as (ctx, name, []string).
func (m *MockRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	ret := m.Called(ctx, name, args)
	return ret.String(0), ret.String(1), ret.Error(2)
}
