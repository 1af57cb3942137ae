// Package hooks runs user scripts when notifications arrive or change.
//
// Scripts live in {hooks_dir}/{point}/ and run in name order. Every
// executable regular file is a hook; everything else is ignored. Context is
// passed through environment variables.
package hooks

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cristianoliveira/motinbox/internal/colors"
	"github.com/cristianoliveira/motinbox/internal/config"
)

// Hook points.
const (
	// PointNotification runs for every push alert.
	PointNotification = "on-notification"
	// PointAction runs after a mark-read, mark-all-read, delete or clear succeeds.
	PointAction = "post-action"
)

// FailureMode decides what a failing script does to the run.
type FailureMode string

const (
	FailureIgnore FailureMode = "ignore"
	FailureWarn   FailureMode = "warn"
	FailureAbort  FailureMode = "abort"
)

// Options configures a Runner.
type Options struct {
	Dir         string
	Enabled     bool
	FailureMode FailureMode
	Timeout     time.Duration
	Async       bool
	MaxAsync    int
	// Output receives script output and progress lines. Defaults to os.Stderr.
	Output io.Writer
}

// OptionsFromConfig reads the hooks_* keys of the loaded configuration.
func OptionsFromConfig() Options {
	return Options{
		Dir:         config.Get("hooks_dir", ""),
		Enabled:     config.GetBool("hooks_enabled", true),
		FailureMode: FailureMode(config.Get("hooks_failure_mode", string(FailureWarn))),
		Timeout:     time.Duration(config.GetInt("hooks_timeout", 10)) * time.Second,
		Async:       config.GetBool("hooks_async", false),
		MaxAsync:    config.GetInt("hooks_max_async", 10),
	}
}

// Runner executes hook scripts.
type Runner struct {
	opts   Options
	binary string

	mu      sync.Mutex
	pending int
	wg      sync.WaitGroup
}

// New returns a Runner. Zero options get defaults: warn on failure, a ten
// second timeout and ten concurrent async scripts.
func New(opts Options) *Runner {
	if opts.FailureMode == "" {
		opts.FailureMode = FailureWarn
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxAsync <= 0 {
		opts.MaxAsync = 10
	}
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	r := &Runner{opts: opts}
	if exe, err := os.Executable(); err == nil {
		r.binary = exe
	}
	return r
}

// Init creates the directory of every hook point so users can find them.
func (r *Runner) Init() error {
	if r.opts.Dir == "" {
		return nil
	}
	for _, point := range []string{PointNotification, PointAction} {
		dir := filepath.Join(r.opts.Dir, point)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create hooks directory %s: %w", dir, err)
		}
	}
	return nil
}

// Scripts returns the executable scripts for point in run order.
func (r *Runner) Scripts(point string) []string {
	if r.opts.Dir == "" {
		return nil
	}
	dir := filepath.Join(r.opts.Dir, point)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var scripts []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() || info.Mode()&0111 == 0 {
			continue
		}
		scripts = append(scripts, path)
	}
	sort.Strings(scripts)
	return scripts
}

// Run executes the scripts of point with env added to the process
// environment. With FailureAbort the first failing script stops the run and
// its error is returned; other modes always return nil.
func (r *Runner) Run(ctx context.Context, point string, env map[string]string) error {
	if !r.opts.Enabled {
		return nil
	}
	scripts := r.Scripts(point)
	if len(scripts) == 0 {
		return nil
	}

	environ := r.environ(point, env)
	fmt.Fprintf(r.opts.Output, "Running %s hooks (%d script(s))\n", point, len(scripts))
	for _, script := range scripts {
		if r.opts.Async {
			r.startAsync(script, environ)
			continue
		}
		if err := r.runSync(ctx, script, environ); err != nil && r.opts.FailureMode == FailureAbort {
			return err
		}
	}
	return nil
}

func (r *Runner) environ(point string, env map[string]string) []string {
	vars := map[string]string{
		"HOOK_POINT":                  point,
		"HOOK_TIMESTAMP":              time.Now().Format(time.RFC3339),
		"MOTINBOX_HOOKS_FAILURE_MODE": string(r.opts.FailureMode),
	}
	if r.binary != "" {
		vars["MOTINBOX_BINARY"] = r.binary
	}
	for k, v := range env {
		vars[k] = v
	}
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	environ := os.Environ()
	for _, k := range keys {
		environ = append(environ, k+"="+vars[k])
	}
	return environ
}

func (r *Runner) runSync(ctx context.Context, script string, environ []string) error {
	name := filepath.Base(script)
	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(ctx, script)
	cmd.Env = environ
	cmd.WaitDelay = time.Second
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	err := cmd.Run()
	duration := time.Since(start)

	if output.Len() > 0 {
		r.opts.Output.Write(output.Bytes())
	}
	fields := map[string]any{"script": name, "duration_ms": duration.Milliseconds()}
	if err == nil {
		colors.StructuredDebug("hooks", "run", "completed", nil, "", fields)
		return nil
	}
	if ctx.Err() == context.DeadlineExceeded {
		err = fmt.Errorf("timed out after %s", r.opts.Timeout)
	}
	colors.StructuredError("hooks", "run", "failed", err, "", fields)

	hookErr := fmt.Errorf("hook %s failed: %w", name, err)
	if r.opts.FailureMode == FailureWarn {
		colors.Warning(hookErr.Error() + outputSuffix(output.String()))
	}
	return hookErr
}

func (r *Runner) startAsync(script string, environ []string) {
	name := filepath.Base(script)
	r.mu.Lock()
	if r.pending >= r.opts.MaxAsync {
		r.mu.Unlock()
		colors.Warning(fmt.Sprintf("too many async hooks pending (max: %d), skipping %s", r.opts.MaxAsync, name))
		return
	}
	r.pending++
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				colors.Error(fmt.Sprintf("async hook %s panicked: %v", name, rec))
			}
			r.mu.Lock()
			r.pending--
			r.mu.Unlock()
			r.wg.Done()
		}()
		// Async scripts outlive the caller's context; only the timeout bounds them.
		_ = r.runSync(context.Background(), script, environ)
	}()
}

// Wait blocks until every async script has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Pending returns the number of running async scripts.
func (r *Runner) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending
}

func outputSuffix(out string) string {
	out = strings.TrimSpace(out)
	if out == "" {
		return ""
	}
	return ", output: " + out
}
