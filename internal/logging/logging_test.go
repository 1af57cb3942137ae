package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cristianoliveira/motinbox/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTest(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(tmp, "state"))
	for _, key := range []string{"DEBUG", "QUIET", "LOGGING_ENABLED", "LOGGING_LEVEL", "LOGGING_MAX_FILES", "STATE_DIR"} {
		t.Setenv("MOTINBOX_"+key, "")
		require.NoError(t, os.Unsetenv("MOTINBOX_"+key))
	}
	config.Load()
	return tmp
}

func decodeLines(t *testing.T, data []byte) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(data), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal(line, &entry), "line %q", line)
		out = append(out, entry)
	}
	return out
}

func TestConfigFromGlobal(t *testing.T) {
	setupTest(t)
	t.Setenv("MOTINBOX_LOGGING_ENABLED", "true")
	t.Setenv("MOTINBOX_LOGGING_LEVEL", "warn")
	t.Setenv("MOTINBOX_LOGGING_MAX_FILES", "5")
	config.Load()

	cfg := FromGlobalConfig()
	require.True(t, cfg.Enabled)
	require.Equal(t, "warn", cfg.Level)
	require.Equal(t, 5, cfg.MaxFiles)
	require.Equal(t, filepath.Base(os.Args[0]), cfg.Command)
	require.Equal(t, os.Getpid(), cfg.PID)

	SetCommand("motinbox watch")
	t.Cleanup(func() { SetCommand("") })
	require.Equal(t, "motinbox watch", FromGlobalConfig().Command)
}

func TestLogLevelMapping(t *testing.T) {
	tests := []struct {
		name  string
		debug string
		quiet string
		want  string
	}{
		{"configured level kept", "false", "false", "warn"},
		{"debug wins", "true", "false", "debug"},
		{"debug wins over quiet", "true", "true", "debug"},
		{"quiet raises to error", "false", "true", "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTest(t)
			t.Setenv("MOTINBOX_LOGGING_LEVEL", "warn")
			t.Setenv("MOTINBOX_DEBUG", tt.debug)
			t.Setenv("MOTINBOX_QUIET", tt.quiet)
			config.Load()
			require.Equal(t, tt.want, FromGlobalConfig().Level)
		})
	}
}

func TestLogDir(t *testing.T) {
	tmp := setupTest(t)

	dir, err := LogDir()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(tmp, "state", "motinbox", "logs"), dir)
	require.DirExists(t, dir)
}

func TestLogDirFallback(t *testing.T) {
	tmp := setupTest(t)
	blocker := filepath.Join(tmp, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0600))
	// state_dir below a regular file cannot be created.
	config.Set("state_dir", filepath.Join(blocker, "state"))

	dir, err := LogDir()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(os.TempDir(), "motinbox", "logs"), dir)
}

func TestInitDisabled(t *testing.T) {
	setupTest(t)
	l, err := Init(Config{Enabled: false})
	require.NoError(t, err)
	require.IsType(t, noopLogger{}, l)
	l.Info("dropped")
	require.NoError(t, l.Shutdown())
}

func TestInitEnabledCreatesFile(t *testing.T) {
	setupTest(t)
	cfg := Config{Enabled: true, Level: "debug", MaxFiles: 3, Command: "watch driver", PID: 4242}

	l, err := Init(cfg)
	require.NoError(t, err)
	impl, ok := l.(*loggerImpl)
	require.True(t, ok)

	name := filepath.Base(impl.path)
	require.True(t, strings.HasPrefix(name, FilePrefix))
	require.True(t, strings.HasSuffix(name, "_PID4242_watch_driver.log"))

	l.Debug("hello", "role", "driver")
	require.NoError(t, l.Shutdown())
	require.NoError(t, l.Shutdown())

	data, err := os.ReadFile(impl.path)
	require.NoError(t, err)
	entries := decodeLines(t, data)
	require.Len(t, entries, 1)
	require.Equal(t, "hello", entries[0]["msg"])
	require.Equal(t, "driver", entries[0]["role"])
	require.Equal(t, "watch driver", entries[0]["command"])
	require.EqualValues(t, 4242, entries[0]["pid"])
}

func TestJSONWriterLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSONWriter(&buf, "warn")

	l.Debug("d")
	l.Info("i")
	l.Warn("w")
	l.Error("e", "err", errors.New("boom"))

	entries := decodeLines(t, buf.Bytes())
	require.Len(t, entries, 2)
	assert.Equal(t, "w", entries[0]["msg"])
	assert.Equal(t, "warn", entries[0]["level"])
	assert.Equal(t, "e", entries[1]["msg"])
	assert.Equal(t, "boom", entries[1]["err"])
}

func TestTextWriter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "info")
	l.Info("push received", "channel", "notification:driver")
	out := buf.String()
	assert.Contains(t, out, "push received")
	assert.Contains(t, out, "channel=notification:driver")
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	base := NewJSONWriter(&buf, "debug")
	child := base.With("component", "controller", "role", "driver")
	override := child.With("role", "inspector")

	base.Info("base")
	child.Info("child")
	override.Info("override")

	entries := decodeLines(t, buf.Bytes())
	require.Len(t, entries, 3)
	assert.NotContains(t, entries[0], "component")
	assert.Equal(t, "controller", entries[1]["component"])
	assert.Equal(t, "driver", entries[1]["role"])
	assert.Equal(t, "inspector", entries[2]["role"])
	assert.Equal(t, "controller", entries[2]["component"])
}

func TestRedaction(t *testing.T) {
	const jwt = "eyJhbGciOiJIUzI1NiJ9.eyJpZCI6NDJ9.c2lnbmF0dXJl"
	var buf bytes.Buffer
	l := NewJSONWriter(&buf, "debug")

	l.Info("connecting",
		"token", jwt,
		"api_key", "abc",
		"monkey", "banana",
		"url", "wss://push.example/socket?token="+jwt,
		"err", fmt.Errorf("dial %s: refused", jwt),
	)

	entries := decodeLines(t, buf.Bytes())
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, Redacted, e["token"])
	assert.Equal(t, Redacted, e["api_key"])
	assert.Equal(t, "banana", e["monkey"])
	assert.Equal(t, "wss://push.example/socket?token="+Redacted, e["url"])
	assert.Equal(t, "dial "+Redacted+": refused", e["err"])
	assert.NotContains(t, buf.String(), "eyJpZCI6NDJ9")
}

func TestRedactorDoesNotMutateInput(t *testing.T) {
	r := newRedactor()
	in := []any{"password", "hunter2", "count", 3, 42, "orphan"}
	out := r.redact(in)

	require.Equal(t, "hunter2", in[1])
	require.Equal(t, []any{"password", Redacted, "count", 3, 42, "orphan"}, out)
	require.Empty(t, r.redact(nil))
}

func TestIsSensitive(t *testing.T) {
	r := newRedactor()
	for key, want := range map[string]bool{
		"token":         true,
		"Authorization": true,
		"x-api-key":     true,
		"user_secret":   true,
		"tokenizer":     false,
		"keyboard":      false,
		"role":          false,
	} {
		assert.Equal(t, want, r.isSensitive(key), key)
	}
}

func TestRotation(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		path := filepath.Join(dir, fmt.Sprintf("%s%d.log", FilePrefix, i))
		require.NoError(t, os.WriteFile(path, nil, 0600))
		mod := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(path, mod, mod))
	}
	other := filepath.Join(dir, "unrelated.log")
	require.NoError(t, os.WriteFile(other, nil, 0600))

	require.NoError(t, rotate(dir, 3))

	for i := 0; i < 5; i++ {
		path := filepath.Join(dir, fmt.Sprintf("%s%d.log", FilePrefix, i))
		if i < 3 {
			require.NoFileExists(t, path)
		} else {
			require.FileExists(t, path)
		}
	}
	require.FileExists(t, other)
}

func TestRotationEdgeCases(t *testing.T) {
	require.NoError(t, rotate(t.TempDir(), 0))
	require.NoError(t, rotate(t.TempDir(), 5))
	require.Error(t, rotate(filepath.Join(t.TempDir(), "missing"), 2))
}

func TestGlobalLogger(t *testing.T) {
	require.IsType(t, noopLogger{}, Nop())

	var buf bytes.Buffer
	restore := SetGlobal(NewJSONWriter(&buf, "info"))
	Info("global", "n", 1)
	With("role", "driver").Warn("scoped")
	Debug("dropped")
	require.Empty(t, CurrentLogFile())
	restore()

	entries := decodeLines(t, buf.Bytes())
	require.Len(t, entries, 2)
	assert.Equal(t, "global", entries[0]["msg"])
	assert.Equal(t, "driver", entries[1]["role"])
}

func TestLevelParsing(t *testing.T) {
	for in, want := range map[string]string{
		"debug":   "debug",
		"INFO":    "info",
		"warning": "warn",
		"warn":    "warn",
		"error":   "error",
		"bogus":   "info",
	} {
		assert.Equal(t, want, parseLevel(in).String(), in)
	}
}
