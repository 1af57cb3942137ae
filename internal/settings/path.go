package settings

import (
	"os"
	"path/filepath"

	"github.com/cristianoliveira/motinbox/internal/config"
)

const tuiSettingsFilename = "tui" + config.FileExtTOML

// Path returns the TUI settings file: tui_settings_path when set, else
// tui.toml inside config_dir.
func Path() string {
	if override := config.Get("tui_settings_path", ""); override != "" {
		return override
	}
	return filepath.Join(resolveConfigDir(), tuiSettingsFilename)
}

// resolveConfigDir returns config_dir, falling back to the XDG default.
func resolveConfigDir() string {
	if configDir := config.Get("config_dir", ""); configDir != "" {
		return configDir
	}
	home, _ := os.UserHomeDir()
	xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfigHome == "" {
		xdgConfigHome = filepath.Join(home, ".config")
	}
	return filepath.Join(xdgConfigHome, "motinbox")
}
