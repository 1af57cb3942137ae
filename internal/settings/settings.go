// Package settings persists the inbox TUI view preferences.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/cristianoliveira/motinbox/internal/config"
	"github.com/cristianoliveira/motinbox/internal/domain"
)

// Settings holds TUI user preferences persisted to disk.
//
// Stored as TOML at <config_dir>/tui.toml:
//
//	unread_first = true
//	read_filter = "unread"
type Settings struct {
	// UnreadFirst lists unread notifications before read ones.
	UnreadFirst bool `toml:"unread_first"`

	// ReadFilter hides read or unread notifications.
	// Valid values: "read", "unread", "" (show all).
	ReadFilter string `toml:"read_filter"`
}

// DefaultSettings returns settings with all default values.
func DefaultSettings() *Settings {
	return &Settings{}
}

// NextReadFilter cycles the read filter: all, unread, read, all.
func (s *Settings) NextReadFilter() {
	switch s.ReadFilter {
	case "":
		s.ReadFilter = domain.ReadFilterUnread
	case domain.ReadFilterUnread:
		s.ReadFilter = domain.ReadFilterRead
	default:
		s.ReadFilter = ""
	}
}

// Validate checks that settings values are valid.
func (s *Settings) Validate() error {
	switch s.ReadFilter {
	case "", domain.ReadFilterRead, domain.ReadFilterUnread:
		return nil
	default:
		return fmt.Errorf("invalid read_filter value: %s", s.ReadFilter)
	}
}

// Load reads settings from Path. A missing file yields the defaults.
func Load() (*Settings, error) {
	path := Path()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	s := DefaultSettings()
	if err := toml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}

// Save writes settings to Path, creating its directory if needed.
func Save(s *Settings) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), config.FileModeDir); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.WriteFile(path, data, config.FileModeFile); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}
