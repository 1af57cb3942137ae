package format

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/cristianoliveira/motinbox/internal/domain"
)

// Status summarizes one role's inbox.
type Status struct {
	Role    domain.Role `json:"role"`
	Unread  int         `json:"unread"`
	Loaded  int         `json:"loaded"`
	HasMore bool        `json:"has_more"`
	// Offline is set when the numbers come from a saved snapshot.
	Offline bool      `json:"offline"`
	SavedAt time.Time `json:"saved_at,omitempty"`
}

// StatusFormat names a status output style.
type StatusFormat string

const (
	StatusFormatSummary StatusFormat = "summary"
	StatusFormatCount   StatusFormat = "count"
	StatusFormatJSON    StatusFormat = "json"
)

// ParseStatusFormat validates a status --format value.
func ParseStatusFormat(s string) (StatusFormat, error) {
	switch f := StatusFormat(s); f {
	case StatusFormatSummary, StatusFormatCount, StatusFormatJSON:
		return f, nil
	case "":
		return StatusFormatSummary, nil
	default:
		return "", fmt.Errorf("unknown status format %q (want summary, count or json)", s)
	}
}

// FormatStatus writes s in the given style.
func FormatStatus(s Status, f StatusFormat, writer io.Writer) error {
	switch f {
	case StatusFormatCount:
		_, err := fmt.Fprintln(writer, s.Unread)
		return err
	case StatusFormatJSON:
		return json.NewEncoder(writer).Encode(s)
	default:
		_, err := fmt.Fprintln(writer, Summary(s))
		return err
	}
}

// Summary renders a one-line description such as
// "DRIVER: 3 unread, 20 loaded (more available)".
func Summary(s Status) string {
	line := fmt.Sprintf("%s: %d unread, %d loaded", s.Role, s.Unread, s.Loaded)
	if s.HasMore {
		line += " (more available)"
	}
	if s.Offline {
		if s.SavedAt.IsZero() {
			line += " [offline]"
		} else {
			line += fmt.Sprintf(" [offline, saved %s]", s.SavedAt.Local().Format("2006-01-02 15:04"))
		}
	}
	return line
}
