// Package format renders notification lists and inbox status for the CLI.
package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/cristianoliveira/motinbox/internal/domain"
)

// Formatter writes a notification list.
type Formatter interface {
	FormatNotifications(notifications []domain.Notification, writer io.Writer) error
}

// FormatterType names an output style.
type FormatterType string

const (
	// FormatterTypeSimple prints one line per notification: marker, id, date, text.
	FormatterTypeSimple FormatterType = "simple"
	// FormatterTypeTable prints a bordered table with headers.
	FormatterTypeTable FormatterType = "table"
	// FormatterTypeCompact prints only the text, one per line.
	FormatterTypeCompact FormatterType = "compact"
	// FormatterTypeJSON prints the records as a JSON array.
	FormatterTypeJSON FormatterType = "json"
)

// FormatterTypes lists the accepted --format values.
var FormatterTypes = []FormatterType{FormatterTypeSimple, FormatterTypeTable, FormatterTypeCompact, FormatterTypeJSON}

// ParseFormatterType validates a --format value.
func ParseFormatterType(s string) (FormatterType, error) {
	t := FormatterType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range FormatterTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (want one of %s)", s, joinTypes(FormatterTypes))
}

func joinTypes(types []FormatterType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}

// NewFormatter creates a formatter; unknown types fall back to simple.
func NewFormatter(formatterType FormatterType) Formatter {
	switch formatterType {
	case FormatterTypeTable:
		return NewTableFormatter()
	case FormatterTypeCompact:
		return &CompactFormatter{}
	case FormatterTypeJSON:
		return &JSONFormatter{Indent: "  "}
	default:
		return &SimpleFormatter{}
	}
}

// unreadMarker is shown in front of unread notifications.
const unreadMarker = "●"

func marker(n domain.Notification) string {
	if n.Read {
		return " "
	}
	return unreadMarker
}

// displayDate renders CreatedAt in local time, or the raw value when it
// cannot be parsed.
func displayDate(n domain.Notification) string {
	t := n.CreatedTime()
	if t.IsZero() {
		return n.CreatedAt
	}
	return t.Local().Format("2006-01-02 15:04")
}

// truncate shortens s to width runes, ending with "...".
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width < 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}
