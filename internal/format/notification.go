package format

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cristianoliveira/motinbox/internal/domain"
)

// SimpleFormatter prints "● <id>  <date>  <text>".
type SimpleFormatter struct{}

func (f *SimpleFormatter) FormatNotifications(notifications []domain.Notification, writer io.Writer) error {
	for _, n := range notifications {
		if _, err := fmt.Fprintf(writer, "%s %-12s  %-16s  %s\n", marker(n), n.ID, displayDate(n), truncate(n.Text(), 60)); err != nil {
			return err
		}
	}
	return nil
}

// CompactFormatter prints only the text.
type CompactFormatter struct{}

func (f *CompactFormatter) FormatNotifications(notifications []domain.Notification, writer io.Writer) error {
	for _, n := range notifications {
		if _, err := fmt.Fprintln(writer, n.Text()); err != nil {
			return err
		}
	}
	return nil
}

// JSONFormatter prints the records as a JSON array. An empty list is "[]".
type JSONFormatter struct {
	Indent string
}

func (f *JSONFormatter) FormatNotifications(notifications []domain.Notification, writer io.Writer) error {
	if notifications == nil {
		notifications = []domain.Notification{}
	}
	enc := json.NewEncoder(writer)
	enc.SetIndent("", f.Indent)
	return enc.Encode(notifications)
}
