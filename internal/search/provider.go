// Package search matches notifications against free-text queries. The
// substring, regex and token strategies share the Provider interface so the
// list command can switch between them with a flag.
package search

import (
	"fmt"
	"strings"

	"github.com/cristianoliveira/motinbox/internal/domain"
)

// Provider matches a notification against a query.
type Provider interface {
	// Match returns true if the notification matches the search query.
	Match(n domain.Notification, query string) bool

	// Name returns the provider name.
	Name() string
}

// Searchable fields.
const (
	FieldID   = "id"
	FieldType = "type"
	FieldText = "text"
	FieldData = "data"
)

// Provider modes accepted by New.
const (
	ModeSubstring = "substring"
	ModeRegex     = "regex"
	ModeToken     = "token"
)

// Options holds configuration options for creating search providers.
type Options struct {
	CaseInsensitive bool     // If true, searches ignore case sensitivity
	Fields          []string // Fields to search in
}

// DefaultOptions returns the default search options.
func DefaultOptions() Options {
	return Options{
		CaseInsensitive: false,
		Fields:          []string{FieldText, FieldType},
	}
}

// Option is a function that modifies search options.
type Option func(*Options)

// WithCaseInsensitive sets case-insensitive search.
func WithCaseInsensitive(enabled bool) Option {
	return func(o *Options) {
		o.CaseInsensitive = enabled
	}
}

// WithFields sets the fields to search in.
// Valid fields: "id", "type", "text", "data".
func WithFields(fields []string) Option {
	return func(o *Options) {
		o.Fields = fields
	}
}

func applyOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New returns the provider for mode. An empty mode selects substring search.
func New(mode string, opts ...Option) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModeSubstring:
		return NewSubstringProvider(opts...), nil
	case ModeRegex:
		return NewRegexProvider(opts...), nil
	case ModeToken:
		return NewTokenProvider(opts...), nil
	default:
		return nil, fmt.Errorf("invalid search mode: %s (valid: %s, %s, %s)", mode, ModeSubstring, ModeRegex, ModeToken)
	}
}

// Filter returns the notifications matching query, preserving order.
func Filter(p Provider, items []domain.Notification, query string) []domain.Notification {
	if query == "" {
		return items
	}
	result := make([]domain.Notification, 0, len(items))
	for _, n := range items {
		if p.Match(n, query) {
			result = append(result, n)
		}
	}
	return result
}

// fieldValue returns the searchable text of one field, or "" when unknown.
func fieldValue(n domain.Notification, field string) string {
	switch field {
	case FieldID:
		return n.ID
	case FieldType:
		return n.Event.Type
	case FieldText:
		return n.Event.Text
	case FieldData:
		return string(n.Data)
	}
	return ""
}
