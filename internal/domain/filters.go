package domain

import (
	"fmt"
	"strings"
	"time"
)

// Read filter constants.
const (
	ReadFilterRead   = "read"
	ReadFilterUnread = "unread"
)

// Filter holds client-side filter criteria applied to an accumulated list.
type Filter struct {
	Type       string    // event type, e.g. "mot_expiry_reminder"; "" matches all
	ReadFilter string    // "read", "unread", or "" (no filter)
	NewerThan  time.Time // zero means no lower bound
}

// FilterOptions holds filter parameters as given on the command line.
type FilterOptions struct {
	Type       string
	ReadFilter string
	NewerThan  int // days
}

// ToFilter converts FilterOptions to a Filter struct.
func (fo FilterOptions) ToFilter() (Filter, error) {
	if fo.ReadFilter != "" && fo.ReadFilter != ReadFilterRead && fo.ReadFilter != ReadFilterUnread {
		return Filter{}, fmt.Errorf("invalid read filter: %s", fo.ReadFilter)
	}
	if fo.NewerThan < 0 {
		return Filter{}, fmt.Errorf("invalid newer-than days: %d", fo.NewerThan)
	}

	var newerThan time.Time
	if fo.NewerThan > 0 {
		newerThan = time.Now().UTC().AddDate(0, 0, -fo.NewerThan)
	}

	return Filter{
		Type:       strings.TrimSpace(fo.Type),
		ReadFilter: fo.ReadFilter,
		NewerThan:  newerThan,
	}, nil
}

// Matches checks if the notification matches the filter criteria.
func (f Filter) Matches(n Notification) bool {
	if f.Type != "" && !strings.EqualFold(n.Event.Type, f.Type) {
		return false
	}
	switch f.ReadFilter {
	case ReadFilterRead:
		if !n.Read {
			return false
		}
	case ReadFilterUnread:
		if n.Read {
			return false
		}
	}
	if !f.NewerThan.IsZero() {
		created := n.CreatedTime()
		if created.IsZero() || created.Before(f.NewerThan) {
			return false
		}
	}
	return true
}

// Apply returns the notifications matching the filter, preserving order.
func (f Filter) Apply(notifications []Notification) []Notification {
	result := make([]Notification, 0, len(notifications))
	for _, n := range notifications {
		if f.Matches(n) {
			result = append(result, n)
		}
	}
	return result
}
