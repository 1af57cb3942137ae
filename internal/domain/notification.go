// Package domain provides the domain layer for notifications.
// It contains the notification record, the push payload and the
// role-to-channel mapping shared by the transport, cache and controller.
package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// EventDescriptor is the tagged event attached to a notification.
// Type drives the alert title and type-based filtering (e.g. "mot_expiry_reminder").
type EventDescriptor struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Notification is a single notification record as returned by the API.
// ID is stable across refetches and is the de-duplication key.
type Notification struct {
	ID        string          `json:"id"`
	Event     EventDescriptor `json:"notification_event"`
	Data      json.RawMessage `json:"data,omitempty"`
	CreatedAt string          `json:"created_at"`
	Read      bool            `json:"read"`
}

// ErrInvalidNotificationID is returned when an operation receives an empty ID.
var ErrInvalidNotificationID = errors.New("invalid notification ID")

// ValidateID checks that id can be sent to the API.
func ValidateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidNotificationID)
	}
	return nil
}

// Text returns the human-readable text of the notification, falling back to its type.
func (n Notification) Text() string {
	if n.Event.Text != "" {
		return n.Event.Text
	}
	return n.Event.Type
}

// CreatedTime parses CreatedAt. The zero time is returned when it is missing or invalid.
func (n Notification) CreatedTime() time.Time {
	if n.CreatedAt == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, n.CreatedAt); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Pagination is the server-reported paging state of a list query.
type Pagination struct {
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Limit int `json:"limit,omitempty"`
	Total int `json:"total,omitempty"`
}

// HasMore reports whether pages remain after the current one.
func (p Pagination) HasMore() bool {
	return p.Page < p.Pages
}

// ListData is the container of a list query response.
type ListData struct {
	Notifications []Notification `json:"notifications"`
	Pagination    *Pagination    `json:"pagination,omitempty"`
}

// ListResponse is the envelope returned by the notification list query:
// {"data": {"notifications": [...], "pagination": {...}}}.
type ListResponse struct {
	Data *ListData `json:"data"`
}

// Valid reports whether the response carries a notifications container.
// A nil container (absent or null) is malformed; an empty array is valid.
func (r ListResponse) Valid() bool {
	return r.Data != nil && r.Data.Notifications != nil
}

// Records returns the notifications of a valid response, or nil.
func (r ListResponse) Records() []Notification {
	if r.Data == nil {
		return nil
	}
	return r.Data.Notifications
}

// HasMore reports whether the response advertises another page.
func (r ListResponse) HasMore() bool {
	if r.Data == nil || r.Data.Pagination == nil {
		return false
	}
	return r.Data.Pagination.HasMore()
}

// NewListResponse builds a list envelope; mostly used by fakes and tests.
func NewListResponse(records []Notification, page, pages int) ListResponse {
	if records == nil {
		records = []Notification{}
	}
	return ListResponse{Data: &ListData{
		Notifications: records,
		Pagination:    &Pagination{Page: page, Pages: pages, Total: len(records)},
	}}
}

// ErrNoSnapshot is returned when no snapshot was saved for a role.
var ErrNoSnapshot = errors.New("no snapshot saved")

// Snapshot is the last reconciled feed of one role, persisted for offline reads.
type Snapshot struct {
	Role    Role
	Items   []Notification
	Unread  int
	SavedAt time.Time
}
