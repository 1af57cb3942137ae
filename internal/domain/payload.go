package domain

import (
	"encoding/json"
	"unicode"
	"unicode/utf8"
)

const (
	// FallbackBody is used when a push payload carries no text at all.
	FallbackBody = "New notification"
	// FallbackType is used as the alert title when the payload has no event type.
	FallbackType = "notification"
)

// PushPayload is the body of a push event on any notification channel.
type PushPayload struct {
	ID                string           `json:"id"`
	NotificationEvent *EventDescriptor `json:"notification_event,omitempty"`
	Message           string           `json:"message,omitempty"`
	Title             string           `json:"title,omitempty"`
	Data              json.RawMessage  `json:"data,omitempty"`
	CreatedAt         string           `json:"created_at,omitempty"`
}

// DecodePushPayload decodes a raw push payload. On malformed input the zero
// payload is returned together with the decode error so callers can still
// run their pipeline with fallback values.
func DecodePushPayload(raw []byte) (PushPayload, error) {
	var p PushPayload
	if len(raw) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return PushPayload{}, err
	}
	return p, nil
}

// Alert is the title/body pair shown by a desktop sink.
type Alert struct {
	Title string
	Body  string
}

// Rule extracts one candidate value from a payload. An empty result means
// the rule does not apply and the next one is tried.
type Rule struct {
	Name    string
	Extract func(p PushPayload) string
}

// BodyRules lists the body extraction rules in precedence order.
var BodyRules = []Rule{
	{Name: "event_text", Extract: func(p PushPayload) string {
		if p.NotificationEvent == nil {
			return ""
		}
		return p.NotificationEvent.Text
	}},
	{Name: "message", Extract: func(p PushPayload) string { return p.Message }},
	{Name: "title", Extract: func(p PushPayload) string { return p.Title }},
}

// TitleRules lists the title extraction rules in precedence order.
var TitleRules = []Rule{
	{Name: "event_type", Extract: func(p PushPayload) string {
		if p.NotificationEvent == nil {
			return ""
		}
		return p.NotificationEvent.Type
	}},
}

// firstMatch returns the first non-empty value produced by rules, or fallback.
func firstMatch(p PushPayload, rules []Rule, fallback string) string {
	for _, rule := range rules {
		if v := rule.Extract(p); v != "" {
			return v
		}
	}
	return fallback
}

// ResolveAlert normalizes a push payload into a desktop alert.
func ResolveAlert(p PushPayload) Alert {
	return Alert{
		Title: Capitalize(firstMatch(p, TitleRules, FallbackType)),
		Body:  firstMatch(p, BodyRules, FallbackBody),
	}
}

// Capitalize upper-cases the first character of s and leaves the rest untouched.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
