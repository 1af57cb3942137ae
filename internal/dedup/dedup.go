// Package dedup suppresses repeated desktop alerts. An alert is a duplicate
// when another alert with the same key was let through within the window.
package dedup

import (
	"strings"
	"sync"
	"time"

	"github.com/cristianoliveira/motinbox/internal/domain"
)

// Criteria defines which alert fields make up the dedup key.
type Criteria string

const (
	CriteriaTitle     Criteria = "title"
	CriteriaBody      Criteria = "body"
	CriteriaTitleBody Criteria = "title_body"
)

// Options configure deduplication. A non-positive Window disables it.
type Options struct {
	Criteria Criteria
	Window   time.Duration
}

// Enabled reports whether alerts are deduplicated at all.
func (o Options) Enabled() bool {
	return o.Window > 0
}

// ParseCriteria converts user-provided strings into a Criteria value.
// Unknown values fall back to CriteriaTitleBody.
func ParseCriteria(value string) Criteria {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(CriteriaTitle):
		return CriteriaTitle
	case string(CriteriaBody):
		return CriteriaBody
	default:
		return CriteriaTitleBody
	}
}

// String returns the string value for Criteria.
func (c Criteria) String() string {
	return string(c)
}

// Key returns the dedup key of alert for criteria.
func Key(alert domain.Alert, criteria Criteria) string {
	switch criteria {
	case CriteriaTitle:
		return alert.Title
	case CriteriaBody:
		return alert.Body
	default:
		return joinParts(alert.Title, alert.Body)
	}
}

func joinParts(parts ...string) string {
	return strings.Join(parts, "\x00")
}

// Filter remembers when each key was last let through. It is safe for
// concurrent use.
type Filter struct {
	opts Options
	now  func() time.Time

	mu   sync.Mutex
	seen map[string]time.Time
}

// NewFilter creates a filter for opts.
func NewFilter(opts Options) *Filter {
	return &Filter{opts: opts, now: time.Now, seen: make(map[string]time.Time)}
}

// Allow reports whether alert should be shown, and records it when it is.
func (f *Filter) Allow(alert domain.Alert) bool {
	if !f.opts.Enabled() {
		return true
	}
	key := Key(alert, f.opts.Criteria)
	now := f.now()

	f.mu.Lock()
	defer f.mu.Unlock()
	f.prune(now)
	if last, ok := f.seen[key]; ok && now.Sub(last) < f.opts.Window {
		return false
	}
	f.seen[key] = now
	return true
}

// prune drops keys older than the window.
func (f *Filter) prune(now time.Time) {
	for key, last := range f.seen {
		if now.Sub(last) >= f.opts.Window {
			delete(f.seen, key)
		}
	}
}
