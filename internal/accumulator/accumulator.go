// Package accumulator merges paginated notification pages into one ordered,
// de-duplicated list.
//
// Page 1 always replaces the list. Later pages append only records whose ID
// is not already present, keeping the server order. Every fetch is issued
// under a Ticket; results whose ticket predates the last Reset are dropped,
// so a page-2 response that lands after a push-triggered reset cannot append
// to the fresh page-1 list.
package accumulator

import (
	"sync"

	"github.com/cristianoliveira/motinbox/internal/domain"
)

// Ticket identifies one fetch of one page.
type Ticket struct {
	Page       int
	Generation uint64
}

// Accumulator holds the accumulated list and the page cursor.
type Accumulator struct {
	mu         sync.RWMutex
	items      []domain.Notification
	page       int
	hasMore    bool
	inFlight   bool
	generation uint64
}

// New returns an empty accumulator with the cursor on page 1.
func New() *Accumulator {
	return &Accumulator{page: 1}
}

// Start marks a fetch of the current cursor page as in flight.
func (a *Accumulator) Start() Ticket {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.inFlight = true
	return Ticket{Page: a.page, Generation: a.generation}
}

// Apply merges a page result. It returns false when the ticket is stale or
// the response is malformed; in both cases the accumulated list is unchanged.
func (a *Accumulator) Apply(t Ticket, resp domain.ListResponse) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if t.Generation != a.generation {
		return false
	}
	a.inFlight = false
	if !resp.Valid() {
		return false
	}

	records := resp.Records()
	if t.Page <= 1 {
		a.items = make([]domain.Notification, 0, len(records))
	}
	seen := make(map[string]struct{}, len(a.items)+len(records))
	for _, n := range a.items {
		seen[n.ID] = struct{}{}
	}
	for _, n := range records {
		if _, ok := seen[n.ID]; ok {
			continue
		}
		seen[n.ID] = struct{}{}
		a.items = append(a.items, n)
	}
	a.hasMore = resp.HasMore()
	return true
}

// Fail clears the in-flight flag of a fetch that did not produce a result.
func (a *Accumulator) Fail(t Ticket) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if t.Generation == a.generation {
		a.inFlight = false
	}
}

// Rewind undoes the Advance behind a load-more ticket that produced no
// result, so the next Advance asks for the same page again. Tickets from an
// earlier generation are ignored.
func (a *Accumulator) Rewind(t Ticket) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if t.Generation != a.generation {
		return
	}
	a.inFlight = false
	if t.Page > 1 && a.page == t.Page {
		a.page = t.Page - 1
	}
}

// Advance moves the cursor to the next page when more pages are available
// and no fetch is in flight. It reports whether the cursor moved.
func (a *Accumulator) Advance() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.hasMore || a.inFlight {
		return false
	}
	a.page++
	return true
}

// Reset moves the cursor back to page 1 and invalidates outstanding tickets.
// The list is kept until the next page-1 result replaces it.
func (a *Accumulator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reset()
}

// Clear resets the cursor and empties the list.
func (a *Accumulator) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reset()
	a.items = nil
	a.hasMore = false
}

func (a *Accumulator) reset() {
	a.page = 1
	a.inFlight = false
	a.generation++
}

// Remove drops the record with the given ID. It reports whether it was present.
func (a *Accumulator) Remove(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, n := range a.items {
		if n.ID == id {
			a.items = append(a.items[:i:i], a.items[i+1:]...)
			return true
		}
	}
	return false
}

// MarkRead flags the record with the given ID as read. It reports whether it was present.
func (a *Accumulator) MarkRead(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.items {
		if a.items[i].ID == id {
			a.items[i].Read = true
			return true
		}
	}
	return false
}

// Items returns a copy of the accumulated list.
func (a *Accumulator) Items() []domain.Notification {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]domain.Notification, len(a.items))
	copy(out, a.items)
	return out
}

// Len returns the number of accumulated records.
func (a *Accumulator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.items)
}

// Page returns the current page cursor.
func (a *Accumulator) Page() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.page
}

// HasMore reports whether the last applied page advertised another page.
func (a *Accumulator) HasMore() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.hasMore
}

// InFlight reports whether a fetch is outstanding.
func (a *Accumulator) InFlight() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.inFlight
}

// Generation returns the current request generation.
func (a *Accumulator) Generation() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.generation
}
