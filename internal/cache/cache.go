// Package cache provides the client-side notification cache: list pages and
// unread counters grouped under invalidation tags.
package cache

import (
	"sync"
	"time"

	"github.com/cristianoliveira/motinbox/internal/domain"
)

// Tag groups the cached queries of one role.
type Tag string

// TagFor returns the tag governing the notification queries of role.
func TagFor(role domain.Role) Tag {
	return Tag("Notifications:" + role.Slug())
}

type pageKey struct {
	tag   Tag
	page  int
	limit int
}

type pageEntry struct {
	resp     domain.ListResponse
	stale    bool
	storedAt time.Time
}

type unreadEntry struct {
	count    int
	stale    bool
	storedAt time.Time
}

type hook struct {
	id int
	fn func(Tag)
}

// Store is a process-wide cache shared by controllers. It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	pages   map[pageKey]pageEntry
	unread  map[Tag]unreadEntry
	hooks   map[Tag][]hook
	nextID  int
	maxAge  time.Duration
	nowFunc func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithMaxAge makes entries older than d read as stale. Zero disables expiry.
func WithMaxAge(d time.Duration) Option {
	return func(s *Store) { s.maxAge = d }
}

// WithClock overrides the time source; used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.nowFunc = now }
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		pages:   make(map[pageKey]pageEntry),
		unread:  make(map[Tag]unreadEntry),
		hooks:   make(map[Tag][]hook),
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) expired(storedAt time.Time) bool {
	return s.maxAge > 0 && s.nowFunc().Sub(storedAt) > s.maxAge
}

// Page returns a fresh cached page. ok is false when the page is missing or stale.
func (s *Store) Page(tag Tag, page, limit int) (domain.ListResponse, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, found := s.pages[pageKey{tag: tag, page: page, limit: limit}]
	if !found || e.stale || s.expired(e.storedAt) {
		return domain.ListResponse{}, false
	}
	return e.resp, true
}

// PutPage stores a fetched page as fresh.
func (s *Store) PutPage(tag Tag, page, limit int, resp domain.ListResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[pageKey{tag: tag, page: page, limit: limit}] = pageEntry{resp: resp, storedAt: s.nowFunc()}
}

// Unread returns a fresh cached unread counter.
func (s *Store) Unread(tag Tag) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, found := s.unread[tag]
	if !found || e.stale || s.expired(e.storedAt) {
		return 0, false
	}
	return e.count, true
}

// PutUnread stores a fetched unread counter as fresh.
func (s *Store) PutUnread(tag Tag, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unread[tag] = unreadEntry{count: count, storedAt: s.nowFunc()}
}

// Invalidate marks every entry under the given tags stale and runs their hooks.
// Hooks run after the store lock is released.
func (s *Store) Invalidate(tags ...Tag) {
	var fire []hook
	firedTags := make([]Tag, 0, len(tags))

	s.mu.Lock()
	for _, tag := range tags {
		for key, e := range s.pages {
			if key.tag == tag {
				e.stale = true
				s.pages[key] = e
			}
		}
		if e, ok := s.unread[tag]; ok {
			e.stale = true
			s.unread[tag] = e
		}
		for _, h := range s.hooks[tag] {
			fire = append(fire, h)
			firedTags = append(firedTags, tag)
		}
	}
	s.mu.Unlock()

	for i, h := range fire {
		h.fn(firedTags[i])
	}
}

// OnInvalidate registers fn to run whenever tag is invalidated.
// The returned function unregisters it and is safe to call more than once.
func (s *Store) OnInvalidate(tag Tag, fn func(Tag)) (off func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.hooks[tag] = append(s.hooks[tag], hook{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			hooks := s.hooks[tag]
			for i, h := range hooks {
				if h.id == id {
					s.hooks[tag] = append(hooks[:i:i], hooks[i+1:]...)
					break
				}
			}
		})
	}
}

// Reset drops every cached entry; hooks are kept. Used on logout.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages = make(map[pageKey]pageEntry)
	s.unread = make(map[Tag]unreadEntry)
}
