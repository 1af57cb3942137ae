// Package controller binds one user role to its notification feed.
//
// A Controller owns the accumulated list and unread counter of a role. It
// reconciles them against the server after mutations and push events,
// and routes push events to a desktop sink. A controller whose user is
// absent or has another role is skipped: it never queries, never
// subscribes, and reports an empty feed.
package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/cristianoliveira/motinbox/internal/accumulator"
	"github.com/cristianoliveira/motinbox/internal/cache"
	"github.com/cristianoliveira/motinbox/internal/domain"
	"github.com/cristianoliveira/motinbox/internal/logging"
	"github.com/cristianoliveira/motinbox/internal/retry"
	"github.com/cristianoliveira/motinbox/internal/transport"
)

// DefaultPageLimit is the page size used when Options.PageLimit is not set.
const DefaultPageLimit = 20

// ErrSkipped is returned by mutations of a controller whose user does not match its role.
var ErrSkipped = errors.New("controller: user does not match role")

// API is the notification REST surface used by the controller.
type API interface {
	ListNotifications(ctx context.Context, role domain.Role, page, limit int) (domain.ListResponse, error)
	UnreadCount(ctx context.Context, role domain.Role) (int, error)
	MarkAllRead(ctx context.Context, role domain.Role) error
	MarkRead(ctx context.Context, role domain.Role, id string) error
	DeleteAll(ctx context.Context, role domain.Role) error
	Delete(ctx context.Context, role domain.Role, id string) error
}

// Connection is the subset of a transport handle the controller subscribes through.
type Connection interface {
	Connected() bool
	On(event string, fn transport.Listener) (off func())
	OnConnect(fn func()) (off func())
}

// Sink receives the alert resolved from each push event.
type Sink interface {
	Notify(ctx context.Context, alert domain.Alert) error
}

// Notices shows user-visible error messages.
type Notices interface {
	Error(msg string)
}

// Snapshots persists the last reconciled feed of a role.
type Snapshots interface {
	Save(ctx context.Context, role domain.Role, items []domain.Notification, unread int) error
}

// Options configures a Controller.
type Options struct {
	User      *domain.User
	Role      domain.Role
	API       API
	Cache     *cache.Store
	Sink      Sink
	Notices   Notices
	Retry     retry.Policy
	PageLimit int
	Logger    logging.Logger
	Snapshots Snapshots
	// OnChange runs after the list or unread counter changed.
	OnChange func()
}

// Controller is the role-scoped notification controller.
type Controller struct {
	role      domain.Role
	tag       cache.Tag
	skipped   bool
	api       API
	cache     *cache.Store
	sink      Sink
	notices   Notices
	retry     retry.Policy
	limit     int
	logger    logging.Logger
	snapshots Snapshots
	onChange  func()

	acc      *accumulator.Accumulator
	fetching atomic.Int32

	mu           sync.RWMutex
	unread       int
	unreadLoaded bool

	subMu     sync.Mutex
	mounted   bool
	unmounted bool
	attach    sync.Once
	offs      []func()
	pushCtx   context.Context
	handlers  sync.WaitGroup
}

// New creates a controller for opts.Role. It panics when a non-skipped
// controller has no API or cache.
func New(opts Options) *Controller {
	c := &Controller{
		role:      opts.Role,
		tag:       cache.TagFor(opts.Role),
		skipped:   !opts.User.Matches(opts.Role),
		api:       opts.API,
		cache:     opts.Cache,
		sink:      opts.Sink,
		notices:   opts.Notices,
		retry:     opts.Retry,
		limit:     opts.PageLimit,
		logger:    opts.Logger,
		snapshots: opts.Snapshots,
		onChange:  opts.OnChange,
		acc:       accumulator.New(),
	}
	if c.limit <= 0 {
		c.limit = DefaultPageLimit
	}
	if c.logger == nil {
		c.logger = logging.GetGlobal()
	}
	c.logger = c.logger.With("component", "controller", "role", opts.Role.String())
	if c.retry.MaxAttempts == 0 && c.retry.Delay == 0 {
		c.retry = retry.Default()
	}
	if !c.skipped {
		if c.api == nil {
			panic("controller.New: API cannot be nil")
		}
		if c.cache == nil {
			panic("controller.New: Cache cannot be nil")
		}
	}
	return c
}

// Role returns the role this controller serves.
func (c *Controller) Role() domain.Role { return c.role }

// Skipped reports whether the controller is inactive for its user.
func (c *Controller) Skipped() bool { return c.skipped }

// List returns the accumulated notifications.
func (c *Controller) List() []domain.Notification {
	if c.skipped {
		return []domain.Notification{}
	}
	return c.acc.Items()
}

// UnreadCount returns the last fetched unread counter. It is 0 before the
// first successful fetch; a reload keeps the previous value until it lands.
func (c *Controller) UnreadCount() int {
	if c.skipped {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.unreadLoaded {
		return 0
	}
	return c.unread
}

// HasMore reports whether another page can be loaded.
func (c *Controller) HasMore() bool { return !c.skipped && c.acc.HasMore() }

// Page returns the current page cursor.
func (c *Controller) Page() int { return c.acc.Page() }

// Loading reports whether a fetch is in progress.
func (c *Controller) Loading() bool { return c.fetching.Load() > 0 }

// Load fetches the cursor page and the unread counter. Fresh cache entries are used as-is.
func (c *Controller) Load(ctx context.Context) error {
	if c.skipped {
		return nil
	}
	if err := c.reconcile(ctx, true); err != nil {
		return fmt.Errorf("load %s notifications: %w", c.role.Slug(), err)
	}
	return nil
}

// LoadMore fetches the next page when one is available and no fetch is in flight.
// It reports whether a fetch was issued.
func (c *Controller) LoadMore(ctx context.Context) (bool, error) {
	if c.skipped || !c.acc.Advance() {
		return false, nil
	}
	page := c.acc.Page()
	var (
		ticket  accumulator.Ticket
		applied bool
	)
	err := c.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		ticket, applied, err = c.fetchPage(ctx, true)
		return err
	})
	if err != nil || !applied {
		c.acc.Rewind(ticket)
	}
	if err != nil {
		return true, fmt.Errorf("load page %d: %w", page, err)
	}
	c.saveSnapshot(ctx)
	c.changed()
	return true, nil
}

// MarkAllRead marks every notification of the role read.
func (c *Controller) MarkAllRead(ctx context.Context) error {
	return c.mutate(ctx, "mark all notifications as read", func(ctx context.Context) error {
		return c.api.MarkAllRead(ctx, c.role)
	}, c.acc.Reset)
}

// MarkRead marks one notification read.
func (c *Controller) MarkRead(ctx context.Context, id string) error {
	if err := domain.ValidateID(id); err != nil {
		return err
	}
	return c.mutate(ctx, "mark notification as read", func(ctx context.Context) error {
		return c.api.MarkRead(ctx, c.role, id)
	}, func() { c.acc.MarkRead(id) })
}

// DeleteAll deletes every notification of the role.
func (c *Controller) DeleteAll(ctx context.Context) error {
	return c.mutate(ctx, "delete all notifications", func(ctx context.Context) error {
		return c.api.DeleteAll(ctx, c.role)
	}, c.acc.Clear)
}

// Delete deletes one notification.
func (c *Controller) Delete(ctx context.Context, id string) error {
	if err := domain.ValidateID(id); err != nil {
		return err
	}
	return c.mutate(ctx, "delete notification", func(ctx context.Context) error {
		return c.api.Delete(ctx, c.role, id)
	}, func() { c.acc.Remove(id) })
}

// mutate runs a server mutation. Local state changes only after the server succeeded.
func (c *Controller) mutate(ctx context.Context, action string, call func(context.Context) error, local func()) error {
	if c.skipped {
		return ErrSkipped
	}
	if err := call(ctx); err != nil {
		c.logger.Error("mutation failed", "action", action, "error", err)
		if c.notices != nil {
			c.notices.Error(fmt.Sprintf("Failed to %s: %v", action, err))
		}
		return fmt.Errorf("%s: %w", action, err)
	}

	local()
	c.cache.Invalidate(c.tag)
	c.changed()
	if err := c.reconcile(ctx, false); err != nil {
		c.logger.Warn("refetch after mutation failed", "action", action, "error", err)
	}
	return nil
}

// HandlePush reacts to one push event on channel. The feed is invalidated,
// reset to page 1 and refetched before the alert is delivered. Refetch
// errors are logged; sink errors and panics never escape.
func (c *Controller) HandlePush(ctx context.Context, channel string, raw []byte) {
	if c.skipped {
		return
	}
	payload, decodeErr := domain.DecodePushPayload(raw)
	if decodeErr != nil {
		c.logger.Warn("malformed push payload", "channel", channel, "error", decodeErr)
	}
	c.logger.Debug("push received", "channel", channel, "id", payload.ID)

	c.cache.Invalidate(c.tag)
	c.acc.Reset()
	if err := c.reconcile(ctx, false); err != nil {
		c.logger.Warn("refetch after push failed", "channel", channel, "error", err)
	}

	alert := domain.ResolveAlert(payload)
	ctx = domain.WithPushInfo(ctx, domain.PushInfo{ID: payload.ID, Channel: channel})
	if err := c.notify(ctx, alert); err != nil {
		c.logger.Warn("desktop notification failed", "channel", channel, "error", err)
	}
}

func (c *Controller) notify(ctx context.Context, alert domain.Alert) (err error) {
	if c.sink == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink panic: %v", r)
		}
	}()
	return c.sink.Notify(ctx, alert)
}

// Mount subscribes the controller to its role channel and the generic
// channel. When conn is not yet connected, subscription is deferred to the
// first connect. Mount on a skipped controller is a no-op.
func (c *Controller) Mount(ctx context.Context, conn Connection) {
	if c.skipped || conn == nil {
		return
	}
	c.subMu.Lock()
	if c.mounted || c.unmounted {
		c.subMu.Unlock()
		return
	}
	c.mounted = true
	c.pushCtx = ctx
	c.subMu.Unlock()

	offConnect := conn.OnConnect(func() { c.subscribe(conn) })
	c.addOff(offConnect)
	if conn.Connected() {
		c.subscribe(conn)
	}
}

func (c *Controller) subscribe(conn Connection) {
	c.attach.Do(func() {
		for _, channel := range c.role.Channels() {
			off := conn.On(channel, func(data json.RawMessage) { c.dispatch(channel, data) })
			c.addOff(off)
		}
		c.logger.Debug("subscribed", "channels", c.role.Channels())
	})
}

func (c *Controller) addOff(off func()) {
	c.subMu.Lock()
	if c.unmounted {
		c.subMu.Unlock()
		off()
		return
	}
	c.offs = append(c.offs, off)
	c.subMu.Unlock()
}

func (c *Controller) dispatch(channel string, data []byte) {
	c.subMu.Lock()
	if c.unmounted {
		c.subMu.Unlock()
		return
	}
	ctx := c.pushCtx
	c.handlers.Add(1)
	c.subMu.Unlock()

	raw := append([]byte(nil), data...)
	go func() {
		defer c.handlers.Done()
		c.HandlePush(ctx, channel, raw)
	}()
}

// Unmount removes every subscription Mount created and waits for running
// push handlers. It is safe to call more than once.
func (c *Controller) Unmount() {
	c.subMu.Lock()
	c.unmounted = true
	offs := c.offs
	c.offs = nil
	c.subMu.Unlock()

	for _, off := range offs {
		off()
	}
	c.handlers.Wait()
}

// reconcile refetches the cursor page and the unread counter as one unit
// under the retry policy. With useCache unset every attempt goes to the
// server for both halves, so a retry never pairs a fresh half with one
// cached by the failed attempt.
func (c *Controller) reconcile(ctx context.Context, useCache bool) error {
	err := c.retry.Do(ctx, func(ctx context.Context) error {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			_, _, err := c.fetchPage(gctx, useCache)
			return err
		})
		g.Go(func() error { return c.fetchUnread(gctx, useCache) })
		return g.Wait()
	})
	if err != nil {
		return err
	}
	c.saveSnapshot(ctx)
	c.changed()
	return nil
}

// fetchPage fetches the cursor page and merges it. It reports the ticket it
// used and whether the result was applied.
func (c *Controller) fetchPage(ctx context.Context, useCache bool) (accumulator.Ticket, bool, error) {
	c.fetching.Add(1)
	defer c.fetching.Add(-1)

	ticket := c.acc.Start()
	if useCache {
		if resp, ok := c.cache.Page(c.tag, ticket.Page, c.limit); ok {
			return ticket, c.acc.Apply(ticket, resp), nil
		}
	}

	resp, err := c.api.ListNotifications(ctx, c.role, ticket.Page, c.limit)
	if err != nil {
		c.acc.Fail(ticket)
		return ticket, false, fmt.Errorf("list page %d: %w", ticket.Page, err)
	}
	if !c.acc.Apply(ticket, resp) {
		if !resp.Valid() {
			c.logger.Warn("ignoring malformed list response", "page", ticket.Page)
		} else {
			c.logger.Debug("dropping stale page result", "page", ticket.Page, "generation", ticket.Generation)
		}
		return ticket, false, nil
	}
	c.cache.PutPage(c.tag, ticket.Page, c.limit, resp)
	return ticket, true, nil
}

func (c *Controller) fetchUnread(ctx context.Context, useCache bool) error {
	c.fetching.Add(1)
	defer c.fetching.Add(-1)

	generation := c.acc.Generation()
	if useCache {
		if n, ok := c.cache.Unread(c.tag); ok {
			c.setUnread(generation, n)
			return nil
		}
	}

	n, err := c.api.UnreadCount(ctx, c.role)
	if err != nil {
		return fmt.Errorf("unread count: %w", err)
	}
	if c.setUnread(generation, n) {
		c.cache.PutUnread(c.tag, n)
	}
	return nil
}

func (c *Controller) setUnread(generation uint64, n int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.acc.Generation() {
		return false
	}
	c.unread = n
	c.unreadLoaded = true
	return true
}

func (c *Controller) saveSnapshot(ctx context.Context) {
	if c.snapshots == nil {
		return
	}
	if err := c.snapshots.Save(ctx, c.role, c.acc.Items(), c.UnreadCount()); err != nil {
		c.logger.Warn("failed to save snapshot", "error", err)
	}
}

func (c *Controller) changed() {
	if c.onChange != nil {
		c.onChange()
	}
}
