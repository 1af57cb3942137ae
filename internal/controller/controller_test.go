package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cristianoliveira/motinbox/internal/cache"
	"github.com/cristianoliveira/motinbox/internal/domain"
	"github.com/cristianoliveira/motinbox/internal/retry"
	"github.com/cristianoliveira/motinbox/internal/transport"
)

const motPush = `{"notification_event":{"type":"mot_expiry_reminder","text":"Your MOT expires soon"},"id":"abc123"}`

type fakeAPI struct {
	mu          sync.Mutex
	pages       map[int]domain.ListResponse
	unread      int
	listCalls   []int
	unreadCalls int
	listFails   int
	unreadFails int
	mutateErr   error
	mutations   []string
	// gates holds list calls for a page until the channel is closed.
	gates   map[int]chan struct{}
	entered chan int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{pages: make(map[int]domain.ListResponse)}
}

func (f *fakeAPI) ListNotifications(_ context.Context, _ domain.Role, page, _ int) (domain.ListResponse, error) {
	f.mu.Lock()
	f.listCalls = append(f.listCalls, page)
	if f.listFails > 0 {
		f.listFails--
		f.mu.Unlock()
		return domain.ListResponse{}, errors.New("backend unavailable")
	}
	resp, ok := f.pages[page]
	if !ok {
		resp = domain.NewListResponse(nil, page, page)
	}
	gate, entered := f.gates[page], f.entered
	f.mu.Unlock()

	if gate != nil {
		entered <- page
		<-gate
	}
	return resp, nil
}

// hold blocks list calls for page until the returned release is called.
func (f *fakeAPI) hold(page int) (entered <-chan int, release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gates == nil {
		f.gates = make(map[int]chan struct{})
	}
	gate := make(chan struct{})
	f.gates[page] = gate
	f.entered = make(chan int, 1)
	return f.entered, func() { close(gate) }
}

func (f *fakeAPI) UnreadCount(context.Context, domain.Role) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unreadCalls++
	if f.unreadFails > 0 {
		f.unreadFails--
		return 0, errors.New("backend unavailable")
	}
	return f.unread, nil
}

func (f *fakeAPI) mutate(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mutations = append(f.mutations, name)
	return f.mutateErr
}

func (f *fakeAPI) MarkAllRead(context.Context, domain.Role) error { return f.mutate("read-all") }
func (f *fakeAPI) MarkRead(_ context.Context, _ domain.Role, id string) error {
	return f.mutate("read:" + id)
}
func (f *fakeAPI) DeleteAll(context.Context, domain.Role) error { return f.mutate("delete-all") }
func (f *fakeAPI) Delete(_ context.Context, _ domain.Role, id string) error {
	return f.mutate("delete:" + id)
}

func (f *fakeAPI) setPages(pages ...domain.ListResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages = make(map[int]domain.ListResponse)
	for i, p := range pages {
		f.pages[i+1] = p
	}
}

func (f *fakeAPI) calls() ([]int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.listCalls...), f.unreadCalls
}

func (f *fakeAPI) resetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls = nil
	f.unreadCalls = 0
}

type recordingSink struct {
	mu     sync.Mutex
	alerts []domain.Alert
	infos  []domain.PushInfo
	panics bool
}

func (s *recordingSink) Notify(ctx context.Context, alert domain.Alert) error {
	s.mu.Lock()
	s.alerts = append(s.alerts, alert)
	info, _ := domain.PushInfoFrom(ctx)
	s.infos = append(s.infos, info)
	s.mu.Unlock()
	if s.panics {
		panic("sink exploded")
	}
	return nil
}

func (s *recordingSink) received() []domain.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Alert(nil), s.alerts...)
}

type mockNotices struct {
	mock.Mock
}

func (m *mockNotices) Error(msg string) {
	m.Called(msg)
}

type fakeConn struct {
	mu        sync.Mutex
	connected bool
	nextID    int
	listeners map[string]map[int]transport.Listener
	onConnect map[int]func()
}

func newFakeConn(connected bool) *fakeConn {
	return &fakeConn{
		connected: connected,
		listeners: make(map[string]map[int]transport.Listener),
		onConnect: make(map[int]func()),
	}
}

func (c *fakeConn) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *fakeConn) On(event string, fn transport.Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := c.nextID
	if c.listeners[event] == nil {
		c.listeners[event] = make(map[int]transport.Listener)
	}
	c.listeners[event][id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners[event], id)
	}
}

func (c *fakeConn) OnConnect(fn func()) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := c.nextID
	c.onConnect[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.onConnect, id)
	}
}

func (c *fakeConn) connect() {
	c.mu.Lock()
	c.connected = true
	fns := make([]func(), 0, len(c.onConnect))
	for _, fn := range c.onConnect {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (c *fakeConn) emit(event string, data string) {
	c.mu.Lock()
	fns := make([]transport.Listener, 0, len(c.listeners[event]))
	for _, fn := range c.listeners[event] {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn(json.RawMessage(data))
	}
}

func (c *fakeConn) count(event string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.listeners[event])
}

func (c *fakeConn) connectListeners() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.onConnect)
}

func noSleepPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: 2,
		Delay:       500 * time.Millisecond,
		Sleep:       func(context.Context, time.Duration) error { return nil },
	}
}

func records(prefix string, n int) []domain.Notification {
	out := make([]domain.Notification, n)
	for i := range out {
		out[i] = domain.Notification{ID: fmt.Sprintf("%s%d", prefix, i+1)}
	}
	return out
}

type fixture struct {
	api   *fakeAPI
	store *cache.Store
	sink  *recordingSink
	ctrl  *Controller
}

func newFixture(t *testing.T, user *domain.User, role domain.Role, notices Notices) *fixture {
	t.Helper()
	f := &fixture{api: newFakeAPI(), store: cache.New(), sink: &recordingSink{}}
	f.ctrl = New(Options{
		User:      user,
		Role:      role,
		API:       f.api,
		Cache:     f.store,
		Sink:      f.sink,
		Notices:   notices,
		Retry:     noSleepPolicy(),
		PageLimit: 10,
	})
	return f
}

func driver() *domain.User {
	return &domain.User{ID: "u1", Type: domain.RoleDriver}
}

func ids(items []domain.Notification) []string {
	out := make([]string, len(items))
	for i, n := range items {
		out[i] = n.ID
	}
	return out
}

func TestSkippedController(t *testing.T) {
	tests := []struct {
		name string
		user *domain.User
	}{
		{"nil user", nil},
		{"other role", &domain.User{ID: "g1", Type: domain.RoleGarage}},
		{"missing id", &domain.User{Type: domain.RoleDriver}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.user, domain.RoleDriver, nil)
			require.True(t, f.ctrl.Skipped())

			require.NoError(t, f.ctrl.Load(context.Background()))
			require.Empty(t, f.ctrl.List())
			require.Equal(t, 0, f.ctrl.UnreadCount())
			require.ErrorIs(t, f.ctrl.MarkAllRead(context.Background()), ErrSkipped)
			require.ErrorIs(t, f.ctrl.DeleteAll(context.Background()), ErrSkipped)

			conn := newFakeConn(true)
			f.ctrl.Mount(context.Background(), conn)
			require.Equal(t, 0, conn.count("notification:driver"))
			require.Equal(t, 0, conn.connectListeners())

			f.ctrl.HandlePush(context.Background(), "notification:driver", []byte(motPush))
			listCalls, unreadCalls := f.api.calls()
			require.Empty(t, listCalls)
			require.Zero(t, unreadCalls)
			require.Empty(t, f.sink.received())
		})
	}
}

func TestNewPanicsWithoutAPI(t *testing.T) {
	require.Panics(t, func() {
		New(Options{User: driver(), Role: domain.RoleDriver, Cache: cache.New()})
	})
	require.NotPanics(t, func() {
		New(Options{User: nil, Role: domain.RoleDriver})
	})
}

func TestLoadFetchesPageAndUnread(t *testing.T) {
	f := newFixture(t, driver(), domain.RoleDriver, nil)
	f.api.setPages(domain.NewListResponse(records("n", 3), 1, 2))
	f.api.unread = 2

	require.Equal(t, 0, f.ctrl.UnreadCount())
	require.NoError(t, f.ctrl.Load(context.Background()))
	require.Equal(t, []string{"n1", "n2", "n3"}, ids(f.ctrl.List()))
	require.Equal(t, 2, f.ctrl.UnreadCount())
	require.True(t, f.ctrl.HasMore())
	require.False(t, f.ctrl.Loading())

	// Fresh cache entries satisfy a second load.
	require.NoError(t, f.ctrl.Load(context.Background()))
	listCalls, unreadCalls := f.api.calls()
	require.Equal(t, []int{1}, listCalls)
	require.Equal(t, 1, unreadCalls)
}

func TestLoadMoreAppendsWithoutDuplicates(t *testing.T) {
	f := newFixture(t, driver(), domain.RoleDriver, nil)
	page1 := records("n", 3)
	page2 := append([]domain.Notification{page1[2]}, records("m", 2)...)
	f.api.setPages(
		domain.NewListResponse(page1, 1, 2),
		domain.NewListResponse(page2, 2, 2),
	)

	require.NoError(t, f.ctrl.Load(context.Background()))
	fetched, err := f.ctrl.LoadMore(context.Background())
	require.NoError(t, err)
	require.True(t, fetched)
	require.Equal(t, []string{"n1", "n2", "n3", "m1", "m2"}, ids(f.ctrl.List()))
	require.Equal(t, 2, f.ctrl.Page())

	fetched, err = f.ctrl.LoadMore(context.Background())
	require.NoError(t, err)
	require.False(t, fetched, "no more pages")
}

func TestLoadMoreFailureRetriesSamePage(t *testing.T) {
	f := newFixture(t, driver(), domain.RoleDriver, nil)
	f.api.setPages(
		domain.NewListResponse(records("a", 2), 1, 3),
		domain.NewListResponse(records("b", 2), 2, 3),
		domain.NewListResponse(records("c", 2), 3, 3),
	)
	ctx := context.Background()
	require.NoError(t, f.ctrl.Load(ctx))

	f.api.listFails = 2
	fetched, err := f.ctrl.LoadMore(ctx)
	require.True(t, fetched)
	require.ErrorContains(t, err, "load page 2")
	require.Equal(t, 1, f.ctrl.Page())
	require.True(t, f.ctrl.HasMore())
	require.Equal(t, []string{"a1", "a2"}, ids(f.ctrl.List()))

	fetched, err = f.ctrl.LoadMore(ctx)
	require.NoError(t, err)
	require.True(t, fetched)
	require.Equal(t, 2, f.ctrl.Page())
	require.Equal(t, []string{"a1", "a2", "b1", "b2"}, ids(f.ctrl.List()))

	listCalls, _ := f.api.calls()
	require.Equal(t, []int{1, 2, 2, 2}, listCalls)
}

func TestLoadMoreMalformedPageRetriesSamePage(t *testing.T) {
	f := newFixture(t, driver(), domain.RoleDriver, nil)
	f.api.setPages(
		domain.NewListResponse(records("a", 2), 1, 3),
		domain.ListResponse{},
	)
	ctx := context.Background()
	require.NoError(t, f.ctrl.Load(ctx))

	fetched, err := f.ctrl.LoadMore(ctx)
	require.NoError(t, err)
	require.True(t, fetched)
	require.Equal(t, 1, f.ctrl.Page())
	require.Equal(t, []string{"a1", "a2"}, ids(f.ctrl.List()))

	f.api.setPages(
		domain.NewListResponse(records("a", 2), 1, 3),
		domain.NewListResponse(records("b", 1), 2, 3),
	)
	_, err = f.ctrl.LoadMore(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"a1", "a2", "b1"}, ids(f.ctrl.List()))
}

func TestPushDuringLoadMoreDropsStalePage(t *testing.T) {
	f := newFixture(t, driver(), domain.RoleDriver, nil)
	f.api.setPages(
		domain.NewListResponse(records("a", 2), 1, 3),
		domain.NewListResponse(records("b", 2), 2, 3),
	)
	ctx := context.Background()
	require.NoError(t, f.ctrl.Load(ctx))

	entered, release := f.api.hold(2)
	done := make(chan error, 1)
	go func() {
		_, err := f.ctrl.LoadMore(ctx)
		done <- err
	}()
	require.Equal(t, 2, <-entered)

	f.api.setPages(domain.NewListResponse(records("z", 2), 1, 3))
	f.ctrl.HandlePush(ctx, "notification:driver", []byte(motPush))
	require.Equal(t, []string{"z1", "z2"}, ids(f.ctrl.List()))

	release()
	require.NoError(t, <-done)
	require.Equal(t, []string{"z1", "z2"}, ids(f.ctrl.List()))
	require.Equal(t, 1, f.ctrl.Page())
	require.True(t, f.ctrl.HasMore())
	require.False(t, f.ctrl.Loading())
}

func TestPushOnRoleChannelRefetchesAndAlerts(t *testing.T) {
	f := newFixture(t, driver(), domain.RoleDriver, nil)
	f.api.setPages(domain.NewListResponse(records("n", 1), 1, 1))

	var invalidations int
	off := f.store.OnInvalidate(cache.TagFor(domain.RoleDriver), func(cache.Tag) { invalidations++ })
	defer off()

	conn := newFakeConn(true)
	f.ctrl.Mount(context.Background(), conn)
	defer f.ctrl.Unmount()

	conn.emit("notification:driver", motPush)
	require.Eventually(t, func() bool { return len(f.sink.received()) == 1 }, time.Second, 5*time.Millisecond)

	require.Equal(t, 1, invalidations)
	listCalls, unreadCalls := f.api.calls()
	require.Equal(t, []int{1}, listCalls)
	require.Equal(t, 1, unreadCalls)
	require.Equal(t, domain.Alert{Title: "Mot_expiry_reminder", Body: "Your MOT expires soon"}, f.sink.received()[0])
	require.Equal(t, domain.PushInfo{ID: "abc123", Channel: "notification:driver"}, f.sink.infos[0])
	require.Equal(t, 1, f.ctrl.Page())
}

func TestPushOnGenericChannelAndOtherRole(t *testing.T) {
	f := newFixture(t, driver(), domain.RoleDriver, nil)
	conn := newFakeConn(true)
	f.ctrl.Mount(context.Background(), conn)

	conn.emit("notification:garage", motPush)
	conn.emit("notification", `{"message":"Booking confirmed"}`)
	f.ctrl.Unmount()

	alerts := f.sink.received()
	require.Len(t, alerts, 1)
	require.Equal(t, domain.Alert{Title: "Notification", Body: "Booking confirmed"}, alerts[0])
}

func TestPushFromPageThreeResetsToPageOne(t *testing.T) {
	f := newFixture(t, driver(), domain.RoleDriver, nil)
	f.api.setPages(
		domain.NewListResponse(records("a", 2), 1, 3),
		domain.NewListResponse(records("b", 2), 2, 3),
		domain.NewListResponse(records("c", 2), 3, 3),
	)
	ctx := context.Background()
	require.NoError(t, f.ctrl.Load(ctx))
	_, err := f.ctrl.LoadMore(ctx)
	require.NoError(t, err)
	_, err = f.ctrl.LoadMore(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, f.ctrl.Page())
	require.Len(t, f.ctrl.List(), 6)

	f.api.setPages(domain.NewListResponse(records("z", 2), 1, 3))
	f.ctrl.HandlePush(ctx, "notification:driver", []byte(motPush))

	require.Equal(t, 1, f.ctrl.Page())
	require.Equal(t, []string{"z1", "z2"}, ids(f.ctrl.List()))
}

func TestPushRefetchRetriesOnce(t *testing.T) {
	f := newFixture(t, driver(), domain.RoleDriver, nil)
	f.api.setPages(domain.NewListResponse(records("n", 2), 1, 1))
	f.api.listFails = 1

	f.ctrl.HandlePush(context.Background(), "notification:driver", []byte(motPush))

	listCalls, unreadCalls := f.api.calls()
	require.Equal(t, []int{1, 1}, listCalls)
	require.Equal(t, 2, unreadCalls, "list and unread are retried together")
	require.Len(t, f.ctrl.List(), 2)
	require.Len(t, f.sink.received(), 1)
}

func TestPushRefetchRetriesListWhenUnreadFails(t *testing.T) {
	f := newFixture(t, driver(), domain.RoleDriver, nil)
	f.api.setPages(domain.NewListResponse(records("n", 2), 1, 1))
	f.api.unread = 4
	f.api.unreadFails = 1

	f.ctrl.HandlePush(context.Background(), "notification:driver", []byte(motPush))

	listCalls, unreadCalls := f.api.calls()
	require.Equal(t, []int{1, 1}, listCalls)
	require.Equal(t, 2, unreadCalls)
	require.Equal(t, 4, f.ctrl.UnreadCount())
	require.Len(t, f.sink.received(), 1)
}

func TestPushRefetchFailureStillAlerts(t *testing.T) {
	f := newFixture(t, driver(), domain.RoleDriver, nil)
	f.api.listFails = 5

	f.ctrl.HandlePush(context.Background(), "notification:driver", []byte(motPush))

	listCalls, _ := f.api.calls()
	require.Len(t, listCalls, 2)
	require.Len(t, f.sink.received(), 1)
	require.False(t, f.ctrl.Loading())
}

func TestSinkPanicIsIsolated(t *testing.T) {
	f := newFixture(t, driver(), domain.RoleDriver, nil)
	f.sink.panics = true
	f.api.setPages(domain.NewListResponse(records("n", 1), 1, 1))

	require.NotPanics(t, func() {
		f.ctrl.HandlePush(context.Background(), "notification:driver", []byte(`not json`))
	})
	require.Equal(t, []domain.Alert{{Title: "Notification", Body: "New notification"}}, f.sink.received())
	require.Len(t, f.ctrl.List(), 1)
}

func TestDeleteAllClearsAndRefetchesOnce(t *testing.T) {
	f := newFixture(t, driver(), domain.RoleDriver, nil)
	f.api.setPages(domain.NewListResponse(records("n", 12), 1, 2))
	f.api.unread = 12
	ctx := context.Background()
	require.NoError(t, f.ctrl.Load(ctx))
	require.Len(t, f.ctrl.List(), 12)

	f.api.setPages(domain.NewListResponse([]domain.Notification{}, 1, 1))
	f.api.unread = 0
	f.api.resetCalls()

	require.NoError(t, f.ctrl.DeleteAll(ctx))
	require.Empty(t, f.ctrl.List())
	require.Equal(t, 1, f.ctrl.Page())
	require.Equal(t, 0, f.ctrl.UnreadCount())

	listCalls, unreadCalls := f.api.calls()
	require.Equal(t, []int{1}, listCalls)
	require.Equal(t, 1, unreadCalls)
}

func TestDeleteFailureKeepsRecord(t *testing.T) {
	notices := &mockNotices{}
	notices.On("Error", mock.MatchedBy(func(msg string) bool {
		return strings.HasPrefix(msg, "Failed to delete notification")
	})).Once()

	f := newFixture(t, driver(), domain.RoleDriver, notices)
	f.api.setPages(domain.NewListResponse(records("n", 3), 1, 1))
	ctx := context.Background()
	require.NoError(t, f.ctrl.Load(ctx))
	f.api.resetCalls()
	f.api.mutateErr = errors.New("500 internal")

	err := f.ctrl.Delete(ctx, "n2")
	require.Error(t, err)
	require.Contains(t, err.Error(), "500 internal")
	require.Equal(t, []string{"n1", "n2", "n3"}, ids(f.ctrl.List()))
	listCalls, unreadCalls := f.api.calls()
	require.Empty(t, listCalls)
	require.Zero(t, unreadCalls)
	notices.AssertExpectations(t)
}

func TestMutationFailureKeepsState(t *testing.T) {
	tests := []struct {
		name   string
		run    func(ctx context.Context, c *Controller) error
		notice string
	}{
		{
			name:   "mark read",
			run:    func(ctx context.Context, c *Controller) error { return c.MarkRead(ctx, "n1") },
			notice: "Failed to mark notification as read",
		},
		{
			name:   "mark all read",
			run:    func(ctx context.Context, c *Controller) error { return c.MarkAllRead(ctx) },
			notice: "Failed to mark all notifications as read",
		},
		{
			name:   "delete all",
			run:    func(ctx context.Context, c *Controller) error { return c.DeleteAll(ctx) },
			notice: "Failed to delete all notifications",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notices := &mockNotices{}
			notices.On("Error", mock.MatchedBy(func(msg string) bool {
				return strings.HasPrefix(msg, tt.notice) && strings.Contains(msg, "500 internal")
			})).Once()

			f := newFixture(t, driver(), domain.RoleDriver, notices)
			f.api.setPages(
				domain.NewListResponse(records("n", 3), 1, 2),
				domain.NewListResponse(records("m", 2), 2, 2),
			)
			f.api.unread = 5
			ctx := context.Background()
			require.NoError(t, f.ctrl.Load(ctx))
			_, err := f.ctrl.LoadMore(ctx)
			require.NoError(t, err)
			f.api.resetCalls()
			f.api.mutateErr = errors.New("500 internal")

			var changes int
			f.ctrl.onChange = func() { changes++ }

			err = tt.run(ctx, f.ctrl)
			require.Error(t, err)
			require.Contains(t, err.Error(), "500 internal")

			require.Equal(t, []string{"n1", "n2", "n3", "m1", "m2"}, ids(f.ctrl.List()))
			for _, n := range f.ctrl.List() {
				require.False(t, n.Read, n.ID)
			}
			require.Equal(t, 2, f.ctrl.Page())
			require.Equal(t, 5, f.ctrl.UnreadCount())
			require.Zero(t, changes)
			listCalls, unreadCalls := f.api.calls()
			require.Empty(t, listCalls)
			require.Zero(t, unreadCalls)
			notices.AssertExpectations(t)
		})
	}
}

func TestDeleteSuccessRemovesRecord(t *testing.T) {
	f := newFixture(t, driver(), domain.RoleDriver, nil)
	f.api.setPages(domain.NewListResponse(records("n", 3), 1, 1))
	ctx := context.Background()
	require.NoError(t, f.ctrl.Load(ctx))

	var seen []string
	f.ctrl.onChange = func() { seen = ids(f.ctrl.List()) }
	f.api.setPages(domain.NewListResponse([]domain.Notification{{ID: "n1"}, {ID: "n3"}}, 1, 1))

	require.NoError(t, f.ctrl.Delete(ctx, "n2"))
	require.Equal(t, []string{"n1", "n3"}, ids(f.ctrl.List()))
	require.Equal(t, []string{"n1", "n3"}, seen)
	require.Contains(t, f.api.mutations, "delete:n2")
}

func TestMarkReadAndMarkAllRead(t *testing.T) {
	f := newFixture(t, driver(), domain.RoleDriver, nil)
	f.api.setPages(domain.NewListResponse(records("n", 2), 1, 1))
	f.api.unread = 2
	ctx := context.Background()
	require.NoError(t, f.ctrl.Load(ctx))

	f.api.setPages(domain.NewListResponse([]domain.Notification{{ID: "n1", Read: true}, {ID: "n2"}}, 1, 1))
	f.api.unread = 1
	require.NoError(t, f.ctrl.MarkRead(ctx, "n1"))
	require.True(t, f.ctrl.List()[0].Read)
	require.Equal(t, 1, f.ctrl.UnreadCount())

	f.api.setPages(domain.NewListResponse([]domain.Notification{{ID: "n1", Read: true}, {ID: "n2", Read: true}}, 1, 1))
	f.api.unread = 0
	require.NoError(t, f.ctrl.MarkAllRead(ctx))
	require.Equal(t, 0, f.ctrl.UnreadCount())
	for _, n := range f.ctrl.List() {
		require.True(t, n.Read)
	}
	require.Equal(t, []string{"read:n1", "read-all"}, f.api.mutations)

	require.ErrorIs(t, f.ctrl.MarkRead(ctx, ""), domain.ErrInvalidNotificationID)
}

func TestMountDefersUntilConnect(t *testing.T) {
	f := newFixture(t, driver(), domain.RoleDriver, nil)
	conn := newFakeConn(false)

	f.ctrl.Mount(context.Background(), conn)
	require.Equal(t, 0, conn.count("notification:driver"))
	require.Equal(t, 1, conn.connectListeners())

	conn.connect()
	require.Equal(t, 1, conn.count("notification:driver"))
	require.Equal(t, 1, conn.count("notification"))

	conn.connect()
	require.Equal(t, 1, conn.count("notification:driver"), "attached at most once")

	f.ctrl.Unmount()
	f.ctrl.Unmount()
	require.Equal(t, 0, conn.count("notification:driver"))
	require.Equal(t, 0, conn.count("notification"))
	require.Equal(t, 0, conn.connectListeners())
}

func TestUnmountBeforeConnectRemovesConnectListener(t *testing.T) {
	f := newFixture(t, driver(), domain.RoleDriver, nil)
	conn := newFakeConn(false)
	f.ctrl.Mount(context.Background(), conn)
	f.ctrl.Unmount()

	require.Equal(t, 0, conn.connectListeners())
	conn.connect()
	require.Equal(t, 0, conn.count("notification:driver"))
}

func TestUnmountWaitsForRunningHandlers(t *testing.T) {
	f := newFixture(t, driver(), domain.RoleDriver, nil)
	conn := newFakeConn(true)
	f.ctrl.Mount(context.Background(), conn)

	conn.emit("notification:driver", motPush)
	conn.emit("notification:driver", motPush)
	f.ctrl.Unmount()

	require.Len(t, f.sink.received(), 2)
	conn.emit("notification:driver", motPush)
	require.Len(t, f.sink.received(), 2)
}

type recordingSnapshots struct {
	mu     sync.Mutex
	saves  int
	role   domain.Role
	items  []domain.Notification
	unread int
}

func (r *recordingSnapshots) Save(_ context.Context, role domain.Role, items []domain.Notification, unread int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	r.role = role
	r.items = items
	r.unread = unread
	return nil
}

func TestSnapshotsSavedAfterReconcile(t *testing.T) {
	snaps := &recordingSnapshots{}
	api := newFakeAPI()
	api.setPages(domain.NewListResponse(records("n", 2), 1, 1))
	api.unread = 1
	ctrl := New(Options{
		User:      &domain.User{ID: "g1", Type: domain.RoleGarage},
		Role:      domain.RoleGarage,
		API:       api,
		Cache:     cache.New(),
		Retry:     noSleepPolicy(),
		Snapshots: snaps,
	})

	require.NoError(t, ctrl.Load(context.Background()))
	require.Equal(t, 1, snaps.saves)
	require.Equal(t, domain.RoleGarage, snaps.role)
	require.Len(t, snaps.items, 2)
	require.Equal(t, 1, snaps.unread)
}
