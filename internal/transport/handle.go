package transport

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cristianoliveira/motinbox/internal/logging"
)

// Handle is a live, self-reconnecting connection.
type Handle struct {
	dialer         Dialer
	url            string
	params         Params
	reconnectDelay time.Duration
	logger         logging.Logger

	mu               sync.Mutex
	conn             Conn
	connected        bool
	listeners        map[string]map[int]Listener
	connectListeners map[int]func()
	nextID           int

	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

func newHandle(dialer Dialer, url string, params Params, reconnectDelay time.Duration, logger logging.Logger) *Handle {
	ctx, cancel := context.WithCancel(context.Background())
	return &Handle{
		dialer:           dialer,
		url:              url,
		params:           params,
		reconnectDelay:   reconnectDelay,
		logger:           logger.With("component", "transport"),
		listeners:        make(map[string]map[int]Listener),
		connectListeners: make(map[int]func()),
		ctx:              ctx,
		cancel:           cancel,
		done:             make(chan struct{}),
	}
}

func (h *Handle) start() {
	go h.run()
}

// Params returns the connection parameters of the handle.
func (h *Handle) Params() Params {
	return h.params
}

// Connected reports whether the connection is currently open.
func (h *Handle) Connected() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.connected
}

// On subscribes fn to event. The returned function unsubscribes and may be called repeatedly.
func (h *Handle) On(event string, fn Listener) (off func()) {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	if h.listeners[event] == nil {
		h.listeners[event] = make(map[int]Listener)
	}
	h.listeners[event][id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.listeners[event], id)
	}
}

// OnConnect runs fn on every transition to connected.
// The returned function unsubscribes and may be called repeatedly.
func (h *Handle) OnConnect(fn func()) (off func()) {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.connectListeners[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.connectListeners, id)
	}
}

// ListenerCount returns the number of listeners subscribed to event.
func (h *Handle) ListenerCount(event string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners[event])
}

// Close stops the connection loop and waits for it to exit.
func (h *Handle) Close() error {
	var err error
	h.closeOnce.Do(func() {
		h.cancel()
		h.mu.Lock()
		conn := h.conn
		h.mu.Unlock()
		if conn != nil {
			err = conn.Close()
		}
		<-h.done
	})
	return err
}

// Done is closed once the connection loop has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

func (h *Handle) run() {
	defer close(h.done)
	for {
		conn, err := h.dialer.Dial(h.ctx, h.url, h.params)
		if err != nil {
			if h.ctx.Err() != nil {
				return
			}
			h.logger.Warn("connect failed", "url", h.url, "error", err)
			if !h.wait() {
				return
			}
			continue
		}

		if !h.setConn(conn) {
			_ = conn.Close()
			return
		}
		h.logger.Info("connected", "url", h.url, "user_id", h.params.UserID)
		h.fireConnect()

		err = h.readLoop(conn)
		h.clearConn()
		_ = conn.Close()
		if h.ctx.Err() != nil {
			return
		}
		h.logger.Warn("connection lost", "url", h.url, "error", err)
		if !h.wait() {
			return
		}
	}
}

func (h *Handle) setConn(conn Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ctx.Err() != nil {
		return false
	}
	h.conn = conn
	h.connected = true
	return true
}

func (h *Handle) clearConn() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conn = nil
	h.connected = false
}

func (h *Handle) wait() bool {
	timer := time.NewTimer(h.reconnectDelay)
	defer timer.Stop()
	select {
	case <-h.ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (h *Handle) readLoop(conn Conn) error {
	for {
		frame, err := conn.ReadFrame()
		if err != nil {
			if errors.Is(err, ErrMalformedFrame) {
				h.logger.Debug("skipping malformed frame", "error", err)
				continue
			}
			return err
		}
		h.dispatch(frame)
	}
}

func (h *Handle) fireConnect() {
	h.mu.Lock()
	fns := make([]func(), 0, len(h.connectListeners))
	for _, fn := range h.connectListeners {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (h *Handle) dispatch(frame Frame) {
	h.mu.Lock()
	fns := make([]Listener, 0, len(h.listeners[frame.Event]))
	for _, fn := range h.listeners[frame.Event] {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	if len(fns) == 0 {
		h.logger.Debug("no listeners for event", "event", frame.Event)
		return
	}
	for _, fn := range fns {
		fn(frame.Data)
	}
}
