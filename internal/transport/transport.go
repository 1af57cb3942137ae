// Package transport owns the push-event connection shared by every
// notification controller in the process.
//
// A Provider hands out at most one live Handle. The Handle dials, reads
// event frames and redials after failures on its own goroutine; listeners
// subscribe by event key and survive reconnects. Connection errors are
// logged, never returned to subscribers.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/cristianoliveira/motinbox/internal/logging"
)

// TransportMode is the fixed transport parameter sent on connect.
const TransportMode = "websocket"

// DefaultReconnectDelay is the wait between connection attempts.
const DefaultReconnectDelay = 2 * time.Second

// ErrMalformedFrame is returned by Conn.ReadFrame for frames that cannot be decoded.
// The connection stays usable.
var ErrMalformedFrame = errors.New("malformed frame")

// Frame is one event received from the server: {"event": "...", "data": {...}}.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Params are sent to the server when the connection is established.
type Params struct {
	Token     string
	UserID    string
	Transport string
}

// Conn is an established connection.
type Conn interface {
	ReadFrame() (Frame, error)
	Close() error
}

// Dialer opens connections.
type Dialer interface {
	Dial(ctx context.Context, url string, params Params) (Conn, error)
}

// Listener receives the data of one event.
type Listener func(data json.RawMessage)

// Provider owns the single process-wide Handle.
type Provider struct {
	mu             sync.Mutex
	url            string
	dialer         Dialer
	reconnectDelay time.Duration
	logger         logging.Logger
	handle         *Handle
}

// Option configures a Provider.
type Option func(*Provider)

// WithDialer overrides the default websocket dialer.
func WithDialer(d Dialer) Option {
	return func(p *Provider) { p.dialer = d }
}

// WithReconnectDelay sets the wait between connection attempts.
func WithReconnectDelay(d time.Duration) Option {
	return func(p *Provider) { p.reconnectDelay = d }
}

// WithLogger sets the logger used by handles.
func WithLogger(l logging.Logger) Option {
	return func(p *Provider) { p.logger = l }
}

// NewProvider creates a provider for the push endpoint at url.
// An empty url yields a headless provider that never connects.
func NewProvider(url string, opts ...Option) *Provider {
	p := &Provider{
		url:            url,
		dialer:         NewWebSocketDialer(),
		reconnectDelay: DefaultReconnectDelay,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logging.GetGlobal()
	}
	return p
}

// Headless reports whether the provider has no endpoint to connect to.
func (p *Provider) Headless() bool {
	return p == nil || p.url == ""
}

// Acquire returns the live handle, creating and starting one if needed.
// Repeated calls return the same handle until Release. A headless provider returns nil.
func (p *Provider) Acquire(token, userID string) *Handle {
	if p.Headless() {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle != nil {
		return p.handle
	}
	params := Params{Token: token, UserID: userID, Transport: TransportMode}
	p.handle = newHandle(p.dialer, p.url, params, p.reconnectDelay, p.logger)
	p.handle.start()
	return p.handle
}

// Get returns the current handle, or nil before Acquire or after Release.
func (p *Provider) Get() *Handle {
	if p.Headless() {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handle
}

// Release closes the current handle, if any, so the next Acquire starts fresh.
func (p *Provider) Release() error {
	if p.Headless() {
		return nil
	}
	p.mu.Lock()
	h := p.handle
	p.handle = nil
	p.mu.Unlock()
	if h == nil {
		return nil
	}
	return h.Close()
}
