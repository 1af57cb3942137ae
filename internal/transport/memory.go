package transport

import (
	"context"
	"encoding/json"
	"io"
	"sync"
)

// MemoryDialer is an in-process Dialer for tests and local development.
// Each Dial creates a MemoryConn that is also published on Dialed().
//
// Example usage:
//
//	dialer := transport.NewMemoryDialer()
//	provider := transport.NewProvider("memory://", transport.WithDialer(dialer))
//	h := provider.Acquire("token", "user-1")
//	conn := <-dialer.Dialed()
//	conn.Send("notification:driver", map[string]any{"id": "n1"})
type MemoryDialer struct {
	mu      sync.Mutex
	failN   int
	failErr error
	params  []Params
	dialed  chan *MemoryConn
}

// NewMemoryDialer creates a MemoryDialer.
func NewMemoryDialer() *MemoryDialer {
	return &MemoryDialer{dialed: make(chan *MemoryConn, 16)}
}

// FailNext makes the next n dials fail with err.
func (d *MemoryDialer) FailNext(n int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failN = n
	d.failErr = err
}

// Dial implements Dialer.
func (d *MemoryDialer) Dial(ctx context.Context, _ string, params Params) (Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.params = append(d.params, params)
	if d.failN > 0 {
		d.failN--
		err := d.failErr
		d.mu.Unlock()
		return nil, err
	}
	d.mu.Unlock()

	conn := &MemoryConn{frames: make(chan Frame, 64), closed: make(chan struct{})}
	select {
	case d.dialed <- conn:
	default:
	}
	return conn, nil
}

// Dialed publishes every successfully created connection.
func (d *MemoryDialer) Dialed() <-chan *MemoryConn {
	return d.dialed
}

// Dials returns the params of every dial attempt, successful or not.
func (d *MemoryDialer) Dials() []Params {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Params, len(d.params))
	copy(out, d.params)
	return out
}

// MemoryConn is the server side and client side of an in-memory connection.
type MemoryConn struct {
	frames chan Frame
	closed chan struct{}
	once   sync.Once
}

// Send delivers an event to the client side.
func (c *MemoryConn) Send(event string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	select {
	case <-c.closed:
		return io.ErrClosedPipe
	case c.frames <- Frame{Event: event, Data: raw}:
		return nil
	}
}

// SendRaw delivers an event with pre-encoded data.
func (c *MemoryConn) SendRaw(event string, data []byte) error {
	select {
	case <-c.closed:
		return io.ErrClosedPipe
	case c.frames <- Frame{Event: event, Data: data}:
		return nil
	}
}

// Drop simulates a server-side disconnect.
func (c *MemoryConn) Drop() {
	c.once.Do(func() { close(c.closed) })
}

// Closed is closed once the connection is dropped or closed.
func (c *MemoryConn) Closed() <-chan struct{} {
	return c.closed
}

// ReadFrame implements Conn.
func (c *MemoryConn) ReadFrame() (Frame, error) {
	select {
	case f := <-c.frames:
		return f, nil
	case <-c.closed:
		return Frame{}, io.EOF
	}
}

// Close implements Conn.
func (c *MemoryConn) Close() error {
	c.Drop()
	return nil
}
