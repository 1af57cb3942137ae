package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
)

// WebSocketDialer dials the push endpoint over gorilla/websocket.
// Connection params travel as query parameters.
type WebSocketDialer struct {
	Dialer *websocket.Dialer
	Header http.Header
}

// NewWebSocketDialer returns a dialer using websocket.DefaultDialer settings.
func NewWebSocketDialer() *WebSocketDialer {
	d := *websocket.DefaultDialer
	return &WebSocketDialer{Dialer: &d}
}

// Dial connects to rawURL with params encoded in the query string.
func (d *WebSocketDialer) Dial(ctx context.Context, rawURL string, params Params) (Conn, error) {
	target, err := ConnectURL(rawURL, params)
	if err != nil {
		return nil, err
	}

	dialer := d.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	header := d.Header.Clone()
	if header == nil {
		header = http.Header{}
	}
	if params.Token != "" {
		header.Set("Authorization", "Bearer "+params.Token)
	}

	conn, resp, err := dialer.DialContext(ctx, target, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket dial: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("websocket dial: %w", err)
	}
	return &wsConn{conn: conn}, nil
}

// ConnectURL appends the connection params to rawURL.
func ConnectURL(rawURL string, params Params) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid socket url %q: %w", rawURL, err)
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("invalid socket url %q: unsupported scheme %q", rawURL, u.Scheme)
	}
	q := u.Query()
	q.Set("token", params.Token)
	q.Set("userId", params.UserID)
	transport := params.Transport
	if transport == "" {
		transport = TransportMode
	}
	q.Set("transport", transport)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

type wsConn struct {
	conn      *websocket.Conn
	closeOnce sync.Once
	closeErr  error
}

func (c *wsConn) ReadFrame() (Frame, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return Frame{}, err
	}
	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if frame.Event == "" {
		return Frame{}, fmt.Errorf("%w: missing event", ErrMalformedFrame)
	}
	return frame, nil
}

func (c *wsConn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}
