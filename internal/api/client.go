// Package api is the JSON-over-HTTP client for the notification endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cristianoliveira/motinbox/internal/domain"
)

// DefaultTimeout is the HTTP timeout used when none is configured.
const DefaultTimeout = 30 * time.Second

// Header names sent with every request.
const (
	HeaderRequestID = "X-Request-ID"
	HeaderUserID    = "X-User-ID"
)

// ErrUnauthorized is returned for 401 responses.
var ErrUnauthorized = errors.New("unauthorized")

// HTTPError is returned for every non-2xx response.
type HTTPError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: status=%d, body=%s", e.Method, e.Path, e.Status, strings.TrimSpace(e.Body))
}

// Unwrap maps 401 responses to ErrUnauthorized.
func (e *HTTPError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// Client talks to the notification REST endpoints of one user.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	userID     string
	newID      func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithToken sets the bearer token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithUserID sets the user id header.
func WithUserID(id string) Option {
	return func(c *Client) { c.userID = id }
}

// New creates a client for the API rooted at baseURL (e.g. "https://api.example.com/v1").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		newID:      func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type unreadResponse struct {
	Count int `json:"count"`
}

// NotificationsPath returns the role-prefixed notification collection path.
func NotificationsPath(role domain.Role) string {
	return "/" + role.Slug() + "/notifications"
}

// ListNotifications fetches one page of notifications.
func (c *Client) ListNotifications(ctx context.Context, role domain.Role, page, limit int) (domain.ListResponse, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	var resp domain.ListResponse
	if err := c.do(ctx, http.MethodGet, NotificationsPath(role)+"?"+q.Encode(), nil, &resp); err != nil {
		return domain.ListResponse{}, err
	}
	return resp, nil
}

// UnreadCount fetches the unread counter.
func (c *Client) UnreadCount(ctx context.Context, role domain.Role) (int, error) {
	var resp unreadResponse
	if err := c.do(ctx, http.MethodGet, NotificationsPath(role)+"/unread-count", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// MarkAllRead marks every notification read.
func (c *Client) MarkAllRead(ctx context.Context, role domain.Role) error {
	return c.do(ctx, http.MethodPut, NotificationsPath(role)+"/read-all", nil, nil)
}

// MarkRead marks one notification read.
func (c *Client) MarkRead(ctx context.Context, role domain.Role, id string) error {
	if err := domain.ValidateID(id); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPut, NotificationsPath(role)+"/"+url.PathEscape(id)+"/read", nil, nil)
}

// DeleteAll deletes every notification.
func (c *Client) DeleteAll(ctx context.Context, role domain.Role) error {
	return c.do(ctx, http.MethodDelete, NotificationsPath(role), nil, nil)
}

// Delete deletes one notification.
func (c *Client) Delete(ctx context.Context, role domain.Role, id string) error {
	if err := domain.ValidateID(id); err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, NotificationsPath(role)+"/"+url.PathEscape(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(HeaderRequestID, c.newID())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.userID != "" {
		req.Header.Set(HeaderUserID, c.userID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &HTTPError{Method: method, Path: path, Status: resp.StatusCode, Body: string(respBody)}
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode %s %s response: %w", method, path, err)
		}
	}
	return nil
}
