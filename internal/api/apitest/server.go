// Package apitest provides an in-memory notification backend built on gin
// for tests of packages that talk to the REST API.
package apitest

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/cristianoliveira/motinbox/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Request records one request received by the backend.
type Request struct {
	Method    string
	Path      string
	Query     string
	Auth      string
	UserID    string
	RequestID string
}

// Backend is a fake notification API holding records per role slug.
type Backend struct {
	mu       sync.Mutex
	records  map[string][]domain.Notification
	requests []Request
	failNext int
	failCode int
	token    string
	server   *httptest.Server
	router   *gin.Engine
}

// NewBackend starts a backend. It is closed when the test ends.
func NewBackend(t interface{ Cleanup(func()) }) *Backend {
	b := &Backend{records: make(map[string][]domain.Notification)}
	b.router = gin.New()
	b.routes()
	b.server = httptest.NewServer(b.router)
	t.Cleanup(b.server.Close)
	return b
}

// URL is the base URL of the backend.
func (b *Backend) URL() string { return b.server.URL }

// RequireToken makes every request without "Bearer token" fail with 401.
func (b *Backend) RequireToken(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token = token
}

// Seed replaces the records of role.
func (b *Backend) Seed(role domain.Role, records ...domain.Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records[role.Slug()] = append([]domain.Notification(nil), records...)
}

// Records returns the records of role.
func (b *Backend) Records(role domain.Role) []domain.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.Notification(nil), b.records[role.Slug()]...)
}

// FailNext makes the next n requests fail with status code.
func (b *Backend) FailNext(n, code int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failNext = n
	b.failCode = code
}

// Requests returns every request received so far.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

func (b *Backend) routes() {
	b.router.Use(b.record)
	g := b.router.Group("/:role/notifications")
	g.GET("", b.list)
	g.GET("/unread-count", b.unread)
	g.PUT("/read-all", b.readAll)
	g.PUT("/:id/read", b.read)
	g.DELETE("", b.deleteAll)
	g.DELETE("/:id", b.delete)
}

func (b *Backend) record(c *gin.Context) {
	b.mu.Lock()
	b.requests = append(b.requests, Request{
		Method:    c.Request.Method,
		Path:      c.Request.URL.Path,
		Query:     c.Request.URL.RawQuery,
		Auth:      c.GetHeader("Authorization"),
		UserID:    c.GetHeader("X-User-ID"),
		RequestID: c.GetHeader("X-Request-ID"),
	})
	if b.token != "" && c.GetHeader("Authorization") != "Bearer "+b.token {
		b.mu.Unlock()
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	if b.failNext > 0 {
		b.failNext--
		code := b.failCode
		b.mu.Unlock()
		c.AbortWithStatusJSON(code, gin.H{"error": "injected failure"})
		return
	}
	b.mu.Unlock()
	c.Next()
}

func (b *Backend) list(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	b.mu.Lock()
	all := b.records[strings.ToLower(c.Param("role"))]
	b.mu.Unlock()

	pages := (len(all) + limit - 1) / limit
	if pages == 0 {
		pages = 1
	}
	start := (page - 1) * limit
	end := start + limit
	if start > len(all) {
		start = len(all)
	}
	if end > len(all) {
		end = len(all)
	}
	slice := append([]domain.Notification{}, all[start:end]...)
	c.JSON(http.StatusOK, domain.ListResponse{Data: &domain.ListData{
		Notifications: slice,
		Pagination:    &domain.Pagination{Page: page, Pages: pages, Limit: limit, Total: len(all)},
	}})
}

func (b *Backend) unread(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	count := 0
	for _, n := range b.records[c.Param("role")] {
		if !n.Read {
			count++
		}
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (b *Backend) readAll(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	records := b.records[c.Param("role")]
	for i := range records {
		records[i].Read = true
	}
	c.Status(http.StatusNoContent)
}

func (b *Backend) read(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	records := b.records[c.Param("role")]
	for i := range records {
		if records[i].ID == c.Param("id") {
			records[i].Read = true
			c.Status(http.StatusNoContent)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
}

func (b *Backend) deleteAll(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records[c.Param("role")] = nil
	c.Status(http.StatusNoContent)
}

func (b *Backend) delete(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	records := b.records[c.Param("role")]
	for i := range records {
		if records[i].ID == c.Param("id") {
			b.records[c.Param("role")] = append(records[:i:i], records[i+1:]...)
			c.Status(http.StatusNoContent)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
}
