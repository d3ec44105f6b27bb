// Package ctx provides a request context for handlers.
//
// Instead of accepting (http.ResponseWriter, *http.Request), a handler
// receives a single *Context with helpers for params, binding, the session,
// the request Identity and every response shape the app writes:
//
//	func ShowProduct(c *ctx.Context) {
//	    id, ok := c.ParamUint("id")
//	    ...
//	    c.HTML(http.StatusOK, "product", ctx.H{"Product": p})
//	}
//
//	router.Get("/product/{id}", "product.show", ctx.Wrap(ShowProduct))
package ctx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/shashiranjanraj/heartscript/pkg/auth"
	"github.com/shashiranjanraj/heartscript/pkg/bind"
	"github.com/shashiranjanraj/heartscript/pkg/logger"
	"github.com/shashiranjanraj/heartscript/pkg/middleware"
	"github.com/shashiranjanraj/heartscript/pkg/response"
	"github.com/shashiranjanraj/heartscript/pkg/session"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// H is shorthand for template and JSON payloads.
type H map[string]interface{}

// Renderer executes a named page.
type Renderer interface {
	Render(w io.Writer, name string, data interface{}) error
}

var (
	rendererMu sync.RWMutex
	renderer   Renderer
)

// UseRenderer installs the page renderer used by HTML.
func UseRenderer(r Renderer) {
	rendererMu.Lock()
	renderer = r
	rendererMu.Unlock()
}

// Wrap converts a HandlerFunc to a standard http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// Context wraps a request/response pair.
type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	mu     sync.RWMutex
	store  map[string]interface{}
	status int
}

var pool = sync.Pool{
	New: func() interface{} { return &Context{store: make(map[string]interface{})} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	c.status = 0
	for k := range c.store {
		delete(c.store, k)
	}
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// ─── Request helpers ──────────────────────────────────────────────────────────

func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// ParamUint parses a positive numeric path parameter.
func (c *Context) ParamUint(key string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(key), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

func (c *Context) Query(key string) string {
	return c.R.URL.Query().Get(key)
}

func (c *Context) PostForm(key string) string {
	return c.R.FormValue(key)
}

func (c *Context) Method() string { return c.R.Method }

func (c *Context) IsPost() bool { return c.R.Method == http.MethodPost }

func (c *Context) Path() string { return c.R.URL.Path }

func (c *Context) ClientIP() string { return middleware.ClientIP(c.R) }

func (c *Context) Context() context.Context { return c.R.Context() }

// Identity returns who the request acts as.
func (c *Context) Identity() auth.Identity { return auth.FromContext(c.R.Context()) }

func (c *Context) Session() *session.Session { return session.FromCtx(c.R) }

// SaveSession persists the session and sets the cookie. It must run before
// any body is written.
func (c *Context) SaveSession() error {
	if err := c.Session().Save(c.Context(), c.W); err != nil {
		logger.WithCtx(c.Context()).Error("session: save failed", "error", err)
		return err
	}
	return nil
}

// Bind decodes the body (JSON or form, by Content-Type) into dest and
// validates it. Field errors come back as a map; a malformed body as err.
func (c *Context) Bind(dest interface{}) (map[string]string, error) {
	return bind.Request(c.R, dest)
}

// ─── Per-request store ────────────────────────────────────────────────────────

func (c *Context) Set(key string, val interface{}) {
	c.mu.Lock()
	c.store[key] = val
	c.mu.Unlock()
}

func (c *Context) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	v, ok := c.store[key]
	c.mu.RUnlock()
	return v, ok
}

// ─── Response helpers ─────────────────────────────────────────────────────────

func (c *Context) SetHeader(key, value string) {
	c.W.Header().Set(key, value)
}

func (c *Context) Status(code int) {
	c.status = code
	c.W.WriteHeader(code)
}

func (c *Context) JSON(code int, v interface{}) {
	c.status = code
	response.JSON(c.W, code, v)
}

// Error sends {"status":"error","message":message}.
func (c *Context) Error(code int, message string) {
	c.status = code
	response.Error(c.W, code, message)
}

func (c *Context) String(code int, format string, args ...interface{}) {
	c.W.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.Status(code)
	fmt.Fprintf(c.W, format, args...)
}

// Redirect sends a 303 See Other, so a POST lands on a GET.
func (c *Context) Redirect(url string) {
	c.status = http.StatusSeeOther
	http.Redirect(c.W, c.R, url, http.StatusSeeOther)
}

// HTML renders a page. The request Identity is added under "Identity".
// A render failure becomes a plain 500.
func (c *Context) HTML(code int, page string, data H) {
	if data == nil {
		data = H{}
	}
	data["Identity"] = c.Identity()

	rendererMu.RLock()
	r := renderer
	rendererMu.RUnlock()
	if r == nil {
		c.String(http.StatusInternalServerError, "no renderer configured")
		return
	}

	c.W.Header().Set("Content-Type", "text/html; charset=utf-8")
	pw := &pendingWriter{c: c, code: code}
	if err := r.Render(pw, page, data); err != nil {
		logger.WithCtx(c.Context()).Error("view: render failed", "page", page, "error", err)
		if !pw.started {
			c.String(http.StatusInternalServerError, "Internal Server Error")
		}
	}
}

// pendingWriter delays WriteHeader until the renderer produces output.
type pendingWriter struct {
	c       *Context
	code    int
	started bool
}

func (p *pendingWriter) Write(b []byte) (int, error) {
	if !p.started {
		p.started = true
		p.c.Status(p.code)
	}
	return p.c.W.Write(b)
}

// Attachment sends body as a download.
func (c *Context) Attachment(filename, contentType string, body []byte) {
	c.W.Header().Set("Content-Type", contentType)
	c.W.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.W.Header().Set("Content-Length", strconv.Itoa(len(body)))
	c.Status(http.StatusOK)
	c.W.Write(body) //nolint:errcheck
}

func (c *Context) NotFound() {
	c.String(http.StatusNotFound, "Not Found")
}

func (c *Context) Forbidden() {
	c.String(http.StatusForbidden, "Forbidden")
}

// WrittenStatus returns the status written so far, or 0.
func (c *Context) WrittenStatus() int { return c.status }
