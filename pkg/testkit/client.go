package testkit

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

// Client drives an http.Handler like a browser: cookies set by one
// response go out with the next request.
type Client struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

func NewClient(t *testing.T, h http.Handler) *Client {
	return &Client{t: t, handler: h, cookies: map[string]*http.Cookie{}}
}

// Do sends req with the jar's cookies and records the response cookies.
func (c *Client) Do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	for _, ck := range c.cookies {
		req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 || ck.Value == "" {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return rec
}

func (c *Client) Get(path string) *httptest.ResponseRecorder {
	c.t.Helper()
	return c.Do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *Client) PostForm(path string, form url.Values) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.Do(req)
}

func (c *Client) PostJSON(path, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return c.Do(req)
}

// Post sends an arbitrary body, e.g. multipart forms.
func (c *Client) Post(path, contentType string, body io.Reader) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	return c.Do(req)
}

// Forget drops every cookie, like a new browser.
func (c *Client) Forget() {
	c.cookies = map[string]*http.Cookie{}
}
