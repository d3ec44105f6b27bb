// Package session provides server-side HTTP sessions. The cookie carries a
// signed token naming the session id; the data lives in a Store (memory or
// Redis).
//
// Usage (middleware):
//
//	r.Use(session.Middleware(store, session.DefaultOptions(secret)))
//
// Usage (handler):
//
//	sess := session.FromCtx(r)
//	sess.Set("user_id", 42)
//	sess.Save(r.Context(), w)
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/shashiranjanraj/heartscript/pkg/auth"
	"github.com/shashiranjanraj/heartscript/pkg/logger"
)

// Options configures session behaviour.
type Options struct {
	CookieName string
	Secret     []byte
	TTL        time.Duration
	HTTPOnly   bool
	Secure     bool
	SameSite   http.SameSite
	Path       string
}

func DefaultOptions(secret string) Options {
	return Options{
		CookieName: "heartscript_session",
		Secret:     []byte(secret),
		TTL:        24 * time.Hour,
		HTTPOnly:   true,
		SameSite:   http.SameSiteLaxMode,
		Path:       "/",
	}
}

type ctxKey struct{}

// Session is an in-request session handle. It is not safe for concurrent
// use; one request owns it.
type Session struct {
	id      string
	staleID string
	data    map[string]interface{}
	store   Store
	opts    Options
	changed bool
}

func newID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func newSession(store Store, opts Options) *Session {
	id, err := newID()
	if err != nil {
		panic(fmt.Sprintf("session: random id: %v", err))
	}
	return &Session{id: id, data: map[string]interface{}{}, store: store, opts: opts}
}

func (s *Session) Set(key string, value interface{}) {
	s.data[key] = value
	s.changed = true
}

func (s *Session) Get(key string) (interface{}, bool) {
	v, ok := s.data[key]
	return v, ok
}

func (s *Session) GetString(key string) (string, bool) {
	v, ok := s.data[key]
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

func (s *Session) GetBool(key string) bool {
	b, _ := s.data[key].(bool)
	return b
}

// GetUint reads a numeric value. JSON-decoded stores hand numbers back as
// float64.
func (s *Session) GetUint(key string) (uint, bool) {
	return toUint(s.data[key])
}

// GetUints reads a list of ids.
func (s *Session) GetUints(key string) []uint {
	var out []uint
	switch list := s.data[key].(type) {
	case []uint:
		out = append(out, list...)
	case []interface{}:
		for _, v := range list {
			if n, ok := toUint(v); ok {
				out = append(out, n)
			}
		}
	}
	return out
}

func toUint(v interface{}) (uint, bool) {
	switch n := v.(type) {
	case float64:
		if n > 0 {
			return uint(n), true
		}
	case int:
		if n > 0 {
			return uint(n), true
		}
	case int64:
		if n > 0 {
			return uint(n), true
		}
	case uint:
		return n, n > 0
	}
	return 0, false
}

func (s *Session) Delete(key string) {
	if _, ok := s.data[key]; ok {
		delete(s.data, key)
		s.changed = true
	}
}

// Flash stores a value that is removed on its first read.
func (s *Session) Flash(key string, value interface{}) {
	s.Set("_flash_"+key, value)
}

func (s *Session) GetFlash(key string) (interface{}, bool) {
	v, ok := s.Get("_flash_" + key)
	if ok {
		s.Delete("_flash_" + key)
	}
	return v, ok
}

// Regenerate moves the data to a fresh id. Call it on privilege changes.
func (s *Session) Regenerate() {
	if s.staleID == "" {
		s.staleID = s.id
	}
	fresh := newSession(s.store, s.opts)
	s.id = fresh.id
	s.changed = true
}

// Invalidate clears all data and rotates the id (logout).
func (s *Session) Invalidate() {
	s.data = map[string]interface{}{}
	s.Regenerate()
}

func (s *Session) ID() string { return s.id }

// Save persists changed data and writes the signed cookie. It must be
// called before the response body is written.
func (s *Session) Save(ctx context.Context, w http.ResponseWriter) error {
	if !s.changed {
		return nil
	}

	if s.staleID != "" {
		if err := s.store.Delete(ctx, s.staleID); err != nil {
			return fmt.Errorf("session: drop %s: %w", s.staleID, err)
		}
		s.staleID = ""
	}

	if err := s.store.Save(ctx, s.id, s.data, s.opts.TTL); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}

	token, err := auth.SignSession(s.opts.Secret, s.id, s.opts.TTL)
	if err != nil {
		return fmt.Errorf("session: sign: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    token,
		Path:     s.opts.Path,
		MaxAge:   int(s.opts.TTL.Seconds()),
		HttpOnly: s.opts.HTTPOnly,
		Secure:   s.opts.Secure,
		SameSite: s.opts.SameSite,
	})

	s.changed = false
	return nil
}

// Middleware loads the session named by the cookie, or starts an empty one
// when the cookie is missing, forged, expired or unknown to the store.
func Middleware(store Store, opts Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := load(r, store, opts)
			ctx := context.WithValue(r.Context(), ctxKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func load(r *http.Request, store Store, opts Options) *Session {
	cookie, err := r.Cookie(opts.CookieName)
	if err != nil {
		return newSession(store, opts)
	}
	id, err := auth.ParseSession(opts.Secret, cookie.Value)
	if err != nil {
		return newSession(store, opts)
	}
	data, err := store.Load(r.Context(), id)
	if err != nil {
		logger.WithCtx(r.Context()).Warn("session: load failed", "error", err)
		return newSession(store, opts)
	}
	if data == nil {
		return newSession(store, opts)
	}
	return &Session{id: id, data: data, store: store, opts: opts}
}

// FromCtx returns the request's session, or a detached in-memory one when
// the middleware did not run.
func FromCtx(r *http.Request) *Session {
	if s, ok := r.Context().Value(ctxKey{}).(*Session); ok {
		return s
	}
	return newSession(NewMemoryStore(), DefaultOptions(""))
}
