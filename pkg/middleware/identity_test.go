package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shashiranjanraj/heartscript/pkg/auth"
	"github.com/shashiranjanraj/heartscript/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loggedIn returns the cookies of a session holding values.
func loggedIn(t *testing.T, store session.Store, opts session.Options, values map[string]interface{}) []*http.Cookie {
	t.Helper()
	h := session.Middleware(store, opts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromCtx(r)
		for k, v := range values {
			sess.Set(k, v)
		}
		require.NoError(t, sess.Save(r.Context(), w))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	return rec.Result().Cookies()
}

func identityOf(t *testing.T, store session.Store, opts session.Options, cookies []*http.Cookie, exists UserExists) (auth.Identity, *httptest.ResponseRecorder) {
	t.Helper()
	var got auth.Identity
	h := session.Middleware(store, opts)(Identify(exists)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = auth.FromContext(r.Context())
	})))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return got, rec
}

func TestIdentifyResolvesFlags(t *testing.T) {
	store := session.NewMemoryStore()
	opts := session.DefaultOptions("secret")
	cookies := loggedIn(t, store, opts, map[string]interface{}{auth.SessionUserID: uint(3), auth.SessionAdmin: true})

	id, _ := identityOf(t, store, opts, cookies, func(context.Context, uint) (bool, error) { return true, nil })
	assert.Equal(t, auth.Identity{UserID: 3, Admin: true}, id)
}

func TestIdentifyDropsStaleUser(t *testing.T) {
	store := session.NewMemoryStore()
	opts := session.DefaultOptions("secret")
	cookies := loggedIn(t, store, opts, map[string]interface{}{auth.SessionUserID: uint(3), auth.SessionAdmin: true})

	id, rec := identityOf(t, store, opts, cookies, func(context.Context, uint) (bool, error) { return false, nil })
	assert.Equal(t, auth.Identity{}, id)
	assert.NotEmpty(t, rec.Result().Cookies())

	id, _ = identityOf(t, store, opts, rec.Result().Cookies(), func(context.Context, uint) (bool, error) { return true, nil })
	assert.Equal(t, auth.Identity{}, id)
}

func TestIdentifyKeepsSessionOnLookupError(t *testing.T) {
	store := session.NewMemoryStore()
	opts := session.DefaultOptions("secret")
	cookies := loggedIn(t, store, opts, map[string]interface{}{auth.SessionUserID: uint(3)})

	id, _ := identityOf(t, store, opts, cookies, func(context.Context, uint) (bool, error) { return false, errors.New("db down") })
	assert.False(t, id.Authenticated())

	id, _ = identityOf(t, store, opts, cookies, func(context.Context, uint) (bool, error) { return true, nil })
	assert.EqualValues(t, 3, id.UserID)
}

func TestRequireAdmin(t *testing.T) {
	h := RequireAdmin("/admin-login")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/delete_order/1", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin-login", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/update_status/5", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/update_status/5", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{Admin: true}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireUserIgnoresAdminFlag(t *testing.T) {
	h := RequireUser("/login")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{Admin: true}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}
