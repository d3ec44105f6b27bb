package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, store Store, opts Options, cookies []*http.Cookie, h func(*Session)) *httptest.ResponseRecorder {
	t.Helper()
	handler := Middleware(store, opts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := FromCtx(r)
		h(sess)
		require.NoError(t, sess.Save(r.Context(), w))
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestSessionPersistsAcrossRequests(t *testing.T) {
	store := NewMemoryStore()
	opts := DefaultOptions("secret")

	first := serve(t, store, opts, nil, func(s *Session) {
		s.Set("user_id", uint(7))
		s.Set("orders", []uint{3, 4})
		s.Set("admin_logged_in", true)
	})
	cookies := first.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)

	serve(t, store, opts, cookies, func(s *Session) {
		id, ok := s.GetUint("user_id")
		assert.True(t, ok)
		assert.EqualValues(t, 7, id)
		assert.Equal(t, []uint{3, 4}, s.GetUints("orders"))
		assert.True(t, s.GetBool("admin_logged_in"))
	})
}

func TestForgedCookieStartsFreshSession(t *testing.T) {
	store := NewMemoryStore()

	first := serve(t, store, DefaultOptions("secret"), nil, func(s *Session) {
		s.Set("user_id", uint(1))
	})

	serve(t, store, DefaultOptions("other-secret"), first.Result().Cookies(), func(s *Session) {
		_, ok := s.GetUint("user_id")
		assert.False(t, ok)
	})

	forged := []*http.Cookie{{Name: "heartscript_session", Value: "plain-session-id"}}
	serve(t, store, DefaultOptions("secret"), forged, func(s *Session) {
		_, ok := s.GetUint("user_id")
		assert.False(t, ok)
	})
}

func TestInvalidateRotatesAndDropsOldData(t *testing.T) {
	store := NewMemoryStore()
	opts := DefaultOptions("secret")

	var oldID string
	first := serve(t, store, opts, nil, func(s *Session) {
		s.Set("user_id", uint(5))
		oldID = s.ID()
	})

	var newID string
	serve(t, store, opts, first.Result().Cookies(), func(s *Session) {
		s.Invalidate()
		newID = s.ID()
	})

	assert.NotEqual(t, oldID, newID)
	data, err := store.Load(context.Background(), oldID)
	require.NoError(t, err)
	assert.Nil(t, data)

	data, err = store.Load(context.Background(), newID)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestUnchangedSessionWritesNothing(t *testing.T) {
	store := NewMemoryStore()
	rec := serve(t, store, DefaultOptions("secret"), nil, func(*Session) {})
	assert.Empty(t, rec.Result().Cookies())
	assert.Zero(t, store.Len())
}

func TestMemoryStoreExpires(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(context.Background(), "a", map[string]interface{}{"k": "v"}, time.Minute))
	data, err := store.Load(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "v", data["k"])

	now = now.Add(2 * time.Minute)
	data, err = store.Load(context.Background(), "a")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestMemoryStoreSweep(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "short", map[string]interface{}{}, time.Minute))
	require.NoError(t, store.Save(ctx, "long", map[string]interface{}{}, time.Hour))

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 1, store.Len())
}

func TestFlashIsReadOnce(t *testing.T) {
	s := newSession(NewMemoryStore(), DefaultOptions("secret"))
	s.Flash("notice", "saved")

	v, ok := s.GetFlash("notice")
	assert.True(t, ok)
	assert.Equal(t, "saved", v)

	_, ok = s.GetFlash("notice")
	assert.False(t, ok)
}
