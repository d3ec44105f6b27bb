package ctx_test

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shashiranjanraj/heartscript/pkg/auth"
	appctx "github.com/shashiranjanraj/heartscript/pkg/ctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRenderer struct{ fail bool }

func (s stubRenderer) Render(w io.Writer, name string, data interface{}) error {
	if s.fail {
		return errors.New("boom")
	}
	h := data.(appctx.H)
	_, err := fmt.Fprintf(w, "%s:%v:%d", name, h["Title"], h["Identity"].(auth.Identity).UserID)
	return err
}

func TestErrorUsesOrderEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	appctx.Wrap(func(c *appctx.Context) {
		c.Error(http.StatusBadRequest, "missing fields: phone")
	})(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"status":"error","message":"missing fields: phone"}`, rec.Body.String())
}

func TestRedirectIsSeeOther(t *testing.T) {
	rec := httptest.NewRecorder()
	appctx.Wrap(func(c *appctx.Context) { c.Redirect("/admin") })(rec, httptest.NewRequest(http.MethodPost, "/add_category", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))
}

func TestParamUint(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/product/{id}", appctx.Wrap(func(c *appctx.Context) {
		id, ok := c.ParamUint("id")
		c.String(http.StatusOK, "%d %v", id, ok)
	}))

	for path, want := range map[string]string{"/product/12": "12 true", "/product/abc": "0 false", "/product/0": "0 false"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, rec.Body.String(), path)
	}
}

func TestHTMLInjectsIdentity(t *testing.T) {
	appctx.UseRenderer(stubRenderer{})
	defer appctx.UseRenderer(nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{UserID: 4}))
	rec := httptest.NewRecorder()
	appctx.Wrap(func(c *appctx.Context) {
		c.HTML(http.StatusOK, "shop", appctx.H{"Title": "Shop"})
	})(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "shop:Shop:4", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
}

func TestHTMLRenderFailureIs500(t *testing.T) {
	appctx.UseRenderer(stubRenderer{fail: true})
	defer appctx.UseRenderer(nil)

	rec := httptest.NewRecorder()
	appctx.Wrap(func(c *appctx.Context) {
		c.HTML(http.StatusOK, "shop", nil)
	})(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestBindForm(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("name=Cards"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	appctx.Wrap(func(c *appctx.Context) {
		var in struct {
			Name string `form:"name" validate:"required"`
		}
		errs, err := c.Bind(&in)
		require.NoError(t, err)
		assert.Empty(t, errs)
		assert.Equal(t, "Cards", in.Name)
	})(rec, req)
}

func TestAttachment(t *testing.T) {
	rec := httptest.NewRecorder()
	appctx.Wrap(func(c *appctx.Context) {
		c.Attachment("invoice_1.pdf", "application/pdf", []byte("%PDF"))
	})(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, `attachment; filename="invoice_1.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF", rec.Body.String())
}
