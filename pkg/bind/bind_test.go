package bind

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type productInput struct {
	Name       string `form:"name" json:"name" validate:"required"`
	Price      int64  `form:"price" json:"price" validate:"min=1"`
	CategoryID uint   `form:"category_id" json:"category_id"`
	Featured   bool   `form:"featured" json:"featured"`
}

func TestFormBinding(t *testing.T) {
	form := url.Values{"name": {" Rose Card "}, "price": {"250"}, "category_id": {"3"}, "featured": {"on"}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var in productInput
	errs, err := Request(req, &in)
	require.NoError(t, err)
	assert.Nil(t, errs)
	assert.Equal(t, productInput{Name: "Rose Card", Price: 250, CategoryID: 3, Featured: true}, in)
}

func TestFormValidationErrors(t *testing.T) {
	form := url.Values{"price": {"abc"}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var in productInput
	errs, err := Request(req, &in)
	require.NoError(t, err)
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "price")
}

func TestJSONBinding(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Mug","price":300}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	var in productInput
	errs, err := Request(req, &in)
	require.NoError(t, err)
	assert.Nil(t, errs)
	assert.EqualValues(t, 300, in.Price)

	bad := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	bad.Header.Set("Content-Type", "application/json")
	_, err = Request(bad, &in)
	assert.Error(t, err)
}
