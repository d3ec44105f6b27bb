package testkit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// AssertRedirect checks for a 303 to location.
func AssertRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) bool {
	t.Helper()
	return assert.Equal(t, http.StatusSeeOther, rec.Code, "body: %s", rec.Body.String()) &&
		assert.Equal(t, location, rec.Header().Get("Location"))
}

// AssertJSON checks the status and compares the body ignoring key order
// and whitespace.
func AssertJSON(t *testing.T, rec *httptest.ResponseRecorder, code int, expected string) bool {
	t.Helper()
	return assert.Equal(t, code, rec.Code, "body: %s", rec.Body.String()) &&
		assert.JSONEq(t, expected, rec.Body.String())
}
