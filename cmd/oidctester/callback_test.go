package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallbackHandlerQuery(t *testing.T) {
	t.Parallel()
	h := newCallbackHandler(false)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?code=abc&state=xyz&iss=https%3A%2F%2Fidp", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	res := <-h.results
	assert.Equal(t, "abc", res.Code)
	assert.Equal(t, "xyz", res.State)
	assert.Equal(t, "https://idp", res.Issuer)

	// later callbacks are ignored
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/callback?code=other", nil))
	assert.Empty(t, h.results)
}

func TestCallbackHandlerFragment(t *testing.T) {
	t.Parallel()
	h := newCallbackHandler(true)

	page := httptest.NewRecorder()
	h.ServeHTTP(page, httptest.NewRequest(http.MethodGet, "/callback", nil))
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "window.location.hash")
	assert.Empty(t, h.results)

	req := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader("id_token=eyJ.x.y&state=s1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	res := <-h.results
	assert.Equal(t, "eyJ.x.y", res.IDToken)
	assert.Equal(t, "s1", res.State)
}

func TestCallbackHandlerFragmentModeError(t *testing.T) {
	t.Parallel()
	h := newCallbackHandler(true)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/callback?error=access_denied&state=s1", nil))

	res := <-h.results
	assert.Equal(t, "access_denied", res.Error)
}

func TestCallbackHandlerRejectsPostInQueryMode(t *testing.T) {
	t.Parallel()
	h := newCallbackHandler(false)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/callback", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
