package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryString(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/agents?search=alpha", nil)

	assert.Equal(t, "alpha", QueryString(r, "search"))
	assert.Equal(t, "", QueryString(r, "missing"))
}

func TestProblemContentType(t *testing.T) {
	w := httptest.NewRecorder()

	Problem(w, http.StatusBadRequest, "Validation Failed", "name is required")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var doc ProblemDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "Validation Failed", doc.Title)
	assert.Equal(t, http.StatusBadRequest, doc.Status)
	assert.Equal(t, "name is required", doc.Detail)
}

func TestJSONContentType(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusOK, map[string]string{"ok": "yes"})

	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestRespondErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrDuplicate, http.StatusConflict},
		{ErrValidation, http.StatusBadRequest},
		{ErrForbidden, http.StatusForbidden},
		{ErrUnauthorized, http.StatusUnauthorized},
		{fmt.Errorf("wrapped: %w", ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("pool exhausted"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		RespondError(w, tc.err)
		assert.Equal(t, tc.status, w.Code, "error %v", tc.err)
		assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
	}
}
