package agents

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (chi.Router, *fakeQueue) {
	t.Helper()
	queue := &fakeQueue{}
	handler := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), NewService(newFakeRepo(), queue))
	r := chi.NewRouter()
	r.Route("/agents", handler.MountRoutes)
	return r, queue
}

func TestHandlerCreateAndList(t *testing.T) {
	router, _ := newTestRouter(t)

	body, _ := json.Marshal(map[string]any{
		"name":          "reviewer",
		"model":         "sonnet",
		"system_prompt": "Review pull requests.",
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/agents", bytes.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created Agent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/agents?limit=25", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Items      []Agent `json:"items"`
		TotalCount int     `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.TotalCount)
	require.Len(t, envelope.Items, 1)
	assert.Equal(t, "reviewer", envelope.Items[0].Name)
}

func TestHandlerValidationProblem(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/agents", bytes.NewReader([]byte(`{"name":"x"}`))))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestHandlerNotFoundProblem(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/agents/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerRunReturnsTaskID(t *testing.T) {
	router, queue := newTestRouter(t)

	body, _ := json.Marshal(map[string]any{"name": "reviewer", "model": "sonnet", "system_prompt": "p"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/agents", bytes.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created Agent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/agents/"+created.ID+"/run", nil))

	require.Equal(t, http.StatusAccepted, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "task-1", resp["task_id"])
	assert.Len(t, queue.enqueued, 1)
}
