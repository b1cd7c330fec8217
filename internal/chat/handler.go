package chat

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/agentdeck/agentdeck/internal/observability"
	"github.com/agentdeck/agentdeck/internal/platform/httpx"
)

// Handler manages chat endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	metrics *observability.Metrics
}

// NewHandler builds a Handler instance. metrics may be nil.
func NewHandler(logger *slog.Logger, service *Service, metrics *observability.Metrics) *Handler {
	return &Handler{logger: logger, service: service, metrics: metrics}
}

// MountRoutes registers chat routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/sessions", h.ListSessions)
	r.Post("/sessions", h.CreateSession)
	r.Get("/sessions/{id}", h.ShowSession)
	r.Delete("/sessions/{id}", h.DeleteSession)
	r.Get("/sessions/{id}/messages", h.Messages)
	r.Post("/sessions/{id}/messages", h.Send)
}

// ListSessions handles GET /chat/sessions.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	limit, offset := httpx.PageParams(r, 25, 100)
	filters := ListFilters{
		Search: httpx.QueryString(r, "search"),
		Limit:  limit,
		Offset: offset,
	}

	sessions, total, err := h.service.ListSessions(r.Context(), filters)
	if err != nil {
		h.logger.Error("list sessions failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if sessions == nil {
		sessions = []Session{}
	}
	httpx.List(w, sessions, total)
}

// ShowSession handles GET /chat/sessions/{id}.
func (h *Handler) ShowSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, session)
}

// CreateSession handles POST /chat/sessions.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var input CreateSessionInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	session, err := h.service.CreateSession(r.Context(), input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, session)
}

// DeleteSession handles DELETE /chat/sessions/{id}.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

// Messages handles GET /chat/sessions/{id}/messages.
func (h *Handler) Messages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.service.Messages(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if messages == nil {
		messages = []Message{}
	}
	httpx.List(w, messages, len(messages))
}

// Send handles POST /chat/sessions/{id}/messages as a server-sent event
// stream: delta events while generating, then done or error.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	var input SendMessageInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// The stream lives for as long as generation runs, past the server's
	// write timeout; clear the deadline for this response only.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		h.logger.Warn("clear write deadline", slog.Any("error", err))
	}

	if h.metrics != nil {
		h.metrics.StreamOpened()
		defer h.metrics.StreamClosed()
	}

	emit := func(delta string) error {
		return writeEvent(w, flusher, "delta", map[string]string{"text": delta})
	}

	message, err := h.service.Send(r.Context(), chi.URLParam(r, "id"), input, emit)
	if err != nil {
		h.logger.Error("chat send failed", slog.Any("error", err))
		_ = writeEvent(w, flusher, "error", map[string]string{"message": "generation failed"})
		return
	}

	_ = writeEvent(w, flusher, "done", map[string]string{"message_id": message.ID})
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
