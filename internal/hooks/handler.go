package hooks

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agentdeck/agentdeck/internal/platform/httpx"
)

// Handler manages hook endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers hook routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Show)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/toggle", h.Toggle)
}

// List handles GET /hooks.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := httpx.PageParams(r, 25, 100)
	filters := ListFilters{
		Search:  httpx.QueryString(r, "search"),
		Event:   HookEvent(httpx.QueryString(r, "event")),
		Enabled: httpx.QueryBool(r, "enabled"),
		Limit:   limit,
		Offset:  offset,
	}

	hooks, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list hooks failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if hooks == nil {
		hooks = []Hook{}
	}
	httpx.List(w, hooks, total)
}

// Show handles GET /hooks/{id}.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	hook, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, hook)
}

// Create handles POST /hooks.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var input CreateHookInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	hook, err := h.service.Create(r.Context(), input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, hook)
}

// Update handles PATCH /hooks/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var input UpdateHookInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	hook, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, hook)
}

// Delete handles DELETE /hooks/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

// Toggle handles POST /hooks/{id}/toggle.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	hook, err := h.service.Toggle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, hook)
}
