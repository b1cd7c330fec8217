package agents

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agentdeck/agentdeck/internal/platform/httpx"
)

// Handler manages agent endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers agent routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Show)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/toggle", h.Toggle)
	r.Post("/{id}/run", h.Run)
}

// List handles GET /agents.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := httpx.PageParams(r, 25, 100)
	filters := ListFilters{
		Search:  httpx.QueryString(r, "search"),
		Enabled: httpx.QueryBool(r, "enabled"),
		Limit:   limit,
		Offset:  offset,
	}

	agents, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list agents failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if agents == nil {
		agents = []Agent{}
	}
	httpx.List(w, agents, total)
}

// Show handles GET /agents/{id}.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	agent, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, agent)
}

// Create handles POST /agents.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var input CreateAgentInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	agent, err := h.service.Create(r.Context(), input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, agent)
}

// Update handles PATCH /agents/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var input UpdateAgentInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	agent, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, agent)
}

// Delete handles DELETE /agents/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

// Toggle handles POST /agents/{id}/toggle.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	agent, err := h.service.Toggle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, agent)
}

// Run handles POST /agents/{id}/run.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	taskID, err := h.service.Run(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"task_id": taskID})
}
