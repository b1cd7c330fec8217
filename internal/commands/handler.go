package commands

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agentdeck/agentdeck/internal/platform/httpx"
)

// Handler manages command endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers command routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Show)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/toggle", h.Toggle)
	r.Post("/{id}/run", h.Run)
}

// List handles GET /commands.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := httpx.PageParams(r, 25, 100)
	filters := ListFilters{
		Search:  httpx.QueryString(r, "search"),
		Enabled: httpx.QueryBool(r, "enabled"),
		Limit:   limit,
		Offset:  offset,
	}

	commands, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list commands failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if commands == nil {
		commands = []Command{}
	}
	httpx.List(w, commands, total)
}

// Show handles GET /commands/{id}.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	cmd, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cmd)
}

// Create handles POST /commands.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var input CreateCommandInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	cmd, err := h.service.Create(r.Context(), input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, cmd)
}

// Update handles PATCH /commands/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var input UpdateCommandInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	cmd, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cmd)
}

// Delete handles DELETE /commands/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

// Toggle handles POST /commands/{id}/toggle.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	cmd, err := h.service.Toggle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cmd)
}

// Run handles POST /commands/{id}/run. The body is optional when the command
// declares no arguments.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	var input RunCommandInput
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &input); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
			return
		}
	}
	taskID, err := h.service.Run(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"task_id": taskID})
}
