package rules

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agentdeck/agentdeck/internal/platform/httpx"
)

// Handler manages rule endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers rule routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/match", h.Match)
	r.Get("/{id}", h.Show)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/toggle", h.Toggle)
}

// List handles GET /rules.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := httpx.PageParams(r, 25, 100)
	filters := ListFilters{
		Search:  httpx.QueryString(r, "search"),
		Enabled: httpx.QueryBool(r, "enabled"),
		Limit:   limit,
		Offset:  offset,
	}

	rules, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list rules failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if rules == nil {
		rules = []Rule{}
	}
	httpx.List(w, rules, total)
}

// Show handles GET /rules/{id}.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	rule, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rule)
}

// Create handles POST /rules.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var input CreateRuleInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	rule, err := h.service.Create(r.Context(), input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rule)
}

// Update handles PATCH /rules/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var input UpdateRuleInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	rule, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rule)
}

// Delete handles DELETE /rules/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

// Toggle handles POST /rules/{id}/toggle.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	rule, err := h.service.Toggle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rule)
}

// Match handles GET /rules/match?subject=... and reports which action applies.
func (h *Handler) Match(w http.ResponseWriter, r *http.Request) {
	subject := httpx.QueryString(r, "subject")
	if subject == "" {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "subject query parameter is required")
		return
	}
	action, err := h.service.Match(r.Context(), subject)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"subject": subject, "action": string(action)})
}
