package security

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agentdeck/agentdeck/internal/platform/httpx"
)

// Handler manages security scan endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers scan routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/scans", h.List)
	r.Post("/scans", h.Run)
	r.Get("/scans/summary", h.Summary)
	r.Get("/scans/{id}", h.Show)
}

// List handles GET /security/scans.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := httpx.PageParams(r, 25, 100)
	filters := ListFilters{
		Search: httpx.QueryString(r, "search"),
		Status: ScanStatus(httpx.QueryString(r, "status")),
		Limit:  limit,
		Offset: offset,
	}

	scans, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list scans failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if scans == nil {
		scans = []Scan{}
	}
	httpx.List(w, scans, total)
}

// Show handles GET /security/scans/{id}.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	scan, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, scan)
}

// Run handles POST /security/scans.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	var input CreateScanInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	scan, taskID, err := h.service.Run(r.Context(), input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]any{"scan": scan, "task_id": taskID})
}

// Summary handles GET /security/scans/summary.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.logger.Error("scan summary failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}
