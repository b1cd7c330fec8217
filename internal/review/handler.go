package review

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agentdeck/agentdeck/internal/platform/httpx"
)

// Handler manages review endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers review routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Register)
	r.Get("/stats", h.Stats)
	r.Get("/{id}", h.Show)
	r.Post("/{id}/recheck", h.Recheck)
	r.Post("/{id}/verdict", h.RecordVerdict)
}

// List handles GET /reviews.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := httpx.PageParams(r, 25, 100)
	filters := ListFilters{
		Search:  httpx.QueryString(r, "search"),
		Verdict: Verdict(httpx.QueryString(r, "verdict")),
		Limit:   limit,
		Offset:  offset,
	}

	reviews, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list reviews failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if reviews == nil {
		reviews = []PRReview{}
	}
	httpx.List(w, reviews, total)
}

// Show handles GET /reviews/{id}.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	review, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, review)
}

// Register handles POST /reviews.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var input CreateReviewInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	review, err := h.service.Register(r.Context(), input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, review)
}

// Recheck handles POST /reviews/{id}/recheck.
func (h *Handler) Recheck(w http.ResponseWriter, r *http.Request) {
	review, taskID, err := h.service.Recheck(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]any{"review": review, "task_id": taskID})
}

type verdictRequest struct {
	Verdict    Verdict `json:"verdict"`
	Confidence float64 `json:"confidence"`
	Summary    string  `json:"summary"`
}

// RecordVerdict handles POST /reviews/{id}/verdict.
func (h *Handler) RecordVerdict(w http.ResponseWriter, r *http.Request) {
	var req verdictRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	review, err := h.service.RecordVerdict(r.Context(), chi.URLParam(r, "id"), req.Verdict, req.Confidence, req.Summary)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, review)
}

// Stats handles GET /reviews/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.logger.Error("review stats failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}
