package plugins

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agentdeck/agentdeck/internal/platform/httpx"
)

// Handler manages plugin endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers plugin routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Install)
	r.Get("/marketplace", h.Marketplace)
	r.Get("/{id}", h.Show)
	r.Delete("/{id}", h.Uninstall)
	r.Post("/{id}/toggle", h.Toggle)
}

// List handles GET /plugins.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := httpx.PageParams(r, 25, 100)
	filters := ListFilters{
		Search:  httpx.QueryString(r, "search"),
		Enabled: httpx.QueryBool(r, "enabled"),
		Limit:   limit,
		Offset:  offset,
	}

	plugins, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list plugins failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if plugins == nil {
		plugins = []Plugin{}
	}
	httpx.List(w, plugins, total)
}

// Show handles GET /plugins/{id}.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	plugin, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, plugin)
}

// Install handles POST /plugins.
func (h *Handler) Install(w http.ResponseWriter, r *http.Request) {
	var input InstallPluginInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	plugin, err := h.service.Install(r.Context(), input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, plugin)
}

// Uninstall handles DELETE /plugins/{id}.
func (h *Handler) Uninstall(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Uninstall(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

// Toggle handles POST /plugins/{id}/toggle.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	plugin, err := h.service.Toggle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, plugin)
}

// Marketplace handles GET /plugins/marketplace?search=...
func (h *Handler) Marketplace(w http.ResponseWriter, r *http.Request) {
	limit, _ := httpx.PageParams(r, 25, 100)
	entries, total, err := h.service.SearchMarketplace(r.Context(), httpx.QueryString(r, "search"), limit)
	if err != nil {
		h.logger.Error("marketplace search failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if entries == nil {
		entries = []MarketplaceEntry{}
	}
	httpx.List(w, entries, total)
}
