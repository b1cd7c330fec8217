package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agentdeck/agentdeck/internal/platform/httpx"
)

// Handler exposes the proxy-login endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the auth handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches auth routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/proxy-login", h.proxyLogin)
	r.Post("/logout", h.logout)
}

type proxyLoginRequest struct {
	Password string `json:"password"`
}

func (h *Handler) proxyLogin(w http.ResponseWriter, r *http.Request) {
	var req proxyLoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}

	token, err := h.service.ProxyLogin(r.Context(), req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid credentials")
			return
		}
		h.logger.Error("proxy login failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, token)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token != "" {
		if err := h.service.Revoke(r.Context(), token); err != nil {
			h.logger.Warn("token revoke failed", slog.Any("error", err))
		}
	}
	httpx.NoContent(w)
}
