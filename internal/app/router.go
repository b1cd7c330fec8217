package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agentdeck/agentdeck/internal/agents"
	"github.com/agentdeck/agentdeck/internal/auth"
	"github.com/agentdeck/agentdeck/internal/chat"
	"github.com/agentdeck/agentdeck/internal/commands"
	"github.com/agentdeck/agentdeck/internal/hooks"
	"github.com/agentdeck/agentdeck/internal/observability"
	"github.com/agentdeck/agentdeck/internal/plugins"
	"github.com/agentdeck/agentdeck/internal/review"
	"github.com/agentdeck/agentdeck/internal/rules"
	"github.com/agentdeck/agentdeck/internal/security"
	"github.com/agentdeck/agentdeck/internal/teams"
	"github.com/agentdeck/agentdeck/internal/usage"
)

// RouterParams aggregates everything the HTTP surface needs.
type RouterParams struct {
	Logger  *slog.Logger
	Config  *Config
	Metrics *observability.Metrics

	Auth     *auth.Service
	AuthH    *auth.Handler
	Agents   *agents.Handler
	Commands *commands.Handler
	Rules    *rules.Handler
	Hooks    *hooks.Handler
	Plugins  *plugins.Handler
	Teams    *teams.Handler
	Security *security.Handler
	Review   *review.Handler
	Usage    *usage.Handler
	Chat     *chat.Handler
}

// NewRouter wires the middleware stack and all resource routes.
func NewRouter(p RouterParams) chi.Router {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{Logger: p.Logger, Config: p.Config, Metrics: p.Metrics}) {
		r.Use(mw)
	}

	timeout := RequestTimeout(p.Config)

	r.Group(func(r chi.Router) {
		r.Use(timeout)

		r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		r.Method(http.MethodGet, "/metrics", p.Metrics.Handler())

		r.Route("/auth", p.AuthH.MountRoutes)
	})

	r.Group(func(r chi.Router) {
		r.Use(p.Auth.RequireToken)

		r.Group(func(r chi.Router) {
			r.Use(timeout)

			r.Route("/agents", p.Agents.MountRoutes)
			r.Route("/commands", p.Commands.MountRoutes)
			r.Route("/rules", p.Rules.MountRoutes)
			r.Route("/hooks", p.Hooks.MountRoutes)
			r.Route("/plugins", p.Plugins.MountRoutes)
			r.Route("/teams", p.Teams.MountRoutes)
			r.Route("/security", p.Security.MountRoutes)
			r.Route("/reviews", p.Review.MountRoutes)
			r.Route("/usage", p.Usage.MountRoutes)
		})

		// Chat message sends stream server-sent events for the length of a
		// generation, so they stay outside the request timeout.
		r.Route("/chat", p.Chat.MountRoutes)
	})

	return r
}
