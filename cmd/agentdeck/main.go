package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/agentdeck/agentdeck/internal/agents"
	"github.com/agentdeck/agentdeck/internal/app"
	"github.com/agentdeck/agentdeck/internal/auth"
	"github.com/agentdeck/agentdeck/internal/chat"
	"github.com/agentdeck/agentdeck/internal/commands"
	"github.com/agentdeck/agentdeck/internal/console"
	"github.com/agentdeck/agentdeck/internal/hooks"
	"github.com/agentdeck/agentdeck/internal/observability"
	"github.com/agentdeck/agentdeck/internal/platform/cache"
	"github.com/agentdeck/agentdeck/internal/platform/db"
	"github.com/agentdeck/agentdeck/internal/plugins"
	"github.com/agentdeck/agentdeck/internal/review"
	"github.com/agentdeck/agentdeck/internal/rules"
	"github.com/agentdeck/agentdeck/internal/security"
	"github.com/agentdeck/agentdeck/internal/teams"
	"github.com/agentdeck/agentdeck/internal/usage"
	"github.com/agentdeck/agentdeck/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	queue := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := queue.Close(); err != nil {
			logger.Warn("queue close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	authService := auth.NewService(redisClient, cfg.ConsolePasswordHash, cfg.TokenTTL)
	authHandler := auth.NewHandler(logger, authService)

	agentsService := agents.NewService(agents.NewRepository(pool), queue)
	agentsHandler := agents.NewHandler(logger, agentsService)

	commandsService := commands.NewService(commands.NewRepository(pool), queue)
	commandsHandler := commands.NewHandler(logger, commandsService)

	rulesService := rules.NewService(rules.NewRepository(pool))
	rulesHandler := rules.NewHandler(logger, rulesService)

	hooksService := hooks.NewService(hooks.NewRepository(pool))
	hooksHandler := hooks.NewHandler(logger, hooksService)

	marketplaceClient, err := console.New(cfg.MarketplaceURL)
	if err != nil {
		logger.Error("init marketplace client", slog.Any("error", err))
		os.Exit(1)
	}
	marketplace := plugins.NewMarketplace(marketplaceClient, redisClient)
	pluginsService := plugins.NewService(plugins.NewRepository(pool), marketplace)
	pluginsHandler := plugins.NewHandler(logger, pluginsService)

	teamsService := teams.NewService(teams.NewRepository(pool))
	teamsHandler := teams.NewHandler(logger, teamsService)

	securityService := security.NewService(security.NewRepository(pool), queue)
	securityHandler := security.NewHandler(logger, securityService)

	reviewService := review.NewService(review.NewRepository(pool), queue)
	reviewHandler := review.NewHandler(logger, reviewService)

	usageCache := usage.NewCache(redisClient, cfg.UsageCacheTTL)
	usageService := usage.NewService(usage.NewRepository(pool), usageCache, 0)
	usageHandler := usage.NewHandler(logger, usageService)

	chatService := chat.NewService(chat.NewRepository(pool), nil)
	chatHandler := chat.NewHandler(logger, chatService, metrics)

	router := app.NewRouter(app.RouterParams{
		Logger:   logger,
		Config:   cfg,
		Metrics:  metrics,
		Auth:     authService,
		AuthH:    authHandler,
		Agents:   agentsHandler,
		Commands: commandsHandler,
		Rules:    rulesHandler,
		Hooks:    hooksHandler,
		Plugins:  pluginsHandler,
		Teams:    teamsHandler,
		Security: securityHandler,
		Review:   reviewHandler,
		Usage:    usageHandler,
		Chat:     chatHandler,
	})

	// WriteTimeout stays short for the whole API; the chat event stream
	// clears its own write deadline per response.
	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
