package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/agentdeck/agentdeck/internal/agents"
	"github.com/agentdeck/agentdeck/internal/app"
	"github.com/agentdeck/agentdeck/internal/commands"
	"github.com/agentdeck/agentdeck/internal/platform/cache"
	"github.com/agentdeck/agentdeck/internal/platform/db"
	"github.com/agentdeck/agentdeck/internal/review"
	"github.com/agentdeck/agentdeck/internal/security"
	"github.com/agentdeck/agentdeck/internal/usage"
	"github.com/agentdeck/agentdeck/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	usageCache := usage.NewCache(redisClient, cfg.UsageCacheTTL)
	usageService := usage.NewService(usage.NewRepository(pool), usageCache, 0)

	agentsService := agents.NewService(agents.NewRepository(pool), queue)
	commandsService := commands.NewService(commands.NewRepository(pool), queue)
	reviewService := review.NewService(review.NewRepository(pool), queue)

	agentRunJob := jobs.NewAgentRunJob(agentsService, usageService, logger)
	commandRunJob := jobs.NewCommandRunJob(commandsService, logger)
	securityScanJob := jobs.NewSecurityScanJob(security.NewRepository(pool), logger)
	usageRollupJob := jobs.NewUsageRollupJob(usageService, logger)
	reviewRecheckJob := jobs.NewReviewRecheckJob(reviewService, logger)

	// An empty day resolves to yesterday at execution time.
	rollupTask, err := jobs.NewUsageRollupTask(jobs.UsageRollupPayload{})
	if err != nil {
		logger.Error("build rollup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskAgentRun, Handler: agentRunJob.Handle},
			{Type: jobs.TaskCommandRun, Handler: commandRunJob.Handle},
			{Type: jobs.TaskSecurityScan, Handler: securityScanJob.Handle},
			{Type: jobs.TaskUsageRollup, Handler: usageRollupJob.Handle},
			{Type: jobs.TaskReviewRecheck, Handler: reviewRecheckJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 2 * * *", Task: rollupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
