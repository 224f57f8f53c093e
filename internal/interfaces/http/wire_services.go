package http

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/metashield/jirasync/internal/application/ticketsync/services"
	"github.com/metashield/jirasync/internal/application/ticketsync/usecases"
	"github.com/metashield/jirasync/internal/infrastructure/config"
	"github.com/metashield/jirasync/internal/infrastructure/jira"
	"github.com/metashield/jirasync/internal/infrastructure/scheduler"
	"github.com/metashield/jirasync/internal/interfaces/http/handlers"
	syncHandlers "github.com/metashield/jirasync/internal/interfaces/http/handlers/ticketsync"
	"github.com/metashield/jirasync/internal/interfaces/http/middleware"
	"github.com/metashield/jirasync/internal/shared/db"
	"github.com/metashield/jirasync/internal/shared/logger"
)

const redisPingTimeout = 3 * time.Second

// ============================================================
// Section 1: Infrastructure - Redis, Repositories, Middlewares
// ============================================================

// initInfrastructure initializes Redis, all repositories and the
// middlewares guarding the trigger endpoints.
func (c *Container) initInfrastructure() {
	cfg := c.cfg
	log := c.log

	c.redis = initRedis(cfg, log)
	c.repos = newRepositories(c.db, log)

	c.serviceKeyMiddleware = middleware.NewServiceKeyMiddleware(cfg.Auth.ServiceKey, log.Named("middleware.servicekey"))

	var limiterClient *redis.Client
	if cfg.RateLimit.Enabled {
		limiterClient = c.redis
	}
	c.rateLimiter = middleware.NewRateLimiter(limiterClient, cfg.RateLimit.Limit, cfg.RateLimit.Window, log.Named("middleware.ratelimit"))
}

// initRedis creates the Redis client when enabled. An unreachable server
// leaves rate limiting disabled instead of failing startup.
func initRedis(cfg *config.Config, log logger.Interface) *redis.Client {
	if !cfg.Redis.Enabled {
		log.Infow("redis disabled, trigger rate limiting is off")
		return nil
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warnw("failed to connect to Redis, trigger rate limiting is off",
			"address", cfg.Redis.GetAddr(),
			"error", err,
		)
		_ = redisClient.Close()
		return nil
	}
	log.Infow("Redis connection established successfully", "address", cfg.Redis.GetAddr())

	return redisClient
}

// ============================================================
// Section 2: Sync - Remote client, Services, UseCases
// ============================================================

// initSync builds the remote tracker client, the shared write primitives
// and every use case of the sync engine.
func (c *Container) initSync() error {
	cfg := c.cfg
	log := c.log

	catalog, err := jira.LoadFieldCatalog(cfg.Jira.FieldsFile)
	if err != nil {
		return err
	}

	client, err := jira.NewClient(cfg.Jira, catalog, log.Named("jira"))
	if err != nil {
		return fmt.Errorf("failed to initialize jira client: %w", err)
	}
	realtimeClient := client.WithRetryPolicy(jira.RealtimeRetryPolicy(cfg.Sync.Realtime))

	ledger := services.NewLedger(c.repos.syncRunRepo, log.Named("sync.ledger"))
	recorder := services.NewHistoryRecorder(c.repos.historyRepo, log.Named("sync.history"))
	writer := services.NewTicketWriter(c.repos.ticketRepo, recorder, log.Named("sync.writer")).
		WithTransactor(db.NewTransactionManager(c.db))

	c.ucs = &SyncUseCases{
		FullSync: usecases.NewFullSyncUseCase(
			client, writer, ledger, c.repos.settingRepo, cfg.Sync.Full, log.Named("sync.full"),
		),
		IncrementalSync: usecases.NewIncrementalSyncUseCase(
			client, writer, ledger, c.repos.settingRepo, cfg.Sync.Incremental, log.Named("sync.incremental"),
		),
		RealtimeSync: usecases.NewRealtimeSyncUseCase(
			realtimeClient, c.repos.ticketRepo, writer, ledger, c.repos.settingRepo,
			cfg.Jira.RealtimeProjects, cfg.Sync.Realtime, log.Named("sync.realtime"),
		),
		Setup: usecases.NewSetupUseCase(
			c.repos.ticketRepo, c.repos.settingRepo, ledger, log.Named("sync.setup"),
		),
		GetSyncStatus: usecases.NewGetSyncStatusUseCase(
			c.repos.ticketRepo, c.repos.syncRunRepo, c.repos.settingRepo, log.Named("sync.status"),
		).WithIntervalFallback(scheduler.ConfiguredIntervals(cfg.Sync.Scheduler)),
		RefreshTicket: usecases.NewRefreshTicketUseCase(
			client, c.repos.ticketRepo, writer, ledger, log.Named("sync.refresh"),
		),
		ListTickets: usecases.NewListTicketsUseCase(
			c.repos.ticketRepo, log.Named("tickets.list"),
		),
		GetTicketHistory: usecases.NewGetTicketHistoryUseCase(
			c.repos.ticketRepo, c.repos.historyRepo, log.Named("tickets.history"),
		),
	}

	log.Infow("sync engine initialized",
		"issue_type", cfg.Jira.IssueType,
		"realtime_projects", cfg.Jira.RealtimeProjects,
		"catalog_fields", len(catalog),
	)
	return nil
}

// ============================================================
// Section 3: Handlers and Scheduler
// ============================================================

func (c *Container) initHandlers() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}

	c.hdlrs = &allHandlers{
		healthHandler: handlers.NewHealthHandler(sqlDB, c.log),
		syncHandler: syncHandlers.NewSyncHandler(
			c.ucs.FullSync,
			c.ucs.IncrementalSync,
			c.ucs.RealtimeSync,
			c.ucs.Setup,
			c.ucs.GetSyncStatus,
			c.ucs.RefreshTicket,
			c.log.Named("handler.sync"),
		),
		ticketHandler: syncHandlers.NewTicketHandler(
			c.ucs.ListTickets,
			c.ucs.GetTicketHistory,
			c.log.Named("handler.tickets"),
		),
	}
	return nil
}

// initScheduler registers the sync jobs. The scheduler only starts on
// StartScheduler.
func (c *Container) initScheduler() error {
	manager, err := scheduler.NewSchedulerManager(c.log.Named("scheduler"))
	if err != nil {
		return err
	}

	if err := manager.RegisterSyncJobs(scheduler.SyncJobs{
		Full:        c.ucs.FullSync,
		Incremental: c.ucs.IncrementalSync,
		Realtime:    c.ucs.RealtimeSync,
		Settings:    c.repos.settingRepo,
	}, c.cfg.Sync.Scheduler); err != nil {
		return err
	}

	c.schedulerManager = manager
	return nil
}
