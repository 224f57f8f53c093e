package http

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/metashield/jirasync/internal/infrastructure/config"
	"github.com/metashield/jirasync/internal/infrastructure/scheduler"
	"github.com/metashield/jirasync/internal/interfaces/http/middleware"
	"github.com/metashield/jirasync/internal/shared/logger"
)

// Container holds the infrastructure components, repositories, use cases,
// handlers and the scheduler, wired together. The HTTP server, the one-shot
// sync commands and the worker all build one.
type Container struct {
	// Core infrastructure
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	log    logger.Interface
	redis  *redis.Client

	// Repositories
	repos *repositories

	// Use cases
	ucs *SyncUseCases

	// Handlers
	hdlrs *allHandlers

	// Middlewares
	serviceKeyMiddleware *middleware.ServiceKeyMiddleware
	rateLimiter          *middleware.RateLimiter

	// Background services
	schedulerManager *scheduler.SchedulerManager
}

// NewContainer creates a new Container with all dependencies wired together.
// It fails when the remote tracker settings are incomplete.
func NewContainer(db *gorm.DB, cfg *config.Config, log logger.Interface) (*Container, error) {
	if err := cfg.ValidateJira(); err != nil {
		return nil, err
	}

	c := &Container{
		engine: gin.New(),
		db:     db,
		cfg:    cfg,
		log:    log,
	}

	// Section 1: Infrastructure - Redis, Repositories, Middlewares
	c.initInfrastructure()

	// Section 2: Sync - Remote client, Services, UseCases
	if err := c.initSync(); err != nil {
		return nil, err
	}

	// Section 3: Handlers and Scheduler
	if err := c.initHandlers(); err != nil {
		return nil, err
	}
	if err := c.initScheduler(); err != nil {
		return nil, fmt.Errorf("failed to initialize scheduler: %w", err)
	}

	return c, nil
}
