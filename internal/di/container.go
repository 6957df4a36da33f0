package di

import (
	"github.com/redis/go-redis/v9"

	"github.com/AhilyaKokare/visitor-pass-service/internal/handler"
	"github.com/AhilyaKokare/visitor-pass-service/internal/queue"
	"github.com/AhilyaKokare/visitor-pass-service/internal/repository"
	"github.com/AhilyaKokare/visitor-pass-service/internal/service"
	"github.com/AhilyaKokare/visitor-pass-service/internal/worker"
	"github.com/AhilyaKokare/visitor-pass-service/pkg/config"
	"github.com/AhilyaKokare/visitor-pass-service/pkg/database"
	"github.com/AhilyaKokare/visitor-pass-service/pkg/telemetry"
)

// Container holds all dependencies for the visitor pass service
type Container struct {
	// Infrastructure
	DB        *database.PostgresDB
	Redis     *redis.Client
	Publisher queue.Publisher

	// Repositories
	PassRepo   repository.PassRepository
	UserRepo   repository.UserRepository
	TenantRepo repository.TenantRepository
	AuditRepo  repository.AuditRepository

	// Services
	PassService service.PassService

	// Workers
	ExpiryWorker *worker.ExpiryWorker

	// Handlers
	PassHandler     *handler.PassHandler
	ApprovalHandler *handler.ApprovalHandler
	SecurityHandler *handler.SecurityHandler
	InternalHandler *handler.InternalHandler
	HealthHandler   *handler.HealthHandler
}

// ContainerConfig contains the externally built infrastructure handed to the
// container. Redis, Publisher and Metrics may be nil.
type ContainerConfig struct {
	Config    *config.Config
	DB        *database.PostgresDB
	Redis     *redis.Client
	Publisher queue.Publisher
	Metrics   *telemetry.PassMetrics
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:        cfg.DB,
		Redis:     cfg.Redis,
		Publisher: cfg.Publisher,
	}

	// Repositories
	c.PassRepo = repository.NewPostgresPassRepository(c.DB.Pool())
	c.UserRepo = repository.NewPostgresUserRepository(c.DB.Pool())
	c.TenantRepo = repository.NewPostgresTenantRepository(c.DB.Pool())
	c.AuditRepo = repository.NewPostgresAuditRepository(c.DB.Pool())

	// Services
	c.PassService = service.NewPassService(
		c.PassRepo,
		c.UserRepo,
		c.TenantRepo,
		c.AuditRepo,
		c.Publisher,
		service.PassServiceOpts{
			Cache:    c.Redis,
			CacheTTL: cfg.Config.Redis.PassCodeCacheTTL,
			Metrics:  cfg.Metrics,
		},
	)

	// Workers
	c.ExpiryWorker = worker.NewExpiryWorker(c.PassRepo, c.PassService, &worker.ExpiryWorkerConfig{
		ScanInterval: cfg.Config.Worker.ScanInterval,
		ItemTimeout:  cfg.Config.Worker.ItemTimeout,
	})

	// Handlers
	c.PassHandler = handler.NewPassHandler(c.PassService)
	c.ApprovalHandler = handler.NewApprovalHandler(c.PassService)
	c.SecurityHandler = handler.NewSecurityHandler(c.PassService)
	c.InternalHandler = handler.NewInternalHandler(c.PassService)
	c.HealthHandler = handler.NewHealthHandler(c.DB, c.ExpiryWorker)

	return c
}
