package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AhilyaKokare/visitor-pass-service/internal/di"
	"github.com/AhilyaKokare/visitor-pass-service/internal/handler"
	"github.com/AhilyaKokare/visitor-pass-service/internal/queue"
	"github.com/AhilyaKokare/visitor-pass-service/pkg/config"
	"github.com/AhilyaKokare/visitor-pass-service/pkg/database"
	"github.com/AhilyaKokare/visitor-pass-service/pkg/logger"
	"github.com/AhilyaKokare/visitor-pass-service/pkg/middleware"
	"github.com/AhilyaKokare/visitor-pass-service/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logLevel := "info"
	if cfg.App.Debug {
		logLevel = "debug"
	}
	if err := logger.Init(&logger.Config{
		Level:       logLevel,
		ServiceName: cfg.App.Name,
		Development: cfg.App.Environment == "development",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Get().Sync()

	ctx := context.Background()

	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
	}); err != nil {
		logger.Fatal("failed to init telemetry", zap.Error(err))
	}
	defer telemetry.Shutdown(ctx)

	db, err := database.NewPostgres(ctx, &database.PostgresConfig{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
		MaxConns: int32(cfg.Database.MaxOpenConns),
		MinConns: int32(cfg.Database.MinIdleConns),
	})
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		// pass code lookups fall back to the database without redis
		logger.Warn("redis unavailable, continuing without cache", zap.Error(err))
	}
	defer redisClient.Close()

	publisher, err := queue.NewKafkaPublisher(queue.KafkaPublisherConfig{
		Brokers:        cfg.Kafka.Brokers,
		ClientID:       cfg.Kafka.ClientID,
		PublishTimeout: cfg.Kafka.PublishTimeout,
	})
	if err != nil {
		logger.Fatal("failed to create kafka publisher", zap.Error(err))
	}
	defer publisher.Close()

	metrics, err := telemetry.NewPassMetrics()
	if err != nil {
		logger.Fatal("failed to create metrics", zap.Error(err))
	}

	container := di.NewContainer(&di.ContainerConfig{
		Config:    cfg,
		DB:        db,
		Redis:     redisClient,
		Publisher: publisher,
		Metrics:   metrics,
	})

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS())
	engine.Use(middleware.RateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: 50,
		BurstSize:         20,
		UseRedis:          true,
		RedisClient:       redisClient,
		KeyPrefix:         "ratelimit:",
		CleanupInterval:   time.Minute,
		EntryTTL:          time.Minute,
	}))

	handler.SetupRouter(engine, &handler.RouterConfig{
		Pass:           container.PassHandler,
		Approval:       container.ApprovalHandler,
		Security:       container.SecurityHandler,
		Internal:       container.InternalHandler,
		Health:         container.HealthHandler,
		JWTSecret:      cfg.JWT.Secret,
		InternalAPIKey: cfg.InternalAPI.Key,
	})

	if cfg.Worker.Enabled {
		container.ExpiryWorker.Start(ctx)
		defer container.ExpiryWorker.Stop()
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
