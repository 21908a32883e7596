package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/candemiralp/leadflow/internal/config"
	"github.com/candemiralp/leadflow/internal/handler"
	"github.com/candemiralp/leadflow/internal/infra/postgresql"
	"github.com/candemiralp/leadflow/internal/infra/postgresql/migrations"
	infraredis "github.com/candemiralp/leadflow/internal/infra/redis"
	"github.com/candemiralp/leadflow/internal/notifier"
	"github.com/candemiralp/leadflow/internal/observability"
	"github.com/candemiralp/leadflow/internal/queue"
	"github.com/candemiralp/leadflow/internal/repository"
	"github.com/candemiralp/leadflow/internal/service"
	"github.com/candemiralp/leadflow/internal/transport"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to initialize logger", zap.Error(err))
	}
	defer logger.Sync() //nolint:errcheck

	db, err := postgresql.NewPostgres(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("postgres initialization failed", zap.Error(err))
	}

	if err := migrations.Migrate(db); err != nil {
		logger.Fatal("database migrations failed", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("postgres underlying db init failed", zap.Error(err))
	}
	defer sqlDB.Close()

	rdb, err := infraredis.NewRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	broker, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatal("rabbitmq initialization failed", zap.Error(err))
	}
	defer broker.Close()

	publisher := queue.NewRabbitMQPublisher(broker)
	defer publisher.Close()

	var outcomes notifier.Notifier = notifier.Noop{}
	if cfg.WebhookURL != "" {
		webhook, err := notifier.NewWebhookNotifier(cfg.WebhookURL)
		if err != nil {
			logger.Fatal("webhook notifier initialization failed", zap.Error(err))
		}
		outcomes = webhook
	}

	limiter, err := infraredis.NewRedisRateLimiter(rdb, cfg.RateLimitPerSec)
	if err != nil {
		logger.Fatal("rate limiter initialization failed", zap.Error(err))
	}

	distributionRepo := repository.NewGormDistributionRepo(db)
	taskRepo := repository.NewGormTaskRepo(db)
	agentRepo := repository.NewGormAgentRepo(db)

	metrics := observability.NewMetrics()

	distributionService, err := service.NewDistributionService(distributionRepo, taskRepo, agentRepo, publisher, outcomes, logger)
	if err != nil {
		logger.Fatal("distribution service initialization failed", zap.Error(err))
	}
	distributionService.SetMetrics(metrics)

	taskService, err := service.NewTaskService(taskRepo, logger)
	if err != nil {
		logger.Fatal("task service initialization failed", zap.Error(err))
	}

	agentService, err := service.NewAgentService(agentRepo, logger)
	if err != nil {
		logger.Fatal("agent service initialization failed", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		AppName:      "leadflow",
		ErrorHandler: transport.ErrorHandler(logger),
	})

	app.Use(requestid.New())
	app.Use(metrics.HTTPMiddleware())

	handler.RegisterHealthRoutes(app, sqlDB, rdb, broker)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	uploadLimit := transport.RateLimitMiddleware(limiter, logger)
	if err := handler.RegisterDistributionRoutes(app, distributionService, uploadLimit); err != nil {
		logger.Fatal("failed to register distribution routes", zap.Error(err))
	}
	if err := handler.RegisterAgentRoutes(app, agentService, taskService); err != nil {
		logger.Fatal("failed to register agent routes", zap.Error(err))
	}
	if err := handler.RegisterTaskRoutes(app, taskService); err != nil {
		logger.Fatal("failed to register task routes", zap.Error(err))
	}

	go func() {
		logger.Info("leadflow api started", zap.Int("port", cfg.APIPort))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.APIPort)); err != nil {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	if err := app.Shutdown(); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
