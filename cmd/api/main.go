package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/climatecare/repairdesk/internal/api/http"
	"github.com/climatecare/repairdesk/internal/api/http/handlers"
	"github.com/climatecare/repairdesk/internal/auth"
	"github.com/climatecare/repairdesk/internal/config"
	"github.com/climatecare/repairdesk/internal/events"
	"github.com/climatecare/repairdesk/internal/observability"
	"github.com/climatecare/repairdesk/internal/persistence"
	"github.com/climatecare/repairdesk/internal/repository"
	"github.com/climatecare/repairdesk/internal/service"
	"github.com/climatecare/repairdesk/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(cfg.Postgres.DSN, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics("repairdesk")

	pool := pg.Pool
	userRepo := repository.NewUserRepository(pool)
	requestRepo := repository.NewRequestRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	lookupRepo := repository.NewLookupRepository(pool)
	statsRepo := repository.NewStatsRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{UserRepo: userRepo})
	requestService := service.NewRequestService(*cfg, service.RequestDependencies{
		RequestRepo: requestRepo,
		CommentRepo: commentRepo,
		LookupRepo:  lookupRepo,
		UserRepo:    userRepo,
		Dispatcher:  dispatcher,
	})
	userService := service.NewUserService(service.UserDependencies{UserRepo: userRepo})
	lookupService := service.NewLookupService(service.LookupDependencies{LookupRepo: lookupRepo, UserRepo: userRepo})
	statsService := service.NewStatsService(*cfg, service.StatsDependencies{
		StatsRepo: statsRepo,
		Cache:     redis.Client,
		Metrics:   metrics,
		Logger:    logger,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)

	worker.StartNotificationWorker(notificationService)
	worker.StartStatsInvalidator(statsService, dispatcher)

	authMiddleware := auth.NewMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Requests:       handlers.NewRequestsHandler(requestService),
		Users:          handlers.NewUsersHandler(userService),
		Stats:          handlers.NewStatsHandler(statsService),
		Lookups:        handlers.NewLookupsHandler(lookupService),
		AuthMiddleware: authMiddleware,
	})

	if cfg.Metrics.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			logger.Info("metrics listener started", zap.String("addr", cfg.Metrics.Addr))
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
				logger.Error("metrics listener stopped", zap.Error(err))
			}
		}()
	}

	go func() {
		logger.Info("http listener started", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
