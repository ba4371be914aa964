package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/NinjaGame428/church-management-sub001/internal/api/http"
	"github.com/NinjaGame428/church-management-sub001/internal/api/http/handlers"
	"github.com/NinjaGame428/church-management-sub001/internal/auth"
	"github.com/NinjaGame428/church-management-sub001/internal/config"
	"github.com/NinjaGame428/church-management-sub001/internal/events"
	"github.com/NinjaGame428/church-management-sub001/internal/notifier"
	"github.com/NinjaGame428/church-management-sub001/internal/observability"
	"github.com/NinjaGame428/church-management-sub001/internal/persistence"
	"github.com/NinjaGame428/church-management-sub001/internal/repository"
	"github.com/NinjaGame428/church-management-sub001/internal/service"
	"github.com/NinjaGame428/church-management-sub001/internal/worker"
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	serviceRepo := repository.NewServiceRepository(pool)
	assignmentRepo := repository.NewAssignmentRepository(pool)
	swapRepo := repository.NewSwapRepository(pool)
	availabilityRepo := repository.NewAvailabilityRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	feedCache := repository.NewNotificationFeedCache(redis.Client)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	authService := service.NewAuthService(cfg.Auth, userRepo)
	scheduleService := service.NewScheduleService(service.ScheduleDependencies{
		ServiceRepo:    serviceRepo,
		AssignmentRepo: assignmentRepo,
		Dispatcher:     dispatcher,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		AssignmentRepo: assignmentRepo,
		ServiceRepo:    serviceRepo,
		UserRepo:       userRepo,
		Dispatcher:     dispatcher,
	})
	swapService := service.NewSwapService(service.SwapDependencies{
		SwapRepo:       swapRepo,
		AssignmentRepo: assignmentRepo,
		ServiceRepo:    serviceRepo,
		UserRepo:       userRepo,
		Dispatcher:     dispatcher,
	})
	availabilityService := service.NewAvailabilityService(service.AvailabilityDependencies{
		AvailabilityRepo: availabilityRepo,
		ServiceRepo:      serviceRepo,
	})
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		NotificationRepo: notificationRepo,
		FeedCache:        feedCache,
		UserRepo:         userRepo,
		Dispatcher:       dispatcher,
		Notifier:         notifier.NewWebhookNotifier(cfg.Notification, logger),
		Logger:           logger,
		Config:           cfg.Notification,
	})
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Users:          handlers.NewUsersHandler(authService),
		Services:       handlers.NewServicesHandler(scheduleService, assignmentService),
		Assignments:    handlers.NewAssignmentsHandler(assignmentService),
		Swaps:          handlers.NewSwapsHandler(swapService),
		Availability:   handlers.NewAvailabilityHandler(availabilityService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
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
