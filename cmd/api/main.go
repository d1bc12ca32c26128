package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/sinless777/helix-support/internal/api/http"
	"github.com/sinless777/helix-support/internal/api/http/handlers"
	"github.com/sinless777/helix-support/internal/auth"
	"github.com/sinless777/helix-support/internal/authz"
	"github.com/sinless777/helix-support/internal/config"
	"github.com/sinless777/helix-support/internal/escalation"
	"github.com/sinless777/helix-support/internal/events"
	"github.com/sinless777/helix-support/internal/observability"
	"github.com/sinless777/helix-support/internal/persistence"
	"github.com/sinless777/helix-support/internal/repository"
	"github.com/sinless777/helix-support/internal/service"
	"github.com/sinless777/helix-support/internal/worker"
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	rds := persistence.NewRedis(cfg.Redis, logger)
	defer rds.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)

	roleRepo := repository.NewRoleRepository(pg.PoolHandle())
	ticketRepo := repository.NewTicketRepository(pg.PoolHandle())
	profileRepo := repository.NewProfileRepository(pg.PoolHandle())
	notificationRepo := repository.NewNotificationRepository(pg.PoolHandle())

	roleService := service.NewRoleService(service.RoleDependencies{
		RoleRepo:         roleRepo,
		Cache:            rds,
		Dispatcher:       dispatcher,
		Logger:           logger,
		BootstrapKeyHash: cfg.Auth.BootstrapKeyHash,
	})
	authorizer := authz.NewAuthorizer(roleService)

	ticketCommands := service.NewTicketCommandService(service.TicketCommandDependencies{
		TicketRepo:  ticketRepo,
		ProfileRepo: profileRepo,
		Authorizer:  authorizer,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	ticketQueries := service.NewTicketQueryService(ticketRepo, authorizer)
	notificationService := service.NewNotificationService(notificationRepo, dispatcher, logger)

	notifier := escalation.NewGitHubNotifier(cfg.Escalation, logger)
	escalationWorker := escalation.NewWorker(notifier, cfg.Escalation, metrics, logger)
	worker.StartBackgroundWorkers(ctx, dispatcher, notificationService, escalationWorker)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewMiddleware(tokens)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})

	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, rds),
		Tickets:        handlers.NewTicketsHandler(ticketCommands, ticketQueries),
		Roles:          handlers.NewRolesHandler(roleService, authorizer),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		Admin:          handlers.NewAdminHandler(roleService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		logger.Info("starting http server", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
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
	cancel()
	escalationWorker.Wait()
}
