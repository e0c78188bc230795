package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/support-desk/internal/api/http"
	"github.com/spec-kit/support-desk/internal/api/http/handlers"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/observability"
	"github.com/spec-kit/support-desk/internal/persistence"
	"github.com/spec-kit/support-desk/internal/provider"
	"github.com/spec-kit/support-desk/internal/realtime"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/service"
	"github.com/spec-kit/support-desk/internal/worker"
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
	customerRepo := repository.NewCustomerRepository(pool)
	contactRepo := repository.NewContactRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)
	tagRepo := repository.NewTagRepository(pool)
	slaRepo := repository.NewSLAPolicyRepository(pool)
	instanceRepo := repository.NewInstanceRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokens, userRepo)

	providerClient := provider.NewClient(cfg.Provider, logger)

	authService := service.NewAuthService(userRepo, tokens, cfg.Auth.BcryptCost)
	customerService := service.NewCustomerService(customerRepo, contactRepo)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:    ticketRepo,
		CustomerRepo:  customerRepo,
		ContactRepo:   contactRepo,
		UserRepo:      userRepo,
		TagRepo:       tagRepo,
		SLAPolicyRepo: slaRepo,
		Dispatcher:    dispatcher,
	})
	messageService := service.NewMessageService(service.MessageDependencies{
		MessageRepo: messageRepo,
		TicketRepo:  ticketRepo,
		ContactRepo: contactRepo,
		Sender:      providerClient,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	conversationService := service.NewConversationService(service.ConversationDependencies{
		CustomerRepo:  customerRepo,
		ContactRepo:   contactRepo,
		TicketRepo:    ticketRepo,
		MessageRepo:   messageRepo,
		SLAPolicyRepo: slaRepo,
		Dispatcher:    dispatcher,
		Logger:        logger,
	})
	instanceService := service.NewInstanceService(instanceRepo, providerClient, logger)
	dashboardService := service.NewDashboardService(ticketRepo, redis.Handle(), logger)
	slaService := service.NewSLAService(ticketRepo, slaRepo, dispatcher, logger)

	instanceService.RefreshClient(ctx)

	hub := realtime.NewHub(logger)
	notifier := realtime.NewNotifier(hub)
	notifier.RegisterHandlers(dispatcher)
	realtimeHandler := realtime.NewHandler(hub, tokens, logger)

	slaWorker := worker.NewSLAWorker(slaService, cfg.SLA.SweepSchedule, logger)
	if err := slaWorker.Start(); err != nil {
		logger.Fatal("failed to start sla worker", zap.Error(err))
	}
	defer slaWorker.Stop()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService, messageService),
		Customers:      handlers.NewCustomersHandler(customerService),
		Instances:      handlers.NewInstancesHandler(instanceService),
		Dashboard:      handlers.NewDashboardHandler(dashboardService),
		Webhooks:       handlers.NewWebhookHandler(conversationService, logger),
		Realtime:       realtimeHandler,
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
