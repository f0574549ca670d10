package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-service/internal/api/http"
	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/app"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/worker"
)

const (
	notificationWorkers = 2
	notificationBuffer  = 256
	shutdownTimeout     = 10 * time.Second
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

	location, err := cfg.Helpdesk.Location()
	if err != nil {
		logger.Fatal("invalid timezone", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend, err := app.OpenBackend(ctx, cfg, logger, nil)
	if err != nil {
		logger.Fatal("failed to open storage", zap.Error(err))
	}
	defer backend.Close()

	directory := repository.NewDirectory(backend.Seed.Users, backend.Seed.Agents)
	knowledgeRepo := repository.NewKnowledgeRepository(backend.Seed.Articles)

	dispatcher := worker.NewNotificationWorker(events.NewInMemoryDispatcher(), notificationWorkers, notificationBuffer, logger)
	metrics := observability.NewMetrics()
	metrics.RegisterHandlers(dispatcher)
	notifier := service.NewNotificationService(dispatcher, backend.Settings, logger, cfg.Notification)
	notifier.RegisterHandlers()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL())
	assigner := service.NewAssignmentService(service.AssignmentDependencies{
		TicketRepo: backend.Tickets,
		Directory:  directory,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:    backend.Tickets,
		Directory:     directory,
		KnowledgeRepo: knowledgeRepo,
		Assigner:      assigner,
		Dispatcher:    dispatcher,
		Logger:        logger,
		Config:        cfg.Helpdesk,
		Seed:          backend.Seed.Tickets,
	})
	approvalService := service.NewApprovalService(service.ApprovalDependencies{
		TicketRepo: backend.Tickets,
		Dispatcher: dispatcher,
		Logger:     logger,
		Config:     cfg.Helpdesk,
	})
	dashboardService := service.NewDashboardService(service.DashboardDependencies{
		TicketRepo: backend.Tickets,
		Logger:     logger,
		Location:   location,
	})
	knowledgeService := service.NewKnowledgeService(knowledgeRepo)

	server := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(server, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(server, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, backend.Name, backend.Pinger),
		Session:        handlers.NewSessionHandler(service.NewSessionService(directory, tokens, logger), directory),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Approvals:      handlers.NewApprovalsHandler(approvalService),
		Dashboard:      handlers.NewDashboardHandler(dashboardService),
		Knowledge:      handlers.NewKnowledgeHandler(knowledgeService, service.NewSearchService(ticketService, knowledgeService)),
		Settings:       handlers.NewSettingsHandler(service.NewSettingsService(backend.Settings, logger), ticketService),
		Metrics:        metrics,
		AuthMiddleware: auth.NewAuthMiddleware(tokens, directory),
	})

	go func() {
		if err := server.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		logger.Warn("notification worker shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
