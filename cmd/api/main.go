package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	httptransport "github.com/safetydesk/incident-service/internal/api/http"
	"github.com/safetydesk/incident-service/internal/api/http/handlers"
	"github.com/safetydesk/incident-service/internal/ai"
	"github.com/safetydesk/incident-service/internal/auth"
	"github.com/safetydesk/incident-service/internal/config"
	"github.com/safetydesk/incident-service/internal/dedup"
	"github.com/safetydesk/incident-service/internal/events"
	"github.com/safetydesk/incident-service/internal/identity"
	"github.com/safetydesk/incident-service/internal/media"
	"github.com/safetydesk/incident-service/internal/observability"
	"github.com/safetydesk/incident-service/internal/persistence"
	"github.com/safetydesk/incident-service/internal/reply"
	"github.com/safetydesk/incident-service/internal/repository"
	"github.com/safetydesk/incident-service/internal/service"
	"github.com/safetydesk/incident-service/internal/sitecontext"
	"github.com/safetydesk/incident-service/internal/whatsapp"
	"github.com/safetydesk/incident-service/internal/worker"
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

	metrics := observability.NewMetrics()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	siteRepo := repository.NewSiteRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)
	reportRepo := repository.NewReportRepository(pool)

	waClient := whatsapp.NewClient(cfg.WhatsApp, logger)

	uploader, err := media.NewMinioUploader(cfg.ObjectStorage)
	if err != nil {
		logger.Fatal("failed to init object storage", zap.Error(err))
	}
	mediaService := media.NewService(waClient, uploader, logger)

	var openaiClient *openai.Client
	if cfg.AI.Enabled && cfg.AI.OpenAIAPIKey != "" {
		openaiClient = openai.NewClient(cfg.AI.OpenAIAPIKey)
	}
	analyzer := ai.NewAnalyzer([]ai.Provider{
		ai.NewVisionProvider(openaiClient, cfg.AI, logger),
		ai.NewTextProvider(openaiClient, cfg.AI, logger),
	}, metrics, logger)

	composer := reply.NewComposer()
	dispatcher := events.NewInMemoryDispatcher()

	guard := dedup.NewGuard(ticketRepo, redis.Client, cfg.Dedup, logger)
	resolver := sitecontext.NewResolver(siteRepo, cfg.Ingest.MinIssueLength, cfg.Ingest.ImagePlaceholder)
	hasher := identity.NewHasher(cfg.WhatsApp.ReporterHashSecret)

	ingestService := service.NewIngestService(service.IngestDependencies{
		TicketRepo: ticketRepo,
		Guard:      guard,
		Resolver:   resolver,
		Media:      mediaService,
		Hasher:     hasher,
		Composer:   composer,
		Sender:     waClient,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		Uploader:   mediaService,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	reportService := service.NewReportService(reportRepo, ticketRepo)
	authService := service.NewAuthService(cfg.Auth, adminRepo)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), adminRepo)

	analysisWorker := worker.NewAnalysisWorker(analyzer, ticketRepo, composer, waClient, logger)
	analysisWorker.Register(dispatcher)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Webhook:        handlers.NewWebhookHandler(ingestService, cfg.WhatsApp.WebhookVerifyToken, metrics, logger),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService, reportService),
		Reports:        handlers.NewReportsHandler(reportService),
		Sites:          handlers.NewSitesHandler(siteRepo, cfg.WhatsApp.PhoneNumberID),
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
