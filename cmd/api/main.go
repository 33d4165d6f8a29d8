package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/bem-portal/submission-service/internal/api/http"
	"github.com/bem-portal/submission-service/internal/api/http/handlers"
	"github.com/bem-portal/submission-service/internal/auth"
	"github.com/bem-portal/submission-service/internal/config"
	"github.com/bem-portal/submission-service/internal/events"
	"github.com/bem-portal/submission-service/internal/observability"
	"github.com/bem-portal/submission-service/internal/persistence"
	"github.com/bem-portal/submission-service/internal/policy"
	"github.com/bem-portal/submission-service/internal/repository"
	"github.com/bem-portal/submission-service/internal/schema"
	"github.com/bem-portal/submission-service/internal/service"
	"github.com/bem-portal/submission-service/internal/ticket"
	"github.com/bem-portal/submission-service/internal/worker"
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

	fieldSchema, err := schema.Load(cfg.Workflow.FieldSchemaPath)
	if err != nil {
		logger.Fatal("failed to load field schema", zap.Error(err))
	}

	pool := pg.PoolHandle()
	submissionRepo := repository.NewSubmissionRepository(pool)
	sequenceRepo := repository.NewTicketSequenceRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	accountRepo := repository.NewAccountRepository(pool)

	rules := policy.New(cfg.Workflow.VerifierRoles, cfg.Workflow.ApproverRoleKey)
	generator := ticket.NewGenerator(cfg.Workflow.TicketPrefix, sequenceRepo)
	dispatcher := events.NewInMemoryDispatcher()
	statusCache := service.NewStatusCache(redis.ClientHandle(), cfg.Workflow.LookupCacheTTL())
	metrics := observability.NewMetrics()

	intakeService := service.NewIntakeService(service.IntakeDependencies{
		SubmissionRepo: submissionRepo,
		AuditRepo:      auditRepo,
		Generator:      generator,
		FieldSchema:    fieldSchema,
		VerifierRoles:  cfg.Workflow.VerifierRoles,
		Dispatcher:     dispatcher,
	})
	verificationService := service.NewVerificationService(service.VerificationDependencies{
		SubmissionRepo: submissionRepo,
		AuditRepo:      auditRepo,
		Policy:         rules,
		Dispatcher:     dispatcher,
		Cache:          statusCache,
	})
	lookupService := service.NewLookupService(submissionRepo, statusCache)
	authService := service.NewAuthService(cfg.Auth, accountRepo, rules)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), accountRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Submissions:    handlers.NewSubmissionsHandler(intakeService, lookupService),
		Admin:          handlers.NewAdminHandler(verificationService, lookupService),
		Auth:           handlers.NewAuthHandler(authService),
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
