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

	"github.com/spec-kit/travel-community/internal/api/dto"
	httptransport "github.com/spec-kit/travel-community/internal/api/http"
	"github.com/spec-kit/travel-community/internal/api/http/handlers"
	"github.com/spec-kit/travel-community/internal/auth"
	"github.com/spec-kit/travel-community/internal/config"
	"github.com/spec-kit/travel-community/internal/events"
	"github.com/spec-kit/travel-community/internal/idprovider"
	"github.com/spec-kit/travel-community/internal/observability"
	"github.com/spec-kit/travel-community/internal/persistence"
	"github.com/spec-kit/travel-community/internal/repository"
	"github.com/spec-kit/travel-community/internal/repository/memory"
	"github.com/spec-kit/travel-community/internal/service"
	"github.com/spec-kit/travel-community/internal/worker"
	"github.com/spec-kit/travel-community/migrations"
)

type repositories struct {
	users    repository.UserRepository
	requests repository.VerificationRequestRepository
	logs     repository.VerificationLogRepository
	sessions repository.VerificationSessionRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	stays    repository.StayRequestRepository
}

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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), migrations.FS, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	repos := buildRepositories(pg, logger)
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	var notifications *worker.NotificationWorker
	if cfg.Notification.Async {
		notifications = worker.NewNotificationWorker(dispatcher, notificationService, logger, cfg.Notification.QueueSize)
		notifications.Start(ctx)
	} else {
		notificationService.RegisterHandlers()
	}

	policy, err := auth.NewAdminPolicy(cfg.Admin, repos.users)
	if err != nil {
		logger.Fatal("failed to build admin policy", zap.Error(err))
	}

	authService := service.NewAuthService(*cfg, service.AuthDependencies{UserRepo: repos.users})
	verificationService := service.NewVerificationService(service.VerificationDependencies{
		UserRepo:    repos.users,
		RequestRepo: repos.requests,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
	})
	adminService := service.NewAdminService(service.AdminDependencies{
		UserRepo:     repos.users,
		RequestRepo:  repos.requests,
		Verification: verificationService,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	sessionService := service.NewProviderSessionService(service.ProviderSessionDependencies{
		UserRepo:    repos.users,
		SessionRepo: repos.sessions,
		Provider:    idprovider.NewClient(cfg.Provider),
		Logger:      logger,
	})
	webhookService := service.NewWebhookService(service.WebhookDependencies{
		Secret:       cfg.Provider.WebhookSecret,
		ReplayGuard:  buildReplayGuard(cfg.Provider, redis, logger),
		LogRepo:      repos.logs,
		Verification: verificationService,
		Metrics:      metrics,
		Logger:       logger,
	})
	communityService := service.NewCommunityService(service.CommunityDependencies{
		UserRepo:        repos.users,
		PostRepo:        repos.posts,
		CommentRepo:     repos.comments,
		StayRequestRepo: repos.stays,
		Logger:          logger,
	})
	if cfg.Provider.WebhookSecret == "" {
		logger.Warn("PROVIDER_WEBHOOK_SECRET not set; provider notifications will be rejected")
	}

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), repos.users, policy)
	validate := dto.NewValidator()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.NewErrorHandler(logger),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Users:          handlers.NewUsersHandler(authService, validate),
		Verification:   handlers.NewVerificationHandler(verificationService, sessionService, validate),
		Admin:          handlers.NewAdminHandler(adminService, verificationService, validate),
		Webhooks:       handlers.NewWebhookHandler(webhookService),
		Community:      handlers.NewCommunityHandler(communityService, validate),
		AuthMiddleware: authMiddleware,
		SubmitLimiter:  httptransport.NewRateLimiter(cfg.RateLimit.SubmitPerMinute, cfg.RateLimit.SubmitBurst, 10*time.Minute),
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	cancel()
	if notifications != nil {
		notifications.Wait()
	}
}

func buildRepositories(pg *persistence.Postgres, logger *zap.Logger) repositories {
	if pg.Enabled() {
		pool := pg.PoolHandle()
		return repositories{
			users:    repository.NewUserRepository(pool),
			requests: repository.NewVerificationRequestRepository(pool),
			logs:     repository.NewVerificationLogRepository(pool),
			sessions: repository.NewVerificationSessionRepository(pool),
			posts:    repository.NewPostRepository(pool),
			comments: repository.NewCommentRepository(pool),
			stays:    repository.NewStayRequestRepository(pool),
		}
	}

	logger.Warn("state is kept in memory and lost on restart")
	users := memory.NewUserStore()
	return repositories{
		users:    users,
		requests: memory.NewVerificationRequestStore(users),
		logs:     memory.NewVerificationLogStore(),
		sessions: memory.NewVerificationSessionStore(),
		posts:    memory.NewPostStore(users),
		comments: memory.NewCommentStore(users),
		stays:    memory.NewStayRequestStore(users),
	}
}

func buildReplayGuard(cfg config.ProviderConfig, redis *persistence.Redis, logger *zap.Logger) idprovider.ReplayGuard {
	if redis.Available() {
		return idprovider.NewRedisReplayGuard(redis.Client, cfg.ReplayTTL())
	}
	logger.Warn("webhook replay guard kept in memory; duplicates across replicas are not detected")
	return idprovider.NewMemoryReplayGuard(cfg.ReplayTTL())
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
