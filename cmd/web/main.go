package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/member-portal/internal/api/http"
	"github.com/spec-kit/member-portal/internal/api/http/handlers"
	"github.com/spec-kit/member-portal/internal/auth"
	"github.com/spec-kit/member-portal/internal/config"
	"github.com/spec-kit/member-portal/internal/events"
	"github.com/spec-kit/member-portal/internal/observability"
	"github.com/spec-kit/member-portal/internal/persistence"
	"github.com/spec-kit/member-portal/internal/repository"
	"github.com/spec-kit/member-portal/internal/service"
	"github.com/spec-kit/member-portal/internal/session"
	"github.com/spec-kit/member-portal/internal/view"
	"github.com/spec-kit/member-portal/internal/worker"
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

	metrics := observability.NewMetrics()

	// a corrupt user table refuses to start rather than serve wrong state
	users, pg, err := buildUserRepository(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open user store", zap.Error(err))
	}
	if pg != nil {
		defer pg.Close()
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	if redis != nil {
		defer redis.Close()
	}

	sessions := session.NewManager(buildSessionStore(redis), cfg.Session)
	attempts := buildAttemptTracker(redis, cfg.Auth)

	dispatcher := events.NewInMemoryDispatcher()
	authService, err := service.NewAuthService(cfg.Auth.BcryptCost, service.AuthDependencies{
		UserRepo:   users,
		Attempts:   attempts,
		Dispatcher: dispatcher,
		Metrics:    metrics,
	})
	if err != nil {
		logger.Fatal("failed to init auth service", zap.Error(err))
	}

	notifications := service.NewNotificationService(dispatcher, logger, cfg.Notify)
	worker.StartNotificationWorker(notifications)

	engine, err := view.NewEngine()
	if err != nil {
		logger.Fatal("failed to load templates", zap.Error(err))
	}

	app := fiber.New(fiber.Config{Views: engine})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	gate := auth.NewGate(sessions, users, cfg.Session.CookieName)
	cookie := handlers.CookieConfig{Name: cfg.Session.CookieName, Secure: cfg.App.Production()}

	storePinger, _ := users.(handlers.StorePinger)
	if pg != nil {
		storePinger = pg
	}

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Pages:  handlers.NewPagesHandler(sessions),
		Auth:   handlers.NewAuthHandler(authService, sessions, cookie),
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, storePinger, redis),
		Gate:   gate,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

// buildUserRepository selects the storage engine: Postgres when a DSN is
// configured, the flat JSON file otherwise.
func buildUserRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.UserRepository, *persistence.Postgres, error) {
	if cfg.Store.DSN != "" {
		pg, err := persistence.NewPostgres(ctx, cfg.Store, logger)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Store.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.Pool, logger); err != nil {
				pg.Close()
				return nil, nil, err
			}
		}
		return repository.NewPostgresRepository(pg.Pool), pg, nil
	}

	repo, err := repository.NewJSONFileRepository(cfg.Store.UsersFile)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("user store loaded",
		zap.String("file", cfg.Store.UsersFile),
		zap.Int("users", repo.Count()))
	return repo, nil, nil
}

func buildSessionStore(redis *persistence.Redis) session.Store {
	if redis != nil {
		return session.NewRedisStore(redis.Client)
	}
	return session.NewMemoryStore()
}

func buildAttemptTracker(redis *persistence.Redis, cfg config.AuthConfig) auth.AttemptTracker {
	policy := auth.LockoutPolicy{
		MaxAttempts:   cfg.MaxLoginAttempts,
		AttemptWindow: cfg.AttemptWindow(),
		LockDuration:  cfg.LockoutDuration(),
	}
	if redis != nil {
		return auth.NewRedisAttemptTracker(redis.Client, policy)
	}
	return auth.NewMemoryAttemptTracker(policy)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
