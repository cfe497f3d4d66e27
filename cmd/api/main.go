// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/carterperez-dev/kandi-backend/internal/admin"
	"github.com/carterperez-dev/kandi-backend/internal/auth"
	"github.com/carterperez-dev/kandi-backend/internal/bead"
	"github.com/carterperez-dev/kandi-backend/internal/config"
	"github.com/carterperez-dev/kandi-backend/internal/contact"
	"github.com/carterperez-dev/kandi-backend/internal/core"
	"github.com/carterperez-dev/kandi-backend/internal/feed"
	"github.com/carterperez-dev/kandi-backend/internal/health"
	"github.com/carterperez-dev/kandi-backend/internal/invite"
	"github.com/carterperez-dev/kandi-backend/internal/membership"
	"github.com/carterperez-dev/kandi-backend/internal/middleware"
	"github.com/carterperez-dev/kandi-backend/internal/notify"
	"github.com/carterperez-dev/kandi-backend/internal/purchase"
	"github.com/carterperez-dev/kandi-backend/internal/qrcode"
	"github.com/carterperez-dev/kandi-backend/internal/server"
	"github.com/carterperez-dev/kandi-backend/internal/thread"
	"github.com/carterperez-dev/kandi-backend/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if cfg.Database.AutoMigrate {
		if err := core.Migrate(ctx, db.DB.DB, "up"); err != nil {
			return err
		}
		logger.Info("database migrations applied")
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	qrGen, err := qrcode.NewFileGenerator(cfg.QR)
	if err != nil {
		return err
	}

	queue, err := notify.NewRedisQueue(ctx, redis.Client, cfg.Notify)
	if err != nil {
		return err
	}
	dispatcher := notify.NewDispatcher(queue, logger)
	worker := notify.NewWorker(
		queue,
		notify.NewMailer(cfg.Mail, logger),
		notify.WorkerConfig{
			MaxAttempts: cfg.Notify.MaxAttempts,
			RetryDelay:  cfg.Notify.RetryDelay,
			IdleDelay:   cfg.Notify.Block,
			ClaimIdle:   cfg.Notify.ClaimIdle,
		},
		logger,
	)

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Run(ctx)
	}()

	userSvc := user.NewService(user.NewRepository(db.DB))
	userHandler := user.NewHandler(userSvc)

	authRepo := auth.NewRepository(redis.Client)
	authSvc := auth.NewService(authRepo, jwtManager, userSvc, dispatcher, cfg, logger)
	authHandler := auth.NewHandler(authSvc)

	feedSvc := feed.NewService(feed.NewRepository(db.DB), logger)
	feedHandler := feed.NewHandler(feedSvc)

	threadSvc := thread.NewService(thread.NewRepository(db.DB), qrGen, logger)
	threadHandler := thread.NewHandler(threadSvc)

	beadSvc := bead.NewService(bead.NewRepository(db.DB), threadSvc, qrGen, feedSvc, logger)
	beadHandler := bead.NewHandler(beadSvc)

	inviteSvc := invite.NewService(
		invite.NewRepository(db.DB),
		threadSvc,
		userSvc,
		dispatcher,
		cfg,
		logger,
	)
	inviteHandler := invite.NewHandler(inviteSvc)

	membershipSvc := membership.NewService(
		membership.NewRepository(db.DB),
		threadSvc,
		userSvc,
		dispatcher,
		logger,
	)
	membershipHandler := membership.NewHandler(membershipSvc)

	purchaseSvc := purchase.NewService(purchase.NewRepository(db.DB), purchase.Deps{
		Threads:  threadSvc,
		Beads:    beadSvc,
		Users:    userSvc,
		Feed:     feedSvc,
		Notifier: dispatcher,
	}, logger)
	purchaseHandler := purchase.NewHandler(purchaseSvc)

	contactSvc := contact.NewService(
		contact.NewRepository(db.DB),
		dispatcher,
		cfg.Mail.Support,
		logger,
	)
	contactHandler := contact.NewHandler(contactSvc)

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
		health.Dependency{Name: "qr_storage", Checker: qrGen, Optional: true},
	)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		Counts:     admin.NewRepository(db.DB),
		Queue:      queue,
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		Logger:     logger,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
		ServiceName:   cfg.Otel.ServiceName,
		Tracing:       telemetry != nil,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics)
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	if cfg.Metrics.Enabled {
		router.Handle(cfg.Metrics.Path, promhttp.Handler())
	}

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	roleLimiter := middleware.RoleRateLimiter(
		redis.Client,
		middleware.MergeRoleLimits(cfg.RateLimit),
	)
	mutationLimiter := middleware.MutationLimiter(redis.Client, middleware.PerMinute(30, 10))
	verify := middleware.Authenticator(jwtManager)
	authenticator := func(next http.Handler) http.Handler {
		return verify(roleLimiter(mutationLimiter(next)))
	}
	adminOnly := middleware.RequireAdmin

	contactLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit:    middleware.PerHour(10, 5),
		KeyFunc:  middleware.KeyByIP,
		FailOpen: true,
	}).Handler

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator)

		r.Post("/users", authHandler.Register)

		userHandler.RegisterRoutes(r, authenticator)
		userHandler.RegisterAdminRoutes(r, authenticator, adminOnly)

		threadHandler.RegisterRoutes(r, authenticator)
		beadHandler.RegisterRoutes(r, authenticator)
		feedHandler.RegisterRoutes(r, authenticator)
		inviteHandler.RegisterRoutes(r, authenticator)
		membershipHandler.RegisterRoutes(r, authenticator)
		purchaseHandler.RegisterRoutes(r, authenticator)
		contactHandler.RegisterRoutes(r, contactLimiter)

		adminHandler.RegisterRoutes(r, authenticator, adminOnly)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		stop()
		<-workerDone
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	select {
	case <-workerDone:
	case <-shutdownCtx.Done():
		logger.Warn("notification worker did not stop in time")
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
