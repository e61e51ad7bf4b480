package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/airwatch-bd/airwatch/internal/app"
	"github.com/airwatch-bd/airwatch/internal/auth"
	"github.com/airwatch-bd/airwatch/internal/cities"
	"github.com/airwatch-bd/airwatch/internal/observability"
	"github.com/airwatch-bd/airwatch/internal/platform/cache"
	"github.com/airwatch-bd/airwatch/internal/platform/db"
	"github.com/airwatch-bd/airwatch/internal/registration"
	"github.com/airwatch-bd/airwatch/internal/selection"
	"github.com/airwatch-bd/airwatch/internal/shared"
	"github.com/airwatch-bd/airwatch/internal/users"
	"github.com/airwatch-bd/airwatch/internal/view"
	"github.com/airwatch-bd/airwatch/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx, dbpool); err != nil {
			logger.Error("migrate", slog.Any("error", err))
			os.Exit(1)
		}
	}

	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "airwatch_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()

	cityService := cities.NewService(cities.NewRepository(dbpool), cities.NewCache(redisClient, cfg.CityCacheTTL), logger)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
	queue := asynq.NewClient(redisOpts)
	defer func() {
		if err := queue.Close(); err != nil {
			logger.Warn("asynq client close", slog.Any("error", err))
		}
	}()

	accounts := users.NewRepository(dbpool, shared.NewAuditLogger())
	registrationService := registration.NewService(accounts, cityService, registration.Options{
		StagingTTL: cfg.StagingTTL,
		BcryptCost: cfg.BcryptCost,
		Logger:     logger,
		Metrics:    metrics,
		Notifier:   jobs.NewWelcomeNotifier(queue),
	})
	registrationHandler := registration.NewHandler(logger, registrationService, templates, csrfManager, cityService, cfg.IsProduction())

	authService := auth.NewService(auth.NewRepository(dbpool), auth.Options{SessionTTL: cfg.SessionTTL})
	authHandler := auth.NewHandler(logger, authService, templates, sessionManager, csrfManager, metrics, cfg.IsProduction())

	selectionHandler := selection.NewHandler(logger, selection.NewService(cityService, metrics), cityService, templates, csrfManager)
	citiesHandler := cities.NewHandler(logger, cityService)

	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		Templates:           templates,
		SessionManager:      sessionManager,
		CSRFManager:         csrfManager,
		AuthHandler:         authHandler,
		RegistrationHandler: registrationHandler,
		SelectionHandler:    selectionHandler,
		CitiesHandler:       citiesHandler,
		Readings:            cityService,
		JobHandler:          jobHandler,
		Metrics:             metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
