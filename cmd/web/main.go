package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lernix/lernix-web/internal/backend"
	"github.com/lernix/lernix-web/internal/config"
	"github.com/lernix/lernix-web/internal/database"
	"github.com/lernix/lernix-web/internal/dto"
	"github.com/lernix/lernix-web/internal/handler"
	"github.com/lernix/lernix-web/internal/middleware"
	"github.com/lernix/lernix-web/internal/router"
	"github.com/lernix/lernix-web/internal/service"
	"github.com/lernix/lernix-web/internal/session"
	"github.com/lernix/lernix-web/internal/view"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()
	if cfg.AppEnv == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	redisClient, err := database.ConnectRedis(context.Background(), cfg.RedisURL, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()

	validate := dto.NewValidator()

	renderer, err := view.NewRenderer()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse templates")
	}

	sessions := session.NewManager(session.NewRedisStore(redisClient, logger), cfg.SessionTTL, logger)
	backendClient := backend.New(backend.Options{
		BaseURL: cfg.BackendURL,
		Timeout: cfg.BackendTimeout,
		Logger:  logger,
	}, nil)

	insightsService := service.NewInsightsService(
		service.NewActivityTimeAggregator(logger),
		service.NewMCQPerformanceAggregator(logger),
		cfg.SessionTTL,
		logger,
	)
	courseService := service.NewCourseService(validate, logger)
	chapterService := service.NewChapterService(validate, logger)
	studyService := service.NewStudyService(validate, logger)
	uploadService := service.NewUploadService(cfg.UploadMaxMB, logger)

	guard := middleware.NewSessionGuard(middleware.SessionConfig{
		Manager:       sessions,
		Backend:       backendClient,
		CookieName:    cfg.SessionCookie,
		LoginPath:     cfg.LoginPath,
		Secure:        cfg.AppEnv == "production",
		OnInvalidated: insightsService.Forget,
		Logger:        logger,
	})

	authHandler := handler.NewAuthHandler(backendClient, sessions, guard, insightsService, validate, logger)
	courseHandler := handler.NewCourseHandler(courseService, chapterService, guard, logger)
	studyHandler := handler.NewStudyHandler(studyService, uploadService, guard, logger)
	insightsHandler := handler.NewInsightsHandler(insightsService, renderer, guard, validate, handler.InsightsPageConfig{
		AppName:    cfg.AppName,
		PagePath:   "/insights",
		LogoutPath: "/api/v1/auth/logout",
	}, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		// Multipart overhead on top of the largest accepted upload.
		BodyLimit: (cfg.UploadMaxMB + 1) * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.CORSOrigins})
	router.Register(app, cfg, router.Dependencies{
		Guard:           guard,
		AuthHandler:     authHandler,
		CourseHandler:   courseHandler,
		StudyHandler:    studyHandler,
		InsightsHandler: insightsHandler,
		HealthChecks: map[string]handler.Pinger{
			"redis": func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		},
		AuthRateLimit: 20,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	logger.Info().Str("addr", cfg.HTTPAddress()).Str("backend", cfg.BackendURL).Msg("server started")
	waitForShutdown(app, logger)
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
