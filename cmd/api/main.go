package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/suitetest-api/internal/config"
	"github.com/noah-isme/suitetest-api/internal/database"
	"github.com/noah-isme/suitetest-api/internal/handler"
	"github.com/noah-isme/suitetest-api/internal/middleware"
	"github.com/noah-isme/suitetest-api/internal/repository"
	"github.com/noah-isme/suitetest-api/internal/router"
	"github.com/noah-isme/suitetest-api/internal/service"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	if cfg.AppEnv == "development" {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	store, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close database")
		}
	}()

	if err := store.Migrate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	db, err := store.DB()
	if err != nil {
		logger.Fatal().Err(err).Msg("database store unavailable")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, results cache disabled")
		} else {
			defer redisClient.Close()
		}
	}

	var publisher service.EventPublisher
	if cfg.NATSURL != "" {
		conn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, completion events disabled")
		} else {
			defer conn.Drain()
			publisher = conn
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	testRepo := repository.NewTestRepository(db)
	userRepo := repository.NewUserRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	resultRepo := repository.NewResultRepository(db)

	var cache *service.ResultsCache
	if redisClient != nil {
		cache = service.NewResultsCache(redisClient, cfg.ResultsCacheTTL, logger)
	}

	notifier := service.NewCompletionNotifier(
		userRepo,
		repository.NewInvitationRepository(db),
		service.NewLogEmailSender(logger),
		publisher,
		cfg.NATSSubjectPrefix,
		cfg.NotifyQueueSize,
		logger,
	)
	workerCtx, stopWorker := context.WithCancel(context.Background())
	notifier.Start(workerCtx)

	activityService := service.NewActivityService(repository.NewActivityLogRepository(db), logger)
	testService := service.NewTestService(service.TestServiceDeps{
		Tests:     testRepo,
		Questions: repository.NewQuestionRepository(db),
		Users:     userRepo,
		Progress:  progressRepo,
		Results:   resultRepo,
		Activity:  activityService,
		Cache:     cache,
	}, validate, logger)
	progressService := service.NewProgressService(testRepo, userRepo, progressRepo, resultRepo, logger)
	submissionService := service.NewSubmissionService(repository.NewSubmissionRepository(db), notifier, cache, logger)
	resultService := service.NewResultService(testRepo, resultRepo, cache, logger)
	departmentService := service.NewDepartmentService(repository.NewDepartmentRepository(db), validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:      &logger,
		CORSOrigins: cfg.CORSOrigins,
		AccessLog:   cfg.AppEnv == "development",
	})
	router.Register(app, cfg, router.Dependencies{
		TestHandler:       handler.NewTestHandler(testService, logger),
		ProgressHandler:   handler.NewProgressHandler(progressService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, logger),
		ResultHandler:     handler.NewResultHandler(resultService, logger),
		DepartmentHandler: handler.NewDepartmentHandler(departmentService, logger),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)

	stopWorker()
	notifier.Wait()
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
