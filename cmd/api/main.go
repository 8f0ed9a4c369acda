package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-course-api/internal/config"
	"github.com/noah-isme/gema-course-api/internal/database"
	"github.com/noah-isme/gema-course-api/internal/handler"
	"github.com/noah-isme/gema-course-api/internal/middleware"
	"github.com/noah-isme/gema-course-api/internal/repository"
	"github.com/noah-isme/gema-course-api/internal/router"
	"github.com/noah-isme/gema-course-api/internal/service"
	"github.com/noah-isme/gema-course-api/pkg/certpdf"
	cloud "github.com/noah-isme/gema-course-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not set; progress cache and pub/sub disabled")
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to nats")
	}

	var uploader service.FileUploader
	if cfg.CloudinaryCloudName != "" {
		cloudinaryService, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create cloudinary client")
		}
		uploader = cloudinaryService
	} else {
		logger.Warn().Msg("cloudinary not configured; task attachments disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	progressRepo := repository.NewProgressRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	submissionRepo := repository.NewTaskSubmissionRepository(db)
	certificateRepo := repository.NewCertificateRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	userRepo := repository.NewUserRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	notificationService := service.NewNotificationService(notificationRepo, redisClient, cfg.NotificationChannel, natsConn, validate, logger)
	certificateService := service.NewCertificateService(certificateRepo, courseRepo, userRepo, certpdf.NewRenderer(cfg.CertificateIssuer), notificationService, logger)
	ledger := service.NewProgressLedger(progressRepo, taskRepo, lessonRepo, courseRepo, certificateService, redisClient, cfg.ProgressCacheTTL, logger)
	taskService := service.NewTaskService(service.TaskServiceDeps{
		Tasks:       taskRepo,
		Submissions: submissionRepo,
		Courses:     courseRepo,
		Ledger:      ledger,
		Issuer:      certificateService,
		Activity:    activityService,
		Notifier:    notificationService,
		Uploader:    uploader,
		Validator:   validate,
	}, logger)
	quizService := service.NewQuizService(quizRepo, courseRepo, ledger, certificateService, activityService, validate, logger)
	courseService := service.NewCourseService(courseRepo, activityService, validate, logger)
	lessonService := service.NewLessonService(lessonRepo, courseRepo, ledger, certificateService, activityService, validate, logger)

	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()
	notificationService.Start(appCtx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		TaskHandler:         handler.NewTaskHandler(taskService, logger),
		QuizHandler:         handler.NewQuizHandler(quizService, logger),
		ProgressHandler:     handler.NewProgressHandler(ledger, logger),
		CertificateHandler:  handler.NewCertificateHandler(certificateService, logger),
		CourseHandler:       handler.NewCourseHandler(courseService, ledger, logger),
		LessonHandler:       handler.NewLessonHandler(lessonService, logger),
		NotificationHandler: handler.NewNotificationHandler(notificationService, logger, cfg.NotificationStreamTTL),
		ActivityHandler:     handler.NewActivityHandler(activityService, logger),
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, cancelApp, natsConn, logger)
}

// waitForShutdown blocks until SIGINT or SIGTERM, then stops the HTTP server
// and drains the NATS connection. It is the only teardown path for NATS.
func waitForShutdown(app *fiber.App, cancelApp context.CancelFunc, natsConn *nats.Conn, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()
	cancelApp()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	if natsConn != nil {
		if err := natsConn.Drain(); err != nil {
			logger.Warn().Err(err).Msg("failed to drain nats connection")
			natsConn.Close()
		}
	}

	logger.Info().Msg("server stopped")
}
