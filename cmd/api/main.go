package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/autoline-panel/shop-api/docs"
	"github.com/autoline-panel/shop-api/internal/auth"
	"github.com/autoline-panel/shop-api/internal/config"
	"github.com/autoline-panel/shop-api/internal/database"
	"github.com/autoline-panel/shop-api/internal/http/handler"
	"github.com/autoline-panel/shop-api/internal/http/middleware"
	"github.com/autoline-panel/shop-api/internal/http/router"
	"github.com/autoline-panel/shop-api/internal/jobs"
	"github.com/autoline-panel/shop-api/internal/logger"
	"github.com/autoline-panel/shop-api/internal/repository"
	"github.com/autoline-panel/shop-api/internal/service"
	"github.com/autoline-panel/shop-api/internal/storage"
	"go.uber.org/zap"
)

// @title AutoLine Panel Shop API
// @version 1.0
// @description Back-office API for panel beating quote requests, quotes and invoices

// @contact.name AutoLine Panel Shop
// @contact.email admin@autoline-panel.co.za

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Admin session token as "Bearer <token>"

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API key for system integrations

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	if basicCfg.Shop.Website != "" && basicCfg.App.Environment == "production" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(basicCfg.Shop.Website, "https://"), "http://")
	} else {
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Secrets come from Key Vault in staging/production when enabled,
	// environment variables otherwise
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	imageStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Repositories
	adminUserRepo := repository.NewAdminUserRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	uploadRepo := repository.NewUploadRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	numberSequenceRepo := repository.NewNumberSequenceRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	// Services
	tokens := auth.NewTokenManager(&cfg.Auth)
	activityService := service.NewActivityService(activityRepo, log)
	numberSequenceService := service.NewNumberSequenceService(numberSequenceRepo, log)
	authService := service.NewAuthService(adminUserRepo, tokens, log)
	uploadService := service.NewUploadService(uploadRepo, imageStorage, cfg.Storage.MaxUploadBytes(), cfg.Storage.MaxImagesPerQuote, log)
	quoteService := service.NewQuoteService(quoteRepo, uploadRepo, activityService, cfg.Storage.MaxImagesPerQuote, log)
	documentService := service.NewDocumentService(db, documentRepo, quoteRepo, numberSequenceService, activityService, log)

	if cfg.Auth.AdminEmail != "" && cfg.Auth.AdminPassword != "" {
		adminID, err := authService.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword, cfg.Auth.AdminDisplayName)
		if err != nil {
			return fmt.Errorf("failed to bootstrap admin account: %w", err)
		}
		log.Info("Admin account ready", zap.String("user_id", adminID.String()))
	} else {
		log.Warn("ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin bootstrap")
	}

	// Middleware
	authMiddleware := auth.NewMiddleware(&cfg.Auth, tokens, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, log)
	uploadHandler := handler.NewUploadHandler(uploadService, cfg.Storage.MaxUploadBytes(), cfg.Storage.MaxImagesPerQuote, log)
	quoteHandler := handler.NewQuoteHandler(quoteService, uploadHandler, log)
	documentHandler := handler.NewDocumentHandler(documentService, &cfg.Shop, log)

	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		authHandler,
		documentHandler,
		quoteHandler,
		uploadHandler,
	)

	// Background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.UploadJanitorEnabled {
		scheduler = jobs.NewScheduler(log)

		if err := jobs.RegisterUploadJanitorJob(
			scheduler,
			uploadService,
			log,
			cfg.Jobs.UploadJanitorCron,
			cfg.Jobs.UploadRetentionDuration(),
			5*time.Minute,
		); err != nil {
			log.Error("Failed to register upload janitor job", zap.Error(err))
			scheduler = nil
		} else {
			scheduler.Start()
			next, _ := scheduler.NextRun(jobs.UploadJanitorJobName)
			log.Info("Scheduler started with upload janitor job",
				zap.String("cron_expr", cfg.Jobs.UploadJanitorCron),
				zap.Duration("retention", cfg.Jobs.UploadRetentionDuration()),
				zap.Time("next_run", next),
			)
		}
	} else {
		log.Info("Upload janitor disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			stopCtx := scheduler.Stop()
			<-stopCtx.Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
