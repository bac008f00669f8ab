package router

import (
	"encoding/json"
	"net/http"

	"github.com/autoline-panel/shop-api/internal/auth"
	"github.com/autoline-panel/shop-api/internal/config"
	"github.com/autoline-panel/shop-api/internal/database"
	"github.com/autoline-panel/shop-api/internal/http/handler"
	"github.com/autoline-panel/shop-api/internal/http/middleware"
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/autoline-panel/shop-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg             *config.Config
	logger          *zap.Logger
	db              *gorm.DB
	authMiddleware  *auth.Middleware
	rateLimiter     *middleware.RateLimiter
	authHandler     *handler.AuthHandler
	documentHandler *handler.DocumentHandler
	quoteHandler    *handler.QuoteHandler
	uploadHandler   *handler.UploadHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	authHandler *handler.AuthHandler,
	documentHandler *handler.DocumentHandler,
	quoteHandler *handler.QuoteHandler,
	uploadHandler *handler.UploadHandler,
) *Router {
	return &Router{
		cfg:             cfg,
		logger:          logger,
		db:              db,
		authMiddleware:  authMiddleware,
		rateLimiter:     rateLimiter,
		authHandler:     authHandler,
		documentHandler: documentHandler,
		quoteHandler:    quoteHandler,
		uploadHandler:   uploadHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.Shop.Website, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Liveness probe
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Database readiness with pool stats
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			writeHealth(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		writeHealth(w, http.StatusOK, map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
			},
		})
	})

	// Combined readiness check
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]interface{}{}
		status := http.StatusOK

		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{"status": "unhealthy", "error": err.Error()}
			status = http.StatusServiceUnavailable
		} else {
			checks["database"] = map[string]interface{}{"status": "healthy"}
		}

		overall := "healthy"
		if status != http.StatusOK {
			overall = "unhealthy"
		}
		writeHealth(w, status, map[string]interface{}{
			"status": overall,
			"checks": checks,
		})
	})

	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	r.Route("/api", func(r chi.Router) {
		// Public website endpoints
		r.With(rt.rateLimiter.LimitSubmissions).Post("/quotes", rt.quoteHandler.Create)
		r.With(rt.rateLimiter.LimitSubmissions).Post("/uploads", rt.uploadHandler.Upload)
		r.Get("/uploads/*", rt.uploadHandler.Serve)

		r.Route("/admin", func(r chi.Router) {
			r.With(rt.rateLimiter.LimitLogin).Post("/login", rt.authHandler.Login)

			// Protected routes
			r.Group(func(r chi.Router) {
				r.Use(rt.authMiddleware.Authenticate)
				r.Use(rt.authMiddleware.RequireAdmin)
				r.Use(rt.rateLimiter.Limit)

				r.Get("/me", rt.authHandler.Me)

				// Public quote requests
				r.Route("/quotes", func(r chi.Router) {
					r.Get("/", rt.quoteHandler.List)
					r.Get("/{id}", rt.quoteHandler.GetByID)
					r.Put("/{id}/status", rt.quoteHandler.UpdateStatus)
					r.Get("/{id}/activities", rt.quoteHandler.GetActivities)
				})

				// Quote and invoice documents
				r.Route("/invoices", func(r chi.Router) {
					r.Get("/", rt.documentHandler.List)
					r.Post("/", rt.documentHandler.Create)
					r.Get("/{id}", rt.documentHandler.GetByID)
					r.Put("/{id}", rt.documentHandler.Update)
					r.Delete("/{id}", rt.documentHandler.Delete)
					r.Post("/{id}/convert", rt.documentHandler.Convert)
					r.Get("/{id}/pdf", rt.documentHandler.PDF)
					r.Get("/{id}/activities", rt.documentHandler.GetActivities)
				})
			})
		})
	})

	return r
}

func writeHealth(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
