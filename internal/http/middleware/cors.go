package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/autoline-panel/shop-api/internal/config"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// CORS returns a CORS middleware for the public site and the back-office.
// siteURL is the shop's website; its origin is always allowed because the
// quote form and image uploads post from there. Without configured origins,
// development reflects any origin and other environments allow only the site.
func CORS(cfg *config.CORSConfig, siteURL, environment string, logger *zap.Logger) func(http.Handler) http.Handler {
	options := cors.Options{
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}

	allowed := make(map[string]bool)
	wildcard := false
	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			wildcard = true
			continue
		}
		if o := normalizeOrigin(origin); o != "" {
			allowed[o] = true
		}
	}
	configured := len(allowed) > 0
	if o := normalizeOrigin(siteURL); o != "" {
		allowed[o] = true
	}

	dev := isDevelopment(environment)
	switch {
	case wildcard:
		if !dev {
			logger.Warn("CORS configured with wildcard origin in non-development environment",
				zap.String("environment", environment))
		}
		options.AllowOriginFunc = func(r *http.Request, origin string) bool {
			return origin != ""
		}
	case !configured && dev:
		logger.Info("CORS allows all origins in development")
		options.AllowOriginFunc = func(r *http.Request, origin string) bool {
			return origin != ""
		}
	case len(allowed) > 0:
		logger.Info("CORS configured with explicit origins", zap.Int("origins", len(allowed)))
		options.AllowOriginFunc = func(r *http.Request, origin string) bool {
			return allowed[normalizeOrigin(origin)]
		}
	default:
		// an empty AllowedOrigins means "*" to go-chi/cors
		logger.Warn("CORS has no allowed origins, cross-origin requests will be refused",
			zap.String("environment", environment))
		options.AllowOriginFunc = func(r *http.Request, origin string) bool {
			return false
		}
	}

	return cors.Handler(options)
}

func isDevelopment(environment string) bool {
	switch environment {
	case "development", "local", "":
		return true
	}
	return false
}

// normalizeOrigin reduces a URL or origin to lowercase scheme://host[:port].
// A bare host such as "www.example.co.za" is taken as https.
func normalizeOrigin(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Scheme + "://" + u.Host)
}
