package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/autoline-panel/shop-api/internal/auth"
	"github.com/autoline-panel/shop-api/internal/config"
	"github.com/autoline-panel/shop-api/internal/domain"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

const rateWindow = time.Minute

// budget is one independently counted request allowance
type budget struct {
	name  string
	limit func(http.Handler) http.Handler
}

// RateLimiter hands out per-IP and per-account request budgets. Each budget
// keeps its own counters, so a burst of quote submissions does not lock an
// address out of admin login and the other way round.
type RateLimiter struct {
	enabled bool
	logger  *zap.Logger

	anonymous   budget
	account     budget
	submissions budget
	login       budget

	trustedIPs   map[string]struct{}
	exemptPaths  []string
	exemptPrefix []string
}

// NewRateLimiter builds the budgets from configuration
func NewRateLimiter(cfg *config.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	rl := &RateLimiter{
		enabled:    cfg.Enabled,
		logger:     logger,
		trustedIPs: make(map[string]struct{}, len(cfg.WhitelistIPs)),
	}
	for _, ip := range cfg.WhitelistIPs {
		rl.trustedIPs[ip] = struct{}{}
	}
	for _, p := range cfg.WhitelistPaths {
		if prefix, ok := strings.CutSuffix(p, "/*"); ok {
			rl.exemptPrefix = append(rl.exemptPrefix, prefix)
			continue
		}
		rl.exemptPaths = append(rl.exemptPaths, p)
	}

	rl.anonymous = rl.newBudget("anonymous", cfg.RequestsPerMinute, rl.keyByIP)
	rl.account = rl.newBudget("account", cfg.RequestsPerMinuteAuth, rl.keyByAccount)
	rl.submissions = rl.newBudget("submissions", cfg.PublicSubmissionsPerMinute, rl.keyByIP)
	rl.login = rl.newBudget("login", cfg.LoginAttemptsPerMinute, rl.keyByIP)

	logger.Info("rate limiter initialized",
		zap.Bool("enabled", cfg.Enabled),
		zap.Int("anonymous_per_minute", cfg.RequestsPerMinute),
		zap.Int("account_per_minute", cfg.RequestsPerMinuteAuth),
		zap.Int("submissions_per_minute", cfg.PublicSubmissionsPerMinute),
		zap.Int("login_per_minute", cfg.LoginAttemptsPerMinute),
	)

	return rl
}

// newBudget counts perMinute requests per key; zero or less leaves the budget unlimited
func (rl *RateLimiter) newBudget(name string, perMinute int, key httprate.KeyFunc) budget {
	if perMinute <= 0 {
		return budget{name: name, limit: func(next http.Handler) http.Handler { return next }}
	}
	return budget{
		name: name,
		limit: httprate.Limit(perMinute, rateWindow,
			httprate.WithKeyFuncs(key),
			httprate.WithLimitHandler(rl.exceeded(name)),
		),
	}
}

// Limit charges authenticated callers to their account and everyone else to
// their address. Mount it after authentication.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return rl.guard(next, func(r *http.Request) budget {
		if _, ok := auth.FromContext(r.Context()); ok {
			return rl.account
		}
		return rl.anonymous
	})
}

// LimitByIP charges every request to the caller's address
func (rl *RateLimiter) LimitByIP(next http.Handler) http.Handler {
	return rl.guard(next, func(*http.Request) budget { return rl.anonymous })
}

// LimitSubmissions guards the public quote and upload endpoints
func (rl *RateLimiter) LimitSubmissions(next http.Handler) http.Handler {
	return rl.guard(next, func(*http.Request) budget { return rl.submissions })
}

// LimitLogin guards admin login against password guessing
func (rl *RateLimiter) LimitLogin(next http.Handler) http.Handler {
	return rl.guard(next, func(*http.Request) budget { return rl.login })
}

func (rl *RateLimiter) guard(next http.Handler, pick func(*http.Request) budget) http.Handler {
	if !rl.enabled {
		return next
	}

	wrapped := map[string]http.Handler{}
	for _, b := range []budget{rl.anonymous, rl.account, rl.submissions, rl.login} {
		wrapped[b.name] = b.limit(next)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.exempt(r) {
			next.ServeHTTP(w, r)
			return
		}
		wrapped[pick(r).name].ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) exempt(r *http.Request) bool {
	if _, ok := rl.trustedIPs[clientIP(r)]; ok {
		return true
	}
	for _, p := range rl.exemptPaths {
		if r.URL.Path == p {
			return true
		}
	}
	for _, p := range rl.exemptPrefix {
		if strings.HasPrefix(r.URL.Path, p) {
			return true
		}
	}
	return false
}

func (rl *RateLimiter) keyByIP(r *http.Request) (string, error) {
	return "ip:" + clientIP(r), nil
}

func (rl *RateLimiter) keyByAccount(r *http.Request) (string, error) {
	if userCtx, ok := auth.FromContext(r.Context()); ok {
		return "user:" + userCtx.UserID.String(), nil
	}
	return rl.keyByIP(r)
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the peer address
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func (rl *RateLimiter) exceeded(name string) http.HandlerFunc {
	retryAfter := strconv.Itoa(int(rateWindow.Seconds()))
	return func(w http.ResponseWriter, r *http.Request) {
		fields := []zap.Field{
			zap.String("budget", name),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("client_ip", clientIP(r)),
		}
		if userCtx, ok := auth.FromContext(r.Context()); ok {
			fields = append(fields, zap.String("user_id", userCtx.UserID.String()))
		}
		rl.logger.Warn("rate limit exceeded", fields...)

		w.Header().Set("Content-Type", "application/problem+json")
		w.Header().Set("Retry-After", retryAfter)
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(domain.APIError{
			Type:   domain.ErrorTypeRateLimited,
			Title:  "Too Many Requests",
			Status: http.StatusTooManyRequests,
			Detail: "Too many requests. Please try again later.",
		})
	}
}
