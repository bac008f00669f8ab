package auth

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/autoline-panel/shop-api/internal/config"
	"github.com/autoline-panel/shop-api/internal/domain"
	"github.com/autoline-panel/shop-api/internal/logger"
	"go.uber.org/zap"
)

// Middleware handles authentication for HTTP requests
type Middleware struct {
	tokens *TokenManager
	apiKey string
	logger *zap.Logger
}

// NewMiddleware creates a new authentication middleware
func NewMiddleware(cfg *config.AuthConfig, tokens *TokenManager, logger *zap.Logger) *Middleware {
	return &Middleware{
		tokens: tokens,
		apiKey: cfg.ApiKey,
		logger: logger,
	}
}

// rejection is a refused credential with the detail returned to the caller
type rejection struct {
	detail string
	cause  error
}

// Authenticate accepts either an x-api-key header or a Bearer admin token
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		userCtx, method, rej := m.resolve(r)
		if rej != nil {
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.String("auth_type", method),
			}
			if rej.cause != nil {
				fields = append(fields, zap.Error(rej.cause))
			}
			m.logger.Warn("authentication rejected", fields...)

			w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
			writeUnauthorized(w, rej.detail)
			return
		}

		m.logger.Debug("request authenticated",
			zap.String("path", r.URL.Path),
			zap.String("auth_type", method),
			zap.String("user_id", userCtx.UserID.String()),
			zap.Duration("auth_duration", time.Since(start)),
		)

		next.ServeHTTP(w, m.withUser(r, userCtx))
	})
}

// resolve identifies the caller. The API key wins when both credentials are sent.
func (m *Middleware) resolve(r *http.Request) (*UserContext, string, *rejection) {
	if apiKey := r.Header.Get("x-api-key"); apiKey != "" {
		if !m.validateAPIKey(apiKey) {
			return nil, "api_key", &rejection{detail: "Invalid API key"}
		}
		return &UserContext{
			UserID:      SystemUserID,
			DisplayName: "System",
			Email:       "system@autoline.local",
			Kind:        KindSystem,
		}, "api_key", nil
	}

	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, "none", &rejection{detail: "Missing authorization header"}
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return nil, "jwt", &rejection{detail: "Invalid authorization header format"}
	}

	userCtx, err := m.tokens.ValidateToken(strings.TrimSpace(token))
	if err != nil {
		return nil, "jwt", &rejection{detail: err.Error(), cause: err}
	}
	return userCtx, "jwt", nil
}

// withUser attaches the caller and a logger tagged with the caller to the request
func (m *Middleware) withUser(r *http.Request, userCtx *UserContext) *http.Request {
	ctx := WithUserContext(r.Context(), userCtx)
	reqLog := logger.WithUser(logger.FromContext(ctx, m.logger), userCtx.UserID.String(), userCtx.DisplayName)
	return r.WithContext(logger.NewContext(ctx, reqLog))
}

// RequireAdmin middleware ensures the caller is an admin or a system caller
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userCtx, ok := FromContext(r.Context())
		if !ok {
			writeProblem(w, http.StatusForbidden, domain.ErrorTypeForbidden, "Forbidden", "No user context")
			return
		}

		if !userCtx.IsAdmin() {
			writeProblem(w, http.StatusForbidden, domain.ErrorTypeForbidden, "Forbidden", "Admin access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) validateAPIKey(key string) bool {
	if m.apiKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(m.apiKey)) == 1
}

func writeUnauthorized(w http.ResponseWriter, detail string) {
	writeProblem(w, http.StatusUnauthorized, domain.ErrorTypeUnauthorized, "Unauthorized", detail)
}

func writeProblem(w http.ResponseWriter, status int, errType, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(&domain.APIError{
		Type:   errType,
		Title:  title,
		Status: status,
		Detail: detail,
	})
}
