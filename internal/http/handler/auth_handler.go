package handler

import (
	"errors"
	"net/http"

	"github.com/autoline-panel/shop-api/internal/domain"
	"github.com/autoline-panel/shop-api/internal/service"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login godoc
// @Summary Admin login
// @Description Exchanges admin credentials for a bearer token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.LoginRequest true "Credentials"
// @Success 200 {object} domain.APIResponse{data=domain.LoginResponse}
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Router /admin/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondWithError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		requestLogger(r, h.logger).Error("failed to log in", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	respondSuccess(w, http.StatusOK, resp)
}

// Me godoc
// @Summary Get current admin
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.APIResponse{data=domain.AdminUserDTO}
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	me, err := h.authService.Me(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrAdminNotFound):
			respondWithError(w, http.StatusUnauthorized, "Session is no longer valid")
		default:
			requestLogger(r, h.logger).Error("failed to get current admin", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to get current admin")
		}
		return
	}

	respondSuccess(w, http.StatusOK, me)
}
