package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/autoline-panel/shop-api/internal/auth"
	"github.com/autoline-panel/shop-api/internal/domain"
	"github.com/autoline-panel/shop-api/internal/logger"
	"github.com/autoline-panel/shop-api/internal/mapper"
	"github.com/autoline-panel/shop-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const passwordHashCost = 10

// HashPassword hashes a plain password with bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	return string(bytes), err
}

// CheckPasswordHash compares a plain password with its bcrypt hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// AuthService handles admin login and account bootstrap
type AuthService struct {
	userRepo *repository.AdminUserRepository
	tokens   *auth.TokenManager
	logger   *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo *repository.AdminUserRepository, tokens *auth.TokenManager, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

// Login checks the credentials and issues a session token
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("login attempt for unknown account", zap.String("email", req.Email))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get admin user: %w", err)
	}

	if !CheckPasswordHash(req.Password, user.PasswordHash) {
		s.logger.Warn("login attempt with wrong password", zap.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}

	issued, err := s.tokens.Issue(user.ID, user.Email, user.DisplayName)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	now := time.Now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("failed to record last login", zap.String("user_id", user.ID.String()), zap.Error(err))
	} else {
		user.LastLoginAt = &now
	}

	logger.WithUser(s.logger, user.ID.String(), user.DisplayName).Info("admin logged in")

	return &domain.LoginResponse{
		Token:     issued.Token,
		ExpiresAt: issued.ExpiresAt.UTC().Format(time.RFC3339),
		Admin:     mapper.ToAdminUserDTO(user),
	}, nil
}

// Me returns the account behind the current request. API key callers get a
// synthetic system account.
func (s *AuthService) Me(ctx context.Context) (*domain.AdminUserDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	if userCtx.IsSystem() {
		return &domain.AdminUserDTO{
			ID:          userCtx.UserID,
			Email:       userCtx.Email,
			DisplayName: userCtx.DisplayName,
		}, nil
	}

	user, err := s.userRepo.GetByID(ctx, userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to get admin user: %w", err)
	}

	dto := mapper.ToAdminUserDTO(user)
	return &dto, nil
}

// EnsureAdmin creates the configured admin account, or resets its password
// when the configured password no longer matches.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password, displayName string) (uuid.UUID, error) {
	if email == "" || password == "" {
		return uuid.Nil, fmt.Errorf("%w: admin email and password are required", ErrInvalidInput)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, fmt.Errorf("failed to get admin user: %w", err)
	}

	if user != nil {
		if CheckPasswordHash(password, user.PasswordHash) {
			return user.ID, nil
		}
		hash, err := HashPassword(password)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to hash password: %w", err)
		}
		if err := s.userRepo.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
			return uuid.Nil, fmt.Errorf("failed to update admin password: %w", err)
		}
		s.logger.Info("admin password updated from configuration", zap.String("user_id", user.ID.String()))
		return user.ID, nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user = &domain.AdminUser{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create admin user: %w", err)
	}

	s.logger.Info("admin account created", zap.String("user_id", user.ID.String()))
	return user.ID, nil
}
