package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/autoline-panel/shop-api/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrMissingKey   = errors.New("jwt secret is not configured")
)

// TokenManager issues and validates HS256 admin tokens
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a TokenManager from the auth configuration
func NewTokenManager(cfg *config.AuthConfig) *TokenManager {
	return &TokenManager{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
		ttl:    cfg.TokenTTLDuration(),
		now:    time.Now,
	}
}

// IssuedToken is a signed token and its expiry
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// Issue signs a token for an admin account
func (m *TokenManager) Issue(userID uuid.UUID, email, displayName string) (*IssuedToken, error) {
	if len(m.secret) == 0 {
		return nil, ErrMissingKey
	}

	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := jwt.MapClaims{
		"sub":   userID.String(),
		"email": email,
		"name":  displayName,
		"kind":  KindAdmin,
		"iss":   m.issuer,
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &IssuedToken{Token: signed, ExpiresAt: expiresAt}, nil
}

// ValidateToken validates a token and returns the user context it carries
func (m *TokenManager) ValidateToken(tokenString string) (*UserContext, error) {
	if len(m.secret) == 0 {
		return nil, ErrMissingKey
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}

	sub, _ := claims.GetSubject()
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid subject", ErrInvalidToken)
	}

	return &UserContext{
		UserID:      userID,
		Email:       extractString(claims, "email"),
		DisplayName: extractString(claims, "name"),
		Kind:        KindAdmin,
	}, nil
}

func extractString(claims jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		if val, ok := claims[key].(string); ok && val != "" {
			return val
		}
	}
	return ""
}
