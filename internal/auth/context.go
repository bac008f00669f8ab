package auth

import (
	"context"

	"github.com/google/uuid"
)

// Principal kinds
const (
	KindAdmin  = "admin"
	KindSystem = "system"
)

// SystemUserID identifies callers authenticated with the API key
var SystemUserID = uuid.MustParse("00000000-0000-0000-0000-000000000000")

// UserContext holds authenticated user information
type UserContext struct {
	UserID      uuid.UUID
	DisplayName string
	Email       string
	Kind        string
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok && user != nil
}

// IsAdmin reports whether the caller may use the back-office endpoints
func (u *UserContext) IsAdmin() bool {
	return u.Kind == KindAdmin || u.Kind == KindSystem
}

// IsSystem reports whether the caller used the API key
func (u *UserContext) IsSystem() bool {
	return u.Kind == KindSystem
}

