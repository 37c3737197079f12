package internal

import (
	"context"
	"time"
)

type ctxKey string

const ContextAuthKey ctxKey = "auth"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleSales Role = "sales"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleSales
}

// AuthContext identifies the caller of a service operation.
type AuthContext struct {
	Identity string `json:"identity"`
	Role     Role   `json:"role"`
	Name     string `json:"name,omitempty"`
}

func (a AuthContext) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a AuthContext) IsZero() bool {
	return a.Identity == ""
}

func AuthFromContext(ctx context.Context) (AuthContext, bool) {
	if ctx == nil {
		return AuthContext{}, false
	}
	actor, ok := ctx.Value(ContextAuthKey).(AuthContext)
	if !ok || actor.IsZero() {
		return AuthContext{}, false
	}
	return actor, true
}

func ContextWithAuth(ctx context.Context, actor AuthContext) context.Context {
	return context.WithValue(ctx, ContextAuthKey, actor)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
