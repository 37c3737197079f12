package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/frahmantamala/saas-admin/internal"
)

type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

// Claims represents JWT token claims
type Claims struct {
	UserID    string        `json:"user_id"`
	Role      internal.Role `json:"role"`
	Name      string        `json:"name"`
	TokenType TokenType     `json:"typ"`
	jwt.RegisteredClaims
}

func (c *Claims) AuthContext() internal.AuthContext {
	return internal.AuthContext{Identity: c.UserID, Role: c.Role, Name: c.Name}
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Profile is the signed-in dashboard user.
type Profile struct {
	ID        string        `json:"id"`
	Email     string        `json:"email"`
	Name      string        `json:"name"`
	Role      internal.Role `json:"role"`
	IsActive  bool          `json:"is_active"`
	CreatedAt time.Time     `json:"created_at"`
}

// TokenGenerator issues and verifies signed tokens.
type TokenGenerator interface {
	GenerateAccessToken(actor internal.AuthContext) (string, error)
	GenerateRefreshToken(actor internal.AuthContext) (string, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
	AccessTTL() time.Duration
}
