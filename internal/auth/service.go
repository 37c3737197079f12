package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/saas-admin/internal"
	userDatamodel "github.com/frahmantamala/saas-admin/internal/core/datamodel/dashboarduser"
)

type UserRepository interface {
	Create(ctx context.Context, user *userDatamodel.DashboardUser) error
	GetByEmail(ctx context.Context, email string) (*userDatamodel.DashboardUser, error)
	GetByID(ctx context.Context, id string) (*userDatamodel.DashboardUser, error)
	UpdateRefreshTokenHash(ctx context.Context, id string, hash *string) error
}

// Service is the main auth service with dependencies
type Service struct {
	userRepo       UserRepository
	tokenGenerator TokenGenerator
	bcryptCost     int
	logger         *slog.Logger
}

func NewService(userRepo UserRepository, tokenGen TokenGenerator, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		userRepo:       userRepo,
		tokenGenerator: tokenGen,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

// Authenticate validates credentials and returns a fresh token pair.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	user, err := s.userRepo.GetByEmail(ctx, dto.NormalizedEmail())
	if err != nil {
		if errors.Is(err, internal.ErrAccountNotFound) {
			s.logger.Warn("login rejected: unknown email")
			return AuthTokens{}, internal.ErrInvalidCredentials
		}
		s.logger.Error("failed to load account", "error", err)
		return AuthTokens{}, internal.NewInternalError("failed to authenticate", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(dto.Password)); err != nil {
		s.logger.Warn("login rejected: wrong password", "user_id", user.ID)
		return AuthTokens{}, internal.ErrInvalidCredentials
	}
	if !user.IsActive {
		s.logger.Warn("login rejected: account inactive", "user_id", user.ID)
		return AuthTokens{}, internal.ErrUserInactive
	}

	tokens, err := s.issue(ctx, user)
	if err != nil {
		return AuthTokens{}, err
	}
	s.logger.Info("user logged in", "user_id", user.ID, "role", user.Role)
	return tokens, nil
}

// RefreshTokens rotates both tokens. A refresh token is accepted once.
func (s *Service) RefreshTokens(ctx context.Context, dto RefreshTokenDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	claims, err := s.tokenGenerator.ValidateRefreshToken(dto.RefreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, internal.ErrAccountNotFound) {
			return AuthTokens{}, internal.ErrInvalidToken
		}
		s.logger.Error("failed to load account", "error", err, "user_id", claims.UserID)
		return AuthTokens{}, internal.NewInternalError("failed to refresh tokens", err)
	}
	if !user.IsActive {
		return AuthTokens{}, internal.ErrUserInactive
	}
	if user.RefreshTokenHash == nil ||
		bcrypt.CompareHashAndPassword([]byte(*user.RefreshTokenHash), refreshDigest(dto.RefreshToken)) != nil {
		s.logger.Warn("refresh rejected: token does not match stored hash", "user_id", user.ID)
		return AuthTokens{}, internal.ErrInvalidToken
	}

	return s.issue(ctx, user)
}

// Logout forgets the stored refresh token so it can no longer be rotated.
func (s *Service) Logout(ctx context.Context, actor internal.AuthContext) error {
	if err := s.userRepo.UpdateRefreshTokenHash(ctx, actor.Identity, nil); err != nil {
		if errors.Is(err, internal.ErrAccountNotFound) {
			return err
		}
		s.logger.Error("failed to clear refresh token", "error", err, "user_id", actor.Identity)
		return internal.NewInternalError("failed to log out", err)
	}
	s.logger.Info("user logged out", "user_id", actor.Identity)
	return nil
}

func (s *Service) Me(ctx context.Context, actor internal.AuthContext) (*Profile, error) {
	user, err := s.userRepo.GetByID(ctx, actor.Identity)
	if err != nil {
		if errors.Is(err, internal.ErrAccountNotFound) {
			return nil, err
		}
		return nil, internal.NewInternalError("failed to load profile", err)
	}
	return toProfile(user), nil
}

// ValidateAccessToken validates an access token and returns its caller.
func (s *Service) ValidateAccessToken(tokenString string) (internal.AuthContext, error) {
	claims, err := s.tokenGenerator.ValidateAccessToken(tokenString)
	if err != nil {
		return internal.AuthContext{}, err
	}
	return claims.AuthContext(), nil
}

// CreateUser provisions a dashboard account with a hashed password.
func (s *Service) CreateUser(ctx context.Context, dto CreateUserDTO) (*Profile, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.HashPassword(dto.Password)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	user := &userDatamodel.DashboardUser{
		ID:           uuid.NewString(),
		Email:        dto.NormalizedEmail(),
		PasswordHash: hash,
		Role:         dto.Role,
		Name:         strings.TrimSpace(dto.Name),
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, internal.ErrAccountEmailTaken) {
			return nil, err
		}
		return nil, internal.NewInternalError("failed to create account", err)
	}
	s.logger.Info("dashboard account created", "user_id", user.ID, "role", user.Role)
	return toProfile(user), nil
}

// HashPassword creates a bcrypt hash of the password
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *Service) issue(ctx context.Context, user *userDatamodel.DashboardUser) (AuthTokens, error) {
	actor := internal.AuthContext{Identity: user.ID, Role: internal.Role(user.Role), Name: user.Name}

	accessToken, err := s.tokenGenerator.GenerateAccessToken(actor)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to issue tokens", err)
	}
	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(actor)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to issue tokens", err)
	}

	hash, err := bcrypt.GenerateFromPassword(refreshDigest(refreshToken), s.bcryptCost)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to issue tokens", err)
	}
	stored := string(hash)
	if err := s.userRepo.UpdateRefreshTokenHash(ctx, user.ID, &stored); err != nil {
		s.logger.Error("failed to store refresh token hash", "error", err, "user_id", user.ID)
		return AuthTokens{}, internal.NewInternalError("failed to issue tokens", err)
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.tokenGenerator.AccessTTL().Seconds()),
	}, nil
}

// refreshDigest keeps the bcrypt input under its 72 byte limit.
func refreshDigest(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return []byte(hex.EncodeToString(sum[:]))
}

func toProfile(user *userDatamodel.DashboardUser) *Profile {
	return &Profile{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      internal.Role(user.Role),
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}
}
