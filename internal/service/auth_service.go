package service

import (
	"context"
	"time"

	"github.com/safetydesk/incident-service/internal/auth"
	"github.com/safetydesk/incident-service/internal/config"
	"github.com/safetydesk/incident-service/internal/domain"
	"github.com/safetydesk/incident-service/internal/repository"
	apperrors "github.com/safetydesk/incident-service/pkg/util"
)

// AuthService handles admin login.
type AuthService struct {
	admins repository.AdminRepository
	tokens *auth.TokenManager
}

// NewAuthService constructs the service.
func NewAuthService(cfg config.AuthConfig, admins repository.AdminRepository) *AuthService {
	return &AuthService{
		admins: admins,
		tokens: auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
	}
}

// TokenManager exposes the manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// Login verifies credentials and issues a bearer token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, time.Time, *domain.Admin, error) {
	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsNotFound(err) {
			return "", time.Time{}, nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return "", time.Time{}, nil, err
	}
	if !admin.IsActive {
		return "", time.Time{}, nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(admin.PasswordHash, password); err != nil {
		return "", time.Time{}, nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateToken(admin.ID, admin.Role)
	if err != nil {
		return "", time.Time{}, nil, err
	}
	return token, expiresAt, admin, nil
}
