package service

import (
	"context"

	"moderation/internal/domain"
	"moderation/internal/dto"
)

type AuthService interface {
	Register(ctx context.Context, r dto.RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, r dto.LoginRequest) (*dto.LoginResult, error)
	// Verify resolves a session token to its user. Every failure is reported
	// as domain.ErrUnauthorized.
	Verify(ctx context.Context, token string) (*domain.User, error)
	RequireRole(user *domain.User, role domain.Role) (*domain.User, error)
	PromoteUser(ctx context.Context, id domain.UserID) (*domain.User, error)
	EnsureAdmin(ctx context.Context, username, password string) (*domain.User, error)
}
