package service

import (
	"context"
	"time"

	"moderation/internal/domain"
)

type TokenService interface {
	Issue(ctx context.Context, user *domain.User) (token string, expiresAt time.Time, err error)
	// Parse returns the subject (username) of a valid token.
	Parse(ctx context.Context, token string) (subject string, err error)
}
