package impl

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"moderation/internal/domain"
	"moderation/internal/jwtsigner"
	"moderation/internal/observability/metrics"
	"moderation/internal/observability/middleware"
)

var errNoSubject = errors.New("token has no subject")

type TokenServiceImpl struct {
	signer *jwtsigner.Signer
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(signer *jwtsigner.Signer, ttl time.Duration) *TokenServiceImpl {
	return &TokenServiceImpl{signer: signer, ttl: ttl, now: time.Now}
}

// Issue signs an access token whose subject is the username.
func (t *TokenServiceImpl) Issue(ctx context.Context, user *domain.User) (string, time.Time, error) {
	result := "success"
	defer func() {
		metrics.TokensIssuedTotal.WithLabelValues(result).Inc()
	}()

	now := t.now().UTC()
	token, err := t.signer.Sign(user.Username, now, t.ttl)
	if err != nil {
		result = "failure"
		return "", time.Time{}, err
	}
	expiresAt := now.Add(t.ttl)

	slog.Info("access token issued",
		append([]any{"user_id", user.ID, "alg", t.signer.Algorithm(), "expires_at", expiresAt}, middleware.LogAttrs(ctx)...)...,
	)
	return token, expiresAt, nil
}

func (t *TokenServiceImpl) Parse(ctx context.Context, token string) (string, error) {
	claims, err := t.signer.Parse(token, t.now())
	if err != nil {
		slog.Debug("access token rejected", append([]any{"error", err}, middleware.LogAttrs(ctx)...)...)
		return "", err
	}
	if claims.Subject == "" {
		return "", errNoSubject
	}
	return claims.Subject, nil
}
