package impl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"moderation/internal/domain"
	"moderation/internal/dto"
	"moderation/internal/observability/metrics"
	"moderation/internal/observability/middleware"
	"moderation/internal/service"
	"moderation/internal/store"
)

type AuthServiceImpl struct {
	Store           dataStore
	PasswordService service.PasswordService
	TService        service.TokenService
	now             func() time.Time
}

func NewAuthServiceImpl(store *store.Store, passwordService service.PasswordService, tokenService service.TokenService) *AuthServiceImpl {
	return &AuthServiceImpl{
		Store:           gormStoreAdapter{store: store},
		PasswordService: passwordService,
		TService:        tokenService,
		now:             time.Now,
	}
}

func (a *AuthServiceImpl) Register(ctx context.Context, r dto.RegisterRequest) (*domain.User, error) {
	result := "success"
	defer func() {
		metrics.AuthRegistrationsTotal.WithLabelValues(result).Inc()
	}()

	if strings.TrimSpace(r.Username) == "" || r.Password == "" {
		result = "invalid"
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrInvalidRequest)
	}

	var created *domain.User
	err := a.Store.WithTx(ctx, func(tx storeTx) error {
		_, err := tx.Users().GetByUsername(ctx, r.Username)
		switch {
		case err == nil:
			return domain.ErrUsernameTaken
		case !errors.Is(err, store.ErrRecordNotFound):
			return err
		}

		hash, err := a.PasswordService.Hash(r.Password)
		if err != nil {
			return err
		}
		now := a.now().UTC()
		u := &domain.User{
			Username:     r.Username,
			PasswordHash: hash,
			Role:         domain.RolePending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.Users().Create(ctx, u); err != nil {
			// lost a race with a concurrent registration
			if errors.Is(err, store.ErrDuplicateKey) {
				return domain.ErrUsernameTaken
			}
			return err
		}
		created = u
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUsernameTaken):
			result = "conflict"
		case errors.Is(err, domain.ErrInvalidRequest):
			result = "invalid"
		default:
			result = "failure"
		}
		return nil, err
	}

	slog.Info("user registered", append([]any{"user_id", created.ID, "username", created.Username}, middleware.LogAttrs(ctx)...)...)
	return created, nil
}

func (a *AuthServiceImpl) Login(ctx context.Context, r dto.LoginRequest) (*dto.LoginResult, error) {
	result := "success"
	defer func() {
		metrics.AuthLoginsTotal.WithLabelValues(result).Inc()
	}()

	if r.Username == "" || r.Password == "" {
		result = "invalid_credentials"
		return nil, domain.ErrInvalidCredentials
	}

	var user *domain.User
	err := a.Store.WithTx(ctx, func(tx storeTx) error {
		u, err := tx.Users().GetByUsername(ctx, r.Username)
		if err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				return domain.ErrInvalidCredentials // don't leak which field failed
			}
			return err
		}

		rehashNeeded, ok := a.PasswordService.Verify(r.Password, u.PasswordHash)
		if !ok {
			return domain.ErrInvalidCredentials
		}
		// Correct password, but an admin has not let the user in yet.
		if !u.Admitted() {
			return domain.ErrPendingApproval
		}

		if rehashNeeded {
			newHash, err := a.PasswordService.Hash(r.Password)
			if err != nil {
				return err
			}
			if err := tx.Users().UpdatePasswordHash(ctx, u.ID, newHash); err != nil {
				return err
			}
			u.PasswordHash = newHash
		}
		user = u
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			result = "invalid_credentials"
		case errors.Is(err, domain.ErrPendingApproval):
			result = "pending"
		default:
			result = "failure"
		}
		return nil, err
	}

	token, expiresAt, err := a.TService.Issue(ctx, user)
	if err != nil {
		result = "failure"
		return nil, err
	}
	slog.Info("user logged in", append([]any{"user_id", user.ID, "role", user.Role}, middleware.LogAttrs(ctx)...)...)
	return &dto.LoginResult{AccessToken: token, ExpiresAt: expiresAt}, nil
}

func (a *AuthServiceImpl) Verify(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}
	subject, err := a.TService.Parse(ctx, token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	var user *domain.User
	err = a.Store.WithTx(ctx, func(tx storeTx) error {
		u, err := tx.Users().GetByUsername(ctx, subject)
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

// RequireRole checks for exactly role; admin does not satisfy approved.
func (a *AuthServiceImpl) RequireRole(user *domain.User, role domain.Role) (*domain.User, error) {
	if user == nil || user.Role != role {
		return nil, domain.ErrForbidden
	}
	return user, nil
}

// PromoteUser admits a user by setting their role to approved. The role is
// overwritten unconditionally, so promoting an admin demotes them.
func (a *AuthServiceImpl) PromoteUser(ctx context.Context, id domain.UserID) (*domain.User, error) {
	result := "success"
	defer func() {
		metrics.UserPromotionsTotal.WithLabelValues(result).Inc()
	}()

	var user *domain.User
	var previous domain.Role
	err := a.Store.WithTx(ctx, func(tx storeTx) error {
		u, err := tx.Users().GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				return domain.ErrUserNotFound
			}
			return err
		}
		previous = u.Role
		if err := tx.Users().UpdateRole(ctx, u.ID, domain.RoleApproved); err != nil {
			return err
		}
		u.Role = domain.RoleApproved
		user = u
		return nil
	})
	if err != nil {
		result = "failure"
		if errors.Is(err, domain.ErrUserNotFound) {
			result = "not_found"
		}
		return nil, err
	}

	if previous == domain.RoleAdmin {
		slog.Warn("admin role replaced by approved", append([]any{"user_id", user.ID}, middleware.LogAttrs(ctx)...)...)
	}
	slog.Info("user promoted", append([]any{"user_id", user.ID, "previous_role", previous}, middleware.LogAttrs(ctx)...)...)
	return user, nil
}

// EnsureAdmin creates username as an admin, or turns an existing account into
// one. A non-empty password replaces the stored one.
func (a *AuthServiceImpl) EnsureAdmin(ctx context.Context, username, password string) (*domain.User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrInvalidRequest)
	}

	var admin *domain.User
	err := a.Store.WithTx(ctx, func(tx storeTx) error {
		u, err := tx.Users().GetByUsername(ctx, username)
		switch {
		case errors.Is(err, store.ErrRecordNotFound):
			if password == "" {
				return fmt.Errorf("%w: password is required for a new admin", domain.ErrInvalidRequest)
			}
			hash, err := a.PasswordService.Hash(password)
			if err != nil {
				return err
			}
			now := a.now().UTC()
			u = &domain.User{Username: username, PasswordHash: hash, Role: domain.RoleAdmin, CreatedAt: now, UpdatedAt: now}
			if err := tx.Users().Create(ctx, u); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if password != "" {
				hash, err := a.PasswordService.Hash(password)
				if err != nil {
					return err
				}
				if err := tx.Users().UpdatePasswordHash(ctx, u.ID, hash); err != nil {
					return err
				}
				u.PasswordHash = hash
			}
			if u.Role != domain.RoleAdmin {
				if err := tx.Users().UpdateRole(ctx, u.ID, domain.RoleAdmin); err != nil {
					return err
				}
				u.Role = domain.RoleAdmin
			}
		}
		admin = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("admin ensured", "user_id", admin.ID, "username", admin.Username)
	return admin, nil
}
