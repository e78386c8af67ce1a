package impl

import (
	"context"

	"moderation/internal/domain"
	"moderation/internal/store"
)

type dataStore interface {
	WithTx(ctx context.Context, fn func(tx storeTx) error) error
}

type storeTx interface {
	Users() userStore
	Drafts() draftStore
}

type userStore interface {
	Create(ctx context.Context, usr *domain.User) error
	GetByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateRole(ctx context.Context, id domain.UserID, role domain.Role) error
	UpdatePasswordHash(ctx context.Context, id domain.UserID, hash string) error
}

type draftStore interface {
	Create(ctx context.Context, draft *domain.EmailDraft) error
	GetByID(ctx context.Context, id domain.DraftID) (*domain.EmailDraft, error)
	ListByStatus(ctx context.Context, status domain.DraftStatus, offset, limit int) ([]domain.EmailDraft, error)
	ListAll(ctx context.Context) ([]domain.EmailDraft, error)
	UpdateStatus(ctx context.Context, id domain.DraftID, status domain.DraftStatus) error
	UpdateContent(ctx context.Context, id domain.DraftID, text, html *string) error
	Delete(ctx context.Context, id domain.DraftID) error
}

type gormStoreAdapter struct {
	store *store.Store
}

func (g gormStoreAdapter) WithTx(ctx context.Context, fn func(tx storeTx) error) error {
	if g.store == nil {
		return ErrNilStore
	}
	return g.store.WithTx(ctx, func(tx *store.Store) error {
		return fn(gormTxAdapter{tx: tx})
	})
}

type gormTxAdapter struct {
	tx *store.Store
}

func (g gormTxAdapter) Users() userStore { return g.tx.Users() }

func (g gormTxAdapter) Drafts() draftStore { return g.tx.Drafts() }
