package impl

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"moderation/internal/domain"
	"moderation/internal/dto"
	"moderation/internal/events"
	"moderation/internal/observability/metrics"
	"moderation/internal/observability/middleware"
	"moderation/internal/service"
	"moderation/internal/store"
)

type ModerationServiceImpl struct {
	Store    dataStore
	Notifier service.Notifier
	now      func() time.Time
}

func NewModerationServiceImpl(store *store.Store, notifier service.Notifier) *ModerationServiceImpl {
	return &ModerationServiceImpl{
		Store:    gormStoreAdapter{store: store},
		Notifier: notifier,
		now:      time.Now,
	}
}

// Intake stores a new draft in the moderation queue. Only the content is taken
// from the caller; status, id and timestamp are always assigned here.
func (m *ModerationServiceImpl) Intake(ctx context.Context, r dto.DraftCreateRequest) (*domain.EmailDraft, error) {
	draft := &domain.EmailDraft{
		TextContent: r.TextContent,
		HTMLContent: r.HTMLContent,
		Status:      domain.StatusOnApproval,
		CreatedAt:   m.now().UTC(),
	}
	err := m.Store.WithTx(ctx, func(tx storeTx) error {
		return tx.Drafts().Create(ctx, draft)
	})
	if err != nil {
		return nil, err
	}

	metrics.DraftsReceivedTotal.Inc()
	slog.Info("draft received", append([]any{"draft_id", draft.ID}, middleware.LogAttrs(ctx)...)...)
	return draft, nil
}

// Pending lists the moderation queue oldest first. A non-positive limit means
// service.DefaultListLimit.
func (m *ModerationServiceImpl) Pending(ctx context.Context, skip, limit int) ([]domain.EmailDraft, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = service.DefaultListLimit
	}

	var drafts []domain.EmailDraft
	err := m.Store.WithTx(ctx, func(tx storeTx) error {
		var err error
		drafts, err = tx.Drafts().ListByStatus(ctx, domain.StatusOnApproval, skip, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return drafts, nil
}

func (m *ModerationServiceImpl) All(ctx context.Context) ([]domain.EmailDraft, error) {
	var drafts []domain.EmailDraft
	err := m.Store.WithTx(ctx, func(tx storeTx) error {
		var err error
		drafts, err = tx.Drafts().ListAll(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return drafts, nil
}

// SetStatus moves a draft to any status. Every call that lands on approved
// dispatches a notification, including repeated approvals.
func (m *ModerationServiceImpl) SetStatus(ctx context.Context, id domain.DraftID, status domain.DraftStatus) (*domain.EmailDraft, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	var draft *domain.EmailDraft
	var previous domain.DraftStatus
	err := m.Store.WithTx(ctx, func(tx storeTx) error {
		current, err := tx.Drafts().GetByID(ctx, id)
		if err != nil {
			return notFoundAsDraft(err)
		}
		previous = current.Status
		if err := tx.Drafts().UpdateStatus(ctx, id, status); err != nil {
			return notFoundAsDraft(err)
		}
		current.Status = status
		draft = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.DraftStatusTransitionsTotal.WithLabelValues(string(status)).Inc()
	slog.Info("draft status changed",
		append([]any{"draft_id", id, "from", previous, "to", status}, middleware.LogAttrs(ctx)...)...,
	)

	// Dispatch only after the transaction committed.
	if status == domain.StatusApproved && m.Notifier != nil {
		m.Notifier.Dispatch(ctx, events.NewDraftApproved(draft))
	}
	return draft, nil
}

// UpdateContent replaces the content fields present in r. The status is left
// as is.
func (m *ModerationServiceImpl) UpdateContent(ctx context.Context, id domain.DraftID, r dto.DraftUpdateRequest) (*domain.EmailDraft, error) {
	var draft *domain.EmailDraft
	err := m.Store.WithTx(ctx, func(tx storeTx) error {
		if err := tx.Drafts().UpdateContent(ctx, id, r.TextContent, r.HTMLContent); err != nil {
			return notFoundAsDraft(err)
		}
		d, err := tx.Drafts().GetByID(ctx, id)
		if err != nil {
			return notFoundAsDraft(err)
		}
		draft = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("draft content edited", append([]any{"draft_id", id}, middleware.LogAttrs(ctx)...)...)
	return draft, nil
}

// Delete removes a draft whatever its status and returns what was removed.
func (m *ModerationServiceImpl) Delete(ctx context.Context, id domain.DraftID) (*domain.EmailDraft, error) {
	var draft *domain.EmailDraft
	err := m.Store.WithTx(ctx, func(tx storeTx) error {
		d, err := tx.Drafts().GetByID(ctx, id)
		if err != nil {
			return notFoundAsDraft(err)
		}
		if err := tx.Drafts().Delete(ctx, id); err != nil {
			return notFoundAsDraft(err)
		}
		draft = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.DraftsDeletedTotal.Inc()
	slog.Info("draft deleted", append([]any{"draft_id", id, "status", draft.Status}, middleware.LogAttrs(ctx)...)...)
	return draft, nil
}

func notFoundAsDraft(err error) error {
	if errors.Is(err, store.ErrRecordNotFound) {
		return domain.ErrDraftNotFound
	}
	return err
}
