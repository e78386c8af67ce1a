package service

import (
	"context"

	"moderation/internal/domain"
	"moderation/internal/dto"
)

const (
	// DefaultQueueLimit is the page size of the moderation queue endpoint.
	DefaultQueueLimit = 100
	// DefaultListLimit applies when a caller passes no limit at all.
	DefaultListLimit = 1000
)

type ModerationService interface {
	Intake(ctx context.Context, r dto.DraftCreateRequest) (*domain.EmailDraft, error)
	Pending(ctx context.Context, skip, limit int) ([]domain.EmailDraft, error)
	All(ctx context.Context) ([]domain.EmailDraft, error)
	SetStatus(ctx context.Context, id domain.DraftID, status domain.DraftStatus) (*domain.EmailDraft, error)
	UpdateContent(ctx context.Context, id domain.DraftID, r dto.DraftUpdateRequest) (*domain.EmailDraft, error)
	Delete(ctx context.Context, id domain.DraftID) (*domain.EmailDraft, error)
}
