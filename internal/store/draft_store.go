package store

import (
	"context"

	"moderation/internal/domain"

	"gorm.io/gorm"
)

type DraftStore struct{ db *gorm.DB }

func (s *Store) Drafts() *DraftStore { return &DraftStore{db: s.DB} }

func (d *DraftStore) Create(ctx context.Context, draft *domain.EmailDraft) error {
	return translate(d.db.WithContext(ctx).Create(draft).Error)
}

func (d *DraftStore) GetByID(ctx context.Context, id domain.DraftID) (*domain.EmailDraft, error) {
	var draft domain.EmailDraft
	if err := d.db.WithContext(ctx).First(&draft, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &draft, nil
}

// ListByStatus returns one page of drafts in the given status, oldest first.
func (d *DraftStore) ListByStatus(ctx context.Context, status domain.DraftStatus, offset, limit int) ([]domain.EmailDraft, error) {
	var drafts []domain.EmailDraft
	err := d.db.WithContext(ctx).
		Where("status = ?", status).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&drafts).Error
	if err != nil {
		return nil, translate(err)
	}
	return drafts, nil
}

func (d *DraftStore) ListAll(ctx context.Context) ([]domain.EmailDraft, error) {
	var drafts []domain.EmailDraft
	if err := d.db.WithContext(ctx).Order("id ASC").Find(&drafts).Error; err != nil {
		return nil, translate(err)
	}
	return drafts, nil
}

// UpdateStatus overwrites the status without any version check; concurrent
// writers race and the last one wins.
func (d *DraftStore) UpdateStatus(ctx context.Context, id domain.DraftID, status domain.DraftStatus) error {
	res := d.db.WithContext(ctx).Model(&domain.EmailDraft{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// UpdateContent writes only the non-nil content fields.
func (d *DraftStore) UpdateContent(ctx context.Context, id domain.DraftID, text, html *string) error {
	changes := map[string]any{}
	if text != nil {
		changes["text_content"] = *text
	}
	if html != nil {
		changes["html_content"] = *html
	}
	if len(changes) == 0 {
		return nil
	}
	res := d.db.WithContext(ctx).Model(&domain.EmailDraft{}).
		Where("id = ?", id).
		Updates(changes)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (d *DraftStore) Delete(ctx context.Context, id domain.DraftID) error {
	res := d.db.WithContext(ctx).Delete(&domain.EmailDraft{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
