package domain

import "time"

// EmailDraft is a generated email waiting for, or having received, a
// moderation decision.
type EmailDraft struct {
	ID          DraftID     `gorm:"primaryKey;autoIncrement" db:"id" json:"id"`
	TextContent *string     `gorm:"column:text_content;type:text" db:"text_content" json:"text_content"`
	HTMLContent *string     `gorm:"column:html_content;type:text" db:"html_content" json:"html_content"`
	Status      DraftStatus `gorm:"type:varchar(16);not null;index:ix_emails_status" db:"status" json:"status"`
	CreatedAt   time.Time   `gorm:"not null" db:"created_at" json:"created_at"`
}

func (EmailDraft) TableName() string { return "emails" }
