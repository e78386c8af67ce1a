package events

import (
	"time"

	"moderation/internal/domain"
)

// DraftApproved is the snapshot forwarded to the automation pipeline when a
// draft lands on approved.
type DraftApproved struct {
	ID          int64     `json:"id"`
	TextContent *string   `json:"text_content"`
	HTMLContent *string   `json:"html_content"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewDraftApproved(d *domain.EmailDraft) DraftApproved {
	ev := DraftApproved{
		ID:        d.ID,
		Status:    string(d.Status),
		CreatedAt: d.CreatedAt,
	}
	// The snapshot owns copies of the content strings.
	if d.TextContent != nil {
		v := *d.TextContent
		ev.TextContent = &v
	}
	if d.HTMLContent != nil {
		v := *d.HTMLContent
		ev.HTMLContent = &v
	}
	return ev
}
