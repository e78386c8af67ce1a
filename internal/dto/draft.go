package dto

import (
	"time"

	"moderation/internal/domain"
)

// DraftCreateRequest is the webhook payload. Anything besides the two content
// fields is ignored.
type DraftCreateRequest struct {
	TextContent *string `json:"text_content"`
	HTMLContent *string `json:"html_content"`
}

// DraftUpdateRequest replaces the content fields that are present.
type DraftUpdateRequest struct {
	TextContent *string `json:"text_content"`
	HTMLContent *string `json:"html_content"`
}

type StatusUpdateRequest struct {
	Status string `json:"status"`
}

type DraftResponse struct {
	ID          int64     `json:"id"`
	TextContent *string   `json:"text_content"`
	HTMLContent *string   `json:"html_content"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewDraftResponse(d *domain.EmailDraft) DraftResponse {
	return DraftResponse{
		ID:          d.ID,
		TextContent: d.TextContent,
		HTMLContent: d.HTMLContent,
		Status:      string(d.Status),
		CreatedAt:   d.CreatedAt,
	}
}

func NewDraftListResponse(drafts []domain.EmailDraft) []DraftResponse {
	out := make([]DraftResponse, 0, len(drafts))
	for i := range drafts {
		out = append(out, NewDraftResponse(&drafts[i]))
	}
	return out
}
