package service

import (
	"context"

	"moderation/internal/events"
)

// Notifier forwards approved drafts. Dispatch must return without waiting for
// delivery and never reports delivery failures to the caller.
type Notifier interface {
	Dispatch(ctx context.Context, ev events.DraftApproved)
}
