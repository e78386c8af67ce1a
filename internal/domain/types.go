package domain

import (
	"fmt"
	"strings"
)

type UserID = int64
type DraftID = int64

// Role controls what an authenticated user may do. It has no effect on drafts.
type Role string

const (
	RolePending  Role = "pending"
	RoleApproved Role = "approved"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RolePending, RoleApproved, RoleAdmin:
		return true
	}
	return false
}

// DraftStatus is the moderation state of an email draft. Any status may be
// replaced by any other; no history is kept.
type DraftStatus string

const (
	StatusOnApproval DraftStatus = "on_approval"
	StatusApproved   DraftStatus = "approved"
	StatusEdited     DraftStatus = "edited"
	StatusRejected   DraftStatus = "rejected"
)

func (s DraftStatus) Valid() bool {
	switch s {
	case StatusOnApproval, StatusApproved, StatusEdited, StatusRejected:
		return true
	}
	return false
}

func ParseDraftStatus(raw string) (DraftStatus, error) {
	s := DraftStatus(strings.TrimSpace(raw))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}
