package domain

import (
	"errors"
	"testing"
)

func TestParseDraftStatus(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    DraftStatus
		wantErr bool
	}{
		{name: "on approval", input: "on_approval", want: StatusOnApproval},
		{name: "approved", input: "approved", want: StatusApproved},
		{name: "edited", input: "edited", want: StatusEdited},
		{name: "rejected", input: "rejected", want: StatusRejected},
		{name: "surrounding spaces", input: " approved ", want: StatusApproved},
		{name: "wrong case", input: "APPROVED", wantErr: true},
		{name: "unknown", input: "sent", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDraftStatus(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidStatus) {
					t.Fatalf("expected ErrInvalidStatus, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ParseDraftStatus(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RolePending, RoleApproved, RoleAdmin} {
		if !r.Valid() {
			t.Fatalf("expected %q to be valid", r)
		}
	}
	if Role("owner").Valid() {
		t.Fatalf("expected unknown role to be invalid")
	}
}
