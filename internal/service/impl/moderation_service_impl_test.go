package impl

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"moderation/internal/domain"
	"moderation/internal/dto"
	"moderation/internal/events"
	"moderation/internal/service"
	"moderation/internal/store"
	"moderation/pkg/db"

	"github.com/google/uuid"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []events.DraftApproved
}

func (r *recordingNotifier) Dispatch(ctx context.Context, ev events.DraftApproved) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingNotifier) calls() []events.DraftApproved {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.DraftApproved(nil), r.events...)
}

func strPtr(s string) *string { return &s }

func newTestModerationService() (*ModerationServiceImpl, *memoryStore, *recordingNotifier) {
	mem := newMemoryStore()
	n := &recordingNotifier{}
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &ModerationServiceImpl{Store: mem, Notifier: n, now: func() time.Time { return fixed }}, mem, n
}

func TestIntakeAssignsQueueStatus(t *testing.T) {
	svc, _, n := newTestModerationService()

	d, err := svc.Intake(context.Background(), dto.DraftCreateRequest{TextContent: strPtr("hi")})
	if err != nil {
		t.Fatalf("intake: %v", err)
	}
	if d.ID == 0 {
		t.Fatalf("expected generated id")
	}
	if d.Status != domain.StatusOnApproval {
		t.Fatalf("expected on_approval, got %q", d.Status)
	}
	if d.TextContent == nil || *d.TextContent != "hi" || d.HTMLContent != nil {
		t.Fatalf("unexpected content: text=%v html=%v", d.TextContent, d.HTMLContent)
	}
	if d.CreatedAt.IsZero() {
		t.Fatalf("expected timestamp")
	}
	if len(n.calls()) != 0 {
		t.Fatalf("intake must not notify")
	}
}

func TestIntakeAcceptsEmptyPayload(t *testing.T) {
	svc, _, _ := newTestModerationService()
	d, err := svc.Intake(context.Background(), dto.DraftCreateRequest{})
	if err != nil {
		t.Fatalf("intake: %v", err)
	}
	if d.TextContent != nil || d.HTMLContent != nil {
		t.Fatalf("expected both content fields to stay empty")
	}
}

func TestSetStatusAllowsAnyTransition(t *testing.T) {
	svc, _, _ := newTestModerationService()
	d, err := svc.Intake(context.Background(), dto.DraftCreateRequest{TextContent: strPtr("x")})
	if err != nil {
		t.Fatalf("intake: %v", err)
	}

	path := []domain.DraftStatus{
		domain.StatusApproved,
		domain.StatusOnApproval,
		domain.StatusRejected,
		domain.StatusEdited,
		domain.StatusApproved,
		domain.StatusRejected,
	}
	for _, status := range path {
		got, err := svc.SetStatus(context.Background(), d.ID, status)
		if err != nil {
			t.Fatalf("set %s: %v", status, err)
		}
		if got.Status != status {
			t.Fatalf("expected %s, got %s", status, got.Status)
		}
	}
}

func TestApprovalNotifiesWithSnapshot(t *testing.T) {
	svc, _, n := newTestModerationService()
	d, err := svc.Intake(context.Background(), dto.DraftCreateRequest{TextContent: strPtr("hello"), HTMLContent: strPtr("<b>hello</b>")})
	if err != nil {
		t.Fatalf("intake: %v", err)
	}

	got, err := svc.SetStatus(context.Background(), d.ID, domain.StatusApproved)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got.Status != domain.StatusApproved {
		t.Fatalf("expected approved, got %q", got.Status)
	}

	calls := n.calls()
	if len(calls) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(calls))
	}
	ev := calls[0]
	if ev.ID != d.ID || ev.Status != "approved" || *ev.TextContent != "hello" || *ev.HTMLContent != "<b>hello</b>" || !ev.CreatedAt.Equal(d.CreatedAt) {
		t.Fatalf("unexpected snapshot: %+v", ev)
	}
}

func TestRepeatedApprovalNotifiesEachTime(t *testing.T) {
	svc, _, n := newTestModerationService()
	d, err := svc.Intake(context.Background(), dto.DraftCreateRequest{TextContent: strPtr("x")})
	if err != nil {
		t.Fatalf("intake: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := svc.SetStatus(context.Background(), d.ID, domain.StatusApproved); err != nil {
			t.Fatalf("approve #%d: %v", i+1, err)
		}
	}
	if got := len(n.calls()); got != 2 {
		t.Fatalf("expected two notifications for two approvals, got %d", got)
	}
}

func TestNonApprovalTransitionsDoNotNotify(t *testing.T) {
	svc, _, n := newTestModerationService()
	d, err := svc.Intake(context.Background(), dto.DraftCreateRequest{TextContent: strPtr("x")})
	if err != nil {
		t.Fatalf("intake: %v", err)
	}
	for _, status := range []domain.DraftStatus{domain.StatusRejected, domain.StatusEdited, domain.StatusOnApproval} {
		if _, err := svc.SetStatus(context.Background(), d.ID, status); err != nil {
			t.Fatalf("set %s: %v", status, err)
		}
	}
	if got := len(n.calls()); got != 0 {
		t.Fatalf("expected no notifications, got %d", got)
	}
}

func TestSetStatusErrors(t *testing.T) {
	svc, mem, n := newTestModerationService()

	if _, err := svc.SetStatus(context.Background(), 999, domain.StatusApproved); !errors.Is(err, domain.ErrDraftNotFound) {
		t.Fatalf("expected ErrDraftNotFound, got %v", err)
	}
	if _, err := svc.SetStatus(context.Background(), 1, domain.DraftStatus("sent")); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}

	mem.failWith = errDatabaseDown
	if _, err := svc.SetStatus(context.Background(), 1, domain.StatusApproved); !errors.Is(err, errDatabaseDown) {
		t.Fatalf("expected store failure to propagate, got %v", err)
	}
	if len(n.calls()) != 0 {
		t.Fatalf("failed transitions must not notify")
	}
}

func TestPendingListsOnlyQueue(t *testing.T) {
	svc, _, _ := newTestModerationService()
	ctx := context.Background()

	var queued []domain.DraftID
	for i := 0; i < 5; i++ {
		d, err := svc.Intake(ctx, dto.DraftCreateRequest{TextContent: strPtr("x")})
		if err != nil {
			t.Fatalf("intake: %v", err)
		}
		queued = append(queued, d.ID)
	}
	if _, err := svc.SetStatus(ctx, queued[1], domain.StatusRejected); err != nil {
		t.Fatalf("reject: %v", err)
	}

	page, err := svc.Pending(ctx, 0, 0)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(page) != 4 {
		t.Fatalf("expected 4 queued drafts, got %d", len(page))
	}
	for _, d := range page {
		if d.Status != domain.StatusOnApproval {
			t.Fatalf("non-queued draft in pending list: %+v", d)
		}
	}

	page, err = svc.Pending(ctx, 1, 2)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(page) != 2 || page[0].ID != queued[2] || page[1].ID != queued[3] {
		t.Fatalf("unexpected page: %+v", page)
	}

	page, err = svc.Pending(ctx, -5, 1)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(page) != 1 || page[0].ID != queued[0] {
		t.Fatalf("negative skip should start at the beginning: %+v", page)
	}
}

func TestPendingLimitDefaults(t *testing.T) {
	svc, _, _ := newTestModerationService()
	ctx := context.Background()
	for i := 0; i < service.DefaultQueueLimit+20; i++ {
		if _, err := svc.Intake(ctx, dto.DraftCreateRequest{}); err != nil {
			t.Fatalf("intake: %v", err)
		}
	}

	page, err := svc.Pending(ctx, 0, service.DefaultQueueLimit)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(page) != service.DefaultQueueLimit {
		t.Fatalf("expected %d drafts, got %d", service.DefaultQueueLimit, len(page))
	}

	page, err = svc.Pending(ctx, 0, 0)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(page) != service.DefaultQueueLimit+20 {
		t.Fatalf("generic default should cover all %d drafts, got %d", service.DefaultQueueLimit+20, len(page))
	}
}

func TestAllReturnsEveryStatusOrdered(t *testing.T) {
	svc, _, _ := newTestModerationService()
	ctx := context.Background()
	statuses := []domain.DraftStatus{domain.StatusApproved, domain.StatusRejected, domain.StatusEdited, domain.StatusOnApproval}
	for _, s := range statuses {
		d, err := svc.Intake(ctx, dto.DraftCreateRequest{})
		if err != nil {
			t.Fatalf("intake: %v", err)
		}
		if _, err := svc.SetStatus(ctx, d.ID, s); err != nil {
			t.Fatalf("set status: %v", err)
		}
	}

	all, err := svc.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != len(statuses) {
		t.Fatalf("expected %d drafts, got %d", len(statuses), len(all))
	}
	for i, d := range all {
		if d.Status != statuses[i] {
			t.Fatalf("draft %d: expected %s, got %s", i, statuses[i], d.Status)
		}
		if i > 0 && all[i-1].ID >= d.ID {
			t.Fatalf("drafts not ordered by id")
		}
	}
}

func TestDeleteIsUnconditional(t *testing.T) {
	svc, _, _ := newTestModerationService()
	ctx := context.Background()
	d, err := svc.Intake(ctx, dto.DraftCreateRequest{TextContent: strPtr("bye")})
	if err != nil {
		t.Fatalf("intake: %v", err)
	}
	if _, err := svc.SetStatus(ctx, d.ID, domain.StatusApproved); err != nil {
		t.Fatalf("approve: %v", err)
	}

	deleted, err := svc.Delete(ctx, d.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted.ID != d.ID || deleted.Status != domain.StatusApproved {
		t.Fatalf("unexpected deleted record: %+v", deleted)
	}

	if _, err := svc.Delete(ctx, d.ID); !errors.Is(err, domain.ErrDraftNotFound) {
		t.Fatalf("expected ErrDraftNotFound, got %v", err)
	}
	if _, err := svc.Delete(ctx, 999); !errors.Is(err, domain.ErrDraftNotFound) {
		t.Fatalf("expected ErrDraftNotFound, got %v", err)
	}
}

func TestUpdateContentKeepsStatus(t *testing.T) {
	svc, _, n := newTestModerationService()
	ctx := context.Background()
	d, err := svc.Intake(ctx, dto.DraftCreateRequest{TextContent: strPtr("v1")})
	if err != nil {
		t.Fatalf("intake: %v", err)
	}

	got, err := svc.UpdateContent(ctx, d.ID, dto.DraftUpdateRequest{HTMLContent: strPtr("<p>v2</p>")})
	if err != nil {
		t.Fatalf("update content: %v", err)
	}
	if *got.TextContent != "v1" || *got.HTMLContent != "<p>v2</p>" || got.Status != domain.StatusOnApproval {
		t.Fatalf("unexpected draft after edit: %+v", got)
	}
	if len(n.calls()) != 0 {
		t.Fatalf("content edits must not notify")
	}

	if _, err := svc.UpdateContent(ctx, 999, dto.DraftUpdateRequest{TextContent: strPtr("x")}); !errors.Is(err, domain.ErrDraftNotFound) {
		t.Fatalf("expected ErrDraftNotFound, got %v", err)
	}
	if _, err := svc.UpdateContent(ctx, 999, dto.DraftUpdateRequest{}); !errors.Is(err, domain.ErrDraftNotFound) {
		t.Fatalf("expected ErrDraftNotFound for empty edit, got %v", err)
	}
}

func TestModerationServiceOnSQLite(t *testing.T) {
	gdb, err := db.OpenGorm(db.Config{DSN: "file:" + uuid.NewString() + "?mode=memory&cache=shared"})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(gdb) })
	st := store.New(gdb)
	if err := st.AutoMigrate(context.Background()); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	n := &recordingNotifier{}
	svc := NewModerationServiceImpl(st, n)
	ctx := context.Background()

	d, err := svc.Intake(ctx, dto.DraftCreateRequest{TextContent: strPtr("hi")})
	if err != nil {
		t.Fatalf("intake: %v", err)
	}
	if _, err := svc.SetStatus(ctx, d.ID, domain.StatusApproved); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := svc.SetStatus(ctx, d.ID, domain.StatusApproved); err != nil {
		t.Fatalf("approve again: %v", err)
	}
	if got := len(n.calls()); got != 2 {
		t.Fatalf("expected two notifications, got %d", got)
	}

	pending, err := svc.Pending(ctx, 0, service.DefaultQueueLimit)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("approved draft still listed as pending")
	}

	if _, err := svc.Delete(ctx, d.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Delete(ctx, d.ID); !errors.Is(err, domain.ErrDraftNotFound) {
		t.Fatalf("expected ErrDraftNotFound, got %v", err)
	}
}
