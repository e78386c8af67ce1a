package impl

import (
	"context"
	"errors"
	"sort"
	"sync"

	"moderation/internal/domain"
	"moderation/internal/store"
)

type memoryStore struct {
	mu          sync.Mutex
	users       map[domain.UserID]*domain.User
	usernameIdx map[string]domain.UserID
	drafts      map[domain.DraftID]*domain.EmailDraft
	nextUserID  domain.UserID
	nextDraftID domain.DraftID

	// failWith, when set, is returned by every store call.
	failWith error
}

type storeSnapshot struct {
	users       map[domain.UserID]*domain.User
	usernameIdx map[string]domain.UserID
	drafts      map[domain.DraftID]*domain.EmailDraft
	nextUserID  domain.UserID
	nextDraftID domain.DraftID
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:       make(map[domain.UserID]*domain.User),
		usernameIdx: make(map[string]domain.UserID),
		drafts:      make(map[domain.DraftID]*domain.EmailDraft),
	}
}

func (m *memoryStore) WithTx(ctx context.Context, fn func(tx storeTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.snapshot()
	if err := fn(&memoryTx{store: m}); err != nil {
		m.restore(snapshot)
		return err
	}
	return nil
}

func (m *memoryStore) snapshot() storeSnapshot {
	users := make(map[domain.UserID]*domain.User, len(m.users))
	for id, u := range m.users {
		cp := *u
		users[id] = &cp
	}
	idx := make(map[string]domain.UserID, len(m.usernameIdx))
	for k, v := range m.usernameIdx {
		idx[k] = v
	}
	drafts := make(map[domain.DraftID]*domain.EmailDraft, len(m.drafts))
	for id, d := range m.drafts {
		cp := *d
		drafts[id] = &cp
	}
	return storeSnapshot{users: users, usernameIdx: idx, drafts: drafts, nextUserID: m.nextUserID, nextDraftID: m.nextDraftID}
}

func (m *memoryStore) restore(s storeSnapshot) {
	m.users = s.users
	m.usernameIdx = s.usernameIdx
	m.drafts = s.drafts
	m.nextUserID = s.nextUserID
	m.nextDraftID = s.nextDraftID
}

// addUser seeds a user outside of any transaction.
func (m *memoryStore) addUser(username, hash string, role domain.Role) *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextUserID++
	u := &domain.User{ID: m.nextUserID, Username: username, PasswordHash: hash, Role: role}
	m.users[u.ID] = u
	m.usernameIdx[username] = u.ID
	cp := *u
	return &cp
}

func (m *memoryStore) user(id domain.UserID) *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil
	}
	cp := *u
	return &cp
}

type memoryTx struct {
	store *memoryStore
}

func (t *memoryTx) Users() userStore { return memoryUsers{t.store} }

func (t *memoryTx) Drafts() draftStore { return memoryDrafts{t.store} }

type memoryUsers struct{ m *memoryStore }

func (u memoryUsers) Create(ctx context.Context, usr *domain.User) error {
	if u.m.failWith != nil {
		return u.m.failWith
	}
	if _, exists := u.m.usernameIdx[usr.Username]; exists {
		return store.ErrDuplicateKey
	}
	u.m.nextUserID++
	usr.ID = u.m.nextUserID
	cp := *usr
	u.m.users[usr.ID] = &cp
	u.m.usernameIdx[usr.Username] = usr.ID
	return nil
}

func (u memoryUsers) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	if u.m.failWith != nil {
		return nil, u.m.failWith
	}
	usr, ok := u.m.users[id]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	cp := *usr
	return &cp, nil
}

func (u memoryUsers) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if u.m.failWith != nil {
		return nil, u.m.failWith
	}
	id, ok := u.m.usernameIdx[username]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	return u.GetByID(ctx, id)
}

func (u memoryUsers) UpdateRole(ctx context.Context, id domain.UserID, role domain.Role) error {
	usr, ok := u.m.users[id]
	if !ok {
		return store.ErrRecordNotFound
	}
	usr.Role = role
	return nil
}

func (u memoryUsers) UpdatePasswordHash(ctx context.Context, id domain.UserID, hash string) error {
	usr, ok := u.m.users[id]
	if !ok {
		return store.ErrRecordNotFound
	}
	usr.PasswordHash = hash
	return nil
}

type memoryDrafts struct{ m *memoryStore }

func (d memoryDrafts) Create(ctx context.Context, draft *domain.EmailDraft) error {
	if d.m.failWith != nil {
		return d.m.failWith
	}
	d.m.nextDraftID++
	draft.ID = d.m.nextDraftID
	cp := *draft
	d.m.drafts[draft.ID] = &cp
	return nil
}

func (d memoryDrafts) GetByID(ctx context.Context, id domain.DraftID) (*domain.EmailDraft, error) {
	if d.m.failWith != nil {
		return nil, d.m.failWith
	}
	draft, ok := d.m.drafts[id]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	cp := *draft
	return &cp, nil
}

func (d memoryDrafts) sorted(keep func(*domain.EmailDraft) bool) []domain.EmailDraft {
	out := make([]domain.EmailDraft, 0, len(d.m.drafts))
	for _, draft := range d.m.drafts {
		if keep(draft) {
			out = append(out, *draft)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (d memoryDrafts) ListByStatus(ctx context.Context, status domain.DraftStatus, offset, limit int) ([]domain.EmailDraft, error) {
	if d.m.failWith != nil {
		return nil, d.m.failWith
	}
	all := d.sorted(func(e *domain.EmailDraft) bool { return e.Status == status })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (d memoryDrafts) ListAll(ctx context.Context) ([]domain.EmailDraft, error) {
	if d.m.failWith != nil {
		return nil, d.m.failWith
	}
	return d.sorted(func(*domain.EmailDraft) bool { return true }), nil
}

func (d memoryDrafts) UpdateStatus(ctx context.Context, id domain.DraftID, status domain.DraftStatus) error {
	if d.m.failWith != nil {
		return d.m.failWith
	}
	draft, ok := d.m.drafts[id]
	if !ok {
		return store.ErrRecordNotFound
	}
	draft.Status = status
	return nil
}

func (d memoryDrafts) UpdateContent(ctx context.Context, id domain.DraftID, text, html *string) error {
	draft, ok := d.m.drafts[id]
	if !ok {
		return store.ErrRecordNotFound
	}
	if text != nil {
		draft.TextContent = text
	}
	if html != nil {
		draft.HTMLContent = html
	}
	return nil
}

func (d memoryDrafts) Delete(ctx context.Context, id domain.DraftID) error {
	if _, ok := d.m.drafts[id]; !ok {
		return store.ErrRecordNotFound
	}
	delete(d.m.drafts, id)
	return nil
}

var errDatabaseDown = errors.New("database down")
