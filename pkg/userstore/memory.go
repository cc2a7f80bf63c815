package userstore

import (
	"context"
	"sync"
	"time"

	"github.com/georadical/layer-flow/pkg/auth"
)

// Memory is an in-process user directory.
type Memory struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[int64]*auth.User
	byEmail map[string]int64
	now     func() time.Time
}

// NewMemory creates an empty in-memory directory.
func NewMemory() *Memory {
	return &Memory{
		byID:    make(map[int64]*auth.User),
		byEmail: make(map[string]int64),
		now:     time.Now,
	}
}

func (m *Memory) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[email]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return clone(m.byID[id]), nil
}

func (m *Memory) FindByID(_ context.Context, id int64) (*auth.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.byID[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return clone(u), nil
}

func (m *Memory) Create(_ context.Context, draft auth.NewUser) (*auth.User, error) {
	if draft.Email == "" {
		return nil, auth.ErrEmailRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.byEmail[draft.Email]; taken {
		return nil, auth.ErrDuplicateEmail
	}

	m.nextID++
	u := fromDraft(m.nextID, draft, m.now().UTC())
	m.byID[u.ID] = u
	m.byEmail[u.Email] = u.ID
	return clone(u), nil
}

func (m *Memory) UpdateProviderID(_ context.Context, id int64, providerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byID[id]
	if !ok {
		return auth.ErrUserNotFound
	}
	u.ProviderID = providerID
	return nil
}

// UpdatePasswordHash replaces the stored password hash.
func (m *Memory) UpdatePasswordHash(_ context.Context, id int64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byID[id]
	if !ok {
		return auth.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

// SetActive enables or disables an account.
func (m *Memory) SetActive(id int64, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byID[id]
	if !ok {
		return auth.ErrUserNotFound
	}
	u.IsActive = active
	return nil
}

// Healthcheck always succeeds.
func (m *Memory) Healthcheck(context.Context) error {
	return nil
}

func fromDraft(id int64, d auth.NewUser, createdAt time.Time) *auth.User {
	provider := d.AuthProvider
	if provider == "" {
		provider = auth.ProviderLocal
	}
	return &auth.User{
		ID:           id,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		AuthProvider: provider,
		ProviderID:   d.ProviderID,
		IsActive:     d.IsActive,
		CreatedAt:    createdAt,
	}
}

func clone(u *auth.User) *auth.User {
	c := *u
	return &c
}

var (
	_ auth.UserDirectory   = (*Memory)(nil)
	_ auth.CredentialStore = (*Memory)(nil)
)
