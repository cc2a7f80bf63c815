package oauthstate

import (
	"context"
	"sync"
	"time"

	"github.com/georadical/layer-flow/pkg/auth"
)

type memoryEntry struct {
	pending   auth.PendingAuthorization
	expiresAt time.Time
}

// Memory is an in-process state store. Expired entries are dropped on access.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// MemoryOption configures Memory.
type MemoryOption func(*Memory)

// WithClock overrides the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMemory creates an empty store.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{entries: make(map[string]memoryEntry), now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Save(_ context.Context, state string, pending auth.PendingAuthorization, ttl time.Duration) error {
	if state == "" {
		return ErrEmptyState
	}
	if ttl <= 0 {
		return ErrInvalidTTL
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)
	if _, ok := m.entries[state]; ok {
		return ErrStateExists
	}
	m.entries[state] = memoryEntry{pending: pending, expiresAt: now.Add(ttl)}
	return nil
}

func (m *Memory) Consume(_ context.Context, state string) (auth.PendingAuthorization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[state]
	if !ok {
		return auth.PendingAuthorization{}, auth.ErrStateNotFound
	}
	delete(m.entries, state)
	if !m.now().Before(e.expiresAt) {
		return auth.PendingAuthorization{}, auth.ErrStateNotFound
	}
	return e.pending, nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Healthcheck always succeeds.
func (m *Memory) Healthcheck(context.Context) error {
	return nil
}

func (m *Memory) sweep(now time.Time) {
	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, k)
		}
	}
}

var _ auth.StateStore = (*Memory)(nil)
