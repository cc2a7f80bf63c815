package auth

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockUserDirectory is a mock implementation of UserDirectory.
type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if fn, ok := args.Get(0).(func(context.Context, string) *User); ok {
		return fn(ctx, email), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserDirectory) FindByID(ctx context.Context, id int64) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserDirectory) Create(ctx context.Context, draft NewUser) (*User, error) {
	args := m.Called(ctx, draft)
	if fn, ok := args.Get(0).(func(context.Context, NewUser) *User); ok {
		return fn(ctx, draft), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserDirectory) UpdateProviderID(ctx context.Context, id int64, providerID string) error {
	args := m.Called(ctx, id, providerID)
	return args.Error(0)
}

func (m *MockUserDirectory) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}

// MockProviderAdapter is a mock implementation of ProviderAdapter.
type MockProviderAdapter struct {
	mock.Mock
	name string
}

func (m *MockProviderAdapter) ProviderID() string {
	return m.name
}

func (m *MockProviderAdapter) AuthorizeRedirect(ctx context.Context, callbackURL string) (Redirect, error) {
	args := m.Called(ctx, callbackURL)
	return args.Get(0).(Redirect), args.Error(1)
}

func (m *MockProviderAdapter) Exchange(ctx context.Context, cb Callback) (ProviderIdentity, error) {
	args := m.Called(ctx, cb)
	return args.Get(0).(ProviderIdentity), args.Error(1)
}

// memoryStates is a minimal StateStore for adapter tests.
type memoryStates struct {
	mu      sync.Mutex
	pending map[string]PendingAuthorization
	saveErr error
}

func newMemoryStates() *memoryStates {
	return &memoryStates{pending: make(map[string]PendingAuthorization)}
}

func (s *memoryStates) Save(_ context.Context, state string, p PendingAuthorization, _ time.Duration) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[state] = p
	return nil
}

func (s *memoryStates) Consume(_ context.Context, state string) (PendingAuthorization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[state]
	if !ok {
		return PendingAuthorization{}, ErrStateNotFound
	}
	delete(s.pending, state)
	return p, nil
}

func (s *memoryStates) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
