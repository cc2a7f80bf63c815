package auth

import (
	"context"
	"time"
)

// UserDirectory is the persistence contract of the authentication layer.
//
// Implementations must enforce email uniqueness with a storage-level
// constraint and report a violation as ErrDuplicateEmail, so two concurrent
// Create calls for one email yield exactly one success. Lookups return
// ErrUserNotFound when nothing matches. Each call acquires and releases its
// own storage handle.
type UserDirectory interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, draft NewUser) (*User, error)
	// UpdateProviderID sets ProviderID. Repeating the call with the same
	// value leaves the record unchanged.
	UpdateProviderID(ctx context.Context, id int64, providerID string) error
}

// PasswordHasher hashes and verifies local passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// CredentialStore is implemented by directories that can replace a stored
// password hash. Login uses it to upgrade outdated hashes.
type CredentialStore interface {
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
}

// RehashPolicy is implemented by hashers that can tell an outdated hash
// (another algorithm or weaker parameters) from a current one.
type RehashPolicy interface {
	NeedsRehash(hash string) bool
}

// TokenCodec issues and verifies bearer tokens for a user id. Issue returns
// the expiry actually embedded in the token.
type TokenCodec interface {
	Issue(subjectID int64, ttl time.Duration) (string, time.Time, error)
	Verify(token string) (int64, error)
}
