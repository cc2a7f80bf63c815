package auth

import "time"

// Identity providers. ProviderLocal marks accounts created with a password.
const (
	ProviderLocal     = "local"
	ProviderGoogle    = "google"
	ProviderMicrosoft = "microsoft"
	ProviderGithub    = "github"
)

// KnownProvider reports whether p is one of the supported provider names.
func KnownProvider(p string) bool {
	switch p {
	case ProviderLocal, ProviderGoogle, ProviderMicrosoft, ProviderGithub:
		return true
	}
	return false
}

// User is an identity record.
type User struct {
	ID    int64
	Email string
	// PasswordHash is empty for provider-only accounts.
	PasswordHash string
	// AuthProvider records how the account was created and never changes.
	AuthProvider string
	// ProviderID is the provider subject; empty until set at creation or backfilled.
	ProviderID string
	IsActive   bool
	CreatedAt  time.Time
}

// HasPassword reports whether the account has a local credential.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// NewUser is the draft passed to UserDirectory.Create.
type NewUser struct {
	Email        string
	PasswordHash string
	AuthProvider string
	ProviderID   string
	IsActive     bool
}

// ProviderIdentity is the normalized result of a provider exchange.
type ProviderIdentity struct {
	Provider string
	Email    string
	Subject  string
}

// Token is an issued bearer token.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}
