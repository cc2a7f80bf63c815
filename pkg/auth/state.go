package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"
)

// DefaultStateTTL bounds how long an authorization redirect stays redeemable.
const DefaultStateTTL = 10 * time.Minute

// PendingAuthorization is what an adapter remembers between the authorize
// redirect and the callback.
type PendingAuthorization struct {
	Provider    string    `json:"provider"`
	Verifier    string    `json:"verifier"`
	CallbackURL string    `json:"callback_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// StateStore keeps one-time OAuth state values.
//
// Consume must be atomic: of two concurrent calls for the same state at most
// one succeeds, the other gets ErrStateNotFound. Expired states are reported
// as ErrStateNotFound as well.
type StateStore interface {
	Save(ctx context.Context, state string, pending PendingAuthorization, ttl time.Duration) error
	Consume(ctx context.Context, state string) (PendingAuthorization, error)
}

// generateState returns 32 random bytes encoded as unpadded base64url.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
