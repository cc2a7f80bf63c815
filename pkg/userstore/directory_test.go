package userstore_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georadical/layer-flow/pkg/auth"
)

// uniqueEmail keeps parallel subtests independent on shared databases.
func uniqueEmail(prefix string) string {
	return prefix + "-" + uuid.NewString() + "@example.com"
}

// testDirectory exercises the UserDirectory contract against dir.
func testDirectory(t *testing.T, dir auth.UserDirectory) {
	t.Helper()
	ctx := context.Background()

	t.Run("create and find", func(t *testing.T) {
		t.Parallel()

		email := uniqueEmail("local")
		created, err := dir.Create(ctx, auth.NewUser{
			Email:        email,
			PasswordHash: "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA",
			AuthProvider: auth.ProviderLocal,
			IsActive:     true,
		})
		require.NoError(t, err)
		assert.Positive(t, created.ID)
		assert.Equal(t, email, created.Email)
		assert.Equal(t, auth.ProviderLocal, created.AuthProvider)
		assert.True(t, created.HasPassword())
		assert.Empty(t, created.ProviderID)
		assert.True(t, created.IsActive)
		assert.False(t, created.CreatedAt.IsZero())

		byEmail, err := dir.FindByEmail(ctx, email)
		require.NoError(t, err)
		assert.Equal(t, created.ID, byEmail.ID)
		assert.Equal(t, created.PasswordHash, byEmail.PasswordHash)

		byID, err := dir.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, email, byID.Email)
	})

	t.Run("update password hash", func(t *testing.T) {
		t.Parallel()

		store, ok := dir.(auth.CredentialStore)
		require.True(t, ok)

		u, err := dir.Create(ctx, auth.NewUser{
			Email:        uniqueEmail("rehash"),
			PasswordHash: "$2a$04$legacylegacylegacylegacuO5gN0tq3vH1y6j5h7bS1b2Jq0sK1Q2",
			AuthProvider: auth.ProviderLocal,
			IsActive:     true,
		})
		require.NoError(t, err)

		next := "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$bmV3"
		require.NoError(t, store.UpdatePasswordHash(ctx, u.ID, next))

		got, err := dir.FindByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, next, got.PasswordHash)
		assert.Equal(t, auth.ProviderLocal, got.AuthProvider)

		assert.ErrorIs(t, store.UpdatePasswordHash(ctx, 1<<40, next), auth.ErrUserNotFound)
	})

	t.Run("provider-only account", func(t *testing.T) {
		t.Parallel()

		u, err := dir.Create(ctx, auth.NewUser{
			Email:        uniqueEmail("gh"),
			AuthProvider: auth.ProviderGithub,
			ProviderID:   "583231",
			IsActive:     true,
		})
		require.NoError(t, err)
		assert.False(t, u.HasPassword())

		found, err := dir.FindByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, auth.ProviderGithub, found.AuthProvider)
		assert.Equal(t, "583231", found.ProviderID)
		assert.Empty(t, found.PasswordHash)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		_, err := dir.FindByEmail(ctx, uniqueEmail("missing"))
		assert.ErrorIs(t, err, auth.ErrUserNotFound)

		_, err = dir.FindByID(ctx, 1<<60)
		assert.ErrorIs(t, err, auth.ErrUserNotFound)

		err = dir.UpdateProviderID(ctx, 1<<60, "x")
		assert.ErrorIs(t, err, auth.ErrUserNotFound)
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()

		email := uniqueEmail("dup")
		_, err := dir.Create(ctx, auth.NewUser{Email: email, AuthProvider: auth.ProviderLocal, PasswordHash: "h", IsActive: true})
		require.NoError(t, err)

		_, err = dir.Create(ctx, auth.NewUser{Email: email, AuthProvider: auth.ProviderGoogle, ProviderID: "1", IsActive: true})
		assert.ErrorIs(t, err, auth.ErrDuplicateEmail)
	})

	t.Run("concurrent create yields one winner", func(t *testing.T) {
		t.Parallel()

		const workers = 16
		email := uniqueEmail("race")

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			created  int
			dupes    int
			unknowns []error
		)
		start := make(chan struct{})
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				_, err := dir.Create(ctx, auth.NewUser{Email: email, AuthProvider: auth.ProviderGoogle, ProviderID: "g", IsActive: true})
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					created++
				case errors.Is(err, auth.ErrDuplicateEmail):
					dupes++
				default:
					unknowns = append(unknowns, err)
				}
			}()
		}
		close(start)
		wg.Wait()

		assert.Empty(t, unknowns)
		assert.Equal(t, 1, created)
		assert.Equal(t, workers-1, dupes)
	})

	t.Run("update provider id is idempotent", func(t *testing.T) {
		t.Parallel()

		u, err := dir.Create(ctx, auth.NewUser{Email: uniqueEmail("link"), AuthProvider: auth.ProviderGoogle, IsActive: true})
		require.NoError(t, err)

		require.NoError(t, dir.UpdateProviderID(ctx, u.ID, "g-42"))
		first, err := dir.FindByID(ctx, u.ID)
		require.NoError(t, err)

		require.NoError(t, dir.UpdateProviderID(ctx, u.ID, "g-42"))
		second, err := dir.FindByID(ctx, u.ID)
		require.NoError(t, err)

		assert.Equal(t, "g-42", second.ProviderID)
		assert.Equal(t, first, second)
	})

	t.Run("returned users are copies", func(t *testing.T) {
		t.Parallel()

		email := uniqueEmail("copy")
		u, err := dir.Create(ctx, auth.NewUser{Email: email, AuthProvider: auth.ProviderLocal, PasswordHash: "h", IsActive: true})
		require.NoError(t, err)
		u.AuthProvider = auth.ProviderGoogle

		again, err := dir.FindByEmail(ctx, email)
		require.NoError(t, err)
		assert.Equal(t, auth.ProviderLocal, again.AuthProvider)
	})

	t.Run("empty email rejected", func(t *testing.T) {
		t.Parallel()

		_, err := dir.Create(ctx, auth.NewUser{AuthProvider: auth.ProviderLocal})
		assert.ErrorIs(t, err, auth.ErrEmailRequired)
	})
}
