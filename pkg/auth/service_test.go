package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/georadical/layer-flow/pkg/jwt"
	"github.com/georadical/layer-flow/pkg/password"
)

var (
	_ PasswordHasher = (*password.Hasher)(nil)
	_ RehashPolicy   = (*password.Hasher)(nil)
	_ TokenCodec     = (*jwt.Service)(nil)
)

func testHasher() *password.Hasher {
	return password.New(password.Params{Memory: 1024, Iterations: 1, Parallelism: 1})
}

func testCodec(t *testing.T, opts ...jwt.Option) *jwt.Service {
	t.Helper()
	codec, err := jwt.NewFromString("test-secret-key-with-enough-bytes", opts...)
	require.NoError(t, err)
	return codec
}

func newTestService(t *testing.T, users UserDirectory, opts ...ServiceOption) (*Service, *jwt.Service) {
	t.Helper()
	codec := testCodec(t)
	return NewService(users, testHasher(), codec, opts...), codec
}

func TestNewService(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTestService(t, &MockUserDirectory{})
		assert.Equal(t, DefaultTokenTTL, svc.tokenTTL)
		assert.NotNil(t, svc.logger)
		assert.NotNil(t, svc.resolver)
		assert.Empty(t, svc.Providers())
	})

	t.Run("options", func(t *testing.T) {
		t.Parallel()
		gh := &MockProviderAdapter{name: ProviderGithub}
		google := &MockProviderAdapter{name: ProviderGoogle}
		svc, _ := newTestService(t, &MockUserDirectory{},
			WithTokenTTL(5*time.Minute),
			WithProviders(gh, nil, google),
		)
		assert.Equal(t, 5*time.Minute, svc.tokenTTL)
		assert.Equal(t, []string{ProviderGithub, ProviderGoogle}, svc.Providers())
	})

	t.Run("non-positive ttl ignored", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTestService(t, &MockUserDirectory{}, WithTokenTTL(0))
		assert.Equal(t, DefaultTokenTTL, svc.tokenTTL)
	})
}

func TestService_Signup(t *testing.T) {
	t.Parallel()

	t.Run("creates local user with hashed password", func(t *testing.T) {
		t.Parallel()

		users := &MockUserDirectory{}
		svc, _ := newTestService(t, users)

		var draft NewUser
		users.On("Create", mock.Anything, mock.AnythingOfType("auth.NewUser")).
			Run(func(args mock.Arguments) { draft = args.Get(1).(NewUser) }).
			Return(&User{ID: 1, Email: "a@x.com", AuthProvider: ProviderLocal, IsActive: true, PasswordHash: "h"}, nil)

		user, err := svc.Signup(context.Background(), "a@x.com", "pw123456")
		require.NoError(t, err)
		assert.Equal(t, int64(1), user.ID)

		assert.Equal(t, "a@x.com", draft.Email)
		assert.Equal(t, ProviderLocal, draft.AuthProvider)
		assert.True(t, draft.IsActive)
		assert.Empty(t, draft.ProviderID)
		require.NotEmpty(t, draft.PasswordHash)
		assert.NotEqual(t, "pw123456", draft.PasswordHash)
		assert.True(t, testHasher().Verify("pw123456", draft.PasswordHash))
		users.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()

		users := &MockUserDirectory{}
		svc, _ := newTestService(t, users)
		users.On("Create", mock.Anything, mock.Anything).Return(nil, ErrDuplicateEmail)

		user, err := svc.Signup(context.Background(), "a@x.com", "other")
		assert.ErrorIs(t, err, ErrDuplicateEmail)
		assert.Nil(t, user)
	})

	t.Run("storage failure is wrapped", func(t *testing.T) {
		t.Parallel()

		users := &MockUserDirectory{}
		svc, _ := newTestService(t, users)
		dbErr := errors.New("connection refused")
		users.On("Create", mock.Anything, mock.Anything).Return(nil, dbErr)

		_, err := svc.Signup(context.Background(), "a@x.com", "pw")
		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("email is stored as given", func(t *testing.T) {
		t.Parallel()

		users := &MockUserDirectory{}
		svc, _ := newTestService(t, users)
		users.On("Create", mock.Anything, mock.MatchedBy(func(d NewUser) bool {
			return d.Email == " Mixed@X.com "
		})).Return(&User{ID: 4, Email: " Mixed@X.com ", AuthProvider: ProviderLocal, IsActive: true}, nil).Once()

		_, err := svc.Signup(context.Background(), " Mixed@X.com ", "pw123456")
		require.NoError(t, err)
		users.AssertExpectations(t)
	})

	t.Run("validation", func(t *testing.T) {
		t.Parallel()

		users := &MockUserDirectory{}
		svc, _ := newTestService(t, users)

		_, err := svc.Signup(context.Background(), "", "pw")
		assert.ErrorIs(t, err, ErrEmailRequired)
		_, err = svc.Signup(context.Background(), "a@x.com", "")
		assert.ErrorIs(t, err, ErrPasswordRequired)
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestService_Login(t *testing.T) {
	t.Parallel()

	hash, err := testHasher().Hash("pw123456")
	require.NoError(t, err)

	active := &User{ID: 7, Email: "a@x.com", PasswordHash: hash, AuthProvider: ProviderLocal, IsActive: true}

	t.Run("valid credentials issue a token", func(t *testing.T) {
		t.Parallel()

		users := &MockUserDirectory{}
		svc, codec := newTestService(t, users, WithTokenTTL(time.Hour))
		users.On("FindByEmail", mock.Anything, "a@x.com").Return(active, nil)

		tok, err := svc.Login(context.Background(), "a@x.com", "pw123456")
		require.NoError(t, err)
		assert.Equal(t, "bearer", tok.TokenType)
		assert.WithinDuration(t, time.Now().Add(time.Hour), tok.ExpiresAt, 5*time.Second)
		assert.Zero(t, tok.ExpiresAt.Nanosecond(), "expiry reported as signed in exp")

		sub, err := codec.Verify(tok.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, int64(7), sub)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()

		users := &MockUserDirectory{}
		svc, _ := newTestService(t, users)
		users.On("FindByEmail", mock.Anything, "a@x.com").Return(active, nil)

		_, err := svc.Login(context.Background(), "a@x.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		t.Parallel()

		users := &MockUserDirectory{}
		svc, _ := newTestService(t, users)
		users.On("FindByEmail", mock.Anything, "nobody@x.com").Return(nil, ErrUserNotFound)

		_, err := svc.Login(context.Background(), "nobody@x.com", "pw123456")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.NotErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("provider-only account", func(t *testing.T) {
		t.Parallel()

		users := &MockUserDirectory{}
		svc, _ := newTestService(t, users)
		users.On("FindByEmail", mock.Anything, "g@x.com").
			Return(&User{ID: 2, Email: "g@x.com", AuthProvider: ProviderGoogle, ProviderID: "g-1", IsActive: true}, nil)

		_, err := svc.Login(context.Background(), "g@x.com", "anything")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("inactive only after password match", func(t *testing.T) {
		t.Parallel()

		users := &MockUserDirectory{}
		svc, _ := newTestService(t, users)
		inactive := *active
		inactive.IsActive = false
		users.On("FindByEmail", mock.Anything, "a@x.com").Return(&inactive, nil)

		_, err := svc.Login(context.Background(), "a@x.com", "pw123456")
		assert.ErrorIs(t, err, ErrInactiveAccount)

		_, err = svc.Login(context.Background(), "a@x.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("email lookup is exact", func(t *testing.T) {
		t.Parallel()

		users := &MockUserDirectory{}
		svc, _ := newTestService(t, users)
		users.On("FindByEmail", mock.Anything, " a@x.com").Return(nil, ErrUserNotFound).Once()

		_, err := svc.Login(context.Background(), " a@x.com", "pw123456")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		users.AssertExpectations(t)
	})

	t.Run("outdated hash is upgraded", func(t *testing.T) {
		t.Parallel()

		legacy, err := bcrypt.GenerateFromPassword([]byte("pw123456"), bcrypt.MinCost)
		require.NoError(t, err)
		user := &User{ID: 11, Email: "old@x.com", PasswordHash: string(legacy), AuthProvider: ProviderLocal, IsActive: true}

		users := &MockUserDirectory{}
		svc, _ := newTestService(t, users)
		users.On("FindByEmail", mock.Anything, "old@x.com").Return(user, nil)

		var upgraded string
		users.On("UpdatePasswordHash", mock.Anything, int64(11), mock.AnythingOfType("string")).
			Run(func(args mock.Arguments) { upgraded = args.String(2) }).
			Return(nil).Once()

		_, err = svc.Login(context.Background(), "old@x.com", "pw123456")
		require.NoError(t, err)
		users.AssertExpectations(t)

		assert.True(t, strings.HasPrefix(upgraded, "$argon2id$"))
		assert.True(t, testHasher().Verify("pw123456", upgraded))
		assert.False(t, testHasher().NeedsRehash(upgraded))
	})

	t.Run("current hash is left alone", func(t *testing.T) {
		t.Parallel()

		users := &MockUserDirectory{}
		svc, _ := newTestService(t, users)
		users.On("FindByEmail", mock.Anything, "a@x.com").Return(active, nil)

		_, err := svc.Login(context.Background(), "a@x.com", "pw123456")
		require.NoError(t, err)
		users.AssertNotCalled(t, "UpdatePasswordHash", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("failed upgrade does not fail login", func(t *testing.T) {
		t.Parallel()

		legacy, err := bcrypt.GenerateFromPassword([]byte("pw123456"), bcrypt.MinCost)
		require.NoError(t, err)
		user := &User{ID: 12, Email: "old2@x.com", PasswordHash: string(legacy), AuthProvider: ProviderLocal, IsActive: true}

		users := &MockUserDirectory{}
		svc, _ := newTestService(t, users)
		users.On("FindByEmail", mock.Anything, "old2@x.com").Return(user, nil)
		users.On("UpdatePasswordHash", mock.Anything, int64(12), mock.Anything).Return(errors.New("read-only")).Once()

		tok, err := svc.Login(context.Background(), "old2@x.com", "pw123456")
		require.NoError(t, err)
		assert.NotEmpty(t, tok.AccessToken)
	})

	t.Run("storage failure is not masked", func(t *testing.T) {
		t.Parallel()

		users := &MockUserDirectory{}
		svc, _ := newTestService(t, users)
		dbErr := errors.New("timeout")
		users.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, dbErr)

		_, err := svc.Login(context.Background(), "a@x.com", "pw123456")
		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestService_SignupThenLogin(t *testing.T) {
	t.Parallel()

	users := &MockUserDirectory{}
	svc, _ := newTestService(t, users)

	var stored *User
	users.On("Create", mock.Anything, mock.AnythingOfType("auth.NewUser")).
		Run(func(args mock.Arguments) {
			d := args.Get(1).(NewUser)
			stored = &User{ID: 1, Email: d.Email, PasswordHash: d.PasswordHash, AuthProvider: d.AuthProvider, IsActive: d.IsActive}
		}).
		Return(func(context.Context, NewUser) *User { return stored }, nil).Once()
	users.On("Create", mock.Anything, mock.Anything).Return(nil, ErrDuplicateEmail).Once()
	users.On("FindByEmail", mock.Anything, "a@x.com").Return(func(context.Context, string) *User { return stored }, nil)

	user, err := svc.Signup(context.Background(), "a@x.com", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, ProviderLocal, user.AuthProvider)
	assert.True(t, user.HasPassword())

	_, err = svc.Signup(context.Background(), "a@x.com", "other")
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	tok, err := svc.Login(context.Background(), "a@x.com", "pw123456")
	require.NoError(t, err)
	assert.NotEmpty(t, tok.AccessToken)

	_, err = svc.Login(context.Background(), "a@x.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_AuthenticateToken(t *testing.T) {
	t.Parallel()

	t.Run("resolves active user", func(t *testing.T) {
		t.Parallel()

		users := &MockUserDirectory{}
		svc, codec := newTestService(t, users)
		token, _, err := codec.Issue(9, time.Minute)
		require.NoError(t, err)
		users.On("FindByID", mock.Anything, int64(9)).Return(&User{ID: 9, IsActive: true}, nil)

		user, err := svc.AuthenticateToken(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, int64(9), user.ID)
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()

		users := &MockUserDirectory{}
		past := time.Now().Add(-2 * time.Hour)
		issuer := testCodec(t, jwt.WithClock(func() time.Time { return past }))
		svc, _ := newTestService(t, users)
		token, _, err := issuer.Issue(9, time.Minute)
		require.NoError(t, err)

		_, err = svc.AuthenticateToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
		users.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("forged token", func(t *testing.T) {
		t.Parallel()

		users := &MockUserDirectory{}
		svc, _ := newTestService(t, users)
		other, err := jwt.NewFromString("a-completely-different-signing-key")
		require.NoError(t, err)
		token, _, err := other.Issue(9, time.Minute)
		require.NoError(t, err)

		_, err = svc.AuthenticateToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
		assert.ErrorIs(t, err, jwt.ErrTokenInvalid)
		assert.NotErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("subject no longer exists", func(t *testing.T) {
		t.Parallel()

		users := &MockUserDirectory{}
		svc, codec := newTestService(t, users)
		token, _, err := codec.Issue(9, time.Minute)
		require.NoError(t, err)
		users.On("FindByID", mock.Anything, int64(9)).Return(nil, ErrUserNotFound)

		_, err = svc.AuthenticateToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("inactive user", func(t *testing.T) {
		t.Parallel()

		users := &MockUserDirectory{}
		svc, codec := newTestService(t, users)
		token, _, err := codec.Issue(9, time.Minute)
		require.NoError(t, err)
		users.On("FindByID", mock.Anything, int64(9)).Return(&User{ID: 9, IsActive: false}, nil)

		_, err = svc.AuthenticateToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
		assert.ErrorIs(t, err, ErrInactiveAccount)
	})

	t.Run("storage failure", func(t *testing.T) {
		t.Parallel()

		users := &MockUserDirectory{}
		svc, codec := newTestService(t, users)
		token, _, err := codec.Issue(9, time.Minute)
		require.NoError(t, err)
		dbErr := errors.New("pool closed")
		users.On("FindByID", mock.Anything, int64(9)).Return(nil, dbErr)

		_, err = svc.AuthenticateToken(context.Background(), token)
		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, ErrUnauthenticated)
	})
}

func TestService_FederatedLogin(t *testing.T) {
	t.Parallel()

	cb := Callback{Code: "code", State: "state"}

	t.Run("new user is created and gets a token", func(t *testing.T) {
		t.Parallel()

		users := &MockUserDirectory{}
		google := &MockProviderAdapter{name: ProviderGoogle}
		svc, codec := newTestService(t, users, WithProviders(google))

		google.On("Exchange", mock.Anything, cb).
			Return(ProviderIdentity{Provider: ProviderGoogle, Email: "new@g.com", Subject: "123"}, nil)
		users.On("FindByEmail", mock.Anything, "new@g.com").Return(nil, ErrUserNotFound)
		users.On("Create", mock.Anything, NewUser{
			Email:        "new@g.com",
			AuthProvider: ProviderGoogle,
			ProviderID:   "123",
			IsActive:     true,
		}).Return(&User{ID: 3, Email: "new@g.com", AuthProvider: ProviderGoogle, ProviderID: "123", IsActive: true}, nil)

		tok, err := svc.FederatedLogin(context.Background(), ProviderGoogle, cb)
		require.NoError(t, err)
		sub, err := codec.Verify(tok.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, int64(3), sub)
		users.AssertExpectations(t)
	})

	t.Run("local account is authenticated but not linked", func(t *testing.T) {
		t.Parallel()

		users := &MockUserDirectory{}
		google := &MockProviderAdapter{name: ProviderGoogle}
		svc, codec := newTestService(t, users, WithProviders(google))

		local := &User{ID: 4, Email: "u@x.com", PasswordHash: "h", AuthProvider: ProviderLocal, IsActive: true}
		google.On("Exchange", mock.Anything, cb).
			Return(ProviderIdentity{Provider: ProviderGoogle, Email: "u@x.com", Subject: "g-9"}, nil)
		users.On("FindByEmail", mock.Anything, "u@x.com").Return(local, nil)

		tok, err := svc.FederatedLogin(context.Background(), ProviderGoogle, cb)
		require.NoError(t, err)
		sub, err := codec.Verify(tok.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, int64(4), sub)

		assert.Equal(t, ProviderLocal, local.AuthProvider)
		assert.Empty(t, local.ProviderID)
		users.AssertNotCalled(t, "UpdateProviderID", mock.Anything, mock.Anything, mock.Anything)
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("email unavailable", func(t *testing.T) {
		t.Parallel()

		users := &MockUserDirectory{}
		gh := &MockProviderAdapter{name: ProviderGithub}
		svc, _ := newTestService(t, users, WithProviders(gh))
		gh.On("Exchange", mock.Anything, cb).Return(ProviderIdentity{}, ErrEmailUnavailable)

		_, err := svc.FederatedLogin(context.Background(), ProviderGithub, cb)
		assert.ErrorIs(t, err, ErrEmailUnavailable)
		assert.NotErrorIs(t, err, ErrProviderExchangeFailed)
	})

	t.Run("exchange failure", func(t *testing.T) {
		t.Parallel()

		users := &MockUserDirectory{}
		gh := &MockProviderAdapter{name: ProviderGithub}
		svc, _ := newTestService(t, users, WithProviders(gh))
		gh.On("Exchange", mock.Anything, cb).Return(ProviderIdentity{}, ErrProviderExchangeFailed)

		_, err := svc.FederatedLogin(context.Background(), ProviderGithub, cb)
		assert.ErrorIs(t, err, ErrProviderExchangeFailed)
		users.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})

	t.Run("unknown provider", func(t *testing.T) {
		t.Parallel()

		svc, _ := newTestService(t, &MockUserDirectory{})
		_, err := svc.FederatedLogin(context.Background(), "myspace", cb)
		assert.ErrorIs(t, err, ErrUnknownProvider)
	})

	t.Run("inactive account", func(t *testing.T) {
		t.Parallel()

		users := &MockUserDirectory{}
		google := &MockProviderAdapter{name: ProviderGoogle}
		svc, _ := newTestService(t, users, WithProviders(google))
		google.On("Exchange", mock.Anything, cb).
			Return(ProviderIdentity{Provider: ProviderGoogle, Email: "off@g.com", Subject: "1"}, nil)
		users.On("FindByEmail", mock.Anything, "off@g.com").
			Return(&User{ID: 5, Email: "off@g.com", AuthProvider: ProviderGoogle, ProviderID: "1", IsActive: false}, nil)

		_, err := svc.FederatedLogin(context.Background(), ProviderGoogle, cb)
		assert.ErrorIs(t, err, ErrInactiveAccount)
	})
}

func TestService_AuthorizeRedirect(t *testing.T) {
	t.Parallel()

	google := &MockProviderAdapter{name: ProviderGoogle}
	svc, _ := newTestService(t, &MockUserDirectory{}, WithProviders(google))
	google.On("AuthorizeRedirect", mock.Anything, "http://cb").
		Return(Redirect{URL: "https://accounts.example/auth?state=s", State: "s"}, nil)

	r, err := svc.AuthorizeRedirect(context.Background(), ProviderGoogle, "http://cb")
	require.NoError(t, err)
	assert.Equal(t, "s", r.State)

	_, err = svc.AuthorizeRedirect(context.Background(), ProviderMicrosoft, "http://cb")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestService_Logout(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, &MockUserDirectory{})
	assert.NoError(t, svc.Logout(context.Background()))
}
