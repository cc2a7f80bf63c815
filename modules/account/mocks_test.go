package account_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/georadical/layer-flow/modules/account"
	"github.com/georadical/layer-flow/pkg/auth"
)

type MockAuthenticator struct {
	mock.Mock
}

var _ account.Authenticator = (*MockAuthenticator)(nil)

func (m *MockAuthenticator) Signup(ctx context.Context, email, password string) (*auth.User, error) {
	args := m.Called(ctx, email, password)
	if u := args.Get(0); u != nil {
		return u.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthenticator) Login(ctx context.Context, email, password string) (auth.Token, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(auth.Token), args.Error(1)
}

func (m *MockAuthenticator) Logout(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockAuthenticator) AuthenticateToken(ctx context.Context, token string) (*auth.User, error) {
	args := m.Called(ctx, token)
	if u := args.Get(0); u != nil {
		return u.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthenticator) AuthorizeRedirect(ctx context.Context, provider, callbackURL string) (auth.Redirect, error) {
	args := m.Called(ctx, provider, callbackURL)
	return args.Get(0).(auth.Redirect), args.Error(1)
}

func (m *MockAuthenticator) FederatedLogin(ctx context.Context, provider string, cb auth.Callback) (auth.Token, error) {
	args := m.Called(ctx, provider, cb)
	return args.Get(0).(auth.Token), args.Error(1)
}
