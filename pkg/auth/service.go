package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/georadical/layer-flow/pkg/jwt"
	"github.com/georadical/layer-flow/pkg/logger"
)

// DefaultTokenTTL is the lifetime of issued access tokens.
const DefaultTokenTTL = 60 * time.Minute

// TokenTypeBearer is the token_type reported with issued tokens.
const TokenTypeBearer = "bearer"

const tracerName = "github.com/georadical/layer-flow/pkg/auth"

// Service orchestrates local and federated authentication.
type Service struct {
	users     UserDirectory
	hasher    PasswordHasher
	tokens    TokenCodec
	resolver  *AccountResolver
	providers map[string]ProviderAdapter
	tokenTTL  time.Duration
	logger    *slog.Logger
	tracer    trace.Tracer

	dummyOnce sync.Once
	dummyHash string
}

// ServiceOption configures the Service.
type ServiceOption func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTokenTTL sets the access token lifetime.
func WithTokenTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithProviders registers federation adapters by their ProviderID.
func WithProviders(adapters ...ProviderAdapter) ServiceOption {
	return func(s *Service) {
		for _, a := range adapters {
			if a != nil {
				s.providers[a.ProviderID()] = a
			}
		}
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider.
func WithTracerProvider(tp trace.TracerProvider) ServiceOption {
	return func(s *Service) {
		if tp != nil {
			s.tracer = tp.Tracer(tracerName)
		}
	}
}

// NewService creates the authentication service.
func NewService(users UserDirectory, hasher PasswordHasher, tokens TokenCodec, opts ...ServiceOption) *Service {
	s := &Service{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		providers: make(map[string]ProviderAdapter),
		tokenTTL:  DefaultTokenTTL,
		logger:    logger.Discard(),
		tracer:    otel.Tracer(tracerName),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.logger = s.logger.With(logger.Component("auth"))
	s.resolver = NewAccountResolver(users, s.logger)
	return s
}

// Providers returns the names of the registered federation providers.
func (s *Service) Providers() []string {
	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Signup creates a local account. Uniqueness is enforced by the directory,
// a taken email fails with ErrDuplicateEmail.
func (s *Service) Signup(ctx context.Context, email, password string) (_ *User, err error) {
	ctx, span := s.tracer.Start(ctx, "auth.Signup")
	defer func() { endSpan(span, err) }()

	if email == "" {
		return nil, ErrEmailRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(ctx, NewUser{
		Email:        email,
		PasswordHash: hash,
		AuthProvider: ProviderLocal,
		IsActive:     true,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user signed up",
		logger.UserID(user.ID),
		logger.Provider(ProviderLocal),
	)
	return user, nil
}

// Login verifies a local credential and issues a token.
//
// Unknown email, missing local password and wrong password all fail with
// ErrInvalidCredentials. ErrInactiveAccount is returned only after the
// password matched.
func (s *Service) Login(ctx context.Context, email, password string) (_ Token, err error) {
	ctx, span := s.tracer.Start(ctx, "auth.Login")
	defer func() { endSpan(span, err) }()

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Burn the same hashing cost as a real check.
			s.hasher.Verify(password, s.fallbackHash())
			return Token{}, ErrInvalidCredentials
		}
		return Token{}, fmt.Errorf("failed to find user: %w", err)
	}

	if !user.HasPassword() {
		s.hasher.Verify(password, s.fallbackHash())
		return Token{}, ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		s.logger.DebugContext(ctx, "password mismatch", logger.UserID(user.ID))
		return Token{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return Token{}, ErrInactiveAccount
	}

	s.upgradeHash(ctx, user, password)
	return s.issueToken(ctx, user)
}

// upgradeHash replaces an outdated stored hash after a successful password
// check. Failures are logged and never fail the login.
func (s *Service) upgradeHash(ctx context.Context, user *User, password string) {
	policy, ok := s.hasher.(RehashPolicy)
	if !ok || !policy.NeedsRehash(user.PasswordHash) {
		return
	}
	store, ok := s.users.(CredentialStore)
	if !ok {
		return
	}

	hash, err := s.hasher.Hash(password)
	if err == nil {
		err = store.UpdatePasswordHash(ctx, user.ID, hash)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "password rehash failed",
			logger.UserID(user.ID),
			logger.Error(err),
		)
		return
	}

	user.PasswordHash = hash
	s.logger.InfoContext(ctx, "password hash upgraded",
		logger.UserID(user.ID),
		logger.Event("password_rehash"),
	)
}

// AuthenticateToken resolves a bearer token to an active user. Every failure
// wraps ErrUnauthenticated except storage faults.
func (s *Service) AuthenticateToken(ctx context.Context, token string) (_ *User, err error) {
	ctx, span := s.tracer.Start(ctx, "auth.AuthenticateToken")
	defer func() { endSpan(span, err) }()

	id, err := s.tokens.Verify(token)
	if err != nil {
		event := "token_invalid"
		if errors.Is(err, jwt.ErrTokenExpired) {
			event = "token_expired"
		}
		s.logger.DebugContext(ctx, "token rejected", logger.Event(event), logger.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.logger.DebugContext(ctx, "token subject not found", logger.UserID(id))
			return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, ErrInactiveAccount)
	}

	return user, nil
}

// AuthorizeRedirect starts a federated login with the named provider.
func (s *Service) AuthorizeRedirect(ctx context.Context, provider, callbackURL string) (_ Redirect, err error) {
	ctx, span := s.tracer.Start(ctx, "auth.AuthorizeRedirect",
		trace.WithAttributes(attribute.String("auth.provider", provider)))
	defer func() { endSpan(span, err) }()

	adapter, ok := s.providers[provider]
	if !ok {
		return Redirect{}, ErrUnknownProvider
	}
	return adapter.AuthorizeRedirect(ctx, callbackURL)
}

// FederatedLogin completes a provider callback: exchange, account
// resolution, then token issuance.
func (s *Service) FederatedLogin(ctx context.Context, provider string, cb Callback) (_ Token, err error) {
	ctx, span := s.tracer.Start(ctx, "auth.FederatedLogin",
		trace.WithAttributes(attribute.String("auth.provider", provider)))
	defer func() { endSpan(span, err) }()

	adapter, ok := s.providers[provider]
	if !ok {
		return Token{}, ErrUnknownProvider
	}

	identity, err := adapter.Exchange(ctx, cb)
	if err != nil {
		if errors.Is(err, ErrEmailUnavailable) {
			s.logger.InfoContext(ctx, "provider returned no usable email",
				logger.Provider(provider),
				logger.Error(err),
			)
		} else {
			s.logger.ErrorContext(ctx, "provider exchange failed",
				logger.Provider(provider),
				logger.Error(err),
			)
		}
		return Token{}, err
	}

	user, err := s.resolver.Resolve(ctx, identity)
	if err != nil {
		return Token{}, err
	}
	if !user.IsActive {
		return Token{}, ErrInactiveAccount
	}

	return s.issueToken(ctx, user)
}

// Logout acknowledges a logout. Tokens are stateless and stay valid until
// they expire.
func (s *Service) Logout(ctx context.Context) error {
	_, span := s.tracer.Start(ctx, "auth.Logout")
	defer span.End()
	return nil
}

func (s *Service) issueToken(ctx context.Context, user *User) (Token, error) {
	access, expiresAt, err := s.tokens.Issue(user.ID, s.tokenTTL)
	if err != nil {
		return Token{}, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.DebugContext(ctx, "token issued", logger.UserID(user.ID))
	return Token{
		AccessToken: access,
		TokenType:   TokenTypeBearer,
		ExpiresAt:   expiresAt,
	}, nil
}

// fallbackHash is verified against when there is no real hash, so unknown
// accounts cost the same as a wrong password.
func (s *Service) fallbackHash() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("layer-flow-unknown-account")
		if err != nil {
			s.logger.Error("failed to prepare fallback hash", logger.Error(err))
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
