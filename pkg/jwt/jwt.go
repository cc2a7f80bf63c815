package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultAlgorithm is used when no algorithm is configured.
const DefaultAlgorithm = "HS256"

// Claims is the payload of an access token.
type Claims struct {
	gojwt.RegisteredClaims
}

// Service signs and verifies access tokens. It is immutable after
// construction and safe for concurrent use.
type Service struct {
	signingKey []byte
	method     gojwt.SigningMethod
	issuer     string
	now        func() time.Time
}

// Option configures a Service.
type Option func(*config)

type config struct {
	algorithm string
	issuer    string
	now       func() time.Time
}

// WithAlgorithm selects the HMAC algorithm: HS256, HS384 or HS512.
func WithAlgorithm(alg string) Option {
	return func(c *config) {
		if alg != "" {
			c.algorithm = alg
		}
	}
}

// WithIssuer sets the "iss" claim on issued tokens and requires it on verification.
func WithIssuer(issuer string) Option {
	return func(c *config) { c.issuer = issuer }
}

// WithClock overrides the time source used for issuing and validating tokens.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a Service signing with the given key.
func New(signingKey []byte, opts ...Option) (*Service, error) {
	if len(signingKey) == 0 {
		return nil, ErrMissingSigningKey
	}

	cfg := &config{algorithm: DefaultAlgorithm, now: time.Now}
	for _, opt := range opts {
		opt(cfg)
	}

	method, err := hmacMethod(cfg.algorithm)
	if err != nil {
		return nil, err
	}

	key := make([]byte, len(signingKey))
	copy(key, signingKey)

	return &Service{
		signingKey: key,
		method:     method,
		issuer:     cfg.issuer,
		now:        cfg.now,
	}, nil
}

// NewFromString is New for string secrets loaded from configuration.
func NewFromString(signingKey string, opts ...Option) (*Service, error) {
	return New([]byte(signingKey), opts...)
}

// Algorithm returns the name of the signing algorithm.
func (s *Service) Algorithm() string {
	return s.method.Alg()
}

// Issue signs a token for subjectID valid for at least ttl and returns it
// with the expiry written into the "exp" claim. NumericDate has one second
// precision, so the expiry is rounded up to the next whole second.
func (s *Service) Issue(subjectID int64, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		return "", time.Time{}, ErrInvalidTTL
	}

	now := s.now()
	expiresAt := ceilSecond(now.Add(ttl))
	claims := Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(subjectID, 10),
			Issuer:    s.issuer,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := gojwt.NewWithClaims(s.method, claims).SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwt: sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func ceilSecond(t time.Time) time.Time {
	if r := t.Truncate(time.Second); !r.Equal(t) {
		return r.Add(time.Second)
	}
	return t
}

// Verify checks the signature and expiry of token and returns its subject id.
// Expired tokens yield ErrTokenExpired; anything else wrong with the token
// (signature, algorithm, encoding, missing or non-numeric subject) yields
// ErrTokenInvalid.
func (s *Service) Verify(token string) (int64, error) {
	if token == "" {
		return 0, ErrMissingToken
	}

	parserOpts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{s.method.Alg()}),
		gojwt.WithExpirationRequired(),
		gojwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		parserOpts = append(parserOpts, gojwt.WithIssuer(s.issuer))
	}

	var claims Claims
	_, err := gojwt.ParseWithClaims(token, &claims, func(*gojwt.Token) (any, error) {
		return s.signingKey, nil
	}, parserOpts...)
	if err != nil {
		if errors.Is(err, gojwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	if claims.Subject == "" {
		return 0, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	subjectID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: non-numeric subject", ErrTokenInvalid)
	}

	return subjectID, nil
}

func hmacMethod(alg string) (gojwt.SigningMethod, error) {
	switch alg {
	case gojwt.SigningMethodHS256.Alg():
		return gojwt.SigningMethodHS256, nil
	case gojwt.SigningMethodHS384.Alg():
		return gojwt.SigningMethodHS384, nil
	case gojwt.SigningMethodHS512.Alg():
		return gojwt.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidSigningMethod, alg)
	}
}
