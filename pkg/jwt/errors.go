package jwt

import "errors"

var (
	ErrTokenInvalid         = errors.New("jwt: invalid token")
	ErrTokenExpired         = errors.New("jwt: token is expired")
	ErrMissingToken         = errors.New("jwt: missing token")
	ErrMissingSigningKey    = errors.New("jwt: missing signing key")
	ErrInvalidSigningMethod = errors.New("jwt: invalid signing method")
	ErrInvalidTTL           = errors.New("jwt: ttl must be positive")
)
