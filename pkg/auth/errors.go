package auth

import "errors"

// Account errors
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrEmailRequired  = errors.New("email is required")
)

// Credential errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveAccount    = errors.New("inactive account")
	ErrPasswordRequired   = errors.New("password is required")
	ErrUnauthenticated    = errors.New("unauthenticated")
)

// Federation errors
var (
	ErrUnknownProvider        = errors.New("unknown identity provider")
	ErrProviderExchangeFailed = errors.New("identity provider exchange failed")
	ErrEmailUnavailable       = errors.New("identity provider returned no usable email")
	ErrInvalidState           = errors.New("invalid OAuth state")
	ErrStateNotFound          = errors.New("OAuth state not found or expired")
	ErrMissingCode            = errors.New("missing authorization code")
)
