package password

import "errors"

var (
	ErrInvalidHash         = errors.New("password: invalid hash format")
	ErrIncompatibleVersion = errors.New("password: incompatible argon2 version")
	ErrUnsupportedHash     = errors.New("password: unsupported hash algorithm")
)
