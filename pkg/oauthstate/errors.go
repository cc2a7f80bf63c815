package oauthstate

import "errors"

var (
	ErrStateExists = errors.New("oauth state already exists")
	ErrEmptyState  = errors.New("empty oauth state")
	ErrInvalidTTL  = errors.New("oauth state ttl must be positive")
)
