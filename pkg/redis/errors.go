package redis

import "errors"

var (
	// ErrEmptyConnectionURL is returned when REDIS_URL is not set.
	ErrEmptyConnectionURL = errors.New("empty redis connection URL, use REDIS_URL env var")
	// ErrInvalidConnectionURL wraps redis.ParseURL failures.
	ErrInvalidConnectionURL = errors.New("invalid redis connection URL")
	// ErrNotReady is returned when no ping succeeded within the retry budget.
	ErrNotReady = errors.New("redis did not become ready")
	// ErrUnavailable wraps failed readiness pings.
	ErrUnavailable = errors.New("redis unavailable")
)
