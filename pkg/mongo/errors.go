package mongo

import "errors"

var (
	// ErrEmptyConnectionURL is returned when MONGODB_URL is not set.
	ErrEmptyConnectionURL = errors.New("empty mongo connection url, use MONGODB_URL env var")
	// ErrEmptyDatabase is returned when MONGODB_DATABASE is empty.
	ErrEmptyDatabase = errors.New("empty mongo database name, use MONGODB_DATABASE env var")
	// ErrConnect is returned when no connection attempt succeeded.
	ErrConnect = errors.New("failed to connect to mongo")
	// ErrUnavailable wraps failed readiness pings.
	ErrUnavailable = errors.New("mongo unavailable")
)
