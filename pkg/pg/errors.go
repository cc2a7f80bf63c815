package pg

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrEmptyConnectionString is returned when DATABASE_URL is not set.
	ErrEmptyConnectionString = errors.New("empty postgres connection string, use DATABASE_URL env var")
	// ErrInvalidConfig wraps pgxpool.ParseConfig failures.
	ErrInvalidConfig = errors.New("invalid postgres config")
	// ErrConnect is returned when no connection attempt succeeded.
	ErrConnect = errors.New("failed to connect to postgres")
	// ErrMigrate wraps goose failures.
	ErrMigrate = errors.New("failed to apply migrations")
	// ErrUnavailable wraps failed readiness pings.
	ErrUnavailable = errors.New("postgres unavailable")
)

// SQLSTATE codes
const (
	codeUniqueViolation = "23505"
)

// IsNotFoundError reports whether err is pgx.ErrNoRows.
func IsNotFoundError(err error) bool {
	return err != nil && errors.Is(err, pgx.ErrNoRows)
}

// IsDuplicateKeyError reports a unique constraint violation.
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

// ConstraintName returns the violated constraint of a Postgres error, if any.
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}
