package userstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/georadical/layer-flow/pkg/auth"
	"github.com/georadical/layer-flow/pkg/pg"
)

const userColumns = `id, email, hashed_password, auth_provider, provider_id, is_active, created_at`

// Postgres is a user directory backed by the users table.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres directory on pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	return s.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (s *Postgres) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	return s.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// Create inserts the user. The users_email_key constraint rejects a second
// row for the same email, also under concurrent inserts.
func (s *Postgres) Create(ctx context.Context, draft auth.NewUser) (*auth.User, error) {
	if draft.Email == "" {
		return nil, auth.ErrEmailRequired
	}
	provider := draft.AuthProvider
	if provider == "" {
		provider = auth.ProviderLocal
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx,
		`INSERT INTO users (email, hashed_password, auth_provider, provider_id, is_active)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+userColumns,
		draft.Email, nullable(draft.PasswordHash), provider, nullable(draft.ProviderID), draft.IsActive,
	)
	u, err := scanUser(row)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return nil, auth.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// UpdateProviderID sets provider_id. Writing the same value again is a no-op.
func (s *Postgres) UpdateProviderID(ctx context.Context, id int64, providerID string) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `UPDATE users SET provider_id = $2 WHERE id = $1`, id, nullable(providerID))
	if err != nil {
		return fmt.Errorf("update provider id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

// UpdatePasswordHash replaces hashed_password.
func (s *Postgres) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `UPDATE users SET hashed_password = $2 WHERE id = $1`, id, hash)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

// Healthcheck pings the pool.
func (s *Postgres) Healthcheck(ctx context.Context) error {
	return pg.Healthcheck(s.pool)(ctx)
}

func (s *Postgres) findOne(ctx context.Context, query string, arg any) (*auth.User, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	u, err := scanUser(conn.QueryRow(ctx, query, arg))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (*auth.User, error) {
	var (
		u          auth.User
		hash       *string
		providerID *string
		createdAt  time.Time
	)
	if err := row.Scan(&u.ID, &u.Email, &hash, &u.AuthProvider, &providerID, &u.IsActive, &createdAt); err != nil {
		return nil, err
	}
	if hash != nil {
		u.PasswordHash = *hash
	}
	if providerID != nil {
		u.ProviderID = *providerID
	}
	u.CreatedAt = createdAt.UTC()
	return &u, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

var (
	_ auth.UserDirectory   = (*Postgres)(nil)
	_ auth.CredentialStore = (*Postgres)(nil)
)
