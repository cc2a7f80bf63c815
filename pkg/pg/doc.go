// Package pg bootstraps the PostgreSQL connection pool used by the user
// store.
//
// Connect opens a pgxpool.Pool from Config (populated from DATABASE_URL and
// PG_* variables) and retries until the database answers a ping or the
// attempts run out. Migrate applies the embedded goose migrations shipped in
// package db through the same pool. Healthcheck adapts the pool to the
// readiness probe signature used by the HTTP server.
//
//	pool, err := pg.Connect(ctx, cfg.Postgres)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, db.Migrations, db.MigrationsDir, cfg.Postgres, log); err != nil {
//		return err
//	}
//
// IsDuplicateKeyError classifies SQLSTATE 23505 so stores can translate a
// unique index violation into their own sentinel.
package pg
