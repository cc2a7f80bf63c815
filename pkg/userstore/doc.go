// Package userstore implements auth.UserDirectory on three backends.
//
// Memory is a process-local store for tests and single-instance development.
// Postgres stores users in the "users" table created by the migrations in
// package db; a unique constraint on email turns concurrent inserts into
// auth.ErrDuplicateEmail. Mongo keeps one document per user in the "users"
// collection with a unique index on email and allocates integer ids from a
// "counters" collection so ids look the same on every backend.
//
// Every method acquires its own connection or session and releases it
// before returning.
package userstore
