// Package mongo connects the MongoDB client backing the document user store.
//
// New applies Config (MONGODB_* variables) and retries until the server
// answers a ping. NewWithDatabase returns the configured database handle.
// Healthcheck adapts a client to the readiness probe signature.
package mongo
