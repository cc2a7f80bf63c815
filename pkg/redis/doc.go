// Package redis connects the go-redis client that backs the OAuth state
// store.
//
// Connect retries until the server answers a ping within ConnectTimeout.
// Healthcheck adapts any redis.UniversalClient to the readiness probe
// signature.
package redis
