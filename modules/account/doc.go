// Package account exposes the authentication service over HTTP.
//
// Routes, relative to where the router is mounted (normally /api/v1):
//
//	POST /signup                     create a local account
//	POST /login                      OAuth2 password form or JSON, returns a bearer token
//	POST /logout                     bearer required, stateless acknowledgement
//	GET  /users/me                   bearer required, current user
//	GET  /auth/{provider}/login      307 to the provider
//	GET  /auth/{provider}/callback   307 to the frontend with a token or an error code
//
// Error bodies use the {"detail": "..."} shape the frontend expects.
package account
