// Package auth is the authentication protocol layer of the identity service.
//
// It verifies local credentials, issues and resolves bearer tokens, and runs
// the federated (OAuth2/OIDC) login flow including the account resolution
// rules that decide whether a provider identity creates, links, or reuses a
// user record.
//
// # Components
//
//   - UserDirectory is the storage contract: lookup by email or id, insert
//     with an email uniqueness guarantee enforced by the store itself, and
//     the provider id backfill. Implementations live in pkg/userstore.
//   - ProviderAdapter hides one external identity provider. Google and
//     Microsoft are OpenID Connect providers, GitHub is plain OAuth2 with a
//     fallback to its email list endpoint. Adapters own the CSRF state and
//     PKCE material through a StateStore (see pkg/oauthstate).
//   - AccountResolver maps a verified ProviderIdentity onto a User.
//   - Service orchestrates signup, login, token authentication, federated
//     login and logout. It is what HTTP handlers call.
//
// # Account resolution
//
// Given (email, provider, subject) the resolver:
//
//  1. looks the user up by email;
//  2. creates a provider-only account when none exists;
//  3. backfills ProviderID when the account was created by the same provider
//     and has no ProviderID yet;
//  4. otherwise authenticates the existing account unchanged.
//
// Rule 4 means a local account that signs in through Google is logged in
// but not linked; AuthProvider is never rewritten.
//
// # Errors
//
// Every failure is a sentinel from errors.go, possibly wrapped:
//
//	token, err := svc.Login(ctx, email, password)
//	switch {
//	case errors.Is(err, auth.ErrInvalidCredentials):
//		// unknown email, no local password, or wrong password
//	case errors.Is(err, auth.ErrInactiveAccount):
//		// correct password, disabled account
//	}
//
// ErrProviderExchangeFailed is an integration fault and is logged at error
// level; ErrEmailUnavailable is a user data condition and is not.
package auth
