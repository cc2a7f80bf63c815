package auth

import (
	"context"
	"net/http"
)

// ProviderAdapter abstracts one external identity provider.
type ProviderAdapter interface {
	// ProviderID returns the provider name stored in User.AuthProvider.
	ProviderID() string

	// AuthorizeRedirect builds the provider authorization URL and records the
	// CSRF state needed to validate the callback. An empty callbackURL uses
	// the configured redirect URL.
	AuthorizeRedirect(ctx context.Context, callbackURL string) (Redirect, error)

	// Exchange validates the callback, trades the code for tokens and returns
	// the normalized identity. Transport and protocol faults are reported as
	// ErrProviderExchangeFailed, a missing email as ErrEmailUnavailable.
	Exchange(ctx context.Context, cb Callback) (ProviderIdentity, error)
}

// Redirect instructs the caller where to send the browser.
type Redirect struct {
	URL   string
	State string
}

// Callback carries the query parameters the provider sends back.
//
// BrowserState is the state the user agent kept from the authorize step,
// typically a cookie. Exchange requires it to equal State, so a callback
// URL replayed in another browser is rejected.
type Callback struct {
	Code             string
	State            string
	BrowserState     string
	Error            string
	ErrorDescription string
}

// CallbackFromRequest extracts the OAuth callback parameters from r.
func CallbackFromRequest(r *http.Request) Callback {
	q := r.URL.Query()
	return Callback{
		Code:             q.Get("code"),
		State:            q.Get("state"),
		Error:            q.Get("error"),
		ErrorDescription: q.Get("error_description"),
	}
}
