package auth

import (
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleUserInfoURL is the Google OpenID Connect userinfo endpoint.
const GoogleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// GoogleConfig holds the Google OAuth client settings.
type GoogleConfig struct {
	ClientID     string   `env:"GOOGLE_CLIENT_ID"`
	ClientSecret string   `env:"GOOGLE_CLIENT_SECRET"`
	RedirectURL  string   `env:"GOOGLE_REDIRECT_URI" envDefault:"http://localhost:8000/api/v1/auth/google/callback"`
	Scopes       []string `env:"GOOGLE_SCOPES" envSeparator:","`
}

// Enabled reports whether the provider has credentials.
func (c GoogleConfig) Enabled() bool {
	return c.ClientID != ""
}

// NewGoogleProvider creates the Google OpenID Connect adapter.
func NewGoogleProvider(cfg GoogleConfig, states StateStore, opts ...ProviderOption) ProviderAdapter {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = oidcScopes
	}
	conf := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       scopes,
		Endpoint:     google.Endpoint,
	}
	return &oidcProvider{oauthClient: newOAuthClient(ProviderGoogle, conf, states, GoogleUserInfoURL, opts...)}
}
