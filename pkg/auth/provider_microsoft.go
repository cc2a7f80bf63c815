package auth

import (
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"
)

// MicrosoftUserInfoURL is the Microsoft identity platform userinfo endpoint.
const MicrosoftUserInfoURL = "https://graph.microsoft.com/oidc/userinfo"

// MicrosoftConfig holds the Microsoft Entra ID OAuth client settings.
type MicrosoftConfig struct {
	ClientID     string   `env:"MICROSOFT_CLIENT_ID"`
	ClientSecret string   `env:"MICROSOFT_CLIENT_SECRET"`
	RedirectURL  string   `env:"MICROSOFT_REDIRECT_URI" envDefault:"http://localhost:8000/api/v1/auth/microsoft/callback"`
	Tenant       string   `env:"MICROSOFT_TENANT" envDefault:"common"`
	Scopes       []string `env:"MICROSOFT_SCOPES" envSeparator:","`
}

// Enabled reports whether the provider has credentials.
func (c MicrosoftConfig) Enabled() bool {
	return c.ClientID != ""
}

// NewMicrosoftProvider creates the Microsoft OpenID Connect adapter.
func NewMicrosoftProvider(cfg MicrosoftConfig, states StateStore, opts ...ProviderOption) ProviderAdapter {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = oidcScopes
	}
	tenant := cfg.Tenant
	if tenant == "" {
		tenant = "common"
	}
	conf := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       scopes,
		Endpoint:     microsoft.AzureADEndpoint(tenant),
	}
	return &oidcProvider{oauthClient: newOAuthClient(ProviderMicrosoft, conf, states, MicrosoftUserInfoURL, opts...)}
}
