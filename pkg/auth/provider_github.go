package auth

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// GitHubAPIURL is the GitHub REST API base URL.
const GitHubAPIURL = "https://api.github.com"

// GitHubConfig holds the GitHub OAuth app settings.
type GitHubConfig struct {
	ClientID     string   `env:"GITHUB_CLIENT_ID"`
	ClientSecret string   `env:"GITHUB_CLIENT_SECRET"`
	RedirectURL  string   `env:"GITHUB_REDIRECT_URI" envDefault:"http://localhost:8000/api/v1/auth/github/callback"`
	Scopes       []string `env:"GITHUB_SCOPES" envSeparator:"," envDefault:"user:email"`
}

// Enabled reports whether the provider has credentials.
func (c GitHubConfig) Enabled() bool {
	return c.ClientID != ""
}

type githubProvider struct {
	*oauthClient
}

// NewGitHubProvider creates the GitHub OAuth2 adapter.
func NewGitHubProvider(cfg GitHubConfig, states StateStore, opts ...ProviderOption) ProviderAdapter {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{"user:email"}
	}
	conf := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       scopes,
		Endpoint:     github.Endpoint,
	}
	return &githubProvider{oauthClient: newOAuthClient(ProviderGithub, conf, states, GitHubAPIURL, opts...)}
}

// Exchange resolves the GitHub user. The profile email is used when public,
// otherwise the entry of /user/emails that is both primary and verified.
func (p *githubProvider) Exchange(ctx context.Context, cb Callback) (ProviderIdentity, error) {
	tok, err := p.exchangeCode(ctx, cb)
	if err != nil {
		return ProviderIdentity{}, err
	}

	base := strings.TrimRight(p.profileURL, "/")

	var u ghUser
	if err := p.getJSON(ctx, tok.AccessToken, base+"/user", &u); err != nil {
		return ProviderIdentity{}, err
	}
	if u.ID == 0 {
		return ProviderIdentity{}, fmt.Errorf("%w: github profile has no id", ErrProviderExchangeFailed)
	}

	email := strings.TrimSpace(u.Email)
	if email == "" {
		var emails []ghEmail
		if err := p.getJSON(ctx, tok.AccessToken, base+"/user/emails", &emails); err != nil {
			return ProviderIdentity{}, err
		}
		email = primaryVerifiedEmail(emails)
	}
	if email == "" {
		return ProviderIdentity{}, ErrEmailUnavailable
	}

	return ProviderIdentity{
		Provider: ProviderGithub,
		Email:    email,
		Subject:  strconv.FormatInt(u.ID, 10),
	}, nil
}

func primaryVerifiedEmail(emails []ghEmail) string {
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email
		}
	}
	return ""
}

type ghUser struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

type ghEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// Compile-time interface assertions
var (
	_ ProviderAdapter = (*githubProvider)(nil)
	_ ProviderAdapter = (*oidcProvider)(nil)
)
