package auth

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// DefaultProviderTimeout bounds every call made to a provider.
const DefaultProviderTimeout = 10 * time.Second

// ProviderOption customizes a provider adapter.
type ProviderOption func(*oauthClient)

// WithStateTTL sets how long an authorization redirect stays valid.
func WithStateTTL(ttl time.Duration) ProviderOption {
	return func(c *oauthClient) {
		if ttl > 0 {
			c.stateTTL = ttl
		}
	}
}

// WithHTTPClient sets the client used for token and profile requests.
// A client without a timeout gets DefaultProviderTimeout.
func WithHTTPClient(hc *http.Client) ProviderOption {
	return func(c *oauthClient) {
		if hc == nil {
			return
		}
		if hc.Timeout == 0 {
			cp := *hc
			cp.Timeout = DefaultProviderTimeout
			hc = &cp
		}
		c.httpClient = hc
	}
}

// WithProviderTimeout sets the timeout of the default HTTP client.
func WithProviderTimeout(d time.Duration) ProviderOption {
	return func(c *oauthClient) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithEndpoint overrides the provider authorization and token URLs.
func WithEndpoint(ep oauth2.Endpoint) ProviderOption {
	return func(c *oauthClient) {
		c.conf.Endpoint = ep
	}
}

// WithProfileURL overrides the profile endpoint (OIDC userinfo or the
// GitHub API base URL).
func WithProfileURL(u string) ProviderOption {
	return func(c *oauthClient) {
		if u != "" {
			c.profileURL = u
		}
	}
}

// oauthClient holds what every authorization-code provider shares: the
// oauth2 configuration, state bookkeeping with PKCE, and a bounded HTTP client.
type oauthClient struct {
	provider   string
	conf       *oauth2.Config
	states     StateStore
	stateTTL   time.Duration
	httpClient *http.Client
	profileURL string
	now        func() time.Time
}

func newOAuthClient(provider string, conf *oauth2.Config, states StateStore, profileURL string, opts ...ProviderOption) *oauthClient {
	c := &oauthClient{
		provider:   provider,
		conf:       conf,
		states:     states,
		stateTTL:   DefaultStateTTL,
		httpClient: &http.Client{Timeout: DefaultProviderTimeout},
		profileURL: profileURL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProviderID returns the provider name.
func (c *oauthClient) ProviderID() string {
	return c.provider
}

// AuthorizeRedirect stores a fresh state with a PKCE verifier and returns
// the provider authorization URL.
func (c *oauthClient) AuthorizeRedirect(ctx context.Context, callbackURL string) (Redirect, error) {
	state, err := generateState()
	if err != nil {
		return Redirect{}, err
	}

	verifier := oauth2.GenerateVerifier()
	pending := PendingAuthorization{
		Provider:    c.provider,
		Verifier:    verifier,
		CallbackURL: callbackURL,
		CreatedAt:   c.now(),
	}
	if err := c.states.Save(ctx, state, pending, c.stateTTL); err != nil {
		return Redirect{}, fmt.Errorf("failed to store state: %w", err)
	}

	opts := []oauth2.AuthCodeOption{oauth2.S256ChallengeOption(verifier)}
	if callbackURL != "" {
		opts = append(opts, oauth2.SetAuthURLParam("redirect_uri", callbackURL))
	}

	return Redirect{URL: c.conf.AuthCodeURL(state, opts...), State: state}, nil
}

// exchangeCode validates the callback state and trades the code for a token.
func (c *oauthClient) exchangeCode(ctx context.Context, cb Callback) (*oauth2.Token, error) {
	if cb.Error != "" {
		return nil, fmt.Errorf("%w: provider returned %q: %s", ErrProviderExchangeFailed, cb.Error, cb.ErrorDescription)
	}
	if cb.State == "" || subtle.ConstantTimeCompare([]byte(cb.State), []byte(cb.BrowserState)) != 1 {
		return nil, fmt.Errorf("%w: %w", ErrProviderExchangeFailed, ErrInvalidState)
	}

	// One-time use: the state is gone after this call whatever happens next.
	pending, err := c.states.Consume(ctx, cb.State)
	if err != nil {
		if errors.Is(err, ErrStateNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrProviderExchangeFailed, ErrInvalidState)
		}
		return nil, fmt.Errorf("%w: consume state: %w", ErrProviderExchangeFailed, err)
	}
	if pending.Provider != c.provider {
		return nil, fmt.Errorf("%w: %w", ErrProviderExchangeFailed, ErrInvalidState)
	}
	if cb.Code == "" {
		return nil, fmt.Errorf("%w: %w", ErrProviderExchangeFailed, ErrMissingCode)
	}

	opts := []oauth2.AuthCodeOption{oauth2.VerifierOption(pending.Verifier)}
	if pending.CallbackURL != "" {
		opts = append(opts, oauth2.SetAuthURLParam("redirect_uri", pending.CallbackURL))
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := c.conf.Exchange(ctx, cb.Code, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: code exchange: %w", ErrProviderExchangeFailed, err)
	}
	return tok, nil
}

// getJSON performs an authenticated GET and decodes the JSON body into dst.
func (c *oauthClient) getJSON(ctx context.Context, accessToken, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProviderExchangeFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProviderExchangeFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned status %d", ErrProviderExchangeFailed, url, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrProviderExchangeFailed, url, err)
	}
	return nil
}
