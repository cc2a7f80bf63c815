package account

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/georadical/layer-flow/pkg/auth"
)

const stateCookiePrefix = "oauth_state_"

// Config holds the frontend location federated callbacks redirect to and
// the settings of the cookie that binds an OAuth state to the browser.
type Config struct {
	FrontendURL  string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	CallbackPath string `env:"FRONTEND_CALLBACK_PATH" envDefault:"/auth/callback"`

	StateTTL          time.Duration `env:"OAUTH_STATE_TTL" envDefault:"10m"`
	StateCookieSecure bool          `env:"OAUTH_STATE_COOKIE_SECURE" envDefault:"true"`
}

// stateCookie carries value for provider. A negative maxAge deletes it.
func (c Config) stateCookie(provider, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     stateCookiePrefix + provider,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.StateCookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (c Config) stateMaxAge() int {
	ttl := c.StateTTL
	if ttl <= 0 {
		ttl = auth.DefaultStateTTL
	}
	return int(ttl / time.Second)
}

// callbackURL builds {FrontendURL}{CallbackPath}/{provider}?{params}.
func (c Config) callbackURL(provider string, params url.Values) string {
	base := strings.TrimRight(c.FrontendURL, "/") + "/" +
		strings.Trim(c.CallbackPath, "/") + "/" + url.PathEscape(provider)
	if len(params) == 0 {
		return base
	}
	return base + "?" + params.Encode()
}
