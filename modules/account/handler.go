package account

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/georadical/layer-flow/pkg/auth"
	"github.com/georadical/layer-flow/pkg/jwt"
	"github.com/georadical/layer-flow/pkg/logger"
)

// Authenticator is the part of auth.Service the HTTP layer calls.
type Authenticator interface {
	Signup(ctx context.Context, email, password string) (*auth.User, error)
	Login(ctx context.Context, email, password string) (auth.Token, error)
	Logout(ctx context.Context) error
	AuthenticateToken(ctx context.Context, token string) (*auth.User, error)
	AuthorizeRedirect(ctx context.Context, provider, callbackURL string) (auth.Redirect, error)
	FederatedLogin(ctx context.Context, provider string, cb auth.Callback) (auth.Token, error)
}

var _ Authenticator = (*auth.Service)(nil)

// Handler serves the account routes.
type Handler struct {
	svc      Authenticator
	cfg      Config
	logger    *slog.Logger
	throttle  func(http.Handler) http.Handler
	extractor jwt.TokenExtractorFunc
}

// Option configures the Handler.
type Option func(*Handler)

// WithLogger sets the handler logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithThrottle wraps the credential endpoints (signup, login and the
// provider callback) in mw, typically a rate limiter.
func WithThrottle(mw func(http.Handler) http.Handler) Option {
	return func(h *Handler) { h.throttle = mw }
}

// WithTokenExtractor changes where protected routes read the access token
// from. The default is the Authorization bearer header.
func WithTokenExtractor(fn jwt.TokenExtractorFunc) Option {
	return func(h *Handler) { h.extractor = fn }
}

// NewHandler creates the account HTTP handler.
func NewHandler(svc Authenticator, cfg Config, opts ...Option) *Handler {
	h := &Handler{
		svc:    svc,
		cfg:    cfg,
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With(logger.Component("account"))
	return h
}

// Router returns the account routes.
//
//	r := chi.NewRouter()
//	r.Mount("/api/v1", account.NewHandler(svc, cfg.Account).Router())
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		if h.throttle != nil {
			r.Use(h.throttle)
		}
		r.Post("/signup", h.signup)
		r.Post("/login", h.login)
		r.Get("/auth/{provider}/callback", h.providerCallback)
	})

	r.Group(func(r chi.Router) {
		r.Use(RequireUser(h.svc, h.extractor))
		r.Post("/logout", h.logout)
		r.Get("/users/me", h.me)
	})

	r.Get("/auth/{provider}/login", h.providerLogin)

	return r
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := req.validate(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	user, err := h.svc.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newUserRead(user))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	req, err := decodeLogin(r)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	token, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Logout(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeDetail(w, http.StatusOK, "Logged out successfully")
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		unauthorized(w)
		return
	}
	writeJSON(w, http.StatusOK, newUserRead(user))
}

func (h *Handler) providerLogin(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	redirect, err := h.svc.AuthorizeRedirect(r.Context(), provider, "")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	http.SetCookie(w, h.cfg.stateCookie(provider, redirect.State, h.cfg.stateMaxAge()))
	http.Redirect(w, r, redirect.URL, http.StatusTemporaryRedirect)
}

func (h *Handler) providerCallback(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	cb := auth.CallbackFromRequest(r)
	if c, err := r.Cookie(stateCookiePrefix + provider); err == nil {
		cb.BrowserState = c.Value
		http.SetCookie(w, h.cfg.stateCookie(provider, "", -1))
	}

	token, err := h.svc.FederatedLogin(r.Context(), provider, cb)
	if err != nil {
		code, ok := callbackErrorCode(err)
		if !ok {
			h.writeError(w, r, err)
			return
		}
		http.Redirect(w, r, h.cfg.callbackURL(provider, url.Values{"error": {code}}), http.StatusTemporaryRedirect)
		return
	}

	http.Redirect(w, r, h.cfg.callbackURL(provider, url.Values{"access_token": {token.AccessToken}}), http.StatusTemporaryRedirect)
}
