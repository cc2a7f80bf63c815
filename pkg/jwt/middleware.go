package jwt

import (
	"context"
	"net/http"
	"strings"
)

// TokenExtractorFunc extracts a raw token from an HTTP request.
type TokenExtractorFunc func(r *http.Request) (string, error)

// AuthenticateFunc resolves a raw token to its subject id. The returned
// context replaces the request context, so implementations may attach
// their own values to it.
type AuthenticateFunc func(ctx context.Context, token string) (context.Context, int64, error)

// MiddlewareConfig configures Middleware.
type MiddlewareConfig struct {
	// Authenticate is required.
	Authenticate AuthenticateFunc
	// Extractor defaults to BearerTokenExtractor.
	Extractor TokenExtractorFunc
	// ErrorHandler answers rejected requests. Extraction failures arrive as
	// ErrMissingToken. Defaults to a plain 401 with a Bearer challenge.
	ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)
}

// VerifyWith adapts a Service into an AuthenticateFunc that trusts the
// token alone.
func VerifyWith(s *Service) AuthenticateFunc {
	return func(ctx context.Context, token string) (context.Context, int64, error) {
		id, err := s.Verify(token)
		return ctx, id, err
	}
}

// Middleware extracts and authenticates a token, then stores the raw token
// and the subject id in the request context.
func Middleware(cfg MiddlewareConfig) func(next http.Handler) http.Handler {
	if cfg.Authenticate == nil {
		panic("jwt: middleware requires an Authenticate func")
	}
	if cfg.Extractor == nil {
		cfg.Extractor = BearerTokenExtractor
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(w http.ResponseWriter, _ *http.Request, _ error) {
			w.Header().Set("WWW-Authenticate", "Bearer")
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := cfg.Extractor(r)
			if err != nil {
				cfg.ErrorHandler(w, r, err)
				return
			}

			ctx, subjectID, err := cfg.Authenticate(r.Context(), token)
			if err != nil {
				cfg.ErrorHandler(w, r, err)
				return
			}

			ctx = SetToken(ctx, token)
			ctx = SetSubject(ctx, subjectID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerTokenExtractor reads "Authorization: Bearer <token>" (RFC 6750).
// The scheme is matched case-insensitively.
func BearerTokenExtractor(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrMissingToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}
