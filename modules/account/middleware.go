package account

import (
	"context"
	"errors"
	"net/http"

	"github.com/georadical/layer-flow/pkg/auth"
	"github.com/georadical/layer-flow/pkg/jwt"
)

// TokenAuthenticator resolves a bearer token to a user.
type TokenAuthenticator interface {
	AuthenticateToken(ctx context.Context, token string) (*auth.User, error)
}

// RequireUser rejects requests without a valid token and stores the resolved
// user, the raw token and the user id in the request context. A nil
// extractor reads the Authorization bearer header. Storage faults answer 500.
func RequireUser(svc TokenAuthenticator, extractor jwt.TokenExtractorFunc) func(http.Handler) http.Handler {
	return jwt.Middleware(jwt.MiddlewareConfig{
		Extractor: extractor,
		Authenticate: func(ctx context.Context, token string) (context.Context, int64, error) {
			user, err := svc.AuthenticateToken(ctx, token)
			if err != nil {
				return ctx, 0, err
			}
			return auth.SetUserToContext(ctx, user), user.ID, nil
		},
		ErrorHandler: func(w http.ResponseWriter, _ *http.Request, err error) {
			if errors.Is(err, jwt.ErrMissingToken) || errors.Is(err, auth.ErrUnauthenticated) {
				unauthorized(w)
				return
			}
			writeDetail(w, http.StatusInternalServerError, detailInternal)
		},
	})
}
