package account

import (
	"errors"
	"net/http"

	"github.com/georadical/layer-flow/pkg/auth"
	"github.com/georadical/layer-flow/pkg/httpserver"
	"github.com/georadical/layer-flow/pkg/logger"
)

// Error details returned to clients.
const (
	detailBadCredentials  = "Incorrect email or password"
	detailInactiveUser    = "Inactive user"
	detailDuplicateEmail  = "The user with this email already exists in the system."
	detailUnauthenticated = "Could not validate credentials"
	detailUnknownProvider = "Unknown identity provider"
	detailInternal        = "Internal server error"
)

// Callback error codes passed to the frontend.
const (
	codeEmailUnavailable       = "email_unavailable"
	codeProviderExchangeFailed = "provider_exchange_failed"
	codeInactiveUser           = "inactive_user"
)

// UserRead is the public view of a user.
type UserRead struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	AuthProvider string `json:"auth_provider"`
	IsActive     bool   `json:"is_active"`
}

func newUserRead(u *auth.User) UserRead {
	return UserRead{
		ID:           u.ID,
		Email:        u.Email,
		AuthProvider: u.AuthProvider,
		IsActive:     u.IsActive,
	}
}

// TokenResponse is returned by POST /login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type detailResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	httpserver.WriteJSON(w, status, v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, detailResponse{Detail: detail})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeDetail(w, http.StatusUnauthorized, detailUnauthenticated)
}

// writeError maps service errors onto HTTP responses. Unmapped errors are
// logged and answered with 500.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		unauthorized(w)
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeDetail(w, http.StatusBadRequest, detailBadCredentials)
	case errors.Is(err, auth.ErrInactiveAccount):
		writeDetail(w, http.StatusBadRequest, detailInactiveUser)
	case errors.Is(err, auth.ErrDuplicateEmail):
		writeDetail(w, http.StatusBadRequest, detailDuplicateEmail)
	case errors.Is(err, auth.ErrEmailRequired), errors.Is(err, auth.ErrPasswordRequired):
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, auth.ErrUnknownProvider):
		writeDetail(w, http.StatusNotFound, detailUnknownProvider)
	default:
		h.logger.ErrorContext(r.Context(), "request failed",
			logger.Error(err),
			logger.RequestID(httpserver.RequestIDFromContext(r.Context())),
		)
		writeDetail(w, http.StatusInternalServerError, detailInternal)
	}
}

// callbackErrorCode reports the frontend error code for a failed federated
// login. Errors without a code are answered directly.
func callbackErrorCode(err error) (string, bool) {
	switch {
	case errors.Is(err, auth.ErrUnknownProvider):
		return "", false
	case errors.Is(err, auth.ErrEmailUnavailable):
		return codeEmailUnavailable, true
	case errors.Is(err, auth.ErrInactiveAccount):
		return codeInactiveUser, true
	case errors.Is(err, auth.ErrProviderExchangeFailed),
		errors.Is(err, auth.ErrMissingCode),
		errors.Is(err, auth.ErrInvalidState):
		return codeProviderExchangeFailed, true
	default:
		return "", false
	}
}
