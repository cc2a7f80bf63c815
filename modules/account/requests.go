package account

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/mail"
	"strings"
)

const maxBodySize = 1 << 20

var (
	errUnsupportedMediaType = errors.New("unsupported content type")
	errMalformedBody        = errors.New("malformed request body")
	errInvalidEmail         = errors.New("value is not a valid email address")
	errMissingPassword      = errors.New("password is required")
	errMissingUsername      = errors.New("username is required")
)

// SignupRequest is the body of POST /signup.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *SignupRequest) validate() error {
	r.Email = strings.TrimSpace(r.Email)
	if addr, err := mail.ParseAddress(r.Email); err != nil || addr.Address != r.Email {
		return errInvalidEmail
	}
	if r.Password == "" {
		return errMissingPassword
	}
	return nil
}

// LoginRequest is the OAuth2 password form. JSON bodies may send email
// instead of username.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func decodeLogin(r *http.Request) (LoginRequest, error) {
	var req LoginRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodySize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return req, fmt.Errorf("%w: %v", errMalformedBody, err)
		}
		req.Username = r.PostFormValue("username")
		req.Password = r.PostFormValue("password")
	case "application/json":
		if err := decodeJSON(r, &req); err != nil {
			return req, err
		}
		if req.Username == "" {
			req.Username = req.Email
		}
	default:
		return req, errUnsupportedMediaType
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		return req, errMissingUsername
	}
	if req.Password == "" {
		return req, errMissingPassword
	}
	return req, nil
}

func decodeJSON(r *http.Request, v any) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		return errUnsupportedMediaType
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: unexpected data after JSON object", errMalformedBody)
	}
	return nil
}
