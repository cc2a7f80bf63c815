// Package jwt issues and verifies the bearer access tokens handed out after a
// successful login.
//
// Tokens are compact JWS strings signed with an HMAC secret shared by every
// process of the service. A token asserts exactly one thing: the numeric id of
// the user it was issued to (the "sub" claim), plus when it was issued and
// when it stops being valid. Nothing is persisted, so any process holding the
// secret can verify any token and there is no server-side revocation.
//
// Signing and parsing are delegated to github.com/golang-jwt/jwt/v5. The
// Service pins the accepted algorithm so a token signed with another method
// (including "none") is rejected before its claims are looked at.
//
// # Usage
//
//	codec, err := jwt.NewFromString(cfg.SecretKey,
//		jwt.WithAlgorithm("HS256"),
//		jwt.WithIssuer("layer-flow"),
//	)
//	if err != nil {
//		return err
//	}
//
//	token, expiresAt, err := codec.Issue(user.ID, time.Hour)
//
//	userID, err := codec.Verify(token)
//	switch {
//	case errors.Is(err, jwt.ErrTokenExpired):
//		// legitimately issued, now stale
//	case errors.Is(err, jwt.ErrTokenInvalid):
//		// forged, tampered or malformed
//	}
//
// # Middleware
//
// Middleware extracts a token from the request (Authorization: Bearer by
// default), authenticates it through MiddlewareConfig.Authenticate and
// stores the raw token and the subject id in the request context, where
// GetToken and GetSubject read them back. VerifyWith adapts a Service for
// callers that trust the signature alone.
package jwt
