package jwt

import "context"

type contextKey struct{ name string }

func (c contextKey) String() string { return c.name }

var (
	tokenContextKey   = &contextKey{name: "jwt"}
	subjectContextKey = &contextKey{name: "jwt_subject"}
)

// SetToken stores the raw token string in the context.
func SetToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey, token)
}

// GetToken returns the raw token string stored by SetToken.
func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenContextKey).(string)
	return token, ok
}

// SetSubject stores a verified subject id in the context.
func SetSubject(ctx context.Context, subjectID int64) context.Context {
	return context.WithValue(ctx, subjectContextKey, subjectID)
}

// GetSubject returns the subject id stored by SetSubject.
func GetSubject(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(subjectContextKey).(int64)
	return id, ok
}
