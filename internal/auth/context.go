package auth

import "context"

type contextKey string

const authContextKey contextKey = "askgate_auth"

// AuthInfo identifies the authenticated key. The hash doubles as the rate
// limit bucket key; the prefix is the only part that may be logged.
type AuthInfo struct {
	KeyHash string
	Prefix  string
}

func ContextWithAuth(ctx context.Context, info *AuthInfo) context.Context {
	return context.WithValue(ctx, authContextKey, info)
}

func AuthFromContext(ctx context.Context) (*AuthInfo, bool) {
	info, ok := ctx.Value(authContextKey).(*AuthInfo)
	return info, ok
}
