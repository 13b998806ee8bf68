package client

import "context"

type contextKey struct {
	name string
}

var accessTokenKey = contextKey{"access-token"}

// ContextWithAccessToken stores the bearer token that Request attaches to outgoing calls
func ContextWithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, accessTokenKey, token)
}

func ContextAccessToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(accessTokenKey).(string)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}
