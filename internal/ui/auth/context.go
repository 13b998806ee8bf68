package auth

import (
	"context"

	"github.com/constella-app/constella-web/internal/ui/types"
)

type contextKey struct {
	name string
}

var userKey = contextKey{"user"}

func ContextWithUser(ctx context.Context, user *types.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// ContextUser returns the user loaded from the session cookie, if any
func ContextUser(ctx context.Context) (*types.User, bool) {
	user, ok := ctx.Value(userKey).(*types.User)
	return user, ok && user != nil
}
