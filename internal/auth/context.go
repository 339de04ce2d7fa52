package auth

import (
	"context"
	"errors"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const userIDContextKey contextKey = "user_id"

// ContextWithUserID attaches the authenticated account id to the context.
func ContextWithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UserIDFromContext retrieves the authenticated account id placed in the
// context by the auth middleware.
func UserIDFromContext(ctx context.Context) (int, error) {
	userID, ok := ctx.Value(userIDContextKey).(int)
	if !ok || userID < 1 {
		return 0, errors.New("missing authenticated user")
	}
	return userID, nil
}
