// Package auth carries the authenticated user through request contexts.
package auth

import (
	"context"

	pkgerrors "safesite-backend/pkg/errors"
)

// UserContext is the authenticated identity attached to a request.
type UserContext struct {
	UserID string
	Email  string
}

type contextKey struct{}

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, user UserContext) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// GetUserFromContext extracts the authenticated user from a context.
func GetUserFromContext(ctx context.Context) (UserContext, error) {
	user, ok := ctx.Value(contextKey{}).(UserContext)
	if !ok {
		return UserContext{}, pkgerrors.NewAuthRequired("no authenticated user in context")
	}
	return user, nil
}
