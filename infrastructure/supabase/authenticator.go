package supabase

import (
	"context"

	"safesite-backend/application/ports"
	pkgerrors "safesite-backend/pkg/errors"

	"github.com/supabase-community/supabase-go"
	"go.uber.org/zap"
)

// Authenticator validates Supabase access tokens and resolves them to the
// authenticated user.
type Authenticator struct {
	client *supabase.Client
	logger *zap.Logger
}

// NewAuthenticator creates a token validator backed by Supabase auth.
func NewAuthenticator(client *supabase.Client, logger *zap.Logger) *Authenticator {
	return &Authenticator{client: client, logger: logger}
}

// Authenticate resolves a bearer token to its user. The GetUser call,
// when chained with WithToken, performs the HTTP request internally.
func (a *Authenticator) Authenticate(_ context.Context, token string) (*ports.User, error) {
	if token == "" {
		return nil, pkgerrors.NewAuthRequired("missing access token")
	}

	user, err := a.client.Auth.WithToken(token).GetUser()
	if err != nil {
		a.logger.Debug("token validation failed", zap.Error(err))
		return nil, pkgerrors.NewAuthRequired("invalid access token")
	}

	return &ports.User{
		ID:    user.ID.String(),
		Email: user.Email,
	}, nil
}
