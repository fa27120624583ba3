package memory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"safesite-backend/application/ports"
	appErrors "safesite-backend/pkg/errors"
)

// Authenticator is the development-mode identity check. Any non-empty
// bearer token is accepted and mapped to a stable synthetic user, so the
// same token always owns the same checklists.
type Authenticator struct{}

// NewAuthenticator creates the development authenticator.
func NewAuthenticator() *Authenticator {
	return &Authenticator{}
}

// Authenticate derives a deterministic user from the token.
func (a *Authenticator) Authenticate(_ context.Context, token string) (*ports.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, appErrors.NewAuthRequired("missing bearer token")
	}
	sum := sha256.Sum256([]byte(token))
	id := hex.EncodeToString(sum[:16])
	return &ports.User{ID: id, Email: "dev-" + id[:8] + "@localhost"}, nil
}
