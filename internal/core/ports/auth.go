package ports

import (
	"context"
	"time"

	"github.com/acme/catalog-system/internal/core/domain"
)

// CredentialStore is the read-only user directory.
type CredentialStore interface {
	FindByUsername(username string) (*domain.User, error)
	FindByID(id string) (*domain.User, error)
}

// IssuedToken is a signed token together with its lifetime.
type IssuedToken struct {
	Token     string
	JTI       string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues and verifies bearer tokens.
type TokenService interface {
	Issue(userID string) (*IssuedToken, error)
	// Verify returns the subject of a valid token. Failures are
	// domain.ErrTokenExpired or domain.ErrTokenMalformed.
	Verify(token string) (string, error)
	Lifetime() time.Duration
}

// LoginResult is returned to clients after a successful login.
type LoginResult struct {
	Token     string   `json:"token"`
	ExpiresIn int64    `json:"expiresIn"`
	Roles     []string `json:"roles"`
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Authenticate(ctx context.Context, authorizationHeader string) (*domain.User, error)
	Authorize(user *domain.User, required ...string) bool
}
