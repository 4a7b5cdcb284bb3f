package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/acme/catalog-system/internal/core/domain"
	"github.com/acme/catalog-system/internal/core/ports"
)

// dummyHash is compared against when the username is unknown so that both
// failure paths cost one bcrypt comparison.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z3Hq5hY7eGNPmN1VsxpPiqEe"

var _ ports.AuthService = (*AuthService)(nil)

// AuthService implements login and the request authentication gate.
type AuthService struct {
	users  ports.CredentialStore
	tokens ports.TokenService
	log    zerolog.Logger
}

func NewAuthService(users ports.CredentialStore, tokens ports.TokenService, log zerolog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, log: log}
}

// Login checks the password and issues a token. Any mismatch, including an
// unknown username, yields domain.ErrInvalidCredentials.
func (s *AuthService) Login(_ context.Context, username, password string) (*ports.LoginResult, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			s.log.Debug().Str("username", username).Msg("login for unknown user")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.log.Debug().Str("username", username).Msg("login with wrong password")
		return nil, domain.ErrInvalidCredentials
	}

	issued, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Str("jti", issued.JTI).Msg("user logged in")
	return &ports.LoginResult{
		Token:     issued.Token,
		ExpiresIn: int64(s.tokens.Lifetime().Seconds()),
		Roles:     append([]string(nil), user.Roles...),
	}, nil
}

// Authenticate resolves the user behind an Authorization header value.
func (s *AuthService) Authenticate(_ context.Context, authorizationHeader string) (*domain.User, error) {
	if strings.TrimSpace(authorizationHeader) == "" {
		return nil, domain.ErrAuthorizationHeaderMissing
	}

	parts := strings.SplitN(strings.TrimSpace(authorizationHeader), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return nil, domain.ErrTokenInvalid
	}

	subject, err := s.tokens.Verify(strings.TrimSpace(parts[1]))
	if err != nil {
		if errors.Is(err, domain.ErrTokenExpired) {
			return nil, err
		}
		return nil, domain.ErrTokenInvalid
	}

	user, err := s.users.FindByID(subject)
	if err != nil {
		s.log.Warn().Str("subject", subject).Msg("token subject is not a known user")
		return nil, domain.ErrTokenInvalid
	}
	return user, nil
}

// Authorize reports whether user holds one of required. An empty required
// set admits any authenticated user.
func (s *AuthService) Authorize(user *domain.User, required ...string) bool {
	if user == nil {
		return false
	}
	return user.HasAnyRole(required...)
}
