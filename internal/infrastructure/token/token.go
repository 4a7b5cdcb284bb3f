// Package token issues and verifies the bearer tokens handed out at login.
package token

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/acme/catalog-system/internal/core/domain"
	"github.com/acme/catalog-system/internal/core/ports"
)

const defaultLifetime = time.Hour

var _ ports.TokenService = (*Service)(nil)

// Config selects the signing scheme. RS256 is used when both key paths are
// set, otherwise HS256 with Secret.
type Config struct {
	Secret         string
	PrivateKeyPath string
	PublicKeyPath  string
	Issuer         string
	Lifetime       time.Duration
}

// Service signs tokens with either an HMAC secret or an RSA key pair.
type Service struct {
	method   jwt.SigningMethod
	signKey  any
	verifKey any
	issuer   string
	lifetime time.Duration
	now      func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces time.Now for issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewHMAC returns an HS256 token service.
func NewHMAC(secret, issuer string, lifetime time.Duration, opts ...Option) (*Service, error) {
	if secret == "" {
		return nil, errors.New("token: HMAC secret is empty")
	}
	return newService(jwt.SigningMethodHS256, []byte(secret), []byte(secret), issuer, lifetime, opts), nil
}

// NewRSA returns an RS256 token service reading PEM keys from disk.
func NewRSA(privateKeyPath, publicKeyPath, issuer string, lifetime time.Duration, opts ...Option) (*Service, error) {
	privPEM, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("token: read private key %s: %w", privateKeyPath, err)
	}
	priv, err := jwt.ParseRSAPrivateKeyFromPEM(privPEM)
	if err != nil {
		return nil, fmt.Errorf("token: parse private key: %w", err)
	}

	pubPEM, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("token: read public key %s: %w", publicKeyPath, err)
	}
	pub, err := jwt.ParseRSAPublicKeyFromPEM(pubPEM)
	if err != nil {
		return nil, fmt.Errorf("token: parse public key: %w", err)
	}

	return newService(jwt.SigningMethodRS256, priv, pub, issuer, lifetime, opts), nil
}

// FromConfig picks RS256 or HS256 depending on cfg.
func FromConfig(cfg Config, opts ...Option) (*Service, error) {
	if cfg.PrivateKeyPath != "" && cfg.PublicKeyPath != "" {
		return NewRSA(cfg.PrivateKeyPath, cfg.PublicKeyPath, cfg.Issuer, cfg.Lifetime, opts...)
	}
	return NewHMAC(cfg.Secret, cfg.Issuer, cfg.Lifetime, opts...)
}

func newService(method jwt.SigningMethod, signKey, verifKey any, issuer string, lifetime time.Duration, opts []Option) *Service {
	if lifetime <= 0 {
		lifetime = defaultLifetime
	}
	s := &Service{
		method:   method,
		signKey:  signKey,
		verifKey: verifKey,
		issuer:   issuer,
		lifetime: lifetime,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Lifetime() time.Duration { return s.lifetime }

// Issue signs a token for userID with a fresh jti.
func (s *Service) Issue(userID string) (*ports.IssuedToken, error) {
	now := s.now().Truncate(time.Second)
	jti := uuid.NewString()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        jti,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.signKey)
	if err != nil {
		return nil, fmt.Errorf("token: sign: %w", err)
	}

	return &ports.IssuedToken{
		Token:     signed,
		JTI:       jti,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.lifetime),
	}, nil
}

// Verify checks signature, algorithm and expiry and returns the subject.
func (s *Service) Verify(tokenString string) (string, error) {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(s.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.verifKey, nil
	}, parserOpts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", &domain.TokenExpiredError{Message: "token has expired"}
		}
		return "", fmt.Errorf("%w: %v", domain.ErrTokenMalformed, err)
	}
	if !tkn.Valid || claims.Subject == "" {
		return "", domain.ErrTokenMalformed
	}
	return claims.Subject, nil
}
