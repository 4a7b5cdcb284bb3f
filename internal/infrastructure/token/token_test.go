package token

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acme/catalog-system/internal/core/domain"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func TestHMAC_IssueVerify(t *testing.T) {
	svc, err := NewHMAC("secret", "acme.com", time.Hour)
	require.NoError(t, err)

	issued, err := svc.Issue("user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, issued.JTI)
	assert.Equal(t, time.Hour, issued.ExpiresAt.Sub(issued.IssuedAt))

	sub, err := svc.Verify(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)
}

func TestHMAC_UniqueJTI(t *testing.T) {
	svc, err := NewHMAC("secret", "", time.Hour)
	require.NoError(t, err)

	a, err := svc.Issue("u")
	require.NoError(t, err)
	b, err := svc.Issue("u")
	require.NoError(t, err)
	assert.NotEqual(t, a.JTI, b.JTI)
}

func TestVerify_Expired(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	svc, err := NewHMAC("secret", "", time.Minute, WithClock(clock.Now))
	require.NoError(t, err)

	issued, err := svc.Issue("user-1")
	require.NoError(t, err)

	clock.t = clock.t.Add(2 * time.Minute)
	_, err = svc.Verify(issued.Token)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
	assert.NotErrorIs(t, err, domain.ErrTokenMalformed)
}

func TestVerify_Malformed(t *testing.T) {
	svc, err := NewHMAC("secret", "", time.Hour)
	require.NoError(t, err)

	_, err = svc.Verify("not-a-token")
	assert.ErrorIs(t, err, domain.ErrTokenMalformed)
}

func TestVerify_WrongSecret(t *testing.T) {
	signer, err := NewHMAC("secret", "", time.Hour)
	require.NoError(t, err)
	verifier, err := NewHMAC("other", "", time.Hour)
	require.NoError(t, err)

	issued, err := signer.Issue("user-1")
	require.NoError(t, err)

	_, err = verifier.Verify(issued.Token)
	assert.ErrorIs(t, err, domain.ErrTokenMalformed)
}

func TestNewHMAC_EmptySecret(t *testing.T) {
	_, err := NewHMAC("", "", time.Hour)
	assert.Error(t, err)
}

func writeKeyPair(t *testing.T) (string, string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	require.NoError(t, os.WriteFile(privPath, privPEM, 0o600))

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0o600))

	return privPath, pubPath
}

func TestFromConfig_RSA(t *testing.T) {
	privPath, pubPath := writeKeyPair(t)

	svc, err := FromConfig(Config{PrivateKeyPath: privPath, PublicKeyPath: pubPath, Issuer: "acme.com"})
	require.NoError(t, err)
	assert.Equal(t, defaultLifetime, svc.Lifetime())

	issued, err := svc.Issue("user-2")
	require.NoError(t, err)

	sub, err := svc.Verify(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-2", sub)

	// An HS256 token must not pass an RS256 verifier.
	hmac, err := NewHMAC("secret", "acme.com", time.Hour)
	require.NoError(t, err)
	forged, err := hmac.Issue("user-2")
	require.NoError(t, err)
	_, err = svc.Verify(forged.Token)
	assert.ErrorIs(t, err, domain.ErrTokenMalformed)
}

func TestVerify_WrongIssuer(t *testing.T) {
	signer, err := NewHMAC("secret", "evil.example", time.Hour)
	require.NoError(t, err)
	verifier, err := NewHMAC("secret", "acme.com", time.Hour)
	require.NoError(t, err)

	issued, err := signer.Issue("user-1")
	require.NoError(t, err)

	_, err = verifier.Verify(issued.Token)
	assert.ErrorIs(t, err, domain.ErrTokenMalformed)
}

func TestVerify_RejectsOtherAlgorithm(t *testing.T) {
	privPath, pubPath := writeKeyPair(t)
	rsaSvc, err := NewRSA(privPath, pubPath, "", time.Hour)
	require.NoError(t, err)

	hmacSvc, err := NewHMAC("secret", "", time.Hour)
	require.NoError(t, err)
	issued, err := hmacSvc.Issue("user-1")
	require.NoError(t, err)

	_, err = rsaSvc.Verify(issued.Token)
	assert.ErrorIs(t, err, domain.ErrTokenMalformed)
}
