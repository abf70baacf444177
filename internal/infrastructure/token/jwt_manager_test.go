package token

import (
	"strings"
	"testing"
	"time"

	domain "dashboard/backend/internal/domain/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var identity = domain.Identity{
	ID:    "410544b2-4001-4271-9855-fec4b6a6442a",
	Email: "user@nextmail.com",
	Name:  "User",
}

func newManager(t *testing.T, secret string, ttl time.Duration) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(secret, ttl, "dashboard")
	require.NoError(t, err)
	return m
}

func TestNewJWTManager_EmptySecret(t *testing.T) {
	_, err := NewJWTManager("", time.Hour, "dashboard")
	require.ErrorIs(t, err, ErrEmptySecret)
}

func TestIssueRead_RoundTrip(t *testing.T) {
	m := newManager(t, "super-secret", time.Hour)

	tok, exp, err := m.Issue(identity)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	session := m.Read(tok)
	require.True(t, session.Authenticated)
	assert.Equal(t, identity, session.Identity)
	assert.WithinDuration(t, exp, session.ExpiresAt, time.Second)
}

func TestIssue_DoesNotEmbedExtraClaims(t *testing.T) {
	m := newManager(t, "super-secret", time.Hour)
	tok, _, err := m.Issue(identity)
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, claims)
	require.NoError(t, err)

	keys := make([]string, 0, len(claims))
	for k := range claims {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{"id", "email", "name", "iss", "sub", "iat", "exp"}, keys)
}

func TestRead_TamperedSignature(t *testing.T) {
	m := newManager(t, "super-secret", time.Hour)
	tok, _, err := m.Issue(identity)
	require.NoError(t, err)

	dot := strings.LastIndex(tok, ".")
	sig := []byte(tok[dot+1:])
	for i := range sig {
		tampered := make([]byte, len(sig))
		copy(tampered, sig)
		if tampered[i] == 'A' {
			tampered[i] = 'B'
		} else {
			tampered[i] = 'A'
		}
		assert.Equal(t, domain.Anonymous, m.Read(tok[:dot+1]+string(tampered)), "byte %d", i)
	}
}

func TestRead_Expired(t *testing.T) {
	m := newManager(t, "super-secret", -time.Second)
	tok, _, err := m.Issue(identity)
	require.NoError(t, err)

	assert.Equal(t, domain.Anonymous, m.Read(tok))
}

func TestRead_WrongSecret(t *testing.T) {
	tok, _, err := newManager(t, "right-secret", time.Hour).Issue(identity)
	require.NoError(t, err)

	assert.Equal(t, domain.Anonymous, newManager(t, "wrong-secret", time.Hour).Read(tok))
}

func TestRead_WrongIssuer(t *testing.T) {
	other, err := NewJWTManager("super-secret", time.Hour, "someone-else")
	require.NoError(t, err)
	tok, _, err := other.Issue(identity)
	require.NoError(t, err)

	assert.False(t, newManager(t, "super-secret", time.Hour).Read(tok).Authenticated)
}

func TestRead_Malformed(t *testing.T) {
	m := newManager(t, "k", time.Hour)

	for _, tok := range []string{"", "not.a.jwt", "garbage", "a.b"} {
		assert.Equal(t, domain.Anonymous, m.Read(tok), "token %q", tok)
	}
}

func TestRead_NoneAlgorithmRejected(t *testing.T) {
	m := newManager(t, "super-secret", time.Hour)
	claims := Claims{
		ID: identity.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "dashboard",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	assert.Equal(t, domain.Anonymous, m.Read(tok))
}

func TestRead_MissingIdentityClaim(t *testing.T) {
	m := newManager(t, "super-secret", time.Hour)
	tok, _, err := m.Issue(domain.Identity{Email: "x@y.z"})
	require.NoError(t, err)

	assert.False(t, m.Read(tok).Authenticated)
}
