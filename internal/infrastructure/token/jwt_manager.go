package token

import (
	"errors"
	"time"

	domain "dashboard/backend/internal/domain/auth"
	usecase "dashboard/backend/internal/usecase/auth"

	"github.com/golang-jwt/jwt/v5"
)

// ErrEmptySecret is returned when no signing key is configured.
var ErrEmptySecret = errors.New("token: signing secret is empty")

// JWTManager issues and reads HS256 session tokens.
type JWTManager struct {
	secret     []byte
	expiration time.Duration
	issuer     string
	nowFunc    func() time.Time
}

// NewJWTManager constructs a manager with the provided secret and expiration.
func NewJWTManager(secret string, expiration time.Duration, issuer string) (*JWTManager, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &JWTManager{
		secret:     []byte(secret),
		expiration: expiration,
		issuer:     issuer,
		nowFunc:    time.Now,
	}, nil
}

var (
	_ usecase.TokenIssuer   = (*JWTManager)(nil)
	_ usecase.SessionReader = (*JWTManager)(nil)
)

// Claims is the session claim set.
type Claims struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// Issue creates a signed JWT for the identity and returns its expiry.
func (m *JWTManager) Issue(identity domain.Identity) (string, time.Time, error) {
	now := m.nowFunc().UTC()
	expiresAt := now.Add(m.expiration)
	claims := Claims{
		ID:    identity.ID,
		Email: identity.Email,
		Name:  identity.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Read verifies the token and returns its session. Any failure yields the
// anonymous session.
func (m *JWTManager) Read(tokenString string) domain.Session {
	if tokenString == "" {
		return domain.Anonymous
	}

	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(m.nowFunc),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	}, opts...)
	if err != nil || !token.Valid || claims.ID == "" {
		return domain.Anonymous
	}

	session := domain.Session{
		Identity: domain.Identity{
			ID:    claims.ID,
			Email: claims.Email,
			Name:  claims.Name,
		},
		Authenticated: true,
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session
}
