package auth

import (
	"time"

	domain "dashboard/backend/internal/domain/auth"
)

// TokenIssuer mints signed session tokens.
type TokenIssuer interface {
	Issue(identity domain.Identity) (token string, expiresAt time.Time, err error)
}

// SessionReader decodes a session token. Invalid tokens yield domain.Anonymous.
type SessionReader interface {
	Read(token string) domain.Session
}
