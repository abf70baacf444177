package auth

import (
	"errors"
	"time"
)

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrStoreUnavailable means the user store could not answer.
	ErrStoreUnavailable = errors.New("user store unavailable")
	// ErrUserNotFound indicates missing user.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailExists signals a duplicate email registration.
	ErrEmailExists = errors.New("email already registered")
)

// User models the authentication entity persisted in storage.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Identity returns the claim-safe view of the user.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email, Name: u.Name}
}

// Credentials captures raw credential input for login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Identity is the minimal claim set carried in a session.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Session is the request-scoped view of the caller. The zero value is anonymous.
type Session struct {
	Identity      Identity
	Authenticated bool
	ExpiresAt     time.Time
}

// Anonymous is the session of a caller without a valid token.
var Anonymous = Session{}
