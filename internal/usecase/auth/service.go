package auth

import (
	"context"
	"errors"
	"time"

	domain "dashboard/backend/internal/domain/auth"
	"dashboard/backend/internal/logging"
	"dashboard/backend/internal/validate"
)

// User-facing login failure messages.
const (
	MsgInvalidCredentials   = "Invalid email or password."
	MsgAuthenticationFailed = "Authentication failed."
)

// LoginResult is either a redirect carrying a fresh token or a failure message.
type LoginResult struct {
	Token      string
	ExpiresAt  time.Time
	Identity   domain.Identity
	RedirectTo string

	Message     string
	FieldErrors map[string]string
	// Err is the classified cause of a failure. Not for display.
	Err error
}

// OK reports whether the login succeeded.
func (r LoginResult) OK() bool {
	return r.Err == nil && r.Token != ""
}

// Service coordinates the login flow: verify credentials, then issue a token.
type Service struct {
	verifier CredentialVerifier
	tokens   TokenIssuer
	landing  string
	log      logging.Logger
}

// NewService constructs an auth service.
func NewService(verifier CredentialVerifier, tokens TokenIssuer, landingPath string, log logging.Logger) *Service {
	return &Service{
		verifier: verifier,
		tokens:   tokens,
		landing:  landingPath,
		log:      log,
	}
}

// Login validates credentials and returns a token plus the redirect target.
// Store and signing failures are logged and surface as MsgAuthenticationFailed;
// they are not retried.
func (s *Service) Login(ctx context.Context, creds domain.Credentials) LoginResult {
	identity, err := s.verifier.Verify(ctx, creds)
	if err != nil {
		switch {
		case errors.Is(err, validate.ErrInvalid):
			return LoginResult{Message: MsgInvalidCredentials, FieldErrors: validate.Fields(err), Err: err}
		case errors.Is(err, domain.ErrInvalidCredentials):
			s.log.Info(ctx, "login rejected", "reason", "invalid_credentials")
			return LoginResult{Message: MsgInvalidCredentials, Err: err}
		default:
			s.log.Error(ctx, "authentication failed", "error", err)
			return LoginResult{Message: MsgAuthenticationFailed, Err: err}
		}
	}

	token, expiresAt, err := s.tokens.Issue(identity)
	if err != nil {
		s.log.Error(ctx, "authentication failed", "user_id", identity.ID, "error", err)
		return LoginResult{Message: MsgAuthenticationFailed, Err: err}
	}

	s.log.Info(ctx, "login succeeded", "user_id", identity.ID)
	return LoginResult{
		Token:      token,
		ExpiresAt:  expiresAt,
		Identity:   identity,
		RedirectTo: s.landing,
	}
}

// IsCredentialFailure reports whether a login failure was caused by the
// caller's input rather than the system.
func IsCredentialFailure(err error) bool {
	return errors.Is(err, validate.ErrInvalid) || errors.Is(err, domain.ErrInvalidCredentials)
}
