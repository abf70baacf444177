package auth

import (
	"context"
	"errors"
	"fmt"

	domain "dashboard/backend/internal/domain/auth"
	"dashboard/backend/internal/validate"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password accepted at login.
const MinPasswordLength = 6

// CredentialVerifier checks an email/password pair against the user store.
type CredentialVerifier interface {
	Verify(ctx context.Context, creds domain.Credentials) (domain.Identity, error)
}

// Verifier looks users up by email and compares bcrypt hashes.
type Verifier struct {
	users domain.UserRepository
	// dummyHash is compared against when the email is unknown, so both
	// failure paths pay for one bcrypt round at the provisioning cost.
	dummyHash []byte
}

// NewVerifier constructs a verifier over the given repository.
func NewVerifier(users domain.UserRepository) *Verifier {
	h, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("auth: generating dummy hash: %v", err))
	}
	return &Verifier{users: users, dummyHash: h}
}

var _ CredentialVerifier = (*Verifier)(nil)

// Verify returns the identity for valid credentials.
//
// Malformed input fails with a *validate.Error before the store is touched.
// An unknown email and a wrong password both return ErrInvalidCredentials.
// Store failures are wrapped in ErrStoreUnavailable.
func (v *Verifier) Verify(ctx context.Context, creds domain.Credentials) (domain.Identity, error) {
	if err := ValidateCredentials(creds); err != nil {
		return domain.Identity{}, err
	}

	user, err := v.users.GetByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(v.dummyHash, []byte(creds.Password))
			return domain.Identity{}, domain.ErrInvalidCredentials
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.Identity{}, ctxErr
		}
		return domain.Identity{}, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	if err := ctx.Err(); err != nil {
		return domain.Identity{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return domain.Identity{}, domain.ErrInvalidCredentials
		}
		return domain.Identity{}, fmt.Errorf("comparing password hash for user %s: %w", user.ID, err)
	}

	return user.Identity(), nil
}

// ValidateCredentials checks the shape of login input.
func ValidateCredentials(creds domain.Credentials) error {
	return validate.Wrap(validation.ValidateStruct(&creds,
		validation.Field(&creds.Email,
			validation.Required.Error("Please enter your email address."),
			is.Email.Error("Please enter a valid email address."),
		),
		validation.Field(&creds.Password,
			validation.Required.Error("Please enter your password."),
			validation.Length(MinPasswordLength, 0).Error("Password must be at least 6 characters."),
		),
	))
}
