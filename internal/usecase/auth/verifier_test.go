package auth

import (
	"context"
	"errors"
	"testing"

	domain "dashboard/backend/internal/domain/auth"
	"dashboard/backend/internal/validate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func seededUser(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{
		ID:           "410544b2-4001-4271-9855-fec4b6a6442a",
		Email:        "user@nextmail.com",
		Name:         "User",
		PasswordHash: string(hash),
	}
}

func TestVerifier_Success(t *testing.T) {
	repo := new(mockUserRepository)
	user := seededUser(t, "123456")
	repo.On("GetByEmail", mock.Anything, "user@nextmail.com").Return(user, nil).Once()

	identity, err := NewVerifier(repo).Verify(context.Background(), domain.Credentials{
		Email:    "user@nextmail.com",
		Password: "123456",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.Identity{ID: user.ID, Email: user.Email, Name: user.Name}, identity)
	repo.AssertExpectations(t)
}

func TestVerifier_UnknownEmailMatchesWrongPassword(t *testing.T) {
	repo := new(mockUserRepository)
	repo.On("GetByEmail", mock.Anything, "ghost@nextmail.com").Return(nil, domain.ErrUserNotFound)
	repo.On("GetByEmail", mock.Anything, "user@nextmail.com").Return(seededUser(t, "123456"), nil)
	v := NewVerifier(repo)

	_, unknownErr := v.Verify(context.Background(), domain.Credentials{Email: "ghost@nextmail.com", Password: "123456"})
	_, wrongErr := v.Verify(context.Background(), domain.Credentials{Email: "user@nextmail.com", Password: "654321"})

	require.ErrorIs(t, unknownErr, domain.ErrInvalidCredentials)
	require.ErrorIs(t, wrongErr, domain.ErrInvalidCredentials)
	assert.Equal(t, unknownErr, wrongErr)
}

func TestNewVerifier_PrecomputesDummyHash(t *testing.T) {
	v := NewVerifier(new(mockUserRepository))

	cost, err := bcrypt.Cost(v.dummyHash)
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestVerifier_MalformedInputSkipsStore(t *testing.T) {
	cases := []struct {
		name  string
		creds domain.Credentials
		field string
	}{
		{"short password", domain.Credentials{Email: "user@nextmail.com", Password: "12345"}, "password"},
		{"empty password", domain.Credentials{Email: "user@nextmail.com"}, "password"},
		{"bad email", domain.Credentials{Email: "not-an-email", Password: "123456"}, "email"},
		{"empty email", domain.Credentials{Password: "123456"}, "email"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(mockUserRepository)

			_, err := NewVerifier(repo).Verify(context.Background(), tc.creds)

			require.ErrorIs(t, err, validate.ErrInvalid)
			assert.Contains(t, validate.Fields(err), tc.field)
			repo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
		})
	}
}

func TestVerifier_StoreFailureIsDistinct(t *testing.T) {
	repo := new(mockUserRepository)
	repo.On("GetByEmail", mock.Anything, "user@nextmail.com").Return(nil, errors.New("connection refused"))

	_, err := NewVerifier(repo).Verify(context.Background(), domain.Credentials{
		Email:    "user@nextmail.com",
		Password: "123456",
	})

	require.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestVerifier_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := new(mockUserRepository)
	repo.On("GetByEmail", mock.Anything, "user@nextmail.com").Return(seededUser(t, "123456"), nil)

	_, err := NewVerifier(repo).Verify(ctx, domain.Credentials{Email: "user@nextmail.com", Password: "123456"})

	require.ErrorIs(t, err, context.Canceled)
}

func TestVerifier_CorruptHash(t *testing.T) {
	repo := new(mockUserRepository)
	repo.On("GetByEmail", mock.Anything, "user@nextmail.com").Return(&domain.User{
		ID:           "u1",
		Email:        "user@nextmail.com",
		PasswordHash: "plaintext",
	}, nil)

	_, err := NewVerifier(repo).Verify(context.Background(), domain.Credentials{Email: "user@nextmail.com", Password: "123456"})

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)
}
