package auth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	domain "dashboard/backend/internal/domain/auth"
	"dashboard/backend/internal/logging"
	"dashboard/backend/internal/validate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newBufferLogger() (logging.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(&buf, nil))), &buf
}

var (
	testCreds    = domain.Credentials{Email: "user@nextmail.com", Password: "123456"}
	testIdentity = domain.Identity{ID: "u1", Email: "user@nextmail.com", Name: "User"}
)

func TestService_LoginSuccess(t *testing.T) {
	verifier := new(mockVerifier)
	issuer := new(mockIssuer)
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	verifier.On("Verify", mock.Anything, testCreds).Return(testIdentity, nil)
	issuer.On("Issue", testIdentity).Return("signed", exp, nil)
	log, _ := newBufferLogger()

	res := NewService(verifier, issuer, "/dashboard", log).Login(context.Background(), testCreds)

	require.True(t, res.OK())
	assert.Equal(t, "signed", res.Token)
	assert.Equal(t, exp, res.ExpiresAt)
	assert.Equal(t, "/dashboard", res.RedirectTo)
	assert.Equal(t, testIdentity, res.Identity)
	assert.Empty(t, res.Message)
}

func TestService_LoginInvalidCredentials(t *testing.T) {
	verifier := new(mockVerifier)
	issuer := new(mockIssuer)
	verifier.On("Verify", mock.Anything, testCreds).Return(domain.Identity{}, domain.ErrInvalidCredentials)
	log, _ := newBufferLogger()

	res := NewService(verifier, issuer, "/dashboard", log).Login(context.Background(), testCreds)

	require.False(t, res.OK())
	assert.Equal(t, "Invalid email or password.", res.Message)
	assert.True(t, IsCredentialFailure(res.Err))
	issuer.AssertNotCalled(t, "Issue", mock.Anything)
}

func TestService_LoginValidationFailure(t *testing.T) {
	verifier := new(mockVerifier)
	verr := &validate.Error{Fields: map[string]string{"password": "Password must be at least 6 characters."}}
	verifier.On("Verify", mock.Anything, mock.Anything).Return(domain.Identity{}, verr)
	log, _ := newBufferLogger()

	res := NewService(verifier, new(mockIssuer), "/dashboard", log).Login(context.Background(), domain.Credentials{Email: "a@b.co", Password: "1"})

	assert.Equal(t, MsgInvalidCredentials, res.Message)
	assert.Equal(t, verr.Fields, res.FieldErrors)
	assert.True(t, IsCredentialFailure(res.Err))
}

func TestService_LoginStoreUnavailableIsLogged(t *testing.T) {
	verifier := new(mockVerifier)
	storeErr := fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, errors.New("dial tcp: timeout"))
	verifier.On("Verify", mock.Anything, testCreds).Return(domain.Identity{}, storeErr).Once()
	log, buf := newBufferLogger()

	res := NewService(verifier, new(mockIssuer), "/dashboard", log).Login(context.Background(), testCreds)

	assert.Equal(t, "Authentication failed.", res.Message)
	assert.False(t, IsCredentialFailure(res.Err))
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "dial tcp: timeout")
	verifier.AssertNumberOfCalls(t, "Verify", 1)
}

func TestService_LoginIssuerFailure(t *testing.T) {
	verifier := new(mockVerifier)
	issuer := new(mockIssuer)
	verifier.On("Verify", mock.Anything, testCreds).Return(testIdentity, nil)
	issuer.On("Issue", testIdentity).Return("", time.Time{}, errors.New("signing failed"))
	log, buf := newBufferLogger()

	res := NewService(verifier, issuer, "/dashboard", log).Login(context.Background(), testCreds)

	assert.False(t, res.OK())
	assert.Equal(t, MsgAuthenticationFailed, res.Message)
	assert.Contains(t, buf.String(), "signing failed")
}
