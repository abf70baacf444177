package auth

import (
	"context"
	"time"

	domain "dashboard/backend/internal/domain/auth"

	"github.com/stretchr/testify/mock"
)

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) Verify(ctx context.Context, creds domain.Credentials) (domain.Identity, error) {
	args := m.Called(ctx, creds)
	return args.Get(0).(domain.Identity), args.Error(1)
}

type mockIssuer struct {
	mock.Mock
}

func (m *mockIssuer) Issue(identity domain.Identity) (string, time.Time, error) {
	args := m.Called(identity)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}
