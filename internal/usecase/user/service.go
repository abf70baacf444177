package user

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "dashboard/backend/internal/domain/auth"
	authusecase "dashboard/backend/internal/usecase/auth"
	"dashboard/backend/internal/validate"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Service provisions dashboard users outside the login flow.
type Service struct {
	repo    domain.UserRepository
	cost    int
	nowFunc func() time.Time
}

// NewService constructs a user service around the provided repository.
func NewService(repo domain.UserRepository) *Service {
	return &Service{
		repo:    repo,
		cost:    bcrypt.DefaultCost,
		nowFunc: time.Now,
	}
}

// CreateInput defines the payload to create a new user.
type CreateInput struct {
	Email    string
	Name     string
	Password string
}

// Create persists a new user. Emails are stored as given (trimmed) since
// login lookups are case-sensitive.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.User, error) {
	creds := domain.Credentials{
		Email:    strings.TrimSpace(input.Email),
		Password: input.Password,
	}
	name := strings.TrimSpace(input.Name)

	if err := authusecase.ValidateCredentials(creds); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, &validate.Error{Fields: map[string]string{"name": "Please enter a name."}}
	}

	if _, err := s.repo.GetByEmail(ctx, creds.Email); err == nil {
		return nil, domain.ErrEmailExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(creds.Password), s.cost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        creds.Email,
		Name:         name,
		PasswordHash: string(hashed),
		CreatedAt:    s.nowFunc().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return sanitizeUser(user), nil
}

func sanitizeUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	copy := *u
	copy.PasswordHash = ""
	return &copy
}
