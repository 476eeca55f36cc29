package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stacklend/stacklend-server/internal/auth"
	"github.com/stacklend/stacklend-server/internal/domain"
	"github.com/stacklend/stacklend-server/internal/errors"
	"github.com/stacklend/stacklend-server/internal/id"
	"github.com/stacklend/stacklend-server/internal/store"
)

// RegisterUserInput carries the fields for registering a member.
type RegisterUserInput struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=1024"`
}

// UserService manages library members.
type UserService struct {
	store  store.Store
	logger *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(st store.Store, logger *slog.Logger) *UserService {
	return &UserService{
		store:  st,
		logger: logger,
	}
}

// Register creates a new member. Emails are unique, matched exactly as
// stored. The password is hashed with Argon2id before it touches the
// store.
func (s *UserService) Register(ctx context.Context, input RegisterUserInput) (*domain.User, error) {
	_, err := s.store.GetUserByEmail(ctx, input.Email)
	switch {
	case err == nil:
		return nil, errors.AlreadyExistsf("user with email %s already exists", input.Email)
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: hash,
		RegisteredOn: domain.Today(),
	}
	user.ID = id.MustGenerate("user")
	user.InitTimestamps()

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, errors.AlreadyExistsf("user with email %s already exists", input.Email)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "email", user.Email)

	return user, nil
}

// GetUser returns a single member by ID.
func (s *UserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFoundf("user with id %s not found", userID)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// GetByEmail looks up a member by their exact email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFoundf("user with email %s not found", email)
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}
