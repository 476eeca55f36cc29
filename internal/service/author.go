package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/stacklend/stacklend-server/internal/domain"
	"github.com/stacklend/stacklend-server/internal/errors"
	"github.com/stacklend/stacklend-server/internal/id"
	"github.com/stacklend/stacklend-server/internal/store"
)

// CreateAuthorInput carries the fields for registering an author.
type CreateAuthorInput struct {
	FirstName   string `json:"firstName" validate:"required,max=100"`
	LastName    string `json:"lastName" validate:"required,max=100"`
	BirthYear   int    `json:"birthYear,omitempty" validate:"omitempty,gt=0"`
	Nationality string `json:"nationality,omitempty" validate:"max=100"`
}

// AuthorService manages the author side of the catalog.
type AuthorService struct {
	store  store.Store
	logger *slog.Logger
}

// NewAuthorService creates a new author service.
func NewAuthorService(st store.Store, logger *slog.Logger) *AuthorService {
	return &AuthorService{
		store:  st,
		logger: logger,
	}
}

// CreateAuthor registers a new author. The same person, identified by
// first name, last name, and birth year, cannot be registered twice.
func (s *AuthorService) CreateAuthor(ctx context.Context, input CreateAuthorInput) (*domain.Author, error) {
	if input.BirthYear > time.Now().Year() {
		return nil, errors.Validationf("birth year %d is in the future", input.BirthYear)
	}

	_, err := s.store.FindAuthor(ctx, input.FirstName, input.LastName, input.BirthYear)
	switch {
	case err == nil:
		return nil, errors.AlreadyExistsf("author %s %s is already registered", input.FirstName, input.LastName)
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("check author: %w", err)
	}

	author := &domain.Author{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		BirthYear:   input.BirthYear,
		Nationality: input.Nationality,
	}
	author.ID = id.MustGenerate("author")
	author.InitTimestamps()

	if err := s.store.CreateAuthor(ctx, author); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, errors.AlreadyExistsf("author %s %s is already registered", input.FirstName, input.LastName)
		}
		return nil, fmt.Errorf("create author: %w", err)
	}

	s.logger.Info("author created", "author_id", author.ID, "name", author.DisplayName())

	return author, nil
}

// GetAuthor returns a single author by ID.
func (s *AuthorService) GetAuthor(ctx context.Context, authorID string) (*domain.Author, error) {
	author, err := s.store.GetAuthor(ctx, authorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFoundf("author with id %s not found", authorID)
		}
		return nil, fmt.Errorf("get author: %w", err)
	}
	return author, nil
}

// ListAuthors returns every author in the catalog.
func (s *AuthorService) ListAuthors(ctx context.Context) ([]*domain.Author, error) {
	authors, err := s.store.ListAuthors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	return authors, nil
}

// FindByLastName looks up authors by last name. Exact matches win;
// when there are none the lookup widens to a case-insensitive
// substring search before giving up.
func (s *AuthorService) FindByLastName(ctx context.Context, lastName string) ([]*domain.Author, error) {
	lastName = strings.TrimSpace(lastName)
	if lastName == "" {
		return nil, errors.Validation("last name must not be empty")
	}

	authors, err := s.store.FindAuthorsByLastName(ctx, lastName)
	if err != nil {
		return nil, fmt.Errorf("find authors: %w", err)
	}

	if len(authors) == 0 {
		authors, err = s.store.SearchAuthorsByLastName(ctx, lastName)
		if err != nil {
			return nil, fmt.Errorf("search authors: %w", err)
		}
	}

	if len(authors) == 0 {
		return nil, errors.NotFoundf("no authors found with last name %q", lastName)
	}

	return authors, nil
}
