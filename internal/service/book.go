package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/stacklend/stacklend-server/internal/domain"
	"github.com/stacklend/stacklend-server/internal/errors"
	"github.com/stacklend/stacklend-server/internal/id"
	"github.com/stacklend/stacklend-server/internal/search"
	"github.com/stacklend/stacklend-server/internal/store"
)

// CreateBookInput carries the fields for adding a book to the catalog.
type CreateBookInput struct {
	Title           string `json:"title" validate:"required,max=255"`
	PublicationYear int    `json:"publicationYear,omitempty" validate:"omitempty,gt=0"`
	TotalCopies     int    `json:"totalCopies" validate:"required,gte=1"`
	AuthorID        string `json:"authorId,omitempty"`
}

// BookDetails is the catalog view of a book with its author resolved.
type BookDetails struct {
	*domain.Book
	AuthorName string `json:"authorName,omitempty"`
}

// BookService manages the book side of the catalog and keeps the
// search index in step with it.
type BookService struct {
	store  store.Store
	search *search.Index
	logger *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(st store.Store, idx *search.Index, logger *slog.Logger) *BookService {
	return &BookService{
		store:  st,
		search: idx,
		logger: logger,
	}
}

// CreateBook adds a book to the catalog. All copies start available.
// The linked author, when given, must already exist.
func (s *BookService) CreateBook(ctx context.Context, input CreateBookInput) (*BookDetails, error) {
	var author *domain.Author
	if input.AuthorID != "" {
		var err error
		author, err = s.store.GetAuthor(ctx, input.AuthorID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, errors.NotFoundf("author with id %s not found", input.AuthorID)
			}
			return nil, fmt.Errorf("get author: %w", err)
		}
	}

	book := &domain.Book{
		Title:           input.Title,
		PublicationYear: input.PublicationYear,
		AvailableCopies: input.TotalCopies,
		TotalCopies:     input.TotalCopies,
		AuthorID:        input.AuthorID,
	}
	book.ID = id.MustGenerate("book")
	book.InitTimestamps()

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	details := &BookDetails{Book: book}
	if author != nil {
		details.AuthorName = author.DisplayName()
	}

	// Index failures must not fail the write; the next rebuild heals them.
	if err := s.search.IndexBook(searchDocument(details)); err != nil {
		s.logger.Warn("failed to index book", "book_id", book.ID, "error", err)
	}

	s.logger.Info("book created", "book_id", book.ID, "title", book.Title, "copies", book.TotalCopies)

	return details, nil
}

// GetBook returns a single book with its author resolved.
func (s *BookService) GetBook(ctx context.Context, bookID string) (*BookDetails, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFoundf("book with id %s not found", bookID)
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return s.withAuthor(ctx, book), nil
}

// ListBooks returns the whole catalog with author names resolved.
func (s *BookService) ListBooks(ctx context.Context) ([]*BookDetails, error) {
	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	details := make([]*BookDetails, 0, len(books))
	for _, book := range books {
		details = append(details, s.withAuthor(ctx, book))
	}
	return details, nil
}

// SearchBooks finds books whose title or author matches the given
// fragments. Both fragments empty means no constraint, which returns
// the whole catalog.
func (s *BookService) SearchBooks(ctx context.Context, title, author string) ([]*BookDetails, error) {
	if strings.TrimSpace(title) == "" && strings.TrimSpace(author) == "" {
		return s.ListBooks(ctx)
	}

	result, err := s.search.Search(ctx, search.Params{
		Title:  title,
		Author: author,
		Limit:  100,
	})
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}

	details := make([]*BookDetails, 0, len(result.Hits))
	for _, hit := range result.Hits {
		book, err := s.store.GetBook(ctx, hit.ID)
		if err != nil {
			// Index can trail the store; skip stale hits.
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("get book %s: %w", hit.ID, err)
		}
		details = append(details, s.withAuthor(ctx, book))
	}
	return details, nil
}

// Reindex rebuilds the search index from the store. Called at startup
// so the index never drifts from the catalog across restarts.
func (s *BookService) Reindex(ctx context.Context) error {
	if err := s.search.Rebuild(); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	books, err := s.ListBooks(ctx)
	if err != nil {
		return err
	}

	docs := make([]*search.BookDocument, 0, len(books))
	for _, book := range books {
		docs = append(docs, searchDocument(book))
	}
	if err := s.search.IndexBooks(docs); err != nil {
		return fmt.Errorf("index books: %w", err)
	}

	s.logger.Info("search index rebuilt", "books", len(docs))
	return nil
}

func (s *BookService) withAuthor(ctx context.Context, book *domain.Book) *BookDetails {
	details := &BookDetails{Book: book}
	if book.AuthorID == "" {
		return details
	}
	if author, err := s.store.GetAuthor(ctx, book.AuthorID); err == nil {
		details.AuthorName = author.DisplayName()
	} else {
		s.logger.Warn("book references unknown author", "book_id", book.ID, "author_id", book.AuthorID)
	}
	return details
}

func searchDocument(details *BookDetails) *search.BookDocument {
	return &search.BookDocument{
		ID:     details.ID,
		Title:  details.Title,
		Author: details.AuthorName,
	}
}
