package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/stacklend/stacklend-server/internal/domain"
	"github.com/stacklend/stacklend-server/internal/store"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `id, created_at, updated_at, title, publication_year, available_copies, total_copies, author_id`

// scanBook scans a row into a domain.Book.
func scanBook(sc scanner) (*domain.Book, error) {
	var b domain.Book

	var (
		createdAt string
		updatedAt string
		pubYear   sql.NullInt64
		authorID  sql.NullString
	)

	err := sc.Scan(
		&b.ID,
		&createdAt,
		&updatedAt,
		&b.Title,
		&pubYear,
		&b.AvailableCopies,
		&b.TotalCopies,
		&authorID,
	)
	if err != nil {
		return nil, err
	}

	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	b.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	if pubYear.Valid {
		b.PublicationYear = int(pubYear.Int64)
	}
	if authorID.Valid {
		b.AuthorID = authorID.String
	}

	return &b, nil
}

// CreateBook inserts a new book.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO books (id, created_at, updated_at, title, publication_year, available_copies, total_copies, author_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		book.ID,
		formatTime(book.CreatedAt),
		formatTime(book.UpdatedAt),
		book.Title,
		nullInt(book.PublicationYear),
		book.AvailableCopies,
		book.TotalCopies,
		nullString(book.AuthorID),
	)
	return err
}

// GetBook retrieves a book by ID.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ?`, id)

	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ListBooks returns all books in creation order.
func (s *Store) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return books, nil
}
