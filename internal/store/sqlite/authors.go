package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/stacklend/stacklend-server/internal/domain"
	"github.com/stacklend/stacklend-server/internal/store"
)

// authorColumns is the ordered list of columns selected in author
// queries. Must match the scan order in scanAuthor.
const authorColumns = `id, created_at, updated_at, first_name, last_name, birth_year, nationality`

// scanAuthor scans a row into a domain.Author.
func scanAuthor(sc scanner) (*domain.Author, error) {
	var a domain.Author

	var (
		createdAt   string
		updatedAt   string
		birthYear   sql.NullInt64
		nationality sql.NullString
	)

	err := sc.Scan(
		&a.ID,
		&createdAt,
		&updatedAt,
		&a.FirstName,
		&a.LastName,
		&birthYear,
		&nationality,
	)
	if err != nil {
		return nil, err
	}

	a.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	a.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	if birthYear.Valid {
		a.BirthYear = int(birthYear.Int64)
	}
	if nationality.Valid {
		a.Nationality = nationality.String
	}

	return &a, nil
}

// CreateAuthor inserts a new author.
func (s *Store) CreateAuthor(ctx context.Context, author *domain.Author) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO authors (id, created_at, updated_at, first_name, last_name, birth_year, nationality)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		author.ID,
		formatTime(author.CreatedAt),
		formatTime(author.UpdatedAt),
		author.FirstName,
		author.LastName,
		nullInt(author.BirthYear),
		nullString(author.Nationality),
	)
	return err
}

// GetAuthor retrieves an author by ID.
// Returns store.ErrNotFound if the author does not exist.
func (s *Store) GetAuthor(ctx context.Context, id string) (*domain.Author, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+authorColumns+` FROM authors WHERE id = ?`, id)

	a, err := scanAuthor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListAuthors returns all authors in creation order.
func (s *Store) ListAuthors(ctx context.Context) ([]*domain.Author, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+authorColumns+` FROM authors ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAuthors(rows)
}

// FindAuthorsByLastName returns authors whose stored last name matches
// exactly.
func (s *Store) FindAuthorsByLastName(ctx context.Context, lastName string) ([]*domain.Author, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+authorColumns+` FROM authors WHERE last_name = ? ORDER BY created_at ASC, id ASC`,
		lastName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAuthors(rows)
}

// SearchAuthorsByLastName returns authors whose last name contains the
// fragment, case-insensitively.
func (s *Store) SearchAuthorsByLastName(ctx context.Context, fragment string) ([]*domain.Author, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+authorColumns+` FROM authors
		 WHERE last_name LIKE '%' || ? || '%' COLLATE NOCASE
		 ORDER BY created_at ASC, id ASC`,
		fragment)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAuthors(rows)
}

// FindAuthor looks up an exact first+last+birthYear match.
// Returns store.ErrNotFound when no such author exists.
func (s *Store) FindAuthor(ctx context.Context, firstName, lastName string, birthYear int) (*domain.Author, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+authorColumns+` FROM authors
		 WHERE first_name = ? AND last_name = ? AND birth_year IS ?`,
		firstName, lastName, nullInt(birthYear))

	a, err := scanAuthor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func collectAuthors(rows *sql.Rows) ([]*domain.Author, error) {
	var authors []*domain.Author
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, err
		}
		authors = append(authors, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return authors, nil
}
