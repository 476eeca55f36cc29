// Package store defines the persistence interfaces for the StackLend
// catalog. Implementations live in subpackages (currently SQLite).
package store

import (
	"context"

	"github.com/stacklend/stacklend-server/internal/domain"
)

// AuthorStore manages author records.
type AuthorStore interface {
	CreateAuthor(ctx context.Context, author *domain.Author) error
	GetAuthor(ctx context.Context, id string) (*domain.Author, error)
	ListAuthors(ctx context.Context) ([]*domain.Author, error)

	// FindAuthorsByLastName matches the stored last name exactly.
	FindAuthorsByLastName(ctx context.Context, lastName string) ([]*domain.Author, error)

	// SearchAuthorsByLastName matches case-insensitive substrings.
	SearchAuthorsByLastName(ctx context.Context, fragment string) ([]*domain.Author, error)

	// FindAuthor checks for an exact first+last+birthYear duplicate.
	// Returns ErrNotFound when no such author exists.
	FindAuthor(ctx context.Context, firstName, lastName string, birthYear int) (*domain.Author, error)
}

// BookStore manages book records. Copy counters are mutated only
// through the loan operations on LoanStore.
type BookStore interface {
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	ListBooks(ctx context.Context) ([]*domain.Book, error)
}

// UserStore manages user records, keyed by ID and unique email.
type UserStore interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)

	// GetUserByEmail looks up a user by exact email match as stored.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// LoanStore is the loan ledger. The three mutating operations are
// atomic with respect to each other: each runs the loan write and the
// paired copy-counter update in a single transaction, guarded by
// conditional updates so concurrent callers cannot double-apply them.
type LoanStore interface {
	// CreateLoan decrements the book's available copies and inserts the
	// loan as one unit. Returns ErrNoAvailableCopies, and persists
	// nothing, when no copy is free.
	CreateLoan(ctx context.Context, loan *domain.Loan) error

	GetLoan(ctx context.Context, id string) (*domain.Loan, error)

	// ListLoansForUser returns the user's loans in insertion order.
	ListLoansForUser(ctx context.Context, userID string) ([]*domain.Loan, error)

	// MarkLoanReturned sets the loan's returned date and increments the
	// book's available copies as one unit. Returns ErrLoanClosed when
	// the loan was already returned.
	MarkLoanReturned(ctx context.Context, loanID string, returnedOn domain.Date) error

	// ExtendLoanDue pushes the due date out by the given number of days,
	// only if the loan is open and still within its original window.
	// Returns ErrLoanClosed or ErrLoanExtended otherwise.
	ExtendLoanDue(ctx context.Context, loanID string, days int) error
}

// Store is the full persistence surface.
type Store interface {
	AuthorStore
	BookStore
	UserStore
	LoanStore

	Close() error
}
