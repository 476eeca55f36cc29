// Package service provides the business logic layer for the StackLend
// catalog and lending operations.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stacklend/stacklend-server/internal/domain"
	"github.com/stacklend/stacklend-server/internal/errors"
	"github.com/stacklend/stacklend-server/internal/id"
	"github.com/stacklend/stacklend-server/internal/store"
)

// LoanDetails is the user-facing view of a loan. The status booleans
// are derived from the stored dates on every read; they are never
// persisted.
type LoanDetails struct {
	ID           string       `json:"id"`
	UserID       string       `json:"userId"`
	BookID       string       `json:"bookId"`
	BookTitle    string       `json:"bookTitle"`
	AuthorName   string       `json:"authorName,omitempty"`
	BorrowedDate domain.Date  `json:"borrowedDate"`
	DueDate      domain.Date  `json:"dueDate"`
	ReturnedDate *domain.Date `json:"returnedDate,omitempty"`
	Active       bool         `json:"active"`
	Overdue      bool         `json:"overdue"`
	Extended     bool         `json:"extended"`
}

// LoanService enforces the borrow/return/extend lifecycle. It is the
// sole writer of loans and, through the store's loan operations, of a
// book's available-copy counter.
type LoanService struct {
	store  store.Store
	logger *slog.Logger

	// today is a hook for tests that pin the clock.
	today func() domain.Date
}

// NewLoanService creates a new loan service.
func NewLoanService(st store.Store, logger *slog.Logger) *LoanService {
	return &LoanService{
		store:  st,
		logger: logger,
		today:  domain.Today,
	}
}

// CreateLoan borrows one copy of a book for a user. Validation runs in
// order: the user must exist, the book must exist, and a copy must be
// free. The copy decrement and the loan insert are applied atomically
// by the store, so two borrowers racing for the last copy cannot both
// succeed.
func (s *LoanService) CreateLoan(ctx context.Context, userID, bookID string) (*LoanDetails, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFoundf("user with id %s not found", userID)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFoundf("book with id %s not found", bookID)
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	loan := domain.NewLoan(userID, bookID, s.today())
	loan.ID = id.MustGenerate("loan")
	loan.InitTimestamps()

	if err := s.store.CreateLoan(ctx, loan); err != nil {
		if errors.Is(err, store.ErrNoAvailableCopies) {
			return nil, errors.Unavailablef("book %q is currently not available", book.Title)
		}
		return nil, fmt.Errorf("create loan: %w", err)
	}

	s.logger.Info("loan created",
		"loan_id", loan.ID,
		"user_id", userID,
		"book_id", bookID,
		"due_date", loan.DueDate.String(),
	)

	return s.details(ctx, loan, book), nil
}

// ReturnLoan closes an open loan and releases its copy back to the
// book's pool. Returning an already-returned loan fails and reports
// the prior return date.
func (s *LoanService) ReturnLoan(ctx context.Context, loanID string) (*LoanDetails, error) {
	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.ReturnedDate != nil {
		return nil, errors.InvalidStatef("loan was already returned on %s", loan.ReturnedDate.String())
	}

	returnedOn := s.today()
	if err := s.store.MarkLoanReturned(ctx, loanID, returnedOn); err != nil {
		switch {
		case errors.Is(err, store.ErrLoanClosed):
			// Lost a race with a concurrent return; re-read for the date.
			if current, getErr := s.store.GetLoan(ctx, loanID); getErr == nil && current.ReturnedDate != nil {
				return nil, errors.InvalidStatef("loan was already returned on %s", current.ReturnedDate.String())
			}
			return nil, errors.InvalidState("loan was already returned")
		case errors.Is(err, store.ErrNotFound):
			return nil, errors.NotFoundf("loan with id %s not found", loanID)
		default:
			return nil, fmt.Errorf("mark loan returned: %w", err)
		}
	}

	loan.ReturnedDate = &returnedOn

	s.logger.Info("loan returned",
		"loan_id", loanID,
		"returned_date", returnedOn.String(),
	)

	return s.details(ctx, loan, nil), nil
}

// ExtendLoan pushes an open loan's due date out by one more lending
// period. A loan can be extended exactly once; the gate is the due
// date already sitting past the original window, not a stored flag.
func (s *LoanService) ExtendLoan(ctx context.Context, loanID string) (*LoanDetails, error) {
	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.ReturnedDate != nil {
		return nil, errors.InvalidState("cannot extend a returned loan")
	}
	if loan.Extended() {
		return nil, errors.InvalidState("loan has already been extended once")
	}

	if err := s.store.ExtendLoanDue(ctx, loanID, domain.LoanPeriodDays); err != nil {
		switch {
		case errors.Is(err, store.ErrLoanClosed):
			return nil, errors.InvalidState("cannot extend a returned loan")
		case errors.Is(err, store.ErrLoanExtended):
			return nil, errors.InvalidState("loan has already been extended once")
		case errors.Is(err, store.ErrNotFound):
			return nil, errors.NotFoundf("loan with id %s not found", loanID)
		default:
			return nil, fmt.Errorf("extend loan: %w", err)
		}
	}

	loan.DueDate = loan.DueDate.AddDays(domain.LoanPeriodDays)

	s.logger.Info("loan extended",
		"loan_id", loanID,
		"due_date", loan.DueDate.String(),
	)

	return s.details(ctx, loan, nil), nil
}

// GetLoan returns the details of a single loan.
func (s *LoanService) GetLoan(ctx context.Context, loanID string) (*LoanDetails, error) {
	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return s.details(ctx, loan, nil), nil
}

// GetUserLoans returns all loans for a user in the order they were
// created. The user must exist even when they have no loans.
func (s *LoanService) GetUserLoans(ctx context.Context, userID string) ([]*LoanDetails, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFoundf("user with id %s not found", userID)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	loans, err := s.store.ListLoansForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}

	details := make([]*LoanDetails, 0, len(loans))
	for _, loan := range loans {
		details = append(details, s.details(ctx, loan, nil))
	}
	return details, nil
}

func (s *LoanService) getLoan(ctx context.Context, loanID string) (*domain.Loan, error) {
	loan, err := s.store.GetLoan(ctx, loanID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFoundf("loan with id %s not found", loanID)
		}
		return nil, fmt.Errorf("get loan: %w", err)
	}
	return loan, nil
}

// details assembles the loan view, resolving the book title and author
// name. book may be passed in when the caller already loaded it; a
// missing book or author degrades to empty display fields rather than
// failing the read.
func (s *LoanService) details(ctx context.Context, loan *domain.Loan, book *domain.Book) *LoanDetails {
	if book == nil {
		var err error
		if book, err = s.store.GetBook(ctx, loan.BookID); err != nil {
			s.logger.Warn("loan references unknown book", "loan_id", loan.ID, "book_id", loan.BookID)
		}
	}

	d := newLoanDetails(loan, s.today())
	if book == nil {
		return d
	}

	d.BookTitle = book.Title
	if book.AuthorID != "" {
		if author, err := s.store.GetAuthor(ctx, book.AuthorID); err == nil {
			d.AuthorName = author.DisplayName()
		}
	}
	return d
}

// newLoanDetails computes the derived view of a loan as of the given
// day. This is the single place the status booleans are derived; every
// read path goes through it.
func newLoanDetails(loan *domain.Loan, today domain.Date) *LoanDetails {
	return &LoanDetails{
		ID:           loan.ID,
		UserID:       loan.UserID,
		BookID:       loan.BookID,
		BorrowedDate: loan.BorrowedDate,
		DueDate:      loan.DueDate,
		ReturnedDate: loan.ReturnedDate,
		Active:       loan.Active(),
		Overdue:      loan.Overdue(today),
		Extended:     loan.Extended(),
	}
}
