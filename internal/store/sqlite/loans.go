package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/stacklend/stacklend-server/internal/domain"
	"github.com/stacklend/stacklend-server/internal/store"
)

// loanColumns is the ordered list of columns selected in loan queries.
// Must match the scan order in scanLoan.
const loanColumns = `id, created_at, updated_at, user_id, book_id, borrowed_date, due_date, returned_date`

// scanLoan scans a row into a domain.Loan.
func scanLoan(sc scanner) (*domain.Loan, error) {
	var l domain.Loan

	var (
		createdAt    string
		updatedAt    string
		borrowedDate string
		dueDate      string
		returnedDate sql.NullString
	)

	err := sc.Scan(
		&l.ID,
		&createdAt,
		&updatedAt,
		&l.UserID,
		&l.BookID,
		&borrowedDate,
		&dueDate,
		&returnedDate,
	)
	if err != nil {
		return nil, err
	}

	l.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	l.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	l.BorrowedDate, err = domain.ParseDate(borrowedDate)
	if err != nil {
		return nil, err
	}
	l.DueDate, err = domain.ParseDate(dueDate)
	if err != nil {
		return nil, err
	}
	l.ReturnedDate, err = parseNullableDate(returnedDate)
	if err != nil {
		return nil, err
	}

	return &l, nil
}

// dayModifier formats a SQLite date modifier such as "+14 days".
func dayModifier(days int) string {
	return fmt.Sprintf("+%d days", days)
}

// CreateLoan decrements the book's available copies and inserts the
// loan in a single transaction. The decrement is guarded by
// available_copies > 0; when the guard matches no row the transaction
// rolls back and ErrNoAvailableCopies is returned, so two concurrent
// borrows of the last copy cannot both succeed.
func (s *Store) CreateLoan(ctx context.Context, loan *domain.Loan) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE books SET available_copies = available_copies - 1, updated_at = ?
		WHERE id = ? AND available_copies > 0`,
		formatTime(loan.UpdatedAt), loan.BookID)
	if err != nil {
		return fmt.Errorf("decrement copies: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Either the book vanished or no copy is free; the caller has
		// already confirmed the book exists.
		return store.ErrNoAvailableCopies
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO loans (id, created_at, updated_at, user_id, book_id, borrowed_date, due_date, returned_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, NULL)`,
		loan.ID,
		formatTime(loan.CreatedAt),
		formatTime(loan.UpdatedAt),
		loan.UserID,
		loan.BookID,
		loan.BorrowedDate.String(),
		loan.DueDate.String(),
	)
	if err != nil {
		return fmt.Errorf("insert loan: %w", err)
	}

	return tx.Commit()
}

// GetLoan retrieves a loan by ID.
// Returns store.ErrNotFound if the loan does not exist.
func (s *Store) GetLoan(ctx context.Context, id string) (*domain.Loan, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE id = ?`, id)

	l, err := scanLoan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// ListLoansForUser returns the user's loans in insertion order.
func (s *Store) ListLoansForUser(ctx context.Context, userID string) ([]*domain.Loan, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE user_id = ? ORDER BY created_at ASC, id ASC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []*domain.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return loans, nil
}

// MarkLoanReturned sets the loan's returned date and increments the
// book's available copies in a single transaction. The update is
// guarded by returned_date IS NULL, so concurrent returns of the same
// loan are decided by the row guard: the loser sees ErrLoanClosed.
func (s *Store) MarkLoanReturned(ctx context.Context, loanID string, returnedOn domain.Date) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := formatTime(timeNow())

	result, err := tx.ExecContext(ctx, `
		UPDATE loans SET returned_date = ?, updated_at = ?
		WHERE id = ? AND returned_date IS NULL`,
		returnedOn.String(), now, loanID)
	if err != nil {
		return fmt.Errorf("close loan: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return s.classifyLoanGuardMiss(ctx, tx, loanID, false)
	}

	// The guard keeps the counter within [0, total] even if a stray
	// return races a correction to total_copies.
	_, err = tx.ExecContext(ctx, `
		UPDATE books SET available_copies = available_copies + 1, updated_at = ?
		WHERE id = (SELECT book_id FROM loans WHERE id = ?)
		  AND available_copies < total_copies`,
		now, loanID)
	if err != nil {
		return fmt.Errorf("increment copies: %w", err)
	}

	return tx.Commit()
}

// ExtendLoanDue pushes the due date out by the given number of days in
// one guarded update: the loan must be open and its due date must still
// be within the original lending window.
func (s *Store) ExtendLoanDue(ctx context.Context, loanID string, days int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE loans SET due_date = date(due_date, ?), updated_at = ?
		WHERE id = ? AND returned_date IS NULL
		  AND due_date <= date(borrowed_date, ?)`,
		dayModifier(days),
		formatTime(timeNow()),
		loanID,
		dayModifier(domain.LoanPeriodDays),
	)
	if err != nil {
		return fmt.Errorf("extend loan: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return s.classifyLoanGuardMiss(ctx, tx, loanID, true)
	}

	return tx.Commit()
}

// classifyLoanGuardMiss turns a zero-row guarded update into the right
// sentinel: the loan is missing, already returned, or (for extends)
// already past its original window.
func (s *Store) classifyLoanGuardMiss(ctx context.Context, tx *sql.Tx, loanID string, extend bool) error {
	row := tx.QueryRowContext(ctx,
		`SELECT returned_date FROM loans WHERE id = ?`, loanID)

	var returnedDate sql.NullString
	err := row.Scan(&returnedDate)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return err
	}
	if returnedDate.Valid {
		return store.ErrLoanClosed
	}
	if extend {
		return store.ErrLoanExtended
	}
	return store.ErrLoanClosed
}
