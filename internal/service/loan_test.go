package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklend/stacklend-server/internal/domain"
	domainerrors "github.com/stacklend/stacklend-server/internal/errors"
)

// requireDomainError asserts that err is a domain error with the given
// code and returns it for message checks.
func requireDomainError(t *testing.T, err error, code domainerrors.Code) *domainerrors.Error {
	t.Helper()

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, code, domainErr.Code)
	return domainErr
}

func TestCreateLoan_RoundTrip(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	user := env.seedUser(t, "reader@example.com")
	book := env.seedBook(t, "A Wizard of Earthsea", 3)

	loan, err := env.loans.CreateLoan(ctx, user.ID, book.ID)
	require.NoError(t, err)

	today := domain.Today()
	assert.Equal(t, user.ID, loan.UserID)
	assert.Equal(t, book.ID, loan.BookID)
	assert.Equal(t, "A Wizard of Earthsea", loan.BookTitle)
	assert.NotEmpty(t, loan.AuthorName)
	assert.True(t, loan.BorrowedDate.Equal(today))
	assert.True(t, loan.DueDate.Equal(today.AddDays(domain.LoanPeriodDays)))
	assert.Nil(t, loan.ReturnedDate)
	assert.True(t, loan.Active)
	assert.False(t, loan.Overdue)
	assert.False(t, loan.Extended)

	assert.Equal(t, 2, env.availableCopies(t, book.ID))

	// Reading it back computes the same derived view.
	got, err := env.loans.GetLoan(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, loan, got)
}

func TestCreateLoan_UserNotFound(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	book := env.seedBook(t, "The Dispossessed", 1)

	_, err := env.loans.CreateLoan(ctx, "user-999", book.ID)
	domainErr := requireDomainError(t, err, domainerrors.CodeNotFound)
	assert.Contains(t, domainErr.Message, "user-999")

	// Nothing was persisted.
	assert.Equal(t, 1, env.availableCopies(t, book.ID))
}

func TestCreateLoan_BookNotFound(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	user := env.seedUser(t, "reader@example.com")

	_, err := env.loans.CreateLoan(ctx, user.ID, "book-999")
	domainErr := requireDomainError(t, err, domainerrors.CodeNotFound)
	assert.Contains(t, domainErr.Message, "book-999")
}

func TestCreateLoan_LastCopy(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	user := env.seedUser(t, "reader@example.com")
	other := env.seedUser(t, "other@example.com")
	book := env.seedBook(t, "The Tombs of Atuan", 1)

	// Borrowing the last copy succeeds.
	_, err := env.loans.CreateLoan(ctx, user.ID, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, env.availableCopies(t, book.ID))

	// The next borrow on the same book fails and names the title.
	_, err = env.loans.CreateLoan(ctx, other.ID, book.ID)
	domainErr := requireDomainError(t, err, domainerrors.CodeUnavailable)
	assert.Contains(t, domainErr.Message, "The Tombs of Atuan")

	assert.Equal(t, 0, env.availableCopies(t, book.ID))
}

func TestReturnLoan(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	user := env.seedUser(t, "reader@example.com")
	book := env.seedBook(t, "The Farthest Shore", 2)

	loan, err := env.loans.CreateLoan(ctx, user.ID, book.ID)
	require.NoError(t, err)
	require.Equal(t, 1, env.availableCopies(t, book.ID))

	returned, err := env.loans.ReturnLoan(ctx, loan.ID)
	require.NoError(t, err)
	assert.False(t, returned.Active)
	assert.False(t, returned.Overdue)
	require.NotNil(t, returned.ReturnedDate)
	assert.True(t, returned.ReturnedDate.Equal(domain.Today()))

	// The copy went back into the pool.
	assert.Equal(t, 2, env.availableCopies(t, book.ID))
}

func TestReturnLoan_AlreadyReturned(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	user := env.seedUser(t, "reader@example.com")
	book := env.seedBook(t, "Tehanu", 1)

	loan, err := env.loans.CreateLoan(ctx, user.ID, book.ID)
	require.NoError(t, err)

	_, err = env.loans.ReturnLoan(ctx, loan.ID)
	require.NoError(t, err)

	// A second return fails and reports the prior return date.
	_, err = env.loans.ReturnLoan(ctx, loan.ID)
	domainErr := requireDomainError(t, err, domainerrors.CodeInvalidState)
	assert.Contains(t, domainErr.Message, "already returned")
	assert.Contains(t, domainErr.Message, domain.Today().String())

	// The counter was not incremented twice.
	assert.Equal(t, 1, env.availableCopies(t, book.ID))
}

func TestReturnLoan_NotFound(t *testing.T) {
	env := setupTest(t)

	_, err := env.loans.ReturnLoan(context.Background(), "loan-999")
	domainErr := requireDomainError(t, err, domainerrors.CodeNotFound)
	assert.Contains(t, domainErr.Message, "loan-999")
}

func TestExtendLoan(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	user := env.seedUser(t, "reader@example.com")
	book := env.seedBook(t, "The Other Wind", 1)

	loan, err := env.loans.CreateLoan(ctx, user.ID, book.ID)
	require.NoError(t, err)

	today := domain.Today()
	extended, err := env.loans.ExtendLoan(ctx, loan.ID)
	require.NoError(t, err)
	assert.True(t, extended.DueDate.Equal(today.AddDays(2*domain.LoanPeriodDays)))
	assert.True(t, extended.Extended)
	assert.True(t, extended.Active)

	// Only one extension is allowed.
	_, err = env.loans.ExtendLoan(ctx, loan.ID)
	domainErr := requireDomainError(t, err, domainerrors.CodeInvalidState)
	assert.Contains(t, domainErr.Message, "already been extended")

	// The failed extension did not move the due date.
	got, err := env.loans.GetLoan(ctx, loan.ID)
	require.NoError(t, err)
	assert.True(t, got.DueDate.Equal(today.AddDays(2*domain.LoanPeriodDays)))
}

func TestExtendLoan_Returned(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	user := env.seedUser(t, "reader@example.com")
	book := env.seedBook(t, "Rocannon's World", 1)

	loan, err := env.loans.CreateLoan(ctx, user.ID, book.ID)
	require.NoError(t, err)

	_, err = env.loans.ReturnLoan(ctx, loan.ID)
	require.NoError(t, err)

	_, err = env.loans.ExtendLoan(ctx, loan.ID)
	domainErr := requireDomainError(t, err, domainerrors.CodeInvalidState)
	assert.Contains(t, domainErr.Message, "cannot extend a returned loan")
}

func TestExtendLoan_NotFound(t *testing.T) {
	env := setupTest(t)

	_, err := env.loans.ExtendLoan(context.Background(), "loan-999")
	requireDomainError(t, err, domainerrors.CodeNotFound)
}

func TestLoan_OverdueClearedByReturn(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	user := env.seedUser(t, "reader@example.com")
	book := env.seedBook(t, "The Lathe of Heaven", 1)

	// Insert an open loan that is already past due.
	past := domain.NewLoan(user.ID, book.ID, domain.Today().AddDays(-20))
	past.ID = "loan-overdue"
	past.InitTimestamps()
	require.NoError(t, env.store.CreateLoan(ctx, past))

	got, err := env.loans.GetLoan(ctx, past.ID)
	require.NoError(t, err)
	assert.True(t, got.Active)
	assert.True(t, got.Overdue)

	// However late the return, a returned loan is never overdue.
	returned, err := env.loans.ReturnLoan(ctx, past.ID)
	require.NoError(t, err)
	assert.False(t, returned.Active)
	assert.False(t, returned.Overdue)
}

func TestGetUserLoans(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	user := env.seedUser(t, "reader@example.com")
	first := env.seedBook(t, "City of Illusions", 1)
	second := env.seedBook(t, "The Word for World Is Forest", 1)

	loanA, err := env.loans.CreateLoan(ctx, user.ID, first.ID)
	require.NoError(t, err)
	loanB, err := env.loans.CreateLoan(ctx, user.ID, second.ID)
	require.NoError(t, err)

	loans, err := env.loans.GetUserLoans(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, loans, 2)

	// Creation order is preserved.
	assert.Equal(t, loanA.ID, loans[0].ID)
	assert.Equal(t, loanB.ID, loans[1].ID)
	assert.Equal(t, "City of Illusions", loans[0].BookTitle)
	assert.Equal(t, "The Word for World Is Forest", loans[1].BookTitle)
}

func TestGetUserLoans_Empty(t *testing.T) {
	env := setupTest(t)

	user := env.seedUser(t, "reader@example.com")

	loans, err := env.loans.GetUserLoans(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, loans)
}

func TestGetUserLoans_UserNotFound(t *testing.T) {
	env := setupTest(t)

	_, err := env.loans.GetUserLoans(context.Background(), "user-999")
	domainErr := requireDomainError(t, err, domainerrors.CodeNotFound)
	assert.Contains(t, domainErr.Message, "user-999")
}
