package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stacklend/stacklend-server/internal/domain"
	"github.com/stacklend/stacklend-server/internal/search"
	"github.com/stacklend/stacklend-server/internal/store"
	"github.com/stacklend/stacklend-server/internal/store/sqlite"
)

// testEnv bundles the services under test with their real backing
// store and search index, both on temp storage.
type testEnv struct {
	store   store.Store
	search  *search.Index
	authors *AuthorService
	books   *BookService
	users   *UserService
	loans   *LoanService
}

func setupTest(t *testing.T) *testEnv {
	t.Helper()

	tmpDir := t.TempDir()
	logger := slog.New(slog.DiscardHandler)

	st, err := sqlite.Open(filepath.Join(tmpDir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	idx, err := search.New(search.Options{DataPath: tmpDir, Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	return &testEnv{
		store:   st,
		search:  idx,
		authors: NewAuthorService(st, logger),
		books:   NewBookService(st, idx, logger),
		users:   NewUserService(st, logger),
		loans:   NewLoanService(st, logger),
	}
}

// seedUser registers a member through the service layer.
func (env *testEnv) seedUser(t *testing.T, email string) *domain.User {
	t.Helper()

	user, err := env.users.Register(context.Background(), RegisterUserInput{
		FirstName: "Test",
		LastName:  "Reader",
		Email:     email,
		Password:  "correct-horse-battery",
	})
	require.NoError(t, err)
	return user
}

// seedBook adds a book with the given number of copies, linked to a
// fresh author.
func (env *testEnv) seedBook(t *testing.T, title string, copies int) *BookDetails {
	t.Helper()
	ctx := context.Background()

	author, err := env.authors.CreateAuthor(ctx, CreateAuthorInput{
		FirstName: "Ursula",
		LastName:  "Le Guin " + title,
		BirthYear: 1929,
	})
	require.NoError(t, err)

	book, err := env.books.CreateBook(ctx, CreateBookInput{
		Title:       title,
		TotalCopies: copies,
		AuthorID:    author.ID,
	})
	require.NoError(t, err)
	return book
}

func (env *testEnv) availableCopies(t *testing.T, bookID string) int {
	t.Helper()

	book, err := env.store.GetBook(context.Background(), bookID)
	require.NoError(t, err)
	return book.AvailableCopies
}
