package sqlite

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stacklend/stacklend-server/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	logger := slog.New(slog.DiscardHandler)
	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// makeTestAuthor creates a domain.Author with sensible defaults.
func makeTestAuthor(id string) *domain.Author {
	a := &domain.Author{
		FirstName:   "Astrid",
		LastName:    "Lindgren",
		BirthYear:   1907,
		Nationality: "Swedish",
	}
	a.ID = id
	a.InitTimestamps()
	return a
}

// makeTestBook creates a domain.Book with the given copy counts.
func makeTestBook(id string, available, total int) *domain.Book {
	b := &domain.Book{
		Title:           "Pippi Longstocking",
		PublicationYear: 1945,
		AvailableCopies: available,
		TotalCopies:     total,
	}
	b.ID = id
	b.InitTimestamps()
	return b
}

// makeTestUser creates a domain.User with sensible defaults.
func makeTestUser(id, email string) *domain.User {
	u := &domain.User{
		FirstName:    "Test",
		LastName:     "Reader",
		Email:        email,
		PasswordHash: "$argon2id$fakehashfortest",
		RegisteredOn: domain.Today(),
	}
	u.ID = id
	u.InitTimestamps()
	return u
}

// seedLoanFixtures inserts a user and a book so loans can reference them.
func seedLoanFixtures(t *testing.T, s *Store, bookID string, available, total int) {
	t.Helper()
	ctx := context.Background()
	if err := s.CreateUser(ctx, makeTestUser("user-1", "reader@example.com")); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := s.CreateBook(ctx, makeTestBook(bookID, available, total)); err != nil {
		t.Fatalf("seed book: %v", err)
	}
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	var journalMode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	var fk int
	if err := s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys=1, got %d", fk)
	}

	for _, table := range []string{"authors", "books", "users", "loans"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestOpen_Reentrant(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s1, err := Open(dbPath, nil)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	s1.Close()

	// Schema must be idempotent across restarts.
	s2, err := Open(dbPath, nil)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	s2.Close()
}

func TestTimestampRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := makeTestUser("user-ts", "ts@example.com")
	if err := s.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	got, err := s.GetUser(ctx, "user-ts")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.CreatedAt.Unix() != user.CreatedAt.Unix() {
		t.Errorf("CreatedAt: got %v, want %v", got.CreatedAt, user.CreatedAt)
	}
	if time.Since(got.CreatedAt) > time.Minute {
		t.Errorf("CreatedAt drifted: %v", got.CreatedAt)
	}
}
