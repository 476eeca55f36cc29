// Package main provides a tool to seed the database with a sample
// catalog and a few members for local development.
//
// Usage:
//
//	STACKLEND_DATA_PATH=~/StackLend/data go run ./cmd/seed
//	go run ./cmd/seed --with-loans  # Also borrow a few books
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/stacklend/stacklend-server/internal/search"
	"github.com/stacklend/stacklend-server/internal/service"
	"github.com/stacklend/stacklend-server/internal/store/sqlite"
)

var withLoans = flag.Bool("with-loans", false, "Create sample loans against the seeded catalog")

type seedAuthor struct {
	first, last, nationality string
	birthYear                int
	books                    []seedBook
}

type seedBook struct {
	title  string
	year   int
	copies int
}

var catalog = []seedAuthor{
	{
		first: "Ursula", last: "Le Guin", nationality: "American", birthYear: 1929,
		books: []seedBook{
			{"A Wizard of Earthsea", 1968, 3},
			{"The Left Hand of Darkness", 1969, 2},
			{"The Dispossessed", 1974, 2},
		},
	},
	{
		first: "Astrid", last: "Lindgren", nationality: "Swedish", birthYear: 1907,
		books: []seedBook{
			{"Pippi Longstocking", 1945, 4},
			{"The Brothers Lionheart", 1973, 1},
		},
	},
	{
		first: "Jorge Luis", last: "Borges", nationality: "Argentine", birthYear: 1899,
		books: []seedBook{
			{"Ficciones", 1944, 2},
		},
	},
}

var members = []struct {
	first, last, email string
}{
	{"Ada", "Lovelace", "ada@example.com"},
	{"Alan", "Turing", "alan@example.com"},
	{"Grace", "Hopper", "grace@example.com"},
}

func main() {
	flag.Parse()

	dataPath := os.Getenv("STACKLEND_DATA_PATH")
	if dataPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "resolve home directory: %v\n", err)
			os.Exit(1)
		}
		dataPath = filepath.Join(home, "StackLend", "data")
	}
	if err := os.MkdirAll(dataPath, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create data directory: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	st, err := sqlite.Open(filepath.Join(dataPath, "stacklend.db"), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	idx, err := search.New(search.Options{DataPath: dataPath, Logger: logger})
	if err != nil {
		fmt.Fprintf(os.Stderr, "open search index: %v\n", err)
		os.Exit(1)
	}
	defer idx.Close()

	authors := service.NewAuthorService(st, logger)
	books := service.NewBookService(st, idx, logger)
	users := service.NewUserService(st, logger)
	loans := service.NewLoanService(st, logger)

	ctx := context.Background()

	var bookIDs []string
	for _, sa := range catalog {
		author, err := authors.CreateAuthor(ctx, service.CreateAuthorInput{
			FirstName:   sa.first,
			LastName:    sa.last,
			BirthYear:   sa.birthYear,
			Nationality: sa.nationality,
		})
		if err != nil {
			fmt.Printf("skip author %s %s: %v\n", sa.first, sa.last, err)
			continue
		}
		fmt.Printf("author %s: %s\n", author.ID, author.DisplayName())

		for _, sb := range sa.books {
			book, err := books.CreateBook(ctx, service.CreateBookInput{
				Title:           sb.title,
				PublicationYear: sb.year,
				TotalCopies:     sb.copies,
				AuthorID:        author.ID,
			})
			if err != nil {
				fmt.Printf("skip book %q: %v\n", sb.title, err)
				continue
			}
			fmt.Printf("book %s: %q (%d copies)\n", book.ID, book.Title, book.TotalCopies)
			bookIDs = append(bookIDs, book.ID)
		}
	}

	var userIDs []string
	for _, m := range members {
		user, err := users.Register(ctx, service.RegisterUserInput{
			FirstName: m.first,
			LastName:  m.last,
			Email:     m.email,
			Password:  "changeme-" + m.first,
		})
		if err != nil {
			fmt.Printf("skip user %s: %v\n", m.email, err)
			continue
		}
		fmt.Printf("user %s: %s\n", user.ID, user.Email)
		userIDs = append(userIDs, user.ID)
	}

	if *withLoans && len(userIDs) > 0 {
		for i, bookID := range bookIDs {
			if i >= 3 {
				break
			}
			userID := userIDs[i%len(userIDs)]
			loan, err := loans.CreateLoan(ctx, userID, bookID)
			if err != nil {
				fmt.Printf("skip loan for book %s: %v\n", bookID, err)
				continue
			}
			fmt.Printf("loan %s: %q due %s\n", loan.ID, loan.BookTitle, loan.DueDate)
		}
	}

	fmt.Println("done")
}
