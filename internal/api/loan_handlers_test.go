package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loanView mirrors the loan representation for test decoding.
type loanView struct {
	ID           string  `json:"id"`
	UserID       string  `json:"userId"`
	BookID       string  `json:"bookId"`
	BookTitle    string  `json:"bookTitle"`
	AuthorName   string  `json:"authorName"`
	BorrowedDate string  `json:"borrowedDate"`
	DueDate      string  `json:"dueDate"`
	ReturnedDate *string `json:"returnedDate"`
	Active       bool    `json:"active"`
	Overdue      bool    `json:"overdue"`
	Extended     bool    `json:"extended"`
}

func TestCreateLoanEndpoint(t *testing.T) {
	s := setupTestServer(t)
	userID, bookID := seedCatalog(t, s, 2)

	code, env := doJSON(t, s, http.MethodPost, "/api/v1/loans", map[string]any{
		"userId": userID,
		"bookId": bookID,
	})
	require.Equal(t, http.StatusCreated, code)
	require.True(t, env.Success)

	var loan loanView
	unmarshalData(t, env, &loan)
	assert.NotEmpty(t, loan.ID)
	assert.Equal(t, userID, loan.UserID)
	assert.Equal(t, bookID, loan.BookID)
	assert.Equal(t, "A Wizard of Earthsea", loan.BookTitle)
	assert.Equal(t, "Ursula Le Guin", loan.AuthorName)
	assert.True(t, loan.Active)
	assert.False(t, loan.Overdue)
	assert.False(t, loan.Extended)
	assert.Nil(t, loan.ReturnedDate)
}

func TestCreateLoanEndpoint_Validation(t *testing.T) {
	s := setupTestServer(t)

	code, env := doJSON(t, s, http.MethodPost, "/api/v1/loans", map[string]any{
		"userId": "user-1",
	})
	require.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)
	assert.Contains(t, env.Details, "bookId")
}

func TestCreateLoanEndpoint_UserNotFound(t *testing.T) {
	s := setupTestServer(t)
	_, bookID := seedCatalog(t, s, 1)

	code, env := doJSON(t, s, http.MethodPost, "/api/v1/loans", map[string]any{
		"userId": "user-999",
		"bookId": bookID,
	})
	require.Equal(t, http.StatusNotFound, code)
	assert.Contains(t, env.Error, "user-999")
}

func TestCreateLoanEndpoint_NoCopies(t *testing.T) {
	s := setupTestServer(t)
	userID, bookID := seedCatalog(t, s, 1)

	code, _ := doJSON(t, s, http.MethodPost, "/api/v1/loans", map[string]any{
		"userId": userID,
		"bookId": bookID,
	})
	require.Equal(t, http.StatusCreated, code)

	code, env := doJSON(t, s, http.MethodPost, "/api/v1/loans", map[string]any{
		"userId": userID,
		"bookId": bookID,
	})
	require.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error, "A Wizard of Earthsea")
}

func TestReturnLoanEndpoint(t *testing.T) {
	s := setupTestServer(t)
	userID, bookID := seedCatalog(t, s, 1)

	_, env := doJSON(t, s, http.MethodPost, "/api/v1/loans", map[string]any{
		"userId": userID,
		"bookId": bookID,
	})
	var loan loanView
	unmarshalData(t, env, &loan)

	code, env := doJSON(t, s, http.MethodPut, "/api/v1/loans/"+loan.ID+"/return", nil)
	require.Equal(t, http.StatusOK, code)

	var returned loanView
	unmarshalData(t, env, &returned)
	assert.False(t, returned.Active)
	assert.False(t, returned.Overdue)
	assert.NotNil(t, returned.ReturnedDate)

	// A second return is rejected with the prior return date.
	code, env = doJSON(t, s, http.MethodPut, "/api/v1/loans/"+loan.ID+"/return", nil)
	require.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error, "already returned")
}

func TestExtendLoanEndpoint(t *testing.T) {
	s := setupTestServer(t)
	userID, bookID := seedCatalog(t, s, 1)

	_, env := doJSON(t, s, http.MethodPost, "/api/v1/loans", map[string]any{
		"userId": userID,
		"bookId": bookID,
	})
	var loan loanView
	unmarshalData(t, env, &loan)

	code, env := doJSON(t, s, http.MethodPut, "/api/v1/loans/"+loan.ID+"/extend", nil)
	require.Equal(t, http.StatusOK, code)

	var extended loanView
	unmarshalData(t, env, &extended)
	assert.True(t, extended.Extended)
	assert.NotEqual(t, loan.DueDate, extended.DueDate)

	code, env = doJSON(t, s, http.MethodPut, "/api/v1/loans/"+loan.ID+"/extend", nil)
	require.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error, "already been extended")
}

func TestExtendLoanEndpoint_NotFound(t *testing.T) {
	s := setupTestServer(t)

	code, _ := doJSON(t, s, http.MethodPut, "/api/v1/loans/loan-999/extend", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestGetUserLoansEndpoint(t *testing.T) {
	s := setupTestServer(t)
	userID, bookID := seedCatalog(t, s, 2)

	for range 2 {
		code, _ := doJSON(t, s, http.MethodPost, "/api/v1/loans", map[string]any{
			"userId": userID,
			"bookId": bookID,
		})
		require.Equal(t, http.StatusCreated, code)
	}

	code, env := doJSON(t, s, http.MethodGet, "/api/v1/users/"+userID+"/loans", nil)
	require.Equal(t, http.StatusOK, code)

	var loans []loanView
	unmarshalData(t, env, &loans)
	assert.Len(t, loans, 2)

	code, _ = doJSON(t, s, http.MethodGet, "/api/v1/users/user-999/loans", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRateLimit(t *testing.T) {
	// Burst of exactly three covers the seed requests; the bucket does
	// not meaningfully refill during the test.
	s := newTestServer(t, 0.001, 3)
	userID, bookID := seedCatalog(t, s, 1)

	// Mutating routes share one per-IP bucket, so the burst is spent.
	code, env := doJSON(t, s, http.MethodPost, "/api/v1/loans", map[string]any{
		"userId": userID,
		"bookId": bookID,
	})
	require.Equal(t, http.StatusTooManyRequests, code)
	assert.Contains(t, env.Error, "Too many requests")

	// Read-only routes are not limited.
	code, _ = doJSON(t, s, http.MethodGet, "/api/v1/books", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestAuthorSearchEndpoint(t *testing.T) {
	s := setupTestServer(t)
	seedCatalog(t, s, 1)

	code, env := doJSON(t, s, http.MethodGet, "/api/v1/authors/name/Le%20Guin", nil)
	require.Equal(t, http.StatusOK, code)

	var authors []struct {
		FirstName string `json:"firstName"`
	}
	unmarshalData(t, env, &authors)
	require.Len(t, authors, 1)
	assert.Equal(t, "Ursula", authors[0].FirstName)

	code, _ = doJSON(t, s, http.MethodGet, "/api/v1/authors/name/Nobody", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestBookSearchEndpoint(t *testing.T) {
	s := setupTestServer(t)
	seedCatalog(t, s, 1)

	code, env := doJSON(t, s, http.MethodGet, "/api/v1/books/search?title=wizard", nil)
	require.Equal(t, http.StatusOK, code)

	var books []struct {
		Title string `json:"title"`
	}
	unmarshalData(t, env, &books)
	require.Len(t, books, 1)
	assert.Equal(t, "A Wizard of Earthsea", books[0].Title)
}

func TestUserEndpoints(t *testing.T) {
	s := setupTestServer(t)
	userID, _ := seedCatalog(t, s, 1)

	code, env := doJSON(t, s, http.MethodGet, "/api/v1/users/email/ada@example.com", nil)
	require.Equal(t, http.StatusOK, code)

	var user struct {
		ID           string `json:"id"`
		Email        string `json:"email"`
		PasswordHash string `json:"passwordHash"`
	}
	unmarshalData(t, env, &user)
	assert.Equal(t, userID, user.ID)
	// The hash never leaves the server.
	assert.Empty(t, user.PasswordHash)

	// Duplicate registration conflicts.
	code, _ = doJSON(t, s, http.MethodPost, "/api/v1/users", map[string]any{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"email":     "ada@example.com",
		"password":  "enchantress-of-numbers",
	})
	assert.Equal(t, http.StatusConflict, code)
}

func TestHealthCheck(t *testing.T) {
	s := setupTestServer(t)

	code, env := doJSON(t, s, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, code)

	var health HealthResponse
	unmarshalData(t, env, &health)
	assert.Equal(t, "healthy", health.Status)
}
