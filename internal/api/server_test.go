package api

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stacklend/stacklend-server/internal/ratelimit"
	"github.com/stacklend/stacklend-server/internal/search"
	"github.com/stacklend/stacklend-server/internal/service"
	"github.com/stacklend/stacklend-server/internal/store/sqlite"
	"github.com/stacklend/stacklend-server/internal/validation"
)

// envelope mirrors the response wrapper for test decoding.
type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func newTestServer(t *testing.T, rps float64, burst int) *Server {
	t.Helper()

	tmpDir := t.TempDir()
	logger := slog.New(slog.DiscardHandler)

	st, err := sqlite.Open(filepath.Join(tmpDir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	idx, err := search.New(search.Options{DataPath: tmpDir, Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	limiter := ratelimit.New(rps, burst)
	t.Cleanup(limiter.Stop)

	return NewServer(
		service.NewAuthorService(st, logger),
		service.NewBookService(st, idx, logger),
		service.NewUserService(st, logger),
		service.NewLoanService(st, logger),
		validation.New(),
		limiter,
		logger,
	)
}

func setupTestServer(t *testing.T) *Server {
	t.Helper()
	// Generous limits so functional tests never trip the limiter.
	return newTestServer(t, 1000, 1000)
}

// doJSON performs a request with an optional JSON body and decodes the
// response envelope.
func doJSON(t *testing.T, s *Server, method, path string, body any) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec.Code, env
}

// unmarshalData decodes the envelope's data payload into dst.
func unmarshalData(t *testing.T, env envelope, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

// seedCatalog creates a user, an author, and a book through the API
// and returns the user and book IDs.
func seedCatalog(t *testing.T, s *Server, copies int) (userID, bookID string) {
	t.Helper()

	code, env := doJSON(t, s, http.MethodPost, "/api/v1/users", map[string]any{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"email":     "ada@example.com",
		"password":  "enchantress-of-numbers",
	})
	require.Equal(t, http.StatusCreated, code)
	var user struct {
		ID string `json:"id"`
	}
	unmarshalData(t, env, &user)

	code, env = doJSON(t, s, http.MethodPost, "/api/v1/authors", map[string]any{
		"firstName": "Ursula",
		"lastName":  "Le Guin",
		"birthYear": 1929,
	})
	require.Equal(t, http.StatusCreated, code)
	var author struct {
		ID string `json:"id"`
	}
	unmarshalData(t, env, &author)

	code, env = doJSON(t, s, http.MethodPost, "/api/v1/books", map[string]any{
		"title":       "A Wizard of Earthsea",
		"totalCopies": copies,
		"authorId":    author.ID,
	})
	require.Equal(t, http.StatusCreated, code)
	var book struct {
		ID string `json:"id"`
	}
	unmarshalData(t, env, &book)

	return user.ID, book.ID
}
