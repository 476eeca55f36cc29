package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stacklend/stacklend-server/internal/http/response"
	"github.com/stacklend/stacklend-server/internal/service"
)

// handleCreateBook adds a book to the catalog.
func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var req service.CreateBookInput
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	book, err := s.bookService.CreateBook(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, book, s.logger)
}

// handleListBooks returns the whole catalog.
func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.bookService.ListBooks(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, books, s.logger)
}

// handleGetBook returns a single book by ID.
func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	book, err := s.bookService.GetBook(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, book, s.logger)
}

// handleSearchBooks finds books by title and/or author fragments.
func (s *Server) handleSearchBooks(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	author := r.URL.Query().Get("author")

	books, err := s.bookService.SearchBooks(r.Context(), title, author)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, books, s.logger)
}
