package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stacklend/stacklend-server/internal/http/response"
	"github.com/stacklend/stacklend-server/internal/service"
)

// handleCreateAuthor registers a new author.
func (s *Server) handleCreateAuthor(w http.ResponseWriter, r *http.Request) {
	var req service.CreateAuthorInput
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	author, err := s.authorService.CreateAuthor(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, author, s.logger)
}

// handleListAuthors returns every author in the catalog.
func (s *Server) handleListAuthors(w http.ResponseWriter, r *http.Request) {
	authors, err := s.authorService.ListAuthors(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, authors, s.logger)
}

// handleGetAuthor returns a single author by ID.
func (s *Server) handleGetAuthor(w http.ResponseWriter, r *http.Request) {
	author, err := s.authorService.GetAuthor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, author, s.logger)
}

// handleFindAuthorsByLastName looks up authors by last name, exact
// match first, substring fallback.
func (s *Server) handleFindAuthorsByLastName(w http.ResponseWriter, r *http.Request) {
	authors, err := s.authorService.FindByLastName(r.Context(), chi.URLParam(r, "lastName"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, authors, s.logger)
}
