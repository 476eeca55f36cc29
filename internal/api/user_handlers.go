package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stacklend/stacklend-server/internal/http/response"
	"github.com/stacklend/stacklend-server/internal/service"
)

// handleRegisterUser registers a new library member.
func (s *Server) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterUserInput
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	user, err := s.userService.Register(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, user, s.logger)
}

// handleGetUserByEmail looks up a member by exact email.
func (s *Server) handleGetUserByEmail(w http.ResponseWriter, r *http.Request) {
	user, err := s.userService.GetByEmail(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, user, s.logger)
}

// handleGetUserLoans returns all of a member's loans in creation order.
func (s *Server) handleGetUserLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := s.loanService.GetUserLoans(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, loans, s.logger)
}
