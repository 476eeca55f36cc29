package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stacklend/stacklend-server/internal/http/response"
)

// CreateLoanRequest represents the request body for borrowing a book.
type CreateLoanRequest struct {
	UserID string `json:"userId" validate:"required"`
	BookID string `json:"bookId" validate:"required"`
}

// handleCreateLoan borrows one copy of a book for a user.
func (s *Server) handleCreateLoan(w http.ResponseWriter, r *http.Request) {
	var req CreateLoanRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	loan, err := s.loanService.CreateLoan(r.Context(), req.UserID, req.BookID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, loan, s.logger)
}

// handleGetLoan returns a single loan with its derived status.
func (s *Server) handleGetLoan(w http.ResponseWriter, r *http.Request) {
	loan, err := s.loanService.GetLoan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, loan, s.logger)
}

// handleReturnLoan closes an open loan and releases its copy.
func (s *Server) handleReturnLoan(w http.ResponseWriter, r *http.Request) {
	loan, err := s.loanService.ReturnLoan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, loan, s.logger)
}

// handleExtendLoan pushes an open loan's due date out by one more
// lending period.
func (s *Server) handleExtendLoan(w http.ResponseWriter, r *http.Request) {
	loan, err := s.loanService.ExtendLoan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, loan, s.logger)
}
