// Package api provides the HTTP API server and handlers for the StackLend application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/stacklend/stacklend-server/internal/ratelimit"
	"github.com/stacklend/stacklend-server/internal/service"
	"github.com/stacklend/stacklend-server/internal/validation"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	authorService *service.AuthorService
	bookService   *service.BookService
	userService   *service.UserService
	loanService   *service.LoanService
	validator     *validation.Validator
	limiter       *ratelimit.KeyedRateLimiter
	router        *chi.Mux
	logger        *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	authorService *service.AuthorService,
	bookService *service.BookService,
	userService *service.UserService,
	loanService *service.LoanService,
	validator *validation.Validator,
	limiter *ratelimit.KeyedRateLimiter,
	logger *slog.Logger,
) *Server {
	s := &Server{
		authorService: authorService,
		bookService:   bookService,
		userService:   userService,
		loanService:   loanService,
		validator:     validator,
		limiter:       limiter,
		router:        chi.NewRouter(),
		logger:        logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all HTTP routes. Mutating endpoints sit
// behind the per-client rate limiter.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/authors", func(r chi.Router) {
			r.With(s.rateLimit).Post("/", s.handleCreateAuthor)
			r.Get("/", s.handleListAuthors)
			r.Get("/{id}", s.handleGetAuthor)
			r.Get("/name/{lastName}", s.handleFindAuthorsByLastName)
		})

		r.Route("/books", func(r chi.Router) {
			r.With(s.rateLimit).Post("/", s.handleCreateBook)
			r.Get("/", s.handleListBooks)
			r.Get("/search", s.handleSearchBooks)
			r.Get("/{id}", s.handleGetBook)
		})

		r.Route("/users", func(r chi.Router) {
			r.With(s.rateLimit).Post("/", s.handleRegisterUser)
			r.Get("/email/{email}", s.handleGetUserByEmail)
			r.Get("/{userId}/loans", s.handleGetUserLoans)
		})

		r.Route("/loans", func(r chi.Router) {
			r.With(s.rateLimit).Post("/", s.handleCreateLoan)
			r.Get("/{id}", s.handleGetLoan)
			r.With(s.rateLimit).Put("/{id}/return", s.handleReturnLoan)
			r.With(s.rateLimit).Put("/{id}/extend", s.handleExtendLoan)
		})
	})
}
