package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/stacklend/stacklend-server/internal/api"
	"github.com/stacklend/stacklend-server/internal/config"
	"github.com/stacklend/stacklend-server/internal/logger"
	"github.com/stacklend/stacklend-server/internal/service"
	"github.com/stacklend/stacklend-server/internal/validation"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	validator := do.MustInvoke[*validation.Validator](i)
	limiterHandle := do.MustInvoke[*RateLimiterHandle](i)

	authorService := do.MustInvoke[*service.AuthorService](i)
	bookService := do.MustInvoke[*service.BookService](i)
	userService := do.MustInvoke[*service.UserService](i)
	loanService := do.MustInvoke[*service.LoanService](i)

	handler := api.NewServer(
		authorService,
		bookService,
		userService,
		loanService,
		validator,
		limiterHandle.KeyedRateLimiter,
		log.Logger,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr, "name", cfg.Server.Name)

	return &HTTPServerHandle{Server: srv}, nil
}
