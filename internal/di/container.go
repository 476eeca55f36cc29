// Package di provides dependency injection configuration for the StackLend server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/stacklend/stacklend-server/internal/config"
	"github.com/stacklend/stacklend-server/internal/di/providers"
	"github.com/stacklend/stacklend-server/internal/logger"
	"github.com/stacklend/stacklend-server/internal/service"
	"github.com/stacklend/stacklend-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideRateLimiter)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)

	// Business services
	do.Provide(injector, providers.ProvideAuthorService)
	do.Provide(injector, providers.ProvideBookService)
	do.Provide(injector, providers.ProvideUserService)
	do.Provide(injector, providers.ProvideLoanService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns once the server is
// running. This triggers lazy initialization of every provider.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*providers.RateLimiterHandle](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)

	_ = do.MustInvoke[*service.AuthorService](injector)
	_ = do.MustInvoke[*service.BookService](injector)
	_ = do.MustInvoke[*service.UserService](injector)
	_ = do.MustInvoke[*service.LoanService](injector)

	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Rebuild the search index from the store now that everything is up.
	return providers.ReindexCatalog(injector)
}
