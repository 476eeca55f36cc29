package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/stacklend/stacklend-server/internal/logger"
	"github.com/stacklend/stacklend-server/internal/service"
)

// ProvideAuthorService provides the author catalog service.
func ProvideAuthorService(i do.Injector) (*service.AuthorService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthorService(storeHandle.Store, log.Logger), nil
}

// ProvideBookService provides the book catalog service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookService(storeHandle.Store, indexHandle.Index, log.Logger), nil
}

// ProvideUserService provides the membership service.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewUserService(storeHandle.Store, log.Logger), nil
}

// ProvideLoanService provides the loan lifecycle service.
func ProvideLoanService(i do.Injector) (*service.LoanService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLoanService(storeHandle.Store, log.Logger), nil
}

// ReindexCatalog rebuilds the search index from the store. Called once
// at startup after all services are wired.
func ReindexCatalog(i do.Injector) error {
	bookService := do.MustInvoke[*service.BookService](i)
	return bookService.Reindex(context.Background())
}
