package repositories

import (
	"context"

	"github.com/SscSPs/coa_posting_engine/internal/core/domain"
)

// AccountReader defines read operations for the account directory
type AccountReader interface {
	// FindAccountByCode retrieves a specific account by its unique code.
	FindAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// FindAccountsByCodes retrieves multiple accounts keyed by code. Missing codes are simply absent.
	FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error)

	// ListAccounts retrieves accounts matching the filter, ordered by code.
	ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error)

	// AccountHasJournalLines reports whether any journal line references the account.
	AccountHasJournalLines(ctx context.Context, code string) (bool, error)
}

// AccountWriter defines write operations for the account directory
type AccountWriter interface {
	// UpsertAccount inserts the account or updates the existing one with the same code.
	// The stored balance is never overwritten.
	UpsertAccount(ctx context.Context, account domain.Account) (*domain.Account, error)
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}

// AccountRepositoryWithTx extends AccountRepositoryFacade with transaction capabilities
type AccountRepositoryWithTx interface {
	AccountRepositoryFacade
	TransactionManager
}
