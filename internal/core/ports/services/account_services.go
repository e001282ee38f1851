package services

import (
	"context"

	"github.com/SscSPs/coa_posting_engine/internal/core/domain"
	"github.com/SscSPs/coa_posting_engine/internal/dto"
)

// AccountReaderSvc defines read operations for the account directory
type AccountReaderSvc interface {
	// GetAccountByCode retrieves a specific account by its code.
	GetAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// ListAccounts retrieves accounts matching the filter, ordered by code.
	ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for the account directory
type AccountWriterSvc interface {
	// UpsertAccount creates the account or updates the one with the same code.
	// A detail account that already carries journal lines cannot become a header.
	UpsertAccount(ctx context.Context, code string, req dto.UpsertAccountRequest, userID string) (*domain.Account, error)
}

// AccountReportingSvc defines reporting over stored balances
type AccountReportingSvc interface {
	// GetTrialBalance lists every account with a non-zero balance on its debit or credit side.
	GetTrialBalance(ctx context.Context) (*domain.TrialBalance, error)
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	AccountReportingSvc
}
