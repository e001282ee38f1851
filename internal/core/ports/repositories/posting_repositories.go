package repositories

import (
	"context"

	"github.com/SscSPs/coa_posting_engine/internal/core/domain"
)

// PostingReader defines read operations for posted transactions
type PostingReader interface {
	// FindPostingByID retrieves a posting record by transaction id.
	FindPostingByID(ctx context.Context, transactionID string) (*domain.PostingRecord, error)

	// FindPostingByIdempotencyKey retrieves the posting created with the given key.
	FindPostingByIdempotencyKey(ctx context.Context, key string) (*domain.PostingRecord, error)

	// FindJournalLines retrieves the lines of one transaction ordered by line sequence.
	FindJournalLines(ctx context.Context, transactionID string) ([]domain.JournalLine, error)

	// ListPostings retrieves a page of postings, newest first, using token-based pagination.
	// It returns the postings, a token for the next page, and an error.
	ListPostings(ctx context.Context, limit int, nextToken *string) ([]domain.PostingRecord, *string, error)
}

// PostingWriter defines the single atomic write of the posting engine
type PostingWriter interface {
	// CommitPosting persists the record, applies the stock movement, updates account
	// balances and inserts the journal lines as one unit. When the record reverses
	// another posting, the original is marked REVERSED in the same unit.
	// It returns ErrDuplicate if the idempotency key is already used,
	// InsufficientStockError if the movement would drive stock negative,
	// and a storage failure for infrastructure errors. Nothing is written on error.
	CommitPosting(ctx context.Context, bundle domain.PostingBundle) error
}

// PostingRepositoryFacade combines all posting-related repository interfaces
type PostingRepositoryFacade interface {
	PostingReader
	PostingWriter
	StockReader
}

// PostingRepositoryWithTx extends PostingRepositoryFacade with transaction capabilities
type PostingRepositoryWithTx interface {
	PostingRepositoryFacade
	TransactionManager
}
