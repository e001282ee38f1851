package services

import (
	"context"

	"github.com/SscSPs/coa_posting_engine/internal/core/domain"
	"github.com/SscSPs/coa_posting_engine/internal/dto"
)

// PostingWriterSvc defines the operations that write to the general ledger
type PostingWriterSvc interface {
	// PostTransaction validates, resolves, composes and commits one transaction.
	// Calls repeated with the same idempotency key and payload return the original result.
	PostTransaction(ctx context.Context, req dto.PostTransactionRequest, userID string) (*domain.PostingResult, error)

	// ReversePosting commits a mirror entry for a posted transaction and marks it REVERSED.
	ReversePosting(ctx context.Context, transactionID string, req dto.ReversePostingRequest, userID string) (*domain.PostingResult, error)
}

// PostingReaderSvc defines read operations for committed postings
type PostingReaderSvc interface {
	GetPosting(ctx context.Context, transactionID string) (*domain.PostingResult, error)
	ListPostings(ctx context.Context, params dto.ListPostingsParams) (*dto.ListPostingsResponse, error)
}

// StockReaderSvc exposes the stock ledger
type StockReaderSvc interface {
	GetStockLevel(ctx context.Context, itemID string) (*domain.StockLevel, error)
}

// PostingSvcFacade combines all posting-related service interfaces
type PostingSvcFacade interface {
	PostingWriterSvc
	PostingReaderSvc
	StockReaderSvc
}
