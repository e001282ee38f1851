package repositories

import (
	"context"

	"github.com/SscSPs/coa_posting_engine/internal/core/domain"
)

// StockReader defines read operations for stock levels. Writes only happen
// inside PostingWriter.CommitPosting.
type StockReader interface {
	// FindStockLevel returns the current level of an item, ErrNotFound when the item was never stocked.
	FindStockLevel(ctx context.Context, itemID string) (*domain.StockLevel, error)
}
