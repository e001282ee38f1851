package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Posting represents a row of the postings table.
type Posting struct {
	TransactionID  string    `db:"transaction_id"`
	IdempotencyKey string    `db:"idempotency_key"`
	RequestHash    string    `db:"request_hash"`
	Reference      string    `db:"reference"`
	Description    string    `db:"description"`
	PostingDate    time.Time `db:"posting_date"`
	Domain         string    `db:"domain"`
	Context        []byte    `db:"context"` // JSONB
	Status         string    `db:"status"`
	ReversalOf     *string   `db:"reversal_of"`
	ReversedBy     *string   `db:"reversed_by"`
	AuditFields
}

// JournalLine represents a row of the journal_lines table.
type JournalLine struct {
	TransactionID string          `db:"transaction_id"`
	LineSeq       int             `db:"line_seq"`
	AccountCode   string          `db:"account_code"`
	AccountName   string          `db:"account_name"`
	Debit         decimal.Decimal `db:"debit"`
	Credit        decimal.Decimal `db:"credit"`
	Description   string          `db:"description"`
	LineDate      time.Time       `db:"line_date"`
}

// StockLevel represents a row of the stock_levels table.
type StockLevel struct {
	ItemID         string          `db:"item_id"`
	QuantityOnHand int64           `db:"quantity_on_hand"`
	AverageCost    decimal.Decimal `db:"average_cost"`
	LastUpdatedAt  time.Time       `db:"last_updated_at"`
}
