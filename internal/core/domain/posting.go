package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PostingStatus indicates the state of a committed posting.
type PostingStatus string

const (
	Posted   PostingStatus = "POSTED"
	Reversed PostingStatus = "REVERSED"
)

// PostingState is the coordinator state of one posting attempt.
type PostingState string

const (
	StateValidating PostingState = "VALIDATING"
	StateResolving  PostingState = "RESOLVING"
	StateComposing  PostingState = "COMPOSING"
	StateCommitting PostingState = "COMMITTING"
	StateCommitted  PostingState = "COMMITTED"
	StateFailed     PostingState = "FAILED"
)

// PostingRecord is the persisted business record a journal entry belongs to.
type PostingRecord struct {
	TransactionID  string             `json:"transactionId"`
	IdempotencyKey string             `json:"idempotencyKey"`
	RequestHash    string             `json:"-"`
	Reference      string             `json:"reference,omitempty"`
	Description    string             `json:"description,omitempty"`
	PostingDate    time.Time          `json:"postingDate"`
	Domain         TransactionDomain  `json:"domain"`
	Context        TransactionContext `json:"context"`
	Status         PostingStatus      `json:"status"`
	ReversalOf     *string            `json:"reversalOf,omitempty"`
	ReversedBy     *string            `json:"reversedBy,omitempty"`
	AuditFields
}

// IsReversal reports whether the record is itself a correction of another posting.
func (r PostingRecord) IsReversal() bool {
	return r.ReversalOf != nil
}

// PostingBundle is everything CommitPosting writes in one atomic unit.
type PostingBundle struct {
	Record         PostingRecord
	Entry          JournalEntry
	Stock          *StockMovement
	BalanceChanges map[string]decimal.Decimal // account code -> signed change
}

// PostingResult is returned to the caller after a commit or an idempotent replay.
type PostingResult struct {
	TransactionID string        `json:"transactionId"`
	Record        PostingRecord `json:"record"`
	Entry         JournalEntry  `json:"journalEntry"`
	Resolutions   []Resolution  `json:"resolutions,omitempty"`
	Replayed      bool          `json:"replayed"`
}
