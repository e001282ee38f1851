package dto

import (
	"time"

	"github.com/SscSPs/coa_posting_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransactionContextRequest carries the facts of the business transaction being posted.
type TransactionContextRequest struct {
	Domain           string          `json:"domain" binding:"required,oneof=ITEM_SALE SERVICE_SALE CASH_RECEIPT CASH_DISBURSEMENT FUND_REQUEST"`
	Category         string          `json:"category" binding:"max=100"`
	Type             string          `json:"type" binding:"max=100"`
	PaymentDirection string          `json:"paymentDirection" binding:"omitempty,oneof=IN OUT"` // Optional, implied by the domain
	PaymentMethod    string          `json:"paymentMethod" binding:"omitempty,oneof=CASH BANK CREDIT"` // Optional, defaults to CASH
	Amount           decimal.Decimal `json:"amount"`
	TaxAmount        decimal.Decimal `json:"taxAmount"`
	Quantity         int64           `json:"quantity" binding:"gte=0"`
	UnitCost         decimal.Decimal `json:"unitCost"`
	ItemID           string          `json:"itemId" binding:"max=64"`
	TaxExempt        bool            `json:"taxExempt"`
}

// ToDomain converts the request into a domain.TransactionContext, filling the defaults.
func (r TransactionContextRequest) ToDomain() domain.TransactionContext {
	tc := domain.TransactionContext{
		Domain:    domain.TransactionDomain(r.Domain),
		Category:  r.Category,
		Type:      r.Type,
		Direction: domain.PaymentDirection(r.PaymentDirection),
		Method:    domain.PaymentMethod(r.PaymentMethod),
		Amount:    r.Amount,
		TaxAmount: r.TaxAmount,
		Quantity:  r.Quantity,
		UnitCost:  r.UnitCost,
		ItemID:    r.ItemID,
		TaxExempt: r.TaxExempt,
	}
	if tc.Direction == "" {
		tc.Direction = tc.Domain.Direction()
	}
	if tc.Method == "" {
		tc.Method = domain.MethodCash
	}
	return tc
}

// PostTransactionRequest defines the data needed to post one business transaction.
type PostTransactionRequest struct {
	IdempotencyKey string                    `json:"idempotencyKey" binding:"max=128"` // Optional, a key is generated when empty
	Reference      string                    `json:"reference" binding:"max=100"`
	Description    string                    `json:"description" binding:"max=500"`
	PostingDate    *time.Time                `json:"postingDate"` // Optional, defaults to now
	Context        TransactionContextRequest `json:"context" binding:"required"`
}

// ReversePostingRequest defines the data needed to reverse a posted transaction.
type ReversePostingRequest struct {
	IdempotencyKey string     `json:"idempotencyKey" binding:"max=128"`
	Description    string     `json:"description" binding:"max=500"`
	PostingDate    *time.Time `json:"postingDate"`
}

// ListPostingsParams defines the query parameters for listing postings.
type ListPostingsParams struct {
	Limit     int     `form:"limit" binding:"omitempty,min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// ListPostingsResponse defines a page of postings.
type ListPostingsResponse struct {
	Postings  []domain.PostingRecord `json:"postings"`
	NextToken *string                `json:"nextToken,omitempty"`
}

// JournalLineResponse is one line of a posted journal entry.
type JournalLineResponse struct {
	LineSeq     int             `json:"lineSeq"`
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
}

// PostingResponse defines the data returned after posting or fetching a transaction.
type PostingResponse struct {
	TransactionID string                `json:"transactionId"`
	Status        domain.PostingStatus  `json:"status"`
	Reference     string                `json:"reference,omitempty"`
	PostingDate   time.Time             `json:"postingDate"`
	ReversalOf    *string               `json:"reversalOf,omitempty"`
	ReversedBy    *string               `json:"reversedBy,omitempty"`
	Replayed      bool                  `json:"replayed"`
	TotalDebit    decimal.Decimal       `json:"totalDebit"`
	TotalCredit   decimal.Decimal       `json:"totalCredit"`
	Lines         []JournalLineResponse `json:"lines"`
	Resolutions   []domain.Resolution   `json:"resolutions,omitempty"`
}

// ToPostingResponse converts a domain.PostingResult to its DTO.
func ToPostingResponse(res *domain.PostingResult) PostingResponse {
	debit, credit := res.Entry.Totals()
	lines := make([]JournalLineResponse, len(res.Entry.Lines))
	for i, l := range res.Entry.Lines {
		lines[i] = JournalLineResponse{
			LineSeq:     l.LineSeq,
			AccountCode: l.AccountCode,
			AccountName: l.AccountName,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		}
	}
	return PostingResponse{
		TransactionID: res.TransactionID,
		Status:        res.Record.Status,
		Reference:     res.Record.Reference,
		PostingDate:   res.Record.PostingDate,
		ReversalOf:    res.Record.ReversalOf,
		ReversedBy:    res.Record.ReversedBy,
		Replayed:      res.Replayed,
		TotalDebit:    debit,
		TotalCredit:   credit,
		Lines:         lines,
		Resolutions:   res.Resolutions,
	}
}
