package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/coa_posting_engine/internal/core/domain"
	"github.com/SscSPs/coa_posting_engine/internal/models"
)

// ToModelPosting converts a domain PostingRecord to a model Posting. The
// transaction context is stored as JSON.
func ToModelPosting(d domain.PostingRecord) (models.Posting, error) {
	ctxJSON, err := json.Marshal(d.Context)
	if err != nil {
		return models.Posting{}, fmt.Errorf("failed to encode transaction context: %w", err)
	}
	return models.Posting{
		TransactionID:  d.TransactionID,
		IdempotencyKey: d.IdempotencyKey,
		RequestHash:    d.RequestHash,
		Reference:      d.Reference,
		Description:    d.Description,
		PostingDate:    d.PostingDate,
		Domain:         string(d.Domain),
		Context:        ctxJSON,
		Status:         string(d.Status),
		ReversalOf:     d.ReversalOf,
		ReversedBy:     d.ReversedBy,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}, nil
}

// ToDomainPosting converts a model Posting to a domain PostingRecord
func ToDomainPosting(m models.Posting) (domain.PostingRecord, error) {
	var tc domain.TransactionContext
	if len(m.Context) > 0 {
		if err := json.Unmarshal(m.Context, &tc); err != nil {
			return domain.PostingRecord{}, fmt.Errorf("failed to decode transaction context of %s: %w", m.TransactionID, err)
		}
	}
	return domain.PostingRecord{
		TransactionID:  m.TransactionID,
		IdempotencyKey: m.IdempotencyKey,
		RequestHash:    m.RequestHash,
		Reference:      m.Reference,
		Description:    m.Description,
		PostingDate:    m.PostingDate,
		Domain:         domain.TransactionDomain(m.Domain),
		Context:        tc,
		Status:         domain.PostingStatus(m.Status),
		ReversalOf:     m.ReversalOf,
		ReversedBy:     m.ReversedBy,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}, nil
}

// ToModelJournalLine converts a domain JournalLine to a model JournalLine
func ToModelJournalLine(d domain.JournalLine) models.JournalLine {
	return models.JournalLine{
		TransactionID: d.TransactionID,
		LineSeq:       d.LineSeq,
		AccountCode:   d.AccountCode,
		AccountName:   d.AccountName,
		Debit:         d.Debit,
		Credit:        d.Credit,
		Description:   d.Description,
		LineDate:      d.Date,
	}
}

// ToDomainJournalLine converts a model JournalLine to a domain JournalLine
func ToDomainJournalLine(m models.JournalLine) domain.JournalLine {
	return domain.JournalLine{
		TransactionID: m.TransactionID,
		LineSeq:       m.LineSeq,
		AccountCode:   m.AccountCode,
		AccountName:   m.AccountName,
		Debit:         m.Debit,
		Credit:        m.Credit,
		Description:   m.Description,
		Date:          m.LineDate,
	}
}

// ToDomainStockLevel converts a model StockLevel to a domain StockLevel
func ToDomainStockLevel(m models.StockLevel) domain.StockLevel {
	return domain.StockLevel{
		ItemID:         m.ItemID,
		QuantityOnHand: m.QuantityOnHand,
		AverageCost:    m.AverageCost,
		LastUpdatedAt:  m.LastUpdatedAt,
	}
}
