package domain

import (
	"time"

	"github.com/SscSPs/coa_posting_engine/internal/apperrors"
	"github.com/shopspring/decimal"
)

// JournalLine is one debit or credit against a single account.
type JournalLine struct {
	TransactionID string          `json:"transactionId"`
	LineSeq       int             `json:"lineSeq"`
	AccountCode   string          `json:"accountCode"`
	AccountName   string          `json:"accountName"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	Description   string          `json:"description"`
	Date          time.Time       `json:"date"`
}

// IsZero reports whether the line carries no amount at all.
func (l JournalLine) IsZero() bool {
	return l.Debit.IsZero() && l.Credit.IsZero()
}

// JournalEntry groups the lines of one transaction. Lines are immutable once
// committed; corrections are posted as a reversing entry.
type JournalEntry struct {
	TransactionID string        `json:"transactionId"`
	Date          time.Time     `json:"date"`
	Description   string        `json:"description"`
	Lines         []JournalLine `json:"lines"`
}

// Totals sums the debit and credit columns.
func (e JournalEntry) Totals() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range e.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// Validate enforces the double-entry invariants:
// at least two lines, each line non-negative with exactly one side nonzero,
// and total debit equal to total credit.
func (e JournalEntry) Validate() error {
	debit, credit := e.Totals()
	fail := func(reason string) error {
		return &apperrors.UnbalancedEntryError{TransactionID: e.TransactionID, Debit: debit, Credit: credit, Reason: reason}
	}

	if len(e.Lines) < 2 {
		return fail("an entry needs at least two lines")
	}
	for _, l := range e.Lines {
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return fail("line " + l.AccountCode + " has a negative amount")
		}
		if l.Debit.IsZero() == l.Credit.IsZero() {
			return fail("line " + l.AccountCode + " must have exactly one of debit or credit")
		}
		if l.AccountCode == "" {
			return fail("line without account code")
		}
	}
	if !debit.Equal(credit) {
		return fail("total debit differs from total credit")
	}
	return nil
}
