// Package journal turns a resolved transaction into balanced journal lines.
package journal

import (
	"time"

	"github.com/SscSPs/coa_posting_engine/internal/apperrors"
	"github.com/SscSPs/coa_posting_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Leg names, used as fallback line descriptions.
const (
	LegSettlement = "settlement"
	LegMain       = "revenue/expense"
	LegTax        = "tax"
	LegCOGS       = "cost of goods sold"
	LegInventory  = "inventory"
)

// Accounts are the resolved accounts for each leg. Tax, COGS and Inventory
// are only required when the context generates that leg.
type Accounts struct {
	Settlement domain.Account
	Main       domain.Account
	Tax        *domain.Account
	COGS       *domain.Account
	Inventory  *domain.Account
}

// Meta is copied onto every line.
type Meta struct {
	TransactionID string
	Date          time.Time
	Description   string
}

// Composer builds journal entries. Scale is the number of decimals of the
// minor currency unit (0 for IDR).
type Composer struct {
	scale int32
}

// NewComposer creates a composer rounding lines to scale decimals.
func NewComposer(scale int32) *Composer {
	return &Composer{scale: scale}
}

type draft struct {
	leg     string
	account domain.Account
	debit   decimal.Decimal
	credit  decimal.Decimal
}

func (c *Composer) round(d decimal.Decimal) decimal.Decimal {
	return d.Round(c.scale)
}

// Compose emits the settlement, revenue/expense, tax and COGS legs in that
// order. Amounts are rounded per line and any residual lands on the
// settlement line. Zero lines are dropped. The result is validated before it
// is returned.
func (c *Composer) Compose(tc domain.TransactionContext, accts Accounts, meta Meta) (domain.JournalEntry, error) {
	inflow := tc.Direction == domain.DirectionIn
	entry := domain.JournalEntry{TransactionID: meta.TransactionID, Date: meta.Date, Description: meta.Description}
	missing := func(leg string) error {
		return &apperrors.UnbalancedEntryError{TransactionID: meta.TransactionID, Debit: decimal.Zero, Credit: decimal.Zero, Reason: "no account resolved for the " + leg + " leg"}
	}

	net := c.round(tc.Amount)
	tax := decimal.Zero
	if tc.HasTaxLeg() {
		tax = c.round(tc.TaxAmount)
	} else {
		// tax exempt: whatever tax was given stays in the main leg
		net = c.round(tc.Gross())
	}

	drafts := make([]draft, 0, 5)
	drafts = append(drafts, onSide(LegSettlement, accts.Settlement, c.round(tc.Gross()), inflow))
	mainLeg := LegMain
	if tc.IsStockReceipt() {
		mainLeg = LegInventory
	}
	drafts = append(drafts, onSide(mainLeg, accts.Main, net, !inflow))

	if !tax.IsZero() {
		if accts.Tax == nil {
			return entry, missing(LegTax)
		}
		drafts = append(drafts, onSide(LegTax, *accts.Tax, tax, !inflow))
	}

	if tc.HasCOGSLeg() {
		if accts.COGS == nil || accts.Inventory == nil {
			return entry, missing(LegCOGS)
		}
		cost := c.round(tc.COGSAmount())
		drafts = append(drafts,
			onSide(LegCOGS, *accts.COGS, cost, true),
			onSide(LegInventory, *accts.Inventory, cost, false),
		)
	}

	absorbResidual(drafts)

	seq := 0
	for _, d := range drafts {
		if d.debit.IsZero() && d.credit.IsZero() {
			continue
		}
		seq++
		entry.Lines = append(entry.Lines, domain.JournalLine{
			TransactionID: meta.TransactionID,
			LineSeq:       seq,
			AccountCode:   d.account.Code,
			AccountName:   d.account.Name,
			Debit:         d.debit,
			Credit:        d.credit,
			Description:   describe(meta.Description, d.leg),
			Date:          meta.Date,
		})
	}

	if err := entry.Validate(); err != nil {
		return entry, err
	}
	return entry, nil
}

func onSide(leg string, account domain.Account, amount decimal.Decimal, debit bool) draft {
	d := draft{leg: leg, account: account, debit: decimal.Zero, credit: decimal.Zero}
	if debit {
		d.debit = amount
	} else {
		d.credit = amount
	}
	return d
}

// absorbResidual moves any rounding difference into the settlement line,
// which is always drafts[0].
func absorbResidual(drafts []draft) {
	debit, credit := decimal.Zero, decimal.Zero
	for _, d := range drafts {
		debit = debit.Add(d.debit)
		credit = credit.Add(d.credit)
	}
	residual := debit.Sub(credit)
	if residual.IsZero() {
		return
	}
	if drafts[0].debit.IsPositive() {
		drafts[0].debit = drafts[0].debit.Sub(residual)
	} else {
		drafts[0].credit = drafts[0].credit.Add(residual)
	}
}

func describe(description, leg string) string {
	if description == "" {
		return leg
	}
	return description + " (" + leg + ")"
}

// Reverse mirrors an entry for a correction: every debit becomes a credit and
// the other way round. Sequence numbers are kept.
func Reverse(original domain.JournalEntry, meta Meta) domain.JournalEntry {
	reversed := domain.JournalEntry{TransactionID: meta.TransactionID, Date: meta.Date, Description: meta.Description}
	for _, l := range original.Lines {
		reversed.Lines = append(reversed.Lines, domain.JournalLine{
			TransactionID: meta.TransactionID,
			LineSeq:       l.LineSeq,
			AccountCode:   l.AccountCode,
			AccountName:   l.AccountName,
			Debit:         l.Credit,
			Credit:        l.Debit,
			Description:   describe(meta.Description, "reversal of "+original.TransactionID),
			Date:          meta.Date,
		})
	}
	return reversed
}
