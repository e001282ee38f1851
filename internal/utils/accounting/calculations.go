package accounting

import (
	"fmt"

	"github.com/SscSPs/coa_posting_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SignedAmount returns the effect of a journal line on an account balance.
// Balances are kept positive on the account's normal side:
// DEBIT-normal accounts grow with debits, CREDIT-normal accounts with credits.
func SignedAmount(line domain.JournalLine, normal domain.NormalBalance) (decimal.Decimal, error) {
	switch normal {
	case domain.NormalDebit:
		return line.Debit.Sub(line.Credit), nil
	case domain.NormalCredit:
		return line.Credit.Sub(line.Debit), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown normal balance '%s' encountered for account %s", normal, line.AccountCode)
	}
}

// BalanceChanges sums the signed effect of every line per account code.
func BalanceChanges(lines []domain.JournalLine, accounts map[string]domain.Account) (map[string]decimal.Decimal, error) {
	changes := make(map[string]decimal.Decimal, len(lines))
	for _, line := range lines {
		acc, ok := accounts[line.AccountCode]
		if !ok {
			return nil, fmt.Errorf("account %s not found for line %d", line.AccountCode, line.LineSeq)
		}
		signed, err := SignedAmount(line, acc.NormalBalance)
		if err != nil {
			return nil, err
		}
		changes[line.AccountCode] = changes[line.AccountCode].Add(signed)
	}
	return changes, nil
}

// SplitBalance places a stored balance in the debit or credit column of a trial balance.
// A negative balance shows on the side opposite to the normal balance.
func SplitBalance(acc domain.Account) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	positive := acc.Balance.IsPositive()
	onDebit := (acc.NormalBalance == domain.NormalDebit) == positive
	if onDebit {
		debit = acc.Balance.Abs()
	} else {
		credit = acc.Balance.Abs()
	}
	return debit, credit
}

// BuildTrialBalance lists every account with a nonzero balance.
func BuildTrialBalance(accounts []domain.Account) domain.TrialBalance {
	tb := domain.TrialBalance{Rows: []domain.TrialBalanceRow{}, TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
	for _, acc := range accounts {
		if acc.Balance.IsZero() {
			continue
		}
		debit, credit := SplitBalance(acc)
		tb.Rows = append(tb.Rows, domain.TrialBalanceRow{
			AccountCode: acc.Code,
			AccountName: acc.Name,
			AccountType: acc.AccountType,
			Debit:       debit,
			Credit:      credit,
		})
		tb.TotalDebit = tb.TotalDebit.Add(debit)
		tb.TotalCredit = tb.TotalCredit.Add(credit)
	}
	return tb
}
