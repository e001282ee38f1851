package accounting

import (
	"testing"

	"github.com/SscSPs/coa_posting_engine/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSignedAmount(t *testing.T) {
	debitLine := domain.JournalLine{AccountCode: "1-1100", Debit: dec("100"), Credit: decimal.Zero}
	creditLine := domain.JournalLine{AccountCode: "4-1100", Debit: decimal.Zero, Credit: dec("100")}

	got, err := SignedAmount(debitLine, domain.NormalDebit)
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("100")))

	got, err = SignedAmount(creditLine, domain.NormalDebit)
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("-100")))

	got, err = SignedAmount(creditLine, domain.NormalCredit)
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("100")))

	_, err = SignedAmount(creditLine, domain.NormalBalance("SIDEWAYS"))
	assert.Error(t, err)
}

func TestBalanceChanges(t *testing.T) {
	accounts := map[string]domain.Account{
		"1-1100": {Code: "1-1100", NormalBalance: domain.NormalDebit},
		"4-1100": {Code: "4-1100", NormalBalance: domain.NormalCredit},
		"2-1300": {Code: "2-1300", NormalBalance: domain.NormalCredit},
	}
	lines := []domain.JournalLine{
		{LineSeq: 1, AccountCode: "1-1100", Debit: dec("111000"), Credit: decimal.Zero},
		{LineSeq: 2, AccountCode: "4-1100", Debit: decimal.Zero, Credit: dec("100000")},
		{LineSeq: 3, AccountCode: "2-1300", Debit: decimal.Zero, Credit: dec("11000")},
	}

	changes, err := BalanceChanges(lines, accounts)
	require.NoError(t, err)
	assert.True(t, changes["1-1100"].Equal(dec("111000")))
	assert.True(t, changes["4-1100"].Equal(dec("100000")))
	assert.True(t, changes["2-1300"].Equal(dec("11000")))

	_, err = BalanceChanges(append(lines, domain.JournalLine{LineSeq: 4, AccountCode: "9-9999", Debit: dec("1")}), accounts)
	assert.Error(t, err)
}

func TestBuildTrialBalance(t *testing.T) {
	accounts := []domain.Account{
		{Code: "1-1100", Name: "Kas", AccountType: domain.Asset, NormalBalance: domain.NormalDebit, Balance: dec("111000")},
		{Code: "1-1200", Name: "Bank", AccountType: domain.Asset, NormalBalance: domain.NormalDebit, Balance: decimal.Zero},
		{Code: "2-1300", Name: "PPN Keluaran", AccountType: domain.Liability, NormalBalance: domain.NormalCredit, Balance: dec("11000")},
		{Code: "4-1100", Name: "Penjualan Barang", AccountType: domain.Revenue, NormalBalance: domain.NormalCredit, Balance: dec("100000")},
	}

	tb := BuildTrialBalance(accounts)
	assert.Len(t, tb.Rows, 3, "zero balances are skipped")
	assert.True(t, tb.IsBalanced())
	assert.True(t, tb.TotalDebit.Equal(dec("111000")))

	// an overdrawn cash account shows on the credit side
	debit, credit := SplitBalance(domain.Account{NormalBalance: domain.NormalDebit, Balance: dec("-500")})
	assert.True(t, debit.IsZero())
	assert.True(t, credit.Equal(dec("500")))
}
