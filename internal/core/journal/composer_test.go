package journal_test

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/SscSPs/coa_posting_engine/internal/apperrors"
	"github.com/SscSPs/coa_posting_engine/internal/core/domain"
	"github.com/SscSPs/coa_posting_engine/internal/core/journal"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ComposerTestSuite struct {
	suite.Suite
	composer *journal.Composer
	accts    journal.Accounts
	meta     journal.Meta
}

func TestComposerTestSuite(t *testing.T) {
	suite.Run(t, new(ComposerTestSuite))
}

func account(code, name string) domain.Account {
	return domain.Account{Code: code, Name: name, IsActive: true, Level: 3}
}

func ptr(a domain.Account) *domain.Account { return &a }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (s *ComposerTestSuite) SetupTest() {
	s.composer = journal.NewComposer(0)
	s.accts = journal.Accounts{
		Settlement: account("1-1100", "Kas"),
		Main:       account("4-1100", "Pendapatan Penjualan Barang"),
		Tax:        ptr(account("2-1300", "PPN Keluaran")),
		COGS:       ptr(account("5-1100", "HPP Barang Dagang")),
		Inventory:  ptr(account("1-1400", "Persediaan Barang")),
	}
	s.meta = journal.Meta{TransactionID: "tx-1", Date: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), Description: "Penjualan tunai"}
}

func cashSale() domain.TransactionContext {
	return domain.TransactionContext{
		Domain:    domain.ItemSale,
		Category:  "Minimarket",
		Direction: domain.DirectionIn,
		Method:    domain.MethodCash,
		Amount:    dec("50000"),
		TaxAmount: dec("5500"),
		Quantity:  10,
		ItemID:    "SKU-1",
	}
}

func (s *ComposerTestSuite) assertLine(l domain.JournalLine, code string, debit, credit string) {
	s.Equal(code, l.AccountCode)
	s.True(dec(debit).Equal(l.Debit), "debit on %s: want %s got %s", code, debit, l.Debit)
	s.True(dec(credit).Equal(l.Credit), "credit on %s: want %s got %s", code, credit, l.Credit)
}

func (s *ComposerTestSuite) assertBalanced(e domain.JournalEntry) {
	debit, credit := e.Totals()
	s.True(debit.Equal(credit), "unbalanced: debit %s credit %s", debit, credit)
}

func (s *ComposerTestSuite) TestCashSaleWithTax() {
	entry, err := s.composer.Compose(cashSale(), s.accts, s.meta)
	s.Require().NoError(err)
	s.Require().Len(entry.Lines, 3)

	s.assertLine(entry.Lines[0], "1-1100", "55500", "0")
	s.assertLine(entry.Lines[1], "4-1100", "0", "50000")
	s.assertLine(entry.Lines[2], "2-1300", "0", "5500")
	s.assertBalanced(entry)

	for i, l := range entry.Lines {
		s.Equal(i+1, l.LineSeq)
		s.Equal("tx-1", l.TransactionID)
		s.Equal(s.meta.Date, l.Date)
		s.Contains(l.Description, "Penjualan tunai")
	}
	s.Equal("Kas", entry.Lines[0].AccountName)
}

func (s *ComposerTestSuite) TestItemSaleWithKnownCostAddsCOGSPair() {
	tc := cashSale()
	tc.UnitCost = dec("30000")

	entry, err := s.composer.Compose(tc, s.accts, s.meta)
	s.Require().NoError(err)
	s.Require().Len(entry.Lines, 5)
	s.assertLine(entry.Lines[3], "5-1100", "300000", "0")
	s.assertLine(entry.Lines[4], "1-1400", "0", "300000")
	s.assertBalanced(entry)
}

func (s *ComposerTestSuite) TestUnknownCostOmitsCOGS() {
	tc := cashSale()
	tc.UnitCost = decimal.Zero

	entry, err := s.composer.Compose(tc, journal.Accounts{Settlement: s.accts.Settlement, Main: s.accts.Main, Tax: s.accts.Tax}, s.meta)
	s.Require().NoError(err)
	s.Len(entry.Lines, 3)
}

func (s *ComposerTestSuite) TestZeroTaxDropsTaxLine() {
	tc := cashSale()
	tc.TaxAmount = decimal.Zero

	entry, err := s.composer.Compose(tc, s.accts, s.meta)
	s.Require().NoError(err)
	s.Require().Len(entry.Lines, 2)
	s.assertLine(entry.Lines[0], "1-1100", "50000", "0")
	s.assertLine(entry.Lines[1], "4-1100", "0", "50000")
}

func (s *ComposerTestSuite) TestTaxExemptFoldsTaxIntoMainLeg() {
	tc := cashSale()
	tc.TaxExempt = true

	entry, err := s.composer.Compose(tc, journal.Accounts{Settlement: s.accts.Settlement, Main: s.accts.Main}, s.meta)
	s.Require().NoError(err)
	s.Require().Len(entry.Lines, 2)
	s.assertLine(entry.Lines[0], "1-1100", "55500", "0")
	s.assertLine(entry.Lines[1], "4-1100", "0", "55500")
}

func (s *ComposerTestSuite) TestOutflowOnCredit() {
	tc := domain.TransactionContext{
		Domain:    domain.CashDisbursement,
		Category:  "ATK",
		Direction: domain.DirectionOut,
		Method:    domain.MethodCredit,
		Amount:    dec("200000"),
		TaxAmount: dec("22000"),
	}
	accts := journal.Accounts{
		Settlement: account("2-1100", "Hutang Usaha"),
		Main:       account("6-3100", "Beban ATK dan Kebersihan"),
		Tax:        ptr(account("1-1500", "PPN Masukan")),
	}

	entry, err := s.composer.Compose(tc, accts, s.meta)
	s.Require().NoError(err)
	s.Require().Len(entry.Lines, 3)
	s.assertLine(entry.Lines[0], "2-1100", "0", "222000")
	s.assertLine(entry.Lines[1], "6-3100", "200000", "0")
	s.assertLine(entry.Lines[2], "1-1500", "22000", "0")
}

func (s *ComposerTestSuite) TestRoundingResidualGoesToSettlement() {
	tc := cashSale()
	tc.Amount = dec("100.4")
	tc.TaxAmount = dec("11.4")

	entry, err := s.composer.Compose(tc, s.accts, s.meta)
	s.Require().NoError(err)
	s.Require().Len(entry.Lines, 3)
	s.assertLine(entry.Lines[0], "1-1100", "111", "0")
	s.assertLine(entry.Lines[1], "4-1100", "0", "100")
	s.assertLine(entry.Lines[2], "2-1300", "0", "11")
}

func (s *ComposerTestSuite) TestRoundsCOGSToMinorUnit() {
	composer := journal.NewComposer(2)
	tc := cashSale()
	tc.Quantity = 3
	tc.UnitCost = dec("1333.333")

	entry, err := composer.Compose(tc, s.accts, s.meta)
	s.Require().NoError(err)
	s.Require().Len(entry.Lines, 5)
	s.assertLine(entry.Lines[3], "5-1100", "4000.00", "0")
	s.assertLine(entry.Lines[4], "1-1400", "0", "4000.00")
}

func (s *ComposerTestSuite) TestRoundTripRecoversAmounts() {
	tc := cashSale()
	tc.UnitCost = dec("30000")

	entry, err := s.composer.Compose(tc, s.accts, s.meta)
	s.Require().NoError(err)

	byCode := map[string]domain.JournalLine{}
	for _, l := range entry.Lines {
		byCode[l.AccountCode] = l
	}
	amount := byCode["4-1100"].Credit
	tax := byCode["2-1300"].Credit
	s.True(tc.Amount.Equal(amount))
	s.True(tc.TaxAmount.Equal(tax))
	s.True(amount.Add(tax).Equal(byCode["1-1100"].Debit))
}

func (s *ComposerTestSuite) TestAlwaysBalancedForFractionalAmounts() {
	rng := rand.New(rand.NewSource(42))
	for _, scale := range []int32{0, 2} {
		composer := journal.NewComposer(scale)
		for i := 0; i < 200; i++ {
			tc := cashSale()
			tc.Amount = decimal.New(rng.Int63n(10_000_000)+10_000, -3)
			tc.TaxAmount = tc.Amount.Mul(dec("0.11"))
			tc.Quantity = rng.Int63n(20) + 1
			tc.UnitCost = decimal.New(rng.Int63n(1_000_000), -3)

			entry, err := composer.Compose(tc, s.accts, s.meta)
			s.Require().NoError(err, "amount %s tax %s", tc.Amount, tc.TaxAmount)
			s.assertBalanced(entry)
			for _, l := range entry.Lines {
				s.False(l.IsZero())
			}
		}
	}
}

func (s *ComposerTestSuite) TestMissingTaxAccountFails() {
	_, err := s.composer.Compose(cashSale(), journal.Accounts{Settlement: s.accts.Settlement, Main: s.accts.Main}, s.meta)
	s.Require().Error(err)
	s.True(errors.Is(err, apperrors.ErrUnbalancedEntry))
}

func (s *ComposerTestSuite) TestReverseMirrorsLines() {
	tc := cashSale()
	tc.UnitCost = dec("30000")
	entry, err := s.composer.Compose(tc, s.accts, s.meta)
	s.Require().NoError(err)

	reversed := journal.Reverse(entry, journal.Meta{TransactionID: "tx-2", Date: s.meta.Date, Description: "Koreksi"})
	s.Require().Len(reversed.Lines, len(entry.Lines))
	for i, l := range reversed.Lines {
		s.Equal("tx-2", l.TransactionID)
		s.True(entry.Lines[i].Debit.Equal(l.Credit))
		s.True(entry.Lines[i].Credit.Equal(l.Debit))
	}
	s.NoError(reversed.Validate())
}
