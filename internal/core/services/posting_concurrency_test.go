package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/coa_posting_engine/internal/apperrors"
	"github.com/SscSPs/coa_posting_engine/internal/core/domain"
	"github.com/SscSPs/coa_posting_engine/internal/core/services"
	"github.com/SscSPs/coa_posting_engine/internal/dto"
	"github.com/SscSPs/coa_posting_engine/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostTransaction_ConcurrentSalesNeverOversell(t *testing.T) {
	for round := 0; round < 20; round++ {
		store := memory.NewSeededStore()
		store.SetStockLevel(domain.StockLevel{ItemID: "SKU-1", QuantityOnHand: 10, AverageCost: decimal.NewFromInt(30000)})
		resolver := services.NewResolverService(store, store, time.Minute)
		svc := services.NewPostingService(store, resolver)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		start := make(chan struct{})
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				_, errs[i] = svc.PostTransaction(context.Background(), dto.PostTransactionRequest{
					IdempotencyKey: fmt.Sprintf("round-%d-sale-%d", round, i),
					Context: dto.TransactionContextRequest{
						Domain:   string(domain.ItemSale),
						Category: "Minimarket",
						Amount:   decimal.NewFromInt(300000),
						Quantity: 6,
						ItemID:   "SKU-1",
					},
				}, "operator-1")
			}(i)
		}
		close(start)
		wg.Wait()

		succeeded, rejected := 0, 0
		for _, err := range errs {
			switch {
			case err == nil:
				succeeded++
			case assert.ErrorIs(t, err, apperrors.ErrInsufficientStock):
				rejected++
			}
		}
		require.Equal(t, 1, succeeded, "round %d", round)
		require.Equal(t, 1, rejected, "round %d", round)

		level, err := store.FindStockLevel(context.Background(), "SKU-1")
		require.NoError(t, err)
		assert.Equal(t, int64(4), level.QuantityOnHand)

		cash, err := store.FindAccountByCode(context.Background(), "1-1100")
		require.NoError(t, err)
		assert.True(t, cash.Balance.Equal(decimal.NewFromInt(300000)), "only the winning sale reaches the ledger")
	}
}

func TestPostAndReverse_RoundTripRestoresBalances(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSeededStore()
	store.SetStockLevel(domain.StockLevel{ItemID: "SKU-1", QuantityOnHand: 10, AverageCost: decimal.NewFromInt(30000)})
	resolver := services.NewResolverService(store, store, time.Minute)
	svc := services.NewPostingService(store, resolver)

	posted, err := svc.PostTransaction(ctx, minimarketSale("sale-1"), "operator-1")
	require.NoError(t, err)
	require.Len(t, posted.Entry.Lines, 5)

	reversal, err := svc.ReversePosting(ctx, posted.TransactionID, dto.ReversePostingRequest{}, "operator-2")
	require.NoError(t, err)
	require.NotNil(t, reversal.Record.ReversalOf)

	original, err := svc.GetPosting(ctx, posted.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, domain.Reversed, original.Record.Status)
	require.NotNil(t, original.Record.ReversedBy)
	assert.Equal(t, reversal.TransactionID, *original.Record.ReversedBy)

	accounts, err := store.ListAccounts(ctx, domain.AccountFilter{})
	require.NoError(t, err)
	for _, acc := range accounts {
		assert.True(t, acc.Balance.IsZero(), "account %s balance %s", acc.Code, acc.Balance)
	}
	level, err := svc.GetStockLevel(ctx, "SKU-1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), level.QuantityOnHand)
	assert.True(t, level.AverageCost.Equal(decimal.NewFromInt(30000)))

	// the default reversal key makes a retry a replay, not a second reversal
	again, err := svc.ReversePosting(ctx, posted.TransactionID, dto.ReversePostingRequest{}, "operator-2")
	require.NoError(t, err)
	assert.True(t, again.Replayed)
	assert.Equal(t, reversal.TransactionID, again.TransactionID)
}

func stockReceipt(key string, qty int64, amount, tax int64) dto.PostTransactionRequest {
	return dto.PostTransactionRequest{
		IdempotencyKey: key,
		Description:    "Pembelian barang dagang",
		Context: dto.TransactionContextRequest{
			Domain:    string(domain.CashDisbursement),
			Category:  "Minimarket",
			Amount:    decimal.NewFromInt(amount),
			TaxAmount: decimal.NewFromInt(tax),
			Quantity:  qty,
			ItemID:    "SKU-9",
		},
	}
}

// assertInventoryMatchesStock checks the inventory account carries exactly the stock value.
func assertInventoryMatchesStock(t *testing.T, store *memory.Store, qty int64, avg int64) {
	t.Helper()
	ctx := context.Background()
	level, err := store.FindStockLevel(ctx, "SKU-9")
	require.NoError(t, err)
	assert.Equal(t, qty, level.QuantityOnHand)
	assert.True(t, decimal.NewFromInt(avg).Equal(level.AverageCost), "average cost %s", level.AverageCost)

	inventory, err := store.FindAccountByCode(ctx, "1-1400")
	require.NoError(t, err)
	want := level.AverageCost.Mul(decimal.NewFromInt(level.QuantityOnHand))
	assert.True(t, want.Equal(inventory.Balance), "inventory balance %s, stock value %s", inventory.Balance, want)
}

func TestStockReceipts_KeepInventoryAccountInStepWithStock(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSeededStore()
	resolver := services.NewResolverService(store, store, time.Minute)
	svc := services.NewPostingService(store, resolver)

	first, err := svc.PostTransaction(ctx, stockReceipt("receipt-1", 10, 300000, 33000), "operator-1")
	require.NoError(t, err)
	require.Len(t, first.Entry.Lines, 3)
	inv, ok := lineOf(first.Entry, "1-1400")
	require.True(t, ok, "a stock receipt debits inventory")
	assert.True(t, inv.Debit.Equal(decimal.NewFromInt(300000)))
	_, ok = lineOf(first.Entry, "4-1100")
	assert.False(t, ok, "a stock receipt never touches revenue")
	assertInventoryMatchesStock(t, store, 10, 30000)

	second, err := svc.PostTransaction(ctx, stockReceipt("receipt-2", 5, 180000, 0), "operator-1")
	require.NoError(t, err)
	assertInventoryMatchesStock(t, store, 15, 32000)

	sale, err := svc.PostTransaction(ctx, dto.PostTransactionRequest{
		IdempotencyKey: "sale-1",
		Context: dto.TransactionContextRequest{
			Domain:   string(domain.ItemSale),
			Category: "Minimarket",
			Amount:   decimal.NewFromInt(300000),
			Quantity: 6,
			ItemID:   "SKU-9",
		},
	}, "operator-1")
	require.NoError(t, err)
	cogs, ok := lineOf(sale.Entry, "5-1100")
	require.True(t, ok)
	assert.True(t, cogs.Debit.Equal(decimal.NewFromInt(192000)), "6 units at the blended 32000")
	assertInventoryMatchesStock(t, store, 9, 32000)

	// taking the second receipt back removes its value from the average too
	_, err = svc.ReversePosting(ctx, second.TransactionID, dto.ReversePostingRequest{}, "operator-2")
	require.NoError(t, err)
	assertInventoryMatchesStock(t, store, 4, 27000)

	revenue, err := store.FindAccountByCode(ctx, "4-1100")
	require.NoError(t, err)
	assert.True(t, revenue.Balance.Equal(decimal.NewFromInt(300000)), "only the sale reaches revenue")
	inputTax, err := store.FindAccountByCode(ctx, "1-1500")
	require.NoError(t, err)
	assert.True(t, inputTax.Balance.Equal(decimal.NewFromInt(33000)))

	tb, err := services.NewAccountService(store, resolver).GetTrialBalance(ctx)
	require.NoError(t, err)
	assert.True(t, tb.IsBalanced())
}

func TestStockReceipt_ReversalBlockedOnceSold(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSeededStore()
	resolver := services.NewResolverService(store, store, time.Minute)
	svc := services.NewPostingService(store, resolver)

	receipt, err := svc.PostTransaction(ctx, stockReceipt("receipt-1", 4, 120000, 0), "operator-1")
	require.NoError(t, err)
	_, err = svc.PostTransaction(ctx, dto.PostTransactionRequest{
		IdempotencyKey: "sale-1",
		Context: dto.TransactionContextRequest{
			Domain:   string(domain.ItemSale),
			Category: "Minimarket",
			Amount:   decimal.NewFromInt(100000),
			Quantity: 3,
			ItemID:   "SKU-9",
		},
	}, "operator-1")
	require.NoError(t, err)

	_, err = svc.ReversePosting(ctx, receipt.TransactionID, dto.ReversePostingRequest{}, "operator-2")
	assert.ErrorIs(t, err, apperrors.ErrInsufficientStock)

	original, err := svc.GetPosting(ctx, receipt.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, domain.Posted, original.Record.Status)
	assertInventoryMatchesStock(t, store, 1, 30000)
}
