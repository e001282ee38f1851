package domain

import (
	"time"

	"github.com/SscSPs/coa_posting_engine/internal/apperrors"
	"github.com/shopspring/decimal"
)

// averageCostScale is the precision kept for the weighted-average unit cost.
const averageCostScale = 4

// StockLevel is the on-hand quantity of one inventory item.
type StockLevel struct {
	ItemID         string          `json:"itemId"`
	QuantityOnHand int64           `json:"quantityOnHand"`
	AverageCost    decimal.Decimal `json:"averageCost"`
	LastUpdatedAt  time.Time       `json:"lastUpdatedAt"`
}

// StockMovement is the inventory delta of one posting. Negative deltas are
// issues (sales), positive deltas are receipts and carry their unit cost.
// Reversal marks a movement that undoes an earlier one.
type StockMovement struct {
	ItemID        string          `json:"itemId"`
	QuantityDelta int64           `json:"quantityDelta"`
	UnitCost      decimal.Decimal `json:"unitCost"`
	Reversal      bool            `json:"reversal,omitempty"`
}

// Inverse returns the movement that undoes m.
func (m StockMovement) Inverse() StockMovement {
	return StockMovement{ItemID: m.ItemID, QuantityDelta: -m.QuantityDelta, UnitCost: m.UnitCost, Reversal: !m.Reversal}
}

// Apply returns the level after m. Issues keep the average cost, receipts
// blend it by quantity and a reversed receipt takes its value back out.
// The level is never allowed below zero.
func (s StockLevel) Apply(m StockMovement, now time.Time) (StockLevel, error) {
	next := s
	next.ItemID = m.ItemID
	next.QuantityOnHand = s.QuantityOnHand + m.QuantityDelta
	next.LastUpdatedAt = now

	if next.QuantityOnHand < 0 {
		return s, &apperrors.InsufficientStockError{ItemID: m.ItemID, Requested: -m.QuantityDelta, OnHand: s.QuantityOnHand}
	}

	if m.QuantityDelta > 0 && m.UnitCost.IsPositive() {
		onHandValue := s.AverageCost.Mul(decimal.NewFromInt(max(s.QuantityOnHand, 0)))
		receiptValue := m.UnitCost.Mul(decimal.NewFromInt(m.QuantityDelta))
		next.AverageCost = onHandValue.Add(receiptValue).
			Div(decimal.NewFromInt(next.QuantityOnHand)).
			Round(averageCostScale)
	}
	if m.QuantityDelta < 0 && m.Reversal && m.UnitCost.IsPositive() && next.QuantityOnHand > 0 {
		onHandValue := s.AverageCost.Mul(decimal.NewFromInt(s.QuantityOnHand))
		remaining := onHandValue.Sub(m.UnitCost.Mul(decimal.NewFromInt(-m.QuantityDelta)))
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}
		next.AverageCost = remaining.Div(decimal.NewFromInt(next.QuantityOnHand)).Round(averageCostScale)
	}
	if next.QuantityOnHand == 0 {
		next.AverageCost = decimal.Zero
	}
	return next, nil
}
