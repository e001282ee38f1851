package domain

import (
	"fmt"

	"github.com/SscSPs/coa_posting_engine/internal/apperrors"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// TransactionDomain is the business flow a posting originates from.
type TransactionDomain string

const (
	ItemSale         TransactionDomain = "ITEM_SALE"
	ServiceSale      TransactionDomain = "SERVICE_SALE"
	CashReceipt      TransactionDomain = "CASH_RECEIPT"
	CashDisbursement TransactionDomain = "CASH_DISBURSEMENT"
	FundRequest      TransactionDomain = "FUND_REQUEST"
)

// Direction returns the payment direction the domain implies.
func (d TransactionDomain) Direction() PaymentDirection {
	switch d {
	case CashDisbursement, FundRequest:
		return DirectionOut
	default:
		return DirectionIn
	}
}

// PaymentDirection tells whether money flows in or out.
type PaymentDirection string

const (
	DirectionIn  PaymentDirection = "IN"
	DirectionOut PaymentDirection = "OUT"
)

// PaymentMethod picks the settlement account.
type PaymentMethod string

const (
	MethodCash   PaymentMethod = "CASH"
	MethodBank   PaymentMethod = "BANK"
	MethodCredit PaymentMethod = "CREDIT" // on account: receivable for inflows, payable for outflows
)

// TransactionContext holds the facts of one business transaction. It is built
// per posting call and never persisted on its own.
type TransactionContext struct {
	Domain    TransactionDomain `json:"domain" validate:"required,oneof=ITEM_SALE SERVICE_SALE CASH_RECEIPT CASH_DISBURSEMENT FUND_REQUEST"`
	Category  string            `json:"category,omitempty" validate:"max=100"`
	Type      string            `json:"type,omitempty" validate:"max=100"`
	Direction PaymentDirection  `json:"paymentDirection" validate:"required,oneof=IN OUT"`
	Method    PaymentMethod     `json:"paymentMethod" validate:"required,oneof=CASH BANK CREDIT"`
	Amount    decimal.Decimal   `json:"amount"`
	TaxAmount decimal.Decimal   `json:"taxAmount"`
	Quantity  int64             `json:"quantity,omitempty" validate:"gte=0"`
	UnitCost  decimal.Decimal   `json:"unitCost"`
	ItemID    string            `json:"itemId,omitempty" validate:"max=64"`
	TaxExempt bool              `json:"taxExempt,omitempty"`
}

var contextValidator = validator.New()

// Validate checks the context on its own, without looking at stock or the directory.
func (t TransactionContext) Validate() error {
	if err := contextValidator.Struct(t); err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}
	if t.Direction != t.Domain.Direction() {
		return fmt.Errorf("%w: %s postings must have payment direction %s", apperrors.ErrValidation, t.Domain, t.Domain.Direction())
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", apperrors.ErrValidation)
	}
	if t.TaxAmount.IsNegative() {
		return fmt.Errorf("%w: taxAmount must not be negative", apperrors.ErrValidation)
	}
	if t.UnitCost.IsNegative() {
		return fmt.Errorf("%w: unitCost must not be negative", apperrors.ErrValidation)
	}
	if t.IsStockReceipt() && t.UnitCost.IsPositive() && !t.UnitCost.Mul(decimal.NewFromInt(t.Quantity)).Equal(t.MainValue()) {
		return fmt.Errorf("%w: unitCost times quantity must equal the capitalized amount %s", apperrors.ErrValidation, t.MainValue())
	}
	if t.Domain == ItemSale {
		if t.Quantity <= 0 {
			return fmt.Errorf("%w: item sales need a quantity greater than zero", apperrors.ErrValidation)
		}
		if t.ItemID == "" {
			return fmt.Errorf("%w: item sales need an itemId", apperrors.ErrValidation)
		}
	}
	return nil
}

// ValidateScale rejects amounts that vanish when rounded to the currency scale.
func (t TransactionContext) ValidateScale(scale int32) error {
	if t.Amount.Round(scale).IsZero() {
		return fmt.Errorf("%w: amount %s rounds to zero at %d decimals", apperrors.ErrValidation, t.Amount, scale)
	}
	if t.TaxAmount.IsPositive() && t.TaxAmount.Round(scale).IsZero() {
		return fmt.Errorf("%w: taxAmount %s rounds to zero at %d decimals", apperrors.ErrValidation, t.TaxAmount, scale)
	}
	return nil
}

// Gross is the amount settled in cash, bank or on account.
func (t TransactionContext) Gross() decimal.Decimal {
	return t.Amount.Add(t.TaxAmount)
}

// MainValue is the amount carried by the revenue/expense leg. Without a tax
// leg the tax stays in it.
func (t TransactionContext) MainValue() decimal.Decimal {
	if t.HasTaxLeg() {
		return t.Amount
	}
	return t.Gross()
}

// IsStockReceipt reports whether the disbursement buys stock for an item.
func (t TransactionContext) IsStockReceipt() bool {
	return t.Domain == CashDisbursement && t.ItemID != "" && t.Quantity > 0
}

// MainUsage is the usage hint for the revenue/expense leg. Stock receipts
// capitalize into inventory instead of expensing.
func (t TransactionContext) MainUsage() Usage {
	if t.IsStockReceipt() {
		return UsageInventory
	}
	if t.Direction == DirectionOut {
		return UsageExpense
	}
	return UsageRevenue
}

// SettlementUsage is the usage hint for the cash/bank/receivable/payable leg.
func (t TransactionContext) SettlementUsage() Usage {
	switch t.Method {
	case MethodBank:
		return UsageBank
	case MethodCredit:
		if t.Direction == DirectionOut {
			return UsagePayable
		}
		return UsageReceivable
	default:
		return UsageCash
	}
}

// TaxUsage is the usage hint for the tax leg.
func (t TransactionContext) TaxUsage() Usage {
	if t.Direction == DirectionOut {
		return UsageInputTax
	}
	return UsageOutputTax
}

// HasTaxLeg reports whether a separate tax line is generated.
func (t TransactionContext) HasTaxLeg() bool {
	return t.TaxAmount.IsPositive() && !t.TaxExempt
}

// HasCOGSLeg reports whether cost of goods sold is recognized. A zero or
// unknown unit cost means no COGS leg, which is not an error.
func (t TransactionContext) HasCOGSLeg() bool {
	return t.Domain == ItemSale && t.Direction == DirectionIn && t.Quantity > 0 && t.UnitCost.IsPositive()
}

// COGSAmount is quantity times unit cost at full precision.
func (t TransactionContext) COGSAmount() decimal.Decimal {
	return t.UnitCost.Mul(decimal.NewFromInt(t.Quantity))
}

// StockMovement returns the inventory delta of the transaction, or nil when
// the transaction does not touch stock.
func (t TransactionContext) StockMovement() *StockMovement {
	switch {
	case t.Domain == ItemSale:
		return &StockMovement{ItemID: t.ItemID, QuantityDelta: -t.Quantity}
	case t.IsStockReceipt():
		// costed at what the inventory leg capitalizes
		unitCost := t.MainValue().Div(decimal.NewFromInt(t.Quantity))
		return &StockMovement{ItemID: t.ItemID, QuantityDelta: t.Quantity, UnitCost: unitCost}
	}
	return nil
}
