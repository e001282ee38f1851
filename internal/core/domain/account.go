package domain

import (
	"fmt"
	"strings"

	"github.com/SscSPs/coa_posting_engine/internal/apperrors"
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset            AccountType = "ASSET"
	Liability        AccountType = "LIABILITY"
	Equity           AccountType = "EQUITY"
	Revenue          AccountType = "REVENUE"
	COGS             AccountType = "COGS"
	OperatingExpense AccountType = "OPERATING_EXPENSE"
	Other            AccountType = "OTHER"
)

// IsValid reports whether t is one of the known account types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, COGS, OperatingExpense, Other:
		return true
	}
	return false
}

// DefaultNormalBalance returns the side on which balances of this type usually sit.
func (t AccountType) DefaultNormalBalance() NormalBalance {
	switch t {
	case Liability, Equity, Revenue:
		return NormalCredit
	default:
		return NormalDebit
	}
}

// NormalBalance is the side (debit or credit) that increases an account.
type NormalBalance string

const (
	NormalDebit  NormalBalance = "DEBIT"
	NormalCredit NormalBalance = "CREDIT"
)

// UsageRole tags an account with the posting role it plays, so the resolver
// can find it when neither a mapping rule nor a canonical code matches.
type UsageRole string

const (
	RoleNone              UsageRole = ""
	RoleCash              UsageRole = "CASH"
	RoleBank              UsageRole = "BANK"
	RoleReceivable        UsageRole = "RECEIVABLE"
	RoleInventory         UsageRole = "INVENTORY"
	RoleInputTax          UsageRole = "INPUT_TAX"
	RolePayable           UsageRole = "PAYABLE"
	RoleOutputTax         UsageRole = "OUTPUT_TAX"
	RoleRevenueGoods      UsageRole = "REVENUE_GOODS"
	RoleRevenueService    UsageRole = "REVENUE_SERVICE"
	RoleOtherRevenue      UsageRole = "OTHER_REVENUE"
	RoleCOGS              UsageRole = "COGS"
	RoleWarehouseMaterial UsageRole = "WAREHOUSE_MATERIAL"
	RoleOfficeSupplies    UsageRole = "OFFICE_SUPPLIES"
	RoleVehicleParts      UsageRole = "VEHICLE_PARTS"
)

// Account is a ledger account in the chart of accounts. Code is the primary key.
type Account struct {
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	AccountType   AccountType     `json:"accountType"`
	Level         int             `json:"level"`
	IsHeader      bool            `json:"isHeader"`
	NormalBalance NormalBalance   `json:"normalBalance"`
	UsageRole     UsageRole       `json:"usageRole,omitempty"`
	IsActive      bool            `json:"isActive"`
	Balance       decimal.Decimal `json:"balance"` // signed by NormalBalance
	AuditFields
}

// IsPostable reports whether journal lines may reference the account.
func (a Account) IsPostable() bool {
	return a.IsActive && !a.IsHeader
}

// Validate checks the directory invariants that do not need storage.
func (a Account) Validate() error {
	if a.Code == "" {
		return fmt.Errorf("%w: account code is required", apperrors.ErrValidation)
	}
	if a.Name == "" {
		return fmt.Errorf("%w: account %s: name is required", apperrors.ErrValidation, a.Code)
	}
	if !a.AccountType.IsValid() {
		return fmt.Errorf("%w: account %s: unknown account type %q", apperrors.ErrValidation, a.Code, a.AccountType)
	}
	if a.Level < 1 || a.Level > 4 {
		return fmt.Errorf("%w: account %s: level must be between 1 and 4", apperrors.ErrValidation, a.Code)
	}
	if a.NormalBalance != NormalDebit && a.NormalBalance != NormalCredit {
		return fmt.Errorf("%w: account %s: normal balance must be DEBIT or CREDIT", apperrors.ErrValidation, a.Code)
	}
	return nil
}

// AccountFilter narrows listAccounts.
type AccountFilter struct {
	AccountType  AccountType
	ActiveOnly   bool
	PostableOnly bool
	CodePrefix   string
	Search       string
	Limit        int
	Offset       int
}

// Matches applies the filter to a single account. Limit and Offset are ignored.
func (f AccountFilter) Matches(a Account) bool {
	if f.AccountType != "" && a.AccountType != f.AccountType {
		return false
	}
	if f.ActiveOnly && !a.IsActive {
		return false
	}
	if f.PostableOnly && !a.IsPostable() {
		return false
	}
	if f.CodePrefix != "" && !strings.HasPrefix(a.Code, f.CodePrefix) {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(a.Name), strings.ToLower(f.Search)) {
		return false
	}
	return true
}
