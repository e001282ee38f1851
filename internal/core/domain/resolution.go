package domain

// Usage is the hint that tells the resolver which leg an account is for.
type Usage string

const (
	UsageRevenue    Usage = "REVENUE"
	UsageExpense    Usage = "EXPENSE"
	UsageCOGS       Usage = "COGS"
	UsageInventory  Usage = "INVENTORY"
	UsageCash       Usage = "CASH"
	UsageBank       Usage = "BANK"
	UsageReceivable Usage = "RECEIVABLE"
	UsagePayable    Usage = "PAYABLE"
	UsageOutputTax  Usage = "OUTPUT_TAX"
	UsageInputTax   Usage = "INPUT_TAX"
)

// IsValid reports whether u is a known usage.
func (u Usage) IsValid() bool {
	switch u {
	case UsageRevenue, UsageExpense, UsageCOGS, UsageInventory, UsageCash, UsageBank,
		UsageReceivable, UsagePayable, UsageOutputTax, UsageInputTax:
		return true
	}
	return false
}

// ResolveRequest is the input of one account resolution.
type ResolveRequest struct {
	Category  string           `json:"category"`
	Type      string           `json:"type"`
	Direction PaymentDirection `json:"direction"`
	Usage     Usage            `json:"usage"`
}

// Resolution is the account chosen for a request and the cascade step that chose it.
type Resolution struct {
	Usage       Usage  `json:"usage"`
	AccountCode string `json:"accountCode"`
	AccountName string `json:"accountName"`
	Step        string `json:"step"`
}
