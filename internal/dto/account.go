package dto

import (
	"time"

	"github.com/SscSPs/coa_posting_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// UpsertAccountRequest defines the data needed to create or edit an account.
// The account code comes from the path.
type UpsertAccountRequest struct {
	Name          string               `json:"name" binding:"required,max=150"`
	AccountType   domain.AccountType   `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE COGS OPERATING_EXPENSE OTHER"`
	Level         int                  `json:"level" binding:"required,min=1,max=4"`
	IsHeader      bool                 `json:"isHeader"`
	NormalBalance domain.NormalBalance `json:"normalBalance" binding:"omitempty,oneof=DEBIT CREDIT"` // Optional, derived from the type when empty
	UsageRole     domain.UsageRole     `json:"usageRole" binding:"max=40"`
	IsActive      *bool                `json:"isActive"` // Optional, defaults to true
}

// ListAccountsParams defines the query parameters of listAccounts.
type ListAccountsParams struct {
	Type         string `form:"type" binding:"omitempty,oneof=ASSET LIABILITY EQUITY REVENUE COGS OPERATING_EXPENSE OTHER"`
	ActiveOnly   bool   `form:"activeOnly"`
	PostableOnly bool   `form:"postableOnly"`
	Prefix       string `form:"prefix"`
	Search       string `form:"search"`
	Limit        int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset       int    `form:"offset" binding:"omitempty,min=0"`
}

// ToFilter converts query parameters into a domain filter.
func (p ListAccountsParams) ToFilter() domain.AccountFilter {
	return domain.AccountFilter{
		AccountType:  domain.AccountType(p.Type),
		ActiveOnly:   p.ActiveOnly,
		PostableOnly: p.PostableOnly,
		CodePrefix:   p.Prefix,
		Search:       p.Search,
		Limit:        p.Limit,
		Offset:       p.Offset,
	}
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	Code          string               `json:"code"`
	Name          string               `json:"name"`
	AccountType   domain.AccountType   `json:"accountType"`
	Level         int                  `json:"level"`
	IsHeader      bool                 `json:"isHeader"`
	NormalBalance domain.NormalBalance `json:"normalBalance"`
	UsageRole     domain.UsageRole     `json:"usageRole,omitempty"`
	IsActive      bool                 `json:"isActive"`
	Balance       decimal.Decimal      `json:"balance"`
	LastUpdatedAt time.Time            `json:"lastUpdatedAt"`
	LastUpdatedBy string               `json:"lastUpdatedBy"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		Code:          acc.Code,
		Name:          acc.Name,
		AccountType:   acc.AccountType,
		Level:         acc.Level,
		IsHeader:      acc.IsHeader,
		NormalBalance: acc.NormalBalance,
		UsageRole:     acc.UsageRole,
		IsActive:      acc.IsActive,
		Balance:       acc.Balance,
		LastUpdatedAt: acc.LastUpdatedAt,
		LastUpdatedBy: acc.LastUpdatedBy,
	}
}

// ToAccountResponses converts a slice of domain.Account to []AccountResponse.
func ToAccountResponses(accounts []domain.Account) []AccountResponse {
	responses := make([]AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = ToAccountResponse(&accounts[i])
	}
	return responses
}
