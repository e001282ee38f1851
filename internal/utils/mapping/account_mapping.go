package mapping

import (
	"github.com/SscSPs/coa_posting_engine/internal/core/domain"
	"github.com/SscSPs/coa_posting_engine/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		Code:          d.Code,
		Name:          d.Name,
		AccountType:   string(d.AccountType),
		Level:         d.Level,
		IsHeader:      d.IsHeader,
		NormalBalance: string(d.NormalBalance),
		UsageRole:     nullString(string(d.UsageRole)),
		IsActive:      d.IsActive,
		Balance:       d.Balance,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		Code:          m.Code,
		Name:          m.Name,
		AccountType:   domain.AccountType(m.AccountType),
		Level:         m.Level,
		IsHeader:      m.IsHeader,
		NormalBalance: domain.NormalBalance(m.NormalBalance),
		UsageRole:     domain.UsageRole(m.UsageRole.String),
		IsActive:      m.IsActive,
		Balance:       m.Balance,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAccountSlice converts a slice of model Accounts to a slice of domain Accounts
func ToDomainAccountSlice(ms []models.Account) []domain.Account {
	ds := make([]domain.Account, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAccount(m)
	}
	return ds
}
