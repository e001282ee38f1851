package mapping

import (
	"github.com/SscSPs/coa_posting_engine/internal/core/domain"
	"github.com/SscSPs/coa_posting_engine/internal/models"
)

// ToModelMappingRule converts a domain MappingRule to a model MappingRule, filling the key columns.
func ToModelMappingRule(d domain.MappingRule) models.MappingRule {
	key := d.Key()
	return models.MappingRule{
		CategoryKey: key.Category,
		TypeKey:     key.Type,
		Category:    d.Category,
		Type:        d.Type,
		RevenueCode: nullString(d.RevenueCode),
		COGSCode:    nullString(d.COGSCode),
		AssetCode:   nullString(d.AssetCode),
		IsActive:    d.IsActive,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainMappingRule converts a model MappingRule to a domain MappingRule
func ToDomainMappingRule(m models.MappingRule) domain.MappingRule {
	return domain.MappingRule{
		Category:    m.Category,
		Type:        m.Type,
		RevenueCode: m.RevenueCode.String,
		COGSCode:    m.COGSCode.String,
		AssetCode:   m.AssetCode.String,
		IsActive:    m.IsActive,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}
