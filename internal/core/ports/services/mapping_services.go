package services

import (
	"context"

	"github.com/SscSPs/coa_posting_engine/internal/core/domain"
	"github.com/SscSPs/coa_posting_engine/internal/dto"
)

// MappingRuleReaderSvc defines read operations for the mapping table
type MappingRuleReaderSvc interface {
	ListMappingRules(ctx context.Context, includeInactive bool) ([]domain.MappingRule, error)
}

// MappingRuleWriterSvc defines write operations for the mapping table
type MappingRuleWriterSvc interface {
	// UpsertMappingRule stores a rule after checking every code it names is a postable account.
	UpsertMappingRule(ctx context.Context, req dto.UpsertMappingRuleRequest, userID string) (*domain.MappingRule, error)
}

// MappingRuleSvcFacade combines all mapping-related service interfaces
type MappingRuleSvcFacade interface {
	MappingRuleReaderSvc
	MappingRuleWriterSvc
}
