package repositories

import (
	"context"

	"github.com/SscSPs/coa_posting_engine/internal/core/domain"
)

// MappingRuleReader defines read operations for the mapping table
type MappingRuleReader interface {
	// FindMappingRule retrieves the rule stored under the normalized (category, type) key.
	FindMappingRule(ctx context.Context, category, typ string) (*domain.MappingRule, error)

	// ListMappingRules retrieves rules ordered by category and type.
	ListMappingRules(ctx context.Context, includeInactive bool) ([]domain.MappingRule, error)
}

// MappingRuleWriter defines write operations for the mapping table
type MappingRuleWriter interface {
	// UpsertMappingRule inserts or replaces the rule with the same key.
	UpsertMappingRule(ctx context.Context, rule domain.MappingRule) (*domain.MappingRule, error)
}

// MappingRuleRepositoryFacade combines all mapping-related repository interfaces
type MappingRuleRepositoryFacade interface {
	MappingRuleReader
	MappingRuleWriter
}
