package coa

import (
	"github.com/SscSPs/coa_posting_engine/internal/apperrors"
	"github.com/SscSPs/coa_posting_engine/internal/core/domain"
)

// Cascade step names, reported on every Resolution.
const (
	StepMappingRule   = "mapping_rule"
	StepCanonicalCode = "canonical_code"
	StepCodePrefix    = "code_prefix"
	StepUsageRole     = "usage_role"
)

// MatchFunc is one resolution strategy. It must be pure.
type MatchFunc func(req domain.ResolveRequest, snap *Snapshot) (domain.Account, bool)

// Strategy is a named step of the fallback cascade.
type Strategy struct {
	Name  string
	Match MatchFunc
}

// DefaultStrategies is the cascade in evaluation order.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: StepMappingRule, Match: MatchMappingRule},
		{Name: StepCanonicalCode, Match: MatchCanonicalCode},
		{Name: StepCodePrefix, Match: MatchCodePrefix},
		{Name: StepUsageRole, Match: MatchUsageRole},
	}
}

// Resolver evaluates strategies in a fixed order until one matches.
type Resolver struct {
	strategies []Strategy
}

// NewResolver builds a resolver. Without arguments it uses DefaultStrategies.
func NewResolver(strategies ...Strategy) *Resolver {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Resolver{strategies: strategies}
}

// Resolve returns the first account any strategy selects. When none does it
// fails with an *apperrors.UnresolvedAccountError, never with an empty account.
func (r *Resolver) Resolve(req domain.ResolveRequest, snap *Snapshot) (domain.Resolution, error) {
	for _, st := range r.strategies {
		if acc, ok := st.Match(req, snap); ok {
			return domain.Resolution{
				Usage:       req.Usage,
				AccountCode: acc.Code,
				AccountName: acc.Name,
				Step:        st.Name,
			}, nil
		}
	}
	return domain.Resolution{}, &apperrors.UnresolvedAccountError{
		Category: req.Category,
		Type:     req.Type,
		Usage:    string(req.Usage),
	}
}

// MatchMappingRule selects the sub-account of an active (category, type) rule.
func MatchMappingRule(req domain.ResolveRequest, snap *Snapshot) (domain.Account, bool) {
	if req.Category == "" {
		return domain.Account{}, false
	}
	rule, ok := snap.Rule(req.Category, req.Type)
	if !ok || !rule.IsActive {
		return domain.Account{}, false
	}
	return snap.postable(RuleCode(rule, req))
}

// RuleCode picks which code of a rule serves the request's usage. Inventory
// categories prefer the asset code for revenue and expense legs.
func RuleCode(rule domain.MappingRule, req domain.ResolveRequest) string {
	switch req.Usage {
	case domain.UsageRevenue, domain.UsageExpense:
		if ClassForCategory(rule.Category).Inventory && rule.AssetCode != "" {
			return rule.AssetCode
		}
		if req.Usage == domain.UsageRevenue {
			return rule.RevenueCode
		}
		if rule.COGSCode != "" {
			return rule.COGSCode
		}
		return rule.AssetCode
	case domain.UsageCOGS:
		return rule.COGSCode
	case domain.UsageInventory:
		return rule.AssetCode
	}
	return ""
}

// MatchCanonicalCode looks for the class's exact code in the directory.
func MatchCanonicalCode(req domain.ResolveRequest, snap *Snapshot) (domain.Account, bool) {
	return snap.postable(ClassFor(req).Code)
}

// MatchCodePrefix takes the lowest postable code under the class prefix.
func MatchCodePrefix(req domain.ResolveRequest, snap *Snapshot) (domain.Account, bool) {
	return snap.withPrefix(ClassFor(req).Prefix)
}

// MatchUsageRole takes the lowest postable code declaring the class usage role.
func MatchUsageRole(req domain.ResolveRequest, snap *Snapshot) (domain.Account, bool) {
	return snap.withRole(ClassFor(req).UsageRole)
}
