package domain

// MappingRule links a business category/type to specific ledger account codes.
// Empty codes mean the rule does not cover that usage.
type MappingRule struct {
	Category    string `json:"category"`
	Type        string `json:"type"`
	RevenueCode string `json:"revenueCode,omitempty"`
	COGSCode    string `json:"cogsCode,omitempty"`
	AssetCode   string `json:"assetCode,omitempty"`
	IsActive    bool   `json:"isActive"`
	AuditFields
}

// Key returns the normalized (category, type) key the rule is stored under.
func (r MappingRule) Key() RuleKey {
	return NewRuleKey(r.Category, r.Type)
}

// ReferencedCodes lists the non-empty account codes of the rule.
func (r MappingRule) ReferencedCodes() []string {
	codes := make([]string, 0, 3)
	for _, c := range []string{r.RevenueCode, r.COGSCode, r.AssetCode} {
		if c != "" {
			codes = append(codes, c)
		}
	}
	return codes
}

// RuleKey is the unique lookup key of a mapping rule.
type RuleKey struct {
	Category string
	Type     string
}

// NewRuleKey builds a RuleKey, folding case and whitespace.
func NewRuleKey(category, typ string) RuleKey {
	return RuleKey{Category: NormalizeKey(category), Type: NormalizeKey(typ)}
}
