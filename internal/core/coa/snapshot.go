package coa

import (
	"sort"
	"strings"

	"github.com/SscSPs/coa_posting_engine/internal/core/domain"
)

// Snapshot is an immutable view of the account directory and the mapping
// table. Resolution over the same snapshot is deterministic.
type Snapshot struct {
	accounts []domain.Account // sorted by code
	byCode   map[string]domain.Account
	rules    map[domain.RuleKey]domain.MappingRule
}

// NewSnapshot indexes accounts and rules. The input slices are copied.
func NewSnapshot(accounts []domain.Account, rules []domain.MappingRule) *Snapshot {
	s := &Snapshot{
		accounts: make([]domain.Account, len(accounts)),
		byCode:   make(map[string]domain.Account, len(accounts)),
		rules:    make(map[domain.RuleKey]domain.MappingRule, len(rules)),
	}
	copy(s.accounts, accounts)
	sort.Slice(s.accounts, func(i, j int) bool { return s.accounts[i].Code < s.accounts[j].Code })

	for _, a := range s.accounts {
		s.byCode[a.Code] = a
	}
	for _, r := range rules {
		s.rules[r.Key()] = r
	}
	return s
}

// Account looks up an account by exact code.
func (s *Snapshot) Account(code string) (domain.Account, bool) {
	a, ok := s.byCode[code]
	return a, ok
}

// Rule looks up the mapping rule for a category and type.
func (s *Snapshot) Rule(category, typ string) (domain.MappingRule, bool) {
	r, ok := s.rules[domain.NewRuleKey(category, typ)]
	return r, ok
}

// firstPostable returns the lowest-coded postable account matching fn.
func (s *Snapshot) firstPostable(fn func(domain.Account) bool) (domain.Account, bool) {
	for _, a := range s.accounts {
		if a.IsPostable() && fn(a) {
			return a, true
		}
	}
	return domain.Account{}, false
}

func (s *Snapshot) postable(code string) (domain.Account, bool) {
	if code == "" {
		return domain.Account{}, false
	}
	a, ok := s.byCode[code]
	if !ok || !a.IsPostable() {
		return domain.Account{}, false
	}
	return a, true
}

func (s *Snapshot) withPrefix(prefix string) (domain.Account, bool) {
	return s.firstPostable(func(a domain.Account) bool {
		return strings.HasPrefix(a.Code, prefix)
	})
}

func (s *Snapshot) withRole(role domain.UsageRole) (domain.Account, bool) {
	if role == domain.RoleNone {
		return domain.Account{}, false
	}
	return s.firstPostable(func(a domain.Account) bool {
		return a.UsageRole == role
	})
}
