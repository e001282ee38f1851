// Package memory is a process-local implementation of every repository port.
// It backs STORAGE_DRIVER=memory and the service tests. A single mutex
// serializes writes, which gives CommitPosting the same all-or-nothing and
// check-then-deduct guarantees the postgres repositories get from FOR UPDATE.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/SscSPs/coa_posting_engine/internal/apperrors"
	"github.com/SscSPs/coa_posting_engine/internal/core/coa"
	"github.com/SscSPs/coa_posting_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/coa_posting_engine/internal/core/ports/repositories"
	"github.com/SscSPs/coa_posting_engine/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

// Store holds the account directory, mapping table, postings and stock in maps.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
	rules    map[domain.RuleKey]domain.MappingRule
	postings map[string]domain.PostingRecord
	byKey    map[string]string // idempotency key -> transaction id
	lines    map[string][]domain.JournalLine
	stock    map[string]domain.StockLevel
}

var (
	_ portsrepo.AccountRepositoryFacade     = (*Store)(nil)
	_ portsrepo.MappingRuleRepositoryFacade = (*Store)(nil)
	_ portsrepo.PostingRepositoryFacade     = (*Store)(nil)
)

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[string]domain.Account),
		rules:    make(map[domain.RuleKey]domain.MappingRule),
		postings: make(map[string]domain.PostingRecord),
		byKey:    make(map[string]string),
		lines:    make(map[string][]domain.JournalLine),
		stock:    make(map[string]domain.StockLevel),
	}
}

// NewSeededStore creates a store holding the default chart of accounts.
func NewSeededStore() *Store {
	s := NewStore()
	for _, acc := range coa.DefaultAccounts() {
		acc.CreatedBy, acc.LastUpdatedBy = "system", "system"
		acc.Balance = decimal.Zero
		s.accounts[acc.Code] = acc
	}
	return s
}

// NewRepositoryProvider exposes one store through every repository port.
func NewRepositoryProvider(s *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:     s,
		MappingRuleRepo: s,
		PostingRepo:     s,
	}
}

// SetStockLevel overwrites the level of one item. It exists for opening balances and tests.
func (s *Store) SetStockLevel(level domain.StockLevel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stock[level.ItemID] = level
}

func (s *Store) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[code]
	if !ok {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, code)
	}
	return &acc, nil
}

func (s *Store) FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	found := make(map[string]domain.Account, len(codes))
	for _, code := range codes {
		if acc, ok := s.accounts[code]; ok {
			found[code] = acc
		}
	}
	return found, nil
}

func (s *Store) ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accounts := make([]domain.Account, 0, len(s.accounts))
	for _, acc := range s.accounts {
		if filter.Matches(acc) {
			accounts = append(accounts, acc)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Code < accounts[j].Code })

	if filter.Offset > 0 {
		if filter.Offset >= len(accounts) {
			return []domain.Account{}, nil
		}
		accounts = accounts[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(accounts) {
		accounts = accounts[:filter.Limit]
	}
	return accounts, nil
}

func (s *Store) AccountHasJournalLines(ctx context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, lines := range s.lines {
		for _, l := range lines {
			if l.AccountCode == code {
				return true, nil
			}
		}
	}
	return false, nil
}

func (s *Store) UpsertAccount(ctx context.Context, account domain.Account) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account.Balance = decimal.Zero
	if existing, ok := s.accounts[account.Code]; ok {
		account.Balance = existing.Balance
		account.CreatedAt = existing.CreatedAt
		account.CreatedBy = existing.CreatedBy
	}
	s.accounts[account.Code] = account
	return &account, nil
}

func (s *Store) FindMappingRule(ctx context.Context, category, typ string) (*domain.MappingRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rule, ok := s.rules[domain.NewRuleKey(category, typ)]
	if !ok {
		return nil, fmt.Errorf("%w: mapping rule %s/%s", apperrors.ErrNotFound, category, typ)
	}
	return &rule, nil
}

func (s *Store) ListMappingRules(ctx context.Context, includeInactive bool) ([]domain.MappingRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rules := make([]domain.MappingRule, 0, len(s.rules))
	for _, r := range s.rules {
		if r.IsActive || includeInactive {
			rules = append(rules, r)
		}
	}
	sort.Slice(rules, func(i, j int) bool {
		ki, kj := rules[i].Key(), rules[j].Key()
		if ki.Category != kj.Category {
			return ki.Category < kj.Category
		}
		return ki.Type < kj.Type
	})
	return rules, nil
}

func (s *Store) UpsertMappingRule(ctx context.Context, rule domain.MappingRule) (*domain.MappingRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.rules[rule.Key()]; ok {
		rule.CreatedAt = existing.CreatedAt
		rule.CreatedBy = existing.CreatedBy
	}
	s.rules[rule.Key()] = rule
	return &rule, nil
}

func (s *Store) FindPostingByID(ctx context.Context, transactionID string) (*domain.PostingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.postings[transactionID]
	if !ok {
		return nil, fmt.Errorf("%w: posting %s", apperrors.ErrNotFound, transactionID)
	}
	return &p, nil
}

func (s *Store) FindPostingByIdempotencyKey(ctx context.Context, key string) (*domain.PostingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byKey[key]
	if !ok {
		return nil, fmt.Errorf("%w: idempotency key %s", apperrors.ErrNotFound, key)
	}
	p := s.postings[id]
	return &p, nil
}

func (s *Store) FindJournalLines(ctx context.Context, transactionID string) ([]domain.JournalLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lines := s.lines[transactionID]
	out := make([]domain.JournalLine, len(lines))
	copy(out, lines)
	return out, nil
}

// newerThan orders postings newest first, the same way the postgres cursor does.
func newerThan(a, b domain.PostingRecord) bool {
	if !a.PostingDate.Equal(b.PostingDate) {
		return a.PostingDate.After(b.PostingDate)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return strings.Compare(a.TransactionID, b.TransactionID) > 0
}

func (s *Store) ListPostings(ctx context.Context, limit int, nextToken *string) ([]domain.PostingRecord, *string, error) {
	if limit <= 0 {
		return nil, nil, fmt.Errorf("%w: limit must be positive", apperrors.ErrValidation)
	}
	var cursor *domain.PostingRecord
	if nextToken != nil && *nextToken != "" {
		postingDate, createdAt, id, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		cursor = &domain.PostingRecord{TransactionID: id, PostingDate: postingDate}
		cursor.CreatedAt = createdAt
	}

	s.mu.RLock()
	all := make([]domain.PostingRecord, 0, len(s.postings))
	for _, p := range s.postings {
		if cursor == nil || newerThan(*cursor, p) {
			all = append(all, p)
		}
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return newerThan(all[i], all[j]) })

	var next *string
	if len(all) > limit {
		all = all[:limit]
		last := all[limit-1]
		token := pagination.EncodeToken(last.PostingDate, last.CreatedAt, last.TransactionID)
		next = &token
	}
	return all, next, nil
}

func (s *Store) FindStockLevel(ctx context.Context, itemID string) (*domain.StockLevel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	level, ok := s.stock[itemID]
	if !ok {
		return nil, fmt.Errorf("%w: stock for item %s", apperrors.ErrNotFound, itemID)
	}
	return &level, nil
}

// CommitPosting checks everything first and only then writes, so a failed
// commit leaves the store untouched.
func (s *Store) CommitPosting(ctx context.Context, bundle domain.PostingBundle) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewStorageError("posting was not committed", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	record := bundle.Record
	if _, used := s.byKey[record.IdempotencyKey]; used {
		return fmt.Errorf("%w: idempotency key %s", apperrors.ErrDuplicate, record.IdempotencyKey)
	}
	if _, used := s.postings[record.TransactionID]; used {
		return fmt.Errorf("%w: posting %s", apperrors.ErrDuplicate, record.TransactionID)
	}

	var original domain.PostingRecord
	if record.ReversalOf != nil {
		o, ok := s.postings[*record.ReversalOf]
		if !ok {
			return fmt.Errorf("%w: posting %s", apperrors.ErrNotFound, *record.ReversalOf)
		}
		if o.Status != domain.Posted {
			return fmt.Errorf("%w: posting %s is already %s", apperrors.ErrConflict, o.TransactionID, o.Status)
		}
		original = o
	}

	var level domain.StockLevel
	if bundle.Stock != nil {
		current := s.stock[bundle.Stock.ItemID]
		next, err := current.Apply(*bundle.Stock, record.CreatedAt)
		if err != nil {
			return err
		}
		level = next
	}

	balances := make(map[string]domain.Account, len(bundle.BalanceChanges))
	for code, change := range bundle.BalanceChanges {
		acc, ok := s.accounts[code]
		if !ok {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, code)
		}
		acc.Balance = acc.Balance.Add(change)
		balances[code] = acc
	}

	// all checks passed
	s.postings[record.TransactionID] = record
	s.byKey[record.IdempotencyKey] = record.TransactionID
	lines := make([]domain.JournalLine, len(bundle.Entry.Lines))
	copy(lines, bundle.Entry.Lines)
	s.lines[record.TransactionID] = lines
	if bundle.Stock != nil {
		s.stock[level.ItemID] = level
	}
	for code, acc := range balances {
		s.accounts[code] = acc
	}
	if record.ReversalOf != nil {
		reversedBy := record.TransactionID
		original.Status = domain.Reversed
		original.ReversedBy = &reversedBy
		original.LastUpdatedAt = record.CreatedAt
		original.LastUpdatedBy = record.CreatedBy
		s.postings[original.TransactionID] = original
	}
	return nil
}
