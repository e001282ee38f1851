package services_test

import (
	"context"

	"github.com/SscSPs/coa_posting_engine/internal/core/coa"
	"github.com/SscSPs/coa_posting_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/coa_posting_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/coa_posting_engine/internal/core/ports/services"
	"github.com/stretchr/testify/mock"
)

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) AccountHasJournalLines(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) UpsertAccount(ctx context.Context, account domain.Account) (*domain.Account, error) {
	args := m.Called(ctx, account)
	// echo the saved value back when the test returns a function
	if fn, ok := args.Get(0).(func(context.Context, domain.Account) *domain.Account); ok {
		return fn(ctx, account), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

// --- Mock MappingRuleRepository ---
type MockMappingRuleRepository struct {
	mock.Mock
}

var _ portsrepo.MappingRuleRepositoryFacade = (*MockMappingRuleRepository)(nil)

func (m *MockMappingRuleRepository) FindMappingRule(ctx context.Context, category, typ string) (*domain.MappingRule, error) {
	args := m.Called(ctx, category, typ)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MappingRule), args.Error(1)
}

func (m *MockMappingRuleRepository) ListMappingRules(ctx context.Context, includeInactive bool) ([]domain.MappingRule, error) {
	args := m.Called(ctx, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MappingRule), args.Error(1)
}

func (m *MockMappingRuleRepository) UpsertMappingRule(ctx context.Context, rule domain.MappingRule) (*domain.MappingRule, error) {
	args := m.Called(ctx, rule)
	if fn, ok := args.Get(0).(func(context.Context, domain.MappingRule) *domain.MappingRule); ok {
		return fn(ctx, rule), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MappingRule), args.Error(1)
}

// --- Mock PostingRepository ---
type MockPostingRepository struct {
	mock.Mock
}

var _ portsrepo.PostingRepositoryFacade = (*MockPostingRepository)(nil)

func (m *MockPostingRepository) FindPostingByID(ctx context.Context, transactionID string) (*domain.PostingRecord, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostingRecord), args.Error(1)
}

func (m *MockPostingRepository) FindPostingByIdempotencyKey(ctx context.Context, key string) (*domain.PostingRecord, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostingRecord), args.Error(1)
}

func (m *MockPostingRepository) FindJournalLines(ctx context.Context, transactionID string) ([]domain.JournalLine, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalLine), args.Error(1)
}

func (m *MockPostingRepository) ListPostings(ctx context.Context, limit int, nextToken *string) ([]domain.PostingRecord, *string, error) {
	args := m.Called(ctx, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.PostingRecord), returnedNextToken, args.Error(2)
}

func (m *MockPostingRepository) CommitPosting(ctx context.Context, bundle domain.PostingBundle) error {
	args := m.Called(ctx, bundle)
	return args.Error(0)
}

func (m *MockPostingRepository) FindStockLevel(ctx context.Context, itemID string) (*domain.StockLevel, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StockLevel), args.Error(1)
}

// --- Mock ResolverService ---
type MockResolverService struct {
	mock.Mock
}

var _ portssvc.ResolverSvc = (*MockResolverService)(nil)

func (m *MockResolverService) ResolveAccount(ctx context.Context, req domain.ResolveRequest) (*domain.Resolution, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Resolution), args.Error(1)
}

func (m *MockResolverService) Snapshot(ctx context.Context) (*coa.Snapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*coa.Snapshot), args.Error(1)
}

func (m *MockResolverService) CanonicalTable() coa.Table {
	return coa.CanonicalTable()
}

func (m *MockResolverService) Invalidate() {
	m.Called()
}
