package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/coa_posting_engine/internal/apperrors"
	"github.com/SscSPs/coa_posting_engine/internal/core/domain"
	portssvc "github.com/SscSPs/coa_posting_engine/internal/core/ports/services"
	"github.com/SscSPs/coa_posting_engine/internal/core/services"
	"github.com/SscSPs/coa_posting_engine/internal/dto"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MappingRuleServiceTestSuite struct {
	suite.Suite
	mockRules    *MockMappingRuleRepository
	mockAccounts *MockAccountRepository
	mockResolver *MockResolverService
	service      portssvc.MappingRuleSvcFacade
	revenue      domain.Account
	header       domain.Account
}

func (suite *MappingRuleServiceTestSuite) SetupTest() {
	suite.mockRules = new(MockMappingRuleRepository)
	suite.mockAccounts = new(MockAccountRepository)
	suite.mockResolver = new(MockResolverService)
	suite.service = services.NewMappingRuleService(suite.mockRules, suite.mockAccounts, suite.mockResolver)

	suite.revenue = domain.Account{Code: "4-1110", Name: "Penjualan Snack", AccountType: domain.Revenue, Level: 4, NormalBalance: domain.NormalCredit, IsActive: true}
	suite.header = domain.Account{Code: "4-1000", Name: "Pendapatan Usaha", AccountType: domain.Revenue, Level: 2, IsHeader: true, NormalBalance: domain.NormalCredit, IsActive: true}
}

func (suite *MappingRuleServiceTestSuite) TestUpsertMappingRule_Success() {
	ctx := context.Background()
	req := dto.UpsertMappingRuleRequest{Category: " Minimarket ", Type: "Snack", RevenueCode: "4-1110"}

	suite.mockAccounts.On("FindAccountsByCodes", ctx, []string{"4-1110"}).Return(map[string]domain.Account{"4-1110": suite.revenue}, nil).Once()
	suite.mockRules.On("FindMappingRule", ctx, "Minimarket", "Snack").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRules.On("UpsertMappingRule", ctx, mock.MatchedBy(func(r domain.MappingRule) bool {
		return r.Category == "Minimarket" && r.IsActive && r.CreatedBy == "operator-1"
	})).Return(func(ctx context.Context, r domain.MappingRule) *domain.MappingRule { return &r }, nil).Once()
	suite.mockResolver.On("Invalidate").Return().Once()

	rule, err := suite.service.UpsertMappingRule(ctx, req, "operator-1")

	suite.Require().NoError(err)
	suite.Equal("4-1110", rule.RevenueCode)
	suite.mockRules.AssertExpectations(suite.T())
	suite.mockResolver.AssertExpectations(suite.T())
}

func (suite *MappingRuleServiceTestSuite) TestUpsertMappingRule_UnknownAccount() {
	ctx := context.Background()
	suite.mockAccounts.On("FindAccountsByCodes", ctx, []string{"4-7777"}).Return(map[string]domain.Account{}, nil).Once()

	_, err := suite.service.UpsertMappingRule(ctx, dto.UpsertMappingRuleRequest{Category: "Retail", RevenueCode: "4-7777"}, "operator-1")

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRules.AssertNotCalled(suite.T(), "UpsertMappingRule", mock.Anything, mock.Anything)
}

func (suite *MappingRuleServiceTestSuite) TestUpsertMappingRule_HeaderNotPostable() {
	ctx := context.Background()
	suite.mockAccounts.On("FindAccountsByCodes", ctx, []string{"4-1000"}).Return(map[string]domain.Account{"4-1000": suite.header}, nil).Once()

	_, err := suite.service.UpsertMappingRule(ctx, dto.UpsertMappingRuleRequest{Category: "Retail", RevenueCode: "4-1000"}, "operator-1")

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "not a postable account")
}

func (suite *MappingRuleServiceTestSuite) TestUpsertMappingRule_SoftDeleteAllowsRetiredAccount() {
	ctx := context.Background()
	inactive := false
	retired := suite.revenue
	retired.IsActive = false

	suite.mockAccounts.On("FindAccountsByCodes", ctx, []string{"4-1110"}).Return(map[string]domain.Account{"4-1110": retired}, nil).Once()
	suite.mockRules.On("FindMappingRule", ctx, "Minimarket", "Snack").Return(&domain.MappingRule{Category: "Minimarket", Type: "Snack", RevenueCode: "4-1110", IsActive: true}, nil).Once()
	suite.mockRules.On("UpsertMappingRule", ctx, mock.AnythingOfType("domain.MappingRule")).
		Return(func(ctx context.Context, r domain.MappingRule) *domain.MappingRule { return &r }, nil).Once()
	suite.mockResolver.On("Invalidate").Return().Once()

	rule, err := suite.service.UpsertMappingRule(ctx, dto.UpsertMappingRuleRequest{Category: "Minimarket", Type: "Snack", RevenueCode: "4-1110", IsActive: &inactive}, "operator-1")

	suite.Require().NoError(err)
	suite.False(rule.IsActive)
}

func (suite *MappingRuleServiceTestSuite) TestUpsertMappingRule_ActiveRuleNeedsCode() {
	_, err := suite.service.UpsertMappingRule(context.Background(), dto.UpsertMappingRuleRequest{Category: "Retail"}, "operator-1")
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func TestMappingRuleService(t *testing.T) {
	suite.Run(t, new(MappingRuleServiceTestSuite))
}
