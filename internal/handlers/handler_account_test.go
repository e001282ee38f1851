package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/coa_posting_engine/internal/apperrors"
	"github.com/SscSPs/coa_posting_engine/internal/core/coa"
	"github.com/SscSPs/coa_posting_engine/internal/core/domain"
	portssvc "github.com/SscSPs/coa_posting_engine/internal/core/ports/services"
	"github.com/SscSPs/coa_posting_engine/internal/dto"
	"github.com/SscSPs/coa_posting_engine/internal/handlers"
	"github.com/SscSPs/coa_posting_engine/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}
func (m *MockAccountService) UpsertAccount(ctx context.Context, code string, req dto.UpsertAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, code, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) GetTrialBalance(ctx context.Context) (*domain.TrialBalance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrialBalance), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Mock ResolverService ---
type MockResolverService struct {
	mock.Mock
}

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

var _ portssvc.ResolverSvc = (*MockResolverService)(nil)

// generateTestToken creates a signed JWT for testing.
func generateTestToken(t *testing.T, secret, userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "coa-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("Failed to sign test token: %v", err)
	}
	return signed
}

// --- Test Suite ---
type AccountHandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockAccountService *MockAccountService
	mockResolver       *MockResolverService
	jwtSecret          string
}

func (suite *AccountHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.mockAccountService = new(MockAccountService)
	suite.mockResolver = new(MockResolverService)

	v1 := suite.router.Group("/api/v1", middleware.AuthMiddleware(suite.jwtSecret))
	handlers.RegisterAccountRoutes(v1, suite.mockAccountService)
	handlers.RegisterResolverRoutes(v1, suite.mockResolver)
}

func (suite *AccountHandlerTestSuite) request(method, url string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Authorization", "Bearer "+generateTestToken(suite.T(), suite.jwtSecret, "operator-1"))
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *AccountHandlerTestSuite) TestListAccounts_PassesFilter() {
	accounts := []domain.Account{
		{Code: "1-1100", Name: "Kas", AccountType: domain.Asset, Level: 3, IsActive: true, NormalBalance: domain.NormalDebit},
	}
	suite.mockAccountService.On("ListAccounts", mock.Anything, mock.MatchedBy(func(f domain.AccountFilter) bool {
		return f.AccountType == domain.Asset && f.PostableOnly && f.CodePrefix == "1-1" && f.Limit == 10
	})).Return(accounts, nil).Once()

	w := suite.request(http.MethodGet, "/api/v1/accounts?type=ASSET&postableOnly=true&prefix=1-1&limit=10", nil)

	suite.Equal(http.StatusOK, w.Code)
	var body []dto.AccountResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Require().Len(body, 1)
	suite.Equal("1-1100", body[0].Code)
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestListAccounts_InvalidType() {
	w := suite.request(http.MethodGet, "/api/v1/accounts?type=PLANET", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockAccountService.AssertNotCalled(suite.T(), "ListAccounts", mock.Anything, mock.Anything)
}

func (suite *AccountHandlerTestSuite) TestGetAccount_NotFound() {
	suite.mockAccountService.On("GetAccountByCode", mock.Anything, "9-9999").
		Return(nil, fmt.Errorf("%w: account 9-9999", apperrors.ErrNotFound)).Once()

	w := suite.request(http.MethodGet, "/api/v1/accounts/9-9999", nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *AccountHandlerTestSuite) TestUpsertAccount_UsesPathCodeAndOperator() {
	req := dto.UpsertAccountRequest{Name: "Kas Kecil", AccountType: domain.Asset, Level: 3}
	saved := &domain.Account{Code: "1-1110", Name: "Kas Kecil", AccountType: domain.Asset, Level: 3, IsActive: true, NormalBalance: domain.NormalDebit}
	suite.mockAccountService.On("UpsertAccount", mock.Anything, "1-1110", req, "operator-1").Return(saved, nil).Once()

	w := suite.request(http.MethodPut, "/api/v1/accounts/1-1110", req)

	suite.Equal(http.StatusOK, w.Code)
	var body dto.AccountResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal("Kas Kecil", body.Name)
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestUpsertAccount_HeaderConversionConflict() {
	req := dto.UpsertAccountRequest{Name: "Kas", AccountType: domain.Asset, Level: 3, IsHeader: true}
	suite.mockAccountService.On("UpsertAccount", mock.Anything, "1-1100", req, "operator-1").
		Return(nil, fmt.Errorf("%w: account 1-1100 has journal lines", apperrors.ErrConflict)).Once()

	w := suite.request(http.MethodPut, "/api/v1/accounts/1-1100", req)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *AccountHandlerTestSuite) TestGetTrialBalance() {
	tb := &domain.TrialBalance{
		Rows: []domain.TrialBalanceRow{
			{AccountCode: "1-1100", Debit: decimal.NewFromInt(1000), Credit: decimal.Zero},
			{AccountCode: "4-1100", Debit: decimal.Zero, Credit: decimal.NewFromInt(1000)},
		},
		TotalDebit:  decimal.NewFromInt(1000),
		TotalCredit: decimal.NewFromInt(1000),
	}
	suite.mockAccountService.On("GetTrialBalance", mock.Anything).Return(tb, nil).Once()

	w := suite.request(http.MethodGet, "/api/v1/accounts/trial-balance", nil)

	suite.Equal(http.StatusOK, w.Code)
	var body map[string]any
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal(true, body["balanced"])
}

func (suite *AccountHandlerTestSuite) TestResolveAccount_DefaultsAndUnresolved() {
	suite.mockResolver.On("ResolveAccount", mock.Anything, domain.ResolveRequest{
		Category: "Katering", Direction: domain.DirectionIn, Usage: domain.UsageRevenue,
	}).Return(nil, &apperrors.UnresolvedAccountError{Category: "Katering", Usage: "REVENUE"}).Once()

	w := suite.request(http.MethodGet, "/api/v1/coa/resolve?category=Katering", nil)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	var body map[string]any
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal("UNRESOLVED_ACCOUNT", body["code"])
	suite.Equal("Katering", body["category"])
}

func (suite *AccountHandlerTestSuite) TestResolveAccount_StorageFailureIsRetryable() {
	suite.mockResolver.On("ResolveAccount", mock.Anything, mock.Anything).
		Return(nil, apperrors.NewStorageError("failed to load accounts", fmt.Errorf("connection reset"))).Once()

	w := suite.request(http.MethodGet, "/api/v1/coa/resolve?category=Minimarket&direction=IN", nil)

	suite.Equal(http.StatusServiceUnavailable, w.Code)
	var body map[string]any
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal(true, body["retryable"])
}

func (suite *AccountHandlerTestSuite) TestCanonicalTable() {
	w := suite.request(http.MethodGet, "/api/v1/coa/canonical-table", nil)

	suite.Equal(http.StatusOK, w.Code)
	var body coa.Table
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal(coa.TableVersion, body.Version)
	suite.NotEmpty(body.Categories)
}

// --- Run Test Suite ---
func TestAccountHandler(t *testing.T) {
	suite.Run(t, new(AccountHandlerTestSuite))
}
