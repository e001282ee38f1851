package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/coa_posting_engine/internal/apperrors"
	"github.com/SscSPs/coa_posting_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/coa_posting_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/coa_posting_engine/internal/core/ports/services"
	"github.com/SscSPs/coa_posting_engine/internal/dto"
	"github.com/SscSPs/coa_posting_engine/internal/utils/accounting"
)

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
	resolver    portssvc.ResolverSvc
	now         func() time.Time
}

// AccountServiceOption is a functional option for configuring the account service
type AccountServiceOption func(*accountService)

// WithAccountClock overrides the time source used for audit fields.
func WithAccountClock(now func() time.Time) AccountServiceOption {
	return func(s *accountService) {
		s.now = now
	}
}

// NewAccountService creates a new account service. Every write purges the resolver's reference cache.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, resolver portssvc.ResolverSvc, options ...AccountServiceOption) portssvc.AccountSvcFacade {
	svc := &accountService{
		accountRepo: accountRepo,
		resolver:    resolver,
		now:         time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by code in repository", slog.String("account_code", code))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	if filter.AccountType != "" && !filter.AccountType.IsValid() {
		return nil, fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, filter.AccountType)
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts from repository")
		return nil, err
	}
	return accounts, nil
}

func (s *accountService) UpsertAccount(ctx context.Context, code string, req dto.UpsertAccountRequest, userID string) (*domain.Account, error) {
	now := s.now().UTC()

	account := domain.Account{
		Code:          code,
		Name:          req.Name,
		AccountType:   req.AccountType,
		Level:         req.Level,
		IsHeader:      req.IsHeader,
		NormalBalance: req.NormalBalance,
		UsageRole:     req.UsageRole,
		IsActive:      true,
		AuditFields:   s.auditFields(userID, now),
	}
	if account.NormalBalance == "" {
		account.NormalBalance = account.AccountType.DefaultNormalBalance()
	}
	if req.IsActive != nil {
		account.IsActive = *req.IsActive
	}
	if err := account.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.accountRepo.FindAccountByCode(ctx, code)
	switch {
	case err == nil:
		account.CreatedAt = existing.CreatedAt
		account.CreatedBy = existing.CreatedBy
		if change := postedChange(existing, &account); change != "" {
			used, err := s.accountRepo.AccountHasJournalLines(ctx, code)
			if err != nil {
				s.LogError(ctx, err, "Failed to check journal lines for account", slog.String("account_code", code))
				return nil, err
			}
			if used {
				return nil, fmt.Errorf("%w: account %s has journal lines, %s", apperrors.ErrConflict, code, change)
			}
		}
	case errors.Is(err, apperrors.ErrNotFound):
		// new account
	default:
		s.LogError(ctx, err, "Failed to load account before upsert", slog.String("account_code", code))
		return nil, err
	}

	saved, err := s.accountRepo.UpsertAccount(ctx, account)
	if err != nil {
		s.LogError(ctx, err, "Failed to upsert account in repository", slog.String("account_code", code))
		return nil, err
	}
	s.resolver.Invalidate()

	s.LogInfo(ctx, "Account saved", slog.String("account_code", code), slog.Bool("is_active", saved.IsActive))
	return saved, nil
}

// postedChange describes an edit that would change how existing lines and the
// stored balance read, or returns "" when the edit is safe on a used account.
func postedChange(existing, updated *domain.Account) string {
	switch {
	case updated.IsHeader && !existing.IsHeader:
		return "it cannot become a header"
	case updated.NormalBalance != existing.NormalBalance:
		return "its normal balance cannot change"
	case updated.AccountType != existing.AccountType:
		return "its account type cannot change"
	}
	return ""
}

func (s *accountService) GetTrialBalance(ctx context.Context) (*domain.TrialBalance, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, domain.AccountFilter{})
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts for trial balance")
		return nil, err
	}
	tb := accounting.BuildTrialBalance(accounts)
	if !tb.IsBalanced() {
		s.LogWarn(ctx, "Trial balance does not balance",
			slog.String("total_debit", tb.TotalDebit.String()),
			slog.String("total_credit", tb.TotalCredit.String()))
	}
	return &tb, nil
}
