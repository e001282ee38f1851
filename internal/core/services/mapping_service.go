package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/coa_posting_engine/internal/apperrors"
	"github.com/SscSPs/coa_posting_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/coa_posting_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/coa_posting_engine/internal/core/ports/services"
	"github.com/SscSPs/coa_posting_engine/internal/dto"
)

// mappingRuleService implements the MappingRuleSvcFacade interface
type mappingRuleService struct {
	BaseService
	ruleRepo    portsrepo.MappingRuleRepositoryFacade
	accountRepo portsrepo.AccountReader
	resolver    portssvc.ResolverSvc
	now         func() time.Time
}

// NewMappingRuleService creates a new mapping rule service.
func NewMappingRuleService(ruleRepo portsrepo.MappingRuleRepositoryFacade, accountRepo portsrepo.AccountReader, resolver portssvc.ResolverSvc) portssvc.MappingRuleSvcFacade {
	return &mappingRuleService{
		ruleRepo:    ruleRepo,
		accountRepo: accountRepo,
		resolver:    resolver,
		now:         time.Now,
	}
}

var _ portssvc.MappingRuleSvcFacade = (*mappingRuleService)(nil)

func (s *mappingRuleService) ListMappingRules(ctx context.Context, includeInactive bool) ([]domain.MappingRule, error) {
	rules, err := s.ruleRepo.ListMappingRules(ctx, includeInactive)
	if err != nil {
		s.LogError(ctx, err, "Failed to list mapping rules from repository")
		return nil, err
	}
	return rules, nil
}

func (s *mappingRuleService) UpsertMappingRule(ctx context.Context, req dto.UpsertMappingRuleRequest, userID string) (*domain.MappingRule, error) {
	now := s.now().UTC()
	rule := domain.MappingRule{
		Category:    strings.TrimSpace(req.Category),
		Type:        strings.TrimSpace(req.Type),
		RevenueCode: strings.TrimSpace(req.RevenueCode),
		COGSCode:    strings.TrimSpace(req.COGSCode),
		AssetCode:   strings.TrimSpace(req.AssetCode),
		IsActive:    true,
		AuditFields: s.auditFields(userID, now),
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	if rule.Category == "" {
		return nil, fmt.Errorf("%w: category is required", apperrors.ErrValidation)
	}

	codes := rule.ReferencedCodes()
	if rule.IsActive && len(codes) == 0 {
		return nil, fmt.Errorf("%w: an active rule must name at least one account code", apperrors.ErrValidation)
	}
	if len(codes) > 0 {
		accounts, err := s.accountRepo.FindAccountsByCodes(ctx, codes)
		if err != nil {
			s.LogError(ctx, err, "Failed to load accounts referenced by mapping rule")
			return nil, err
		}
		for _, code := range codes {
			acc, ok := accounts[code]
			if !ok {
				return nil, fmt.Errorf("%w: account %s does not exist", apperrors.ErrValidation, code)
			}
			// a deactivated rule may keep pointing at retired accounts
			if rule.IsActive && !acc.IsPostable() {
				return nil, fmt.Errorf("%w: account %s is not a postable account", apperrors.ErrValidation, code)
			}
		}
	}

	existing, err := s.ruleRepo.FindMappingRule(ctx, rule.Category, rule.Type)
	switch {
	case err == nil:
		rule.CreatedAt = existing.CreatedAt
		rule.CreatedBy = existing.CreatedBy
	case !errors.Is(err, apperrors.ErrNotFound):
		s.LogError(ctx, err, "Failed to load mapping rule before upsert", slog.String("category", rule.Category))
		return nil, err
	}

	saved, err := s.ruleRepo.UpsertMappingRule(ctx, rule)
	if err != nil {
		s.LogError(ctx, err, "Failed to upsert mapping rule", slog.String("category", rule.Category), slog.String("type", rule.Type))
		return nil, err
	}
	s.resolver.Invalidate()

	s.LogInfo(ctx, "Mapping rule saved",
		slog.String("category", saved.Category),
		slog.String("type", saved.Type),
		slog.Bool("is_active", saved.IsActive))
	return saved, nil
}
