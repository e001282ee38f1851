package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/coa_posting_engine/internal/apperrors"
	"github.com/SscSPs/coa_posting_engine/internal/core/coa"
	"github.com/SscSPs/coa_posting_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/coa_posting_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/coa_posting_engine/internal/core/ports/services"
	"github.com/SscSPs/coa_posting_engine/internal/observability/metrics"
)

// resolverService implements the ResolverSvc interface
type resolverService struct {
	BaseService
	resolver *coa.Resolver
	cache    *referenceCache
	metrics  *metrics.PostingMetrics
}

// ResolverServiceOption is a functional option for configuring the resolver service
type ResolverServiceOption func(*resolverService)

// WithResolverMetrics records cache and resolution step metrics.
func WithResolverMetrics(m *metrics.PostingMetrics) ResolverServiceOption {
	return func(s *resolverService) {
		s.metrics = m
	}
}

// WithStrategies replaces the default resolution cascade.
func WithStrategies(strategies ...coa.Strategy) ResolverServiceOption {
	return func(s *resolverService) {
		s.resolver = coa.NewResolver(strategies...)
	}
}

// NewResolverService creates a resolver over cached reference data. A zero ttl never expires entries;
// writes still purge them through Invalidate.
func NewResolverService(accountRepo portsrepo.AccountReader, mappingRepo portsrepo.MappingRuleReader, ttl time.Duration, options ...ResolverServiceOption) portssvc.ResolverSvc {
	svc := &resolverService{resolver: coa.NewResolver()}
	for _, option := range options {
		option(svc)
	}
	svc.cache = newReferenceCache(accountRepo, mappingRepo, ttl, svc.metrics)
	return svc
}

var _ portssvc.ResolverSvc = (*resolverService)(nil)

func (s *resolverService) ResolveAccount(ctx context.Context, req domain.ResolveRequest) (*domain.Resolution, error) {
	if !req.Usage.IsValid() {
		return nil, fmt.Errorf("%w: unknown usage %q", apperrors.ErrValidation, req.Usage)
	}
	if req.Direction != domain.DirectionIn && req.Direction != domain.DirectionOut {
		return nil, fmt.Errorf("%w: direction must be IN or OUT", apperrors.ErrValidation)
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.resolver.Resolve(req, snap)
	if err != nil {
		var unresolved *apperrors.UnresolvedAccountError
		if errors.As(err, &unresolved) {
			s.LogWarn(ctx, "No account found for transaction facts",
				slog.String("category", req.Category),
				slog.String("type", req.Type),
				slog.String("usage", string(req.Usage)))
		}
		return nil, err
	}
	s.metrics.IncResolution(string(res.Usage), res.Step)
	s.LogDebug(ctx, "Account resolved", slog.String("account_code", res.AccountCode), slog.String("step", res.Step))
	return &res, nil
}

func (s *resolverService) Snapshot(ctx context.Context) (*coa.Snapshot, error) {
	snap, err := s.cache.Get(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to load reference data")
		return nil, err
	}
	return snap, nil
}

func (s *resolverService) CanonicalTable() coa.Table {
	return coa.CanonicalTable()
}

func (s *resolverService) Invalidate() {
	s.cache.Purge()
}
