package services

import (
	portsrepo "github.com/SscSPs/coa_posting_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/coa_posting_engine/internal/core/ports/services"
	"github.com/SscSPs/coa_posting_engine/internal/observability/metrics"
	"github.com/SscSPs/coa_posting_engine/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// m may be nil, in which case nothing is recorded.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, m *metrics.PostingMetrics) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// The resolver owns the reference cache; the management services purge it on write
	container.Resolver = NewResolverService(
		repos.AccountRepo,
		repos.MappingRuleRepo,
		cfg.ReferenceCacheTTL,
		WithResolverMetrics(m),
	)

	container.Account = NewAccountService(repos.AccountRepo, container.Resolver)
	container.MappingRule = NewMappingRuleService(repos.MappingRuleRepo, repos.AccountRepo, container.Resolver)

	container.Posting = NewPostingService(
		repos.PostingRepo,
		container.Resolver,
		WithPostingMetrics(m),
		WithPostingTimeout(cfg.PostingTimeout),
		WithCurrencyScale(cfg.CurrencyScale),
	)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.AccountSvcFacade     = (*accountService)(nil)
	_ portssvc.MappingRuleSvcFacade = (*mappingRuleService)(nil)
	_ portssvc.ResolverSvc          = (*resolverService)(nil)
	_ portssvc.PostingSvcFacade     = (*postingService)(nil)
)
