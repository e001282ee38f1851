package pgsql

import (
	portsrepo "github.com/SscSPs/coa_posting_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires every postgres repository onto one pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	mappingRepo := newPgxMappingRuleRepository(dbPool)
	postingRepo := newPgxPostingRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo:     accountRepo,
		MappingRuleRepo: mappingRepo,
		PostingRepo:     postingRepo,
	}
}
