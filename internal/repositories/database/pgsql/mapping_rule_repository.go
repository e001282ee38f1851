package pgsql

import (
	"context"

	"github.com/SscSPs/coa_posting_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/coa_posting_engine/internal/core/ports/repositories"
	"github.com/SscSPs/coa_posting_engine/internal/models"
	"github.com/SscSPs/coa_posting_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const mappingRuleColumns = `category_key, type_key, category, type, revenue_code, cogs_code, asset_code, is_active,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxMappingRuleRepository struct {
	BaseRepository
}

func newPgxMappingRuleRepository(pool *pgxpool.Pool) portsrepo.MappingRuleRepositoryFacade {
	return &PgxMappingRuleRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.MappingRuleRepositoryFacade = (*PgxMappingRuleRepository)(nil)

func scanMappingRule(row pgx.Row) (models.MappingRule, error) {
	var m models.MappingRule
	err := row.Scan(
		&m.CategoryKey,
		&m.TypeKey,
		&m.Category,
		&m.Type,
		&m.RevenueCode,
		&m.COGSCode,
		&m.AssetCode,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindMappingRule retrieves the rule stored under the normalized key.
func (r *PgxMappingRuleRepository) FindMappingRule(ctx context.Context, category, typ string) (*domain.MappingRule, error) {
	key := domain.NewRuleKey(category, typ)
	query := `SELECT ` + mappingRuleColumns + ` FROM mapping_rules WHERE category_key = $1 AND type_key = $2;`
	m, err := scanMappingRule(r.Pool.QueryRow(ctx, query, key.Category, key.Type))
	if err != nil {
		return nil, mapError(err, "mapping rule "+category+"/"+typ)
	}
	rule := mapping.ToDomainMappingRule(m)
	return &rule, nil
}

// ListMappingRules retrieves rules ordered by their key.
func (r *PgxMappingRuleRepository) ListMappingRules(ctx context.Context, includeInactive bool) ([]domain.MappingRule, error) {
	query := `SELECT ` + mappingRuleColumns + ` FROM mapping_rules WHERE is_active OR $1 ORDER BY category_key, type_key;`
	rows, err := r.Pool.Query(ctx, query, includeInactive)
	if err != nil {
		return nil, mapError(err, "failed to list mapping rules")
	}
	defer rows.Close()

	rules := []domain.MappingRule{}
	for rows.Next() {
		m, err := scanMappingRule(rows)
		if err != nil {
			return nil, mapError(err, "failed to scan mapping rule row")
		}
		rules = append(rules, mapping.ToDomainMappingRule(m))
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating mapping rule rows")
	}
	return rules, nil
}

// UpsertMappingRule inserts or replaces the rule with the same key, keeping its creation audit.
func (r *PgxMappingRuleRepository) UpsertMappingRule(ctx context.Context, rule domain.MappingRule) (*domain.MappingRule, error) {
	m := mapping.ToModelMappingRule(rule)
	query := `
		INSERT INTO mapping_rules (category_key, type_key, category, type, revenue_code, cogs_code, asset_code, is_active,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (category_key, type_key) DO UPDATE SET
			category = EXCLUDED.category,
			type = EXCLUDED.type,
			revenue_code = EXCLUDED.revenue_code,
			cogs_code = EXCLUDED.cogs_code,
			asset_code = EXCLUDED.asset_code,
			is_active = EXCLUDED.is_active,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by
		RETURNING ` + mappingRuleColumns + `;`

	saved, err := scanMappingRule(r.Pool.QueryRow(ctx, query,
		m.CategoryKey,
		m.TypeKey,
		m.Category,
		m.Type,
		m.RevenueCode,
		m.COGSCode,
		m.AssetCode,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	))
	if err != nil {
		return nil, mapError(err, "failed to upsert mapping rule "+rule.Category+"/"+rule.Type)
	}
	out := mapping.ToDomainMappingRule(saved)
	return &out, nil
}
