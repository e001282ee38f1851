package pgsql

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/SscSPs/coa_posting_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/coa_posting_engine/internal/core/ports/repositories"
	"github.com/SscSPs/coa_posting_engine/internal/models"
	"github.com/SscSPs/coa_posting_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = `code, name, account_type, level, is_header, normal_balance, usage_role, is_active, balance,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for the account directory.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryWithTx {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryWithTx
var _ portsrepo.AccountRepositoryWithTx = (*PgxAccountRepository)(nil)

func scanAccount(row pgx.Row) (models.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.Code,
		&m.Name,
		&m.AccountType,
		&m.Level,
		&m.IsHeader,
		&m.NormalBalance,
		&m.UsageRole,
		&m.IsActive,
		&m.Balance,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindAccountByCode retrieves a single account by its code.
func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE code = $1;`
	m, err := scanAccount(r.Pool.QueryRow(ctx, query, code))
	if err != nil {
		return nil, mapError(err, "account "+code)
	}
	acc := mapping.ToDomainAccount(m)
	return &acc, nil
}

// FindAccountsByCodes retrieves multiple accounts keyed by code.
func (r *PgxAccountRepository) FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	found := make(map[string]domain.Account, len(codes))
	if len(codes) == 0 {
		return found, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE code = ANY($1);`
	rows, err := r.Pool.Query(ctx, query, codes)
	if err != nil {
		return nil, mapError(err, "failed to query accounts by codes")
	}
	defer rows.Close()

	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, mapError(err, "failed to scan account row")
		}
		found[m.Code] = mapping.ToDomainAccount(m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating account rows")
	}
	return found, nil
}

// ListAccounts retrieves accounts matching the filter, ordered by code.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	conditions := make([]string, 0, 5)
	args := make([]any, 0, 7)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.AccountType != "" {
		conditions = append(conditions, "account_type = "+arg(string(filter.AccountType)))
	}
	if filter.ActiveOnly || filter.PostableOnly {
		conditions = append(conditions, "is_active")
	}
	if filter.PostableOnly {
		conditions = append(conditions, "NOT is_header")
	}
	if filter.CodePrefix != "" {
		conditions = append(conditions, "code LIKE "+arg(escapeLike(filter.CodePrefix)+"%"))
	}
	if filter.Search != "" {
		conditions = append(conditions, "name ILIKE "+arg("%"+escapeLike(filter.Search)+"%"))
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + accountColumns + ` FROM accounts`)
	if len(conditions) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	sb.WriteString(" ORDER BY code")
	if filter.Limit > 0 {
		sb.WriteString(" LIMIT " + arg(filter.Limit))
	}
	if filter.Offset > 0 {
		sb.WriteString(" OFFSET " + arg(filter.Offset))
	}

	rows, err := r.Pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, mapError(err, "failed to list accounts")
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, mapError(err, "failed to scan account row")
		}
		accounts = append(accounts, m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating account rows")
	}
	return mapping.ToDomainAccountSlice(accounts), nil
}

// AccountHasJournalLines reports whether any journal line references the account.
func (r *PgxAccountRepository) AccountHasJournalLines(ctx context.Context, code string) (bool, error) {
	var used bool
	err := r.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM journal_lines WHERE account_code = $1);`, code).Scan(&used)
	if err != nil {
		return false, mapError(err, "failed to check journal lines for account "+code)
	}
	return used, nil
}

// UpsertAccount inserts the account or updates the descriptive columns of an existing one.
// balance, created_at and created_by are never overwritten.
func (r *PgxAccountRepository) UpsertAccount(ctx context.Context, account domain.Account) (*domain.Account, error) {
	m := mapping.ToModelAccount(account)
	query := `
		INSERT INTO accounts (code, name, account_type, level, is_header, normal_balance, usage_role, is_active, balance,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, $9, $10, $11, $12)
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name,
			account_type = EXCLUDED.account_type,
			level = EXCLUDED.level,
			is_header = EXCLUDED.is_header,
			normal_balance = EXCLUDED.normal_balance,
			usage_role = EXCLUDED.usage_role,
			is_active = EXCLUDED.is_active,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by
		RETURNING ` + accountColumns + `;`

	saved, err := scanAccount(r.Pool.QueryRow(ctx, query,
		m.Code,
		m.Name,
		m.AccountType,
		m.Level,
		m.IsHeader,
		m.NormalBalance,
		m.UsageRole,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	))
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("failed to upsert account %s", account.Code))
	}
	acc := mapping.ToDomainAccount(saved)
	return &acc, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
