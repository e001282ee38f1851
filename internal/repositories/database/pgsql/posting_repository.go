package pgsql

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/SscSPs/coa_posting_engine/internal/apperrors"
	"github.com/SscSPs/coa_posting_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/coa_posting_engine/internal/core/ports/repositories"
	"github.com/SscSPs/coa_posting_engine/internal/models"
	"github.com/SscSPs/coa_posting_engine/internal/utils/mapping"
	"github.com/SscSPs/coa_posting_engine/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const postingColumns = `transaction_id, idempotency_key, request_hash, reference, description, posting_date, domain, context,
	status, reversal_of, reversed_by, created_at, created_by, last_updated_at, last_updated_by`

type PgxPostingRepository struct {
	BaseRepository
}

// newPgxPostingRepository creates a new repository for postings, journal lines and stock.
func newPgxPostingRepository(pool *pgxpool.Pool) portsrepo.PostingRepositoryWithTx {
	return &PgxPostingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxPostingRepository implements portsrepo.PostingRepositoryWithTx
var _ portsrepo.PostingRepositoryWithTx = (*PgxPostingRepository)(nil)

func scanPosting(row pgx.Row) (domain.PostingRecord, error) {
	var m models.Posting
	err := row.Scan(
		&m.TransactionID,
		&m.IdempotencyKey,
		&m.RequestHash,
		&m.Reference,
		&m.Description,
		&m.PostingDate,
		&m.Domain,
		&m.Context,
		&m.Status,
		&m.ReversalOf,
		&m.ReversedBy,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return domain.PostingRecord{}, err
	}
	return mapping.ToDomainPosting(m)
}

// CommitPosting writes one posting in a single database transaction:
// the record, the stock movement, the balance updates, the journal lines and,
// for reversals, the status of the original. Nothing is visible on error.
func (r *PgxPostingRepository) CommitPosting(ctx context.Context, bundle domain.PostingBundle) error {
	record := bundle.Record
	modelPosting, err := mapping.ToModelPosting(record)
	if err != nil {
		return apperrors.NewAppError(500, "failed to encode posting "+record.TransactionID, err)
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) // Will be ignored if transaction is committed successfully

	// 1. Insert the posting record; the unique idempotency key decides concurrent duplicates
	insertPosting := `
		INSERT INTO postings (` + postingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (idempotency_key) DO NOTHING;
	`
	tag, err := tx.Exec(ctx, insertPosting,
		modelPosting.TransactionID,
		modelPosting.IdempotencyKey,
		modelPosting.RequestHash,
		modelPosting.Reference,
		modelPosting.Description,
		modelPosting.PostingDate,
		modelPosting.Domain,
		modelPosting.Context,
		modelPosting.Status,
		modelPosting.ReversalOf,
		modelPosting.ReversedBy,
		modelPosting.CreatedAt,
		modelPosting.CreatedBy,
		modelPosting.LastUpdatedAt,
		modelPosting.LastUpdatedBy,
	)
	if err != nil {
		return mapError(err, "failed to insert posting "+record.TransactionID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: idempotency key %s", apperrors.ErrDuplicate, record.IdempotencyKey)
	}

	// 2. A reversal needs its original to still be POSTED
	if record.ReversalOf != nil {
		var status string
		err := tx.QueryRow(ctx, `SELECT status FROM postings WHERE transaction_id = $1 FOR UPDATE;`, *record.ReversalOf).Scan(&status)
		if err != nil {
			return mapError(err, "posting "+*record.ReversalOf)
		}
		if domain.PostingStatus(status) != domain.Posted {
			return fmt.Errorf("%w: posting %s is already %s", apperrors.ErrConflict, *record.ReversalOf, status)
		}
	}

	// 3. Lock the stock row, re-check and apply the movement
	if bundle.Stock != nil {
		if err := r.applyStockInTx(ctx, tx, *bundle.Stock, record); err != nil {
			return err
		}
	}

	// 4. Lock accounts in code order and update their balances
	if err := r.updateBalancesInTx(ctx, tx, bundle.BalanceChanges, record); err != nil {
		return err
	}

	// 5. Insert the journal lines
	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO journal_lines (transaction_id, line_seq, account_code, account_name, debit, credit, description, line_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	for _, line := range bundle.Entry.Lines {
		m := mapping.ToModelJournalLine(line)
		batch.Queue(lineQuery,
			m.TransactionID,
			m.LineSeq,
			m.AccountCode,
			m.AccountName,
			m.Debit,
			m.Credit,
			m.Description,
			m.LineDate,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return mapError(err, "failed to insert journal lines for posting "+record.TransactionID)
	}

	// 6. Link the original to its reversal
	if record.ReversalOf != nil {
		_, err := tx.Exec(ctx, `
			UPDATE postings
			SET status = $2, reversed_by = $3, last_updated_at = $4, last_updated_by = $5
			WHERE transaction_id = $1;
		`, *record.ReversalOf, string(domain.Reversed), record.TransactionID, record.CreatedAt, record.CreatedBy)
		if err != nil {
			return mapError(err, "failed to mark posting "+*record.ReversalOf+" as reversed")
		}
	}

	return r.Commit(ctx, tx)
}

func (r *PgxPostingRepository) applyStockInTx(ctx context.Context, tx pgx.Tx, movement domain.StockMovement, record domain.PostingRecord) error {
	// make sure a row exists so that first receipts of an item also serialize on the lock
	if _, err := tx.Exec(ctx, `INSERT INTO stock_levels (item_id, last_updated_at) VALUES ($1, $2) ON CONFLICT (item_id) DO NOTHING;`,
		movement.ItemID, record.CreatedAt); err != nil {
		return mapError(err, "failed to create stock row for item "+movement.ItemID)
	}

	var m models.StockLevel
	err := tx.QueryRow(ctx, `
		SELECT item_id, quantity_on_hand, average_cost, last_updated_at
		FROM stock_levels WHERE item_id = $1 FOR UPDATE;
	`, movement.ItemID).Scan(&m.ItemID, &m.QuantityOnHand, &m.AverageCost, &m.LastUpdatedAt)
	if err != nil {
		return mapError(err, "failed to lock stock for item "+movement.ItemID)
	}

	next, err := mapping.ToDomainStockLevel(m).Apply(movement, record.CreatedAt)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		UPDATE stock_levels SET quantity_on_hand = $2, average_cost = $3, last_updated_at = $4
		WHERE item_id = $1;
	`, next.ItemID, next.QuantityOnHand, next.AverageCost, next.LastUpdatedAt)
	if err != nil {
		return mapError(err, "failed to update stock for item "+movement.ItemID)
	}
	return nil
}

func (r *PgxPostingRepository) updateBalancesInTx(ctx context.Context, tx pgx.Tx, changes map[string]decimal.Decimal, record domain.PostingRecord) error {
	if len(changes) == 0 {
		return nil
	}
	codes := make([]string, 0, len(changes))
	for code := range changes {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	rows, err := tx.Query(ctx, `SELECT code FROM accounts WHERE code = ANY($1) ORDER BY code FOR UPDATE;`, codes)
	if err != nil {
		return mapError(err, "failed to lock accounts for update")
	}
	locked := make(map[string]bool, len(codes))
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			rows.Close()
			return mapError(err, "failed to scan locked account")
		}
		locked[code] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return mapError(err, "error iterating locked accounts")
	}
	for _, code := range codes {
		if !locked[code] {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, code)
		}
	}

	batch := &pgx.Batch{}
	for _, code := range codes {
		batch.Queue(`
			UPDATE accounts SET balance = balance + $2, last_updated_at = $3, last_updated_by = $4
			WHERE code = $1;
		`, code, changes[code], record.CreatedAt, record.CreatedBy)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return mapError(err, "failed to update account balances")
	}
	return nil
}

// FindPostingByID retrieves a posting record by transaction id.
func (r *PgxPostingRepository) FindPostingByID(ctx context.Context, transactionID string) (*domain.PostingRecord, error) {
	query := `SELECT ` + postingColumns + ` FROM postings WHERE transaction_id = $1;`
	p, err := scanPosting(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		return nil, mapError(err, "posting "+transactionID)
	}
	return &p, nil
}

// FindPostingByIdempotencyKey retrieves the posting created with the given key.
func (r *PgxPostingRepository) FindPostingByIdempotencyKey(ctx context.Context, key string) (*domain.PostingRecord, error) {
	query := `SELECT ` + postingColumns + ` FROM postings WHERE idempotency_key = $1;`
	p, err := scanPosting(r.Pool.QueryRow(ctx, query, key))
	if err != nil {
		return nil, mapError(err, "posting with idempotency key "+key)
	}
	return &p, nil
}

// FindJournalLines retrieves the lines of one transaction ordered by sequence.
func (r *PgxPostingRepository) FindJournalLines(ctx context.Context, transactionID string) ([]domain.JournalLine, error) {
	query := `
		SELECT transaction_id, line_seq, account_code, account_name, debit, credit, description, line_date
		FROM journal_lines
		WHERE transaction_id = $1
		ORDER BY line_seq;
	`
	rows, err := r.Pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, mapError(err, "failed to query journal lines for posting "+transactionID)
	}
	defer rows.Close()

	lines := []domain.JournalLine{}
	for rows.Next() {
		var m models.JournalLine
		err := rows.Scan(
			&m.TransactionID,
			&m.LineSeq,
			&m.AccountCode,
			&m.AccountName,
			&m.Debit,
			&m.Credit,
			&m.Description,
			&m.LineDate,
		)
		if err != nil {
			return nil, mapError(err, "failed to scan journal line for posting "+transactionID)
		}
		lines = append(lines, mapping.ToDomainJournalLine(m))
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating journal lines for posting "+transactionID)
	}
	return lines, nil
}

// ListPostings retrieves a page of postings, newest first, using token-based pagination.
func (r *PgxPostingRepository) ListPostings(ctx context.Context, limit int, nextToken *string) ([]domain.PostingRecord, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// We fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	query := `SELECT ` + postingColumns + ` FROM postings`
	args := []any{}
	if nextToken != nil && *nextToken != "" {
		lastPostingDate, lastCreatedAt, lastID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken: %s", apperrors.ErrValidation, err.Error())
		}
		// Tuple comparison matches the (posting_date, created_at, transaction_id) index order
		query += ` WHERE (posting_date, created_at, transaction_id) < ($1, $2, $3::uuid)`
		args = append(args, lastPostingDate, lastCreatedAt, lastID)
	}
	query += ` ORDER BY posting_date DESC, created_at DESC, transaction_id DESC LIMIT $` + strconv.Itoa(len(args)+1) + `;`
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, mapError(err, "failed to list postings")
	}
	defer rows.Close()

	postings := make([]domain.PostingRecord, 0, fetchLimit)
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, nil, mapError(err, "failed to scan posting row")
		}
		postings = append(postings, p)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, mapError(err, "error iterating posting rows")
	}

	var nextTokenVal *string
	if len(postings) > limit {
		postings = postings[:limit]
		last := postings[limit-1]
		token := pagination.EncodeToken(last.PostingDate, last.CreatedAt, last.TransactionID)
		nextTokenVal = &token
	}
	return postings, nextTokenVal, nil
}

// FindStockLevel returns the current level of an item.
func (r *PgxPostingRepository) FindStockLevel(ctx context.Context, itemID string) (*domain.StockLevel, error) {
	var m models.StockLevel
	err := r.Pool.QueryRow(ctx, `
		SELECT item_id, quantity_on_hand, average_cost, last_updated_at
		FROM stock_levels WHERE item_id = $1;
	`, itemID).Scan(&m.ItemID, &m.QuantityOnHand, &m.AverageCost, &m.LastUpdatedAt)
	if err != nil {
		return nil, mapError(err, "stock for item "+itemID)
	}
	level := mapping.ToDomainStockLevel(m)
	return &level, nil
}
