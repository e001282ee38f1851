package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/coa_posting_engine/internal/apperrors"
	"github.com/SscSPs/coa_posting_engine/internal/core/coa"
	"github.com/SscSPs/coa_posting_engine/internal/core/domain"
	"github.com/SscSPs/coa_posting_engine/internal/core/journal"
	portsrepo "github.com/SscSPs/coa_posting_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/coa_posting_engine/internal/core/ports/services"
	"github.com/SscSPs/coa_posting_engine/internal/dto"
	"github.com/SscSPs/coa_posting_engine/internal/observability/metrics"
	"github.com/SscSPs/coa_posting_engine/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultListLimit      = 20
	reversalKeyPrefix     = "reversal:"
	reversalDescPrefix    = "Reversal of "
	defaultCurrencyScale  = 0
	defaultPostingTimeout = 10 * time.Second
)

// postingService implements the PostingSvcFacade interface
type postingService struct {
	BaseService
	postingRepo portsrepo.PostingRepositoryFacade
	resolverSvc portssvc.ResolverSvc
	resolver    *coa.Resolver
	scale       int32
	timeout     time.Duration
	metrics     *metrics.PostingMetrics
	now         func() time.Time
	newID       func() string
}

// PostingServiceOption is a functional option for configuring the posting service
type PostingServiceOption func(*postingService)

// WithPostingMetrics records posting outcomes, failures and state changes.
func WithPostingMetrics(m *metrics.PostingMetrics) PostingServiceOption {
	return func(s *postingService) {
		s.metrics = m
	}
}

// WithPostingTimeout bounds one posting call. Zero disables the bound.
func WithPostingTimeout(timeout time.Duration) PostingServiceOption {
	return func(s *postingService) {
		s.timeout = timeout
	}
}

// WithCurrencyScale sets the number of decimals journal lines are rounded to.
func WithCurrencyScale(scale int32) PostingServiceOption {
	return func(s *postingService) {
		s.scale = scale
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) PostingServiceOption {
	return func(s *postingService) {
		s.now = now
	}
}

// WithIDGenerator overrides how transaction ids and generated idempotency keys are created.
func WithIDGenerator(newID func() string) PostingServiceOption {
	return func(s *postingService) {
		s.newID = newID
	}
}

// NewPostingService creates the posting coordinator.
func NewPostingService(postingRepo portsrepo.PostingRepositoryFacade, resolverSvc portssvc.ResolverSvc, options ...PostingServiceOption) portssvc.PostingSvcFacade {
	svc := &postingService{
		postingRepo: postingRepo,
		resolverSvc: resolverSvc,
		resolver:    coa.NewResolver(),
		scale:       defaultCurrencyScale,
		timeout:     defaultPostingTimeout,
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.PostingSvcFacade = (*postingService)(nil)

// postingAttempt walks one call through the coordinator states.
type postingAttempt struct {
	svc     *postingService
	ctx     context.Context
	logger  *slog.Logger
	domain  string
	state   domain.PostingState
	started time.Time
}

func (s *postingService) begin(ctx context.Context, txDomain domain.TransactionDomain, key string) *postingAttempt {
	a := &postingAttempt{
		svc:     s,
		ctx:     ctx,
		logger:  s.GetLogger(ctx).With(slog.String("idempotency_key", key), slog.String("domain", string(txDomain))),
		domain:  string(txDomain),
		started: s.now(),
	}
	a.enter(domain.StateValidating)
	return a
}

func (a *postingAttempt) enter(state domain.PostingState) {
	a.state = state
	a.svc.metrics.IncState(string(state))
	a.logger.Debug("Posting state changed", slog.String("state", string(state)))
}

func (a *postingAttempt) fail(err error) error {
	from := a.state
	a.enter(domain.StateFailed)
	a.svc.metrics.IncFailure(a.domain, err)
	a.svc.metrics.ObservePosting(a.domain, metrics.OutcomeFailed, a.svc.now().Sub(a.started))

	attrs := []any{slog.String("error", err.Error()), slog.String("failed_in", string(from))}
	switch {
	case errors.Is(err, apperrors.ErrUnbalancedEntry):
		a.logger.Error("Composer produced an unbalanced entry", attrs...)
	case errors.Is(err, apperrors.ErrStorageFailure):
		a.logger.Error("Posting failed on storage", attrs...)
	default:
		a.logger.Warn("Posting rejected", attrs...)
	}
	return err
}

func (a *postingAttempt) replayed(res *domain.PostingResult) *domain.PostingResult {
	a.svc.metrics.ObservePosting(a.domain, metrics.OutcomeReplayed, a.svc.now().Sub(a.started))
	a.logger.Info("Idempotent replay of committed posting", slog.String("transaction_id", res.TransactionID))
	return res
}

func (a *postingAttempt) committed(res *domain.PostingResult) *domain.PostingResult {
	a.enter(domain.StateCommitted)
	a.svc.metrics.ObservePosting(a.domain, metrics.OutcomeCommitted, a.svc.now().Sub(a.started))
	a.logger.Info("Posting committed", slog.String("transaction_id", res.TransactionID), slog.Int("lines", len(res.Entry.Lines)))
	return res
}

func (s *postingService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *postingService) PostTransaction(ctx context.Context, req dto.PostTransactionRequest, userID string) (*domain.PostingResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	key := req.IdempotencyKey
	if key == "" {
		key = s.newID()
	}
	tc := req.Context.ToDomain()
	attempt := s.begin(ctx, tc.Domain, key)

	if err := tc.Validate(); err != nil {
		return nil, attempt.fail(err)
	}
	if err := tc.ValidateScale(s.scale); err != nil {
		return nil, attempt.fail(err)
	}
	hash, err := requestHash(postingPayload{Reference: req.Reference, Description: req.Description, PostingDate: req.PostingDate, Context: &tc})
	if err != nil {
		return nil, attempt.fail(err)
	}

	if res, err := s.replay(ctx, key, hash); err != nil {
		return nil, attempt.fail(err)
	} else if res != nil {
		return attempt.replayed(res), nil
	}

	movement, err := s.checkStock(ctx, &tc)
	if err != nil {
		return nil, attempt.fail(err)
	}

	attempt.enter(domain.StateResolving)
	snap, err := s.resolverSvc.Snapshot(ctx)
	if err != nil {
		return nil, attempt.fail(err)
	}
	accts, resolutions, err := s.resolveLegs(tc, snap)
	if err != nil {
		return nil, attempt.fail(err)
	}

	attempt.enter(domain.StateComposing)
	now := s.now().UTC()
	postingDate := now
	if req.PostingDate != nil {
		postingDate = req.PostingDate.UTC()
	}
	transactionID := s.newID()
	entry, err := journal.NewComposer(s.scale).Compose(tc, accts, journal.Meta{
		TransactionID: transactionID,
		Date:          postingDate,
		Description:   req.Description,
	})
	if err != nil {
		return nil, attempt.fail(err)
	}
	changes, err := accounting.BalanceChanges(entry.Lines, linesAccounts(entry, snap))
	if err != nil {
		return nil, attempt.fail(err)
	}

	attempt.enter(domain.StateCommitting)
	record := domain.PostingRecord{
		TransactionID:  transactionID,
		IdempotencyKey: key,
		RequestHash:    hash,
		Reference:      req.Reference,
		Description:    req.Description,
		PostingDate:    postingDate,
		Domain:         tc.Domain,
		Context:        tc,
		Status:         domain.Posted,
		AuditFields:    s.auditFields(userID, now),
	}
	bundle := domain.PostingBundle{Record: record, Entry: entry, Stock: movement, BalanceChanges: changes}
	if err := s.postingRepo.CommitPosting(ctx, bundle); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// a concurrent call with the same key won the insert
			if res, rerr := s.replay(ctx, key, hash); rerr != nil {
				return nil, attempt.fail(rerr)
			} else if res != nil {
				return attempt.replayed(res), nil
			}
		}
		return nil, attempt.fail(err)
	}

	return attempt.committed(&domain.PostingResult{
		TransactionID: transactionID,
		Record:        record,
		Entry:         entry,
		Resolutions:   resolutions,
	}), nil
}

func (s *postingService) ReversePosting(ctx context.Context, transactionID string, req dto.ReversePostingRequest, userID string) (*domain.PostingResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	key := req.IdempotencyKey
	if key == "" {
		key = reversalKeyPrefix + transactionID
	}
	original, err := s.postingRepo.FindPostingByID(ctx, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to load posting to reverse", slog.String("transaction_id", transactionID))
		}
		return nil, err
	}
	attempt := s.begin(ctx, original.Domain, key)

	hash, err := requestHash(postingPayload{ReversalOf: transactionID, Description: req.Description, PostingDate: req.PostingDate})
	if err != nil {
		return nil, attempt.fail(err)
	}
	if res, err := s.replay(ctx, key, hash); err != nil {
		return nil, attempt.fail(err)
	} else if res != nil {
		return attempt.replayed(res), nil
	}

	if original.Status != domain.Posted {
		return nil, attempt.fail(fmt.Errorf("%w: posting %s is already %s", apperrors.ErrConflict, transactionID, original.Status))
	}
	if original.IsReversal() {
		return nil, attempt.fail(fmt.Errorf("%w: posting %s is itself a reversal", apperrors.ErrConflict, transactionID))
	}

	var movement *domain.StockMovement
	if mv := original.Context.StockMovement(); mv != nil {
		if mv.QuantityDelta < 0 {
			// putting sold goods back at the cost they left with
			mv.UnitCost = original.Context.UnitCost
		}
		inverse := mv.Inverse()
		if err := s.precheckMovement(ctx, inverse); err != nil {
			return nil, attempt.fail(err)
		}
		movement = &inverse
	}

	attempt.enter(domain.StateResolving)
	lines, err := s.postingRepo.FindJournalLines(ctx, transactionID)
	if err != nil {
		return nil, attempt.fail(err)
	}
	snap, err := s.resolverSvc.Snapshot(ctx)
	if err != nil {
		return nil, attempt.fail(err)
	}

	attempt.enter(domain.StateComposing)
	now := s.now().UTC()
	postingDate := now
	if req.PostingDate != nil {
		postingDate = req.PostingDate.UTC()
	}
	description := req.Description
	if description == "" {
		description = reversalDescPrefix + transactionID
	}
	reversalID := s.newID()
	entry := journal.Reverse(domain.JournalEntry{
		TransactionID: transactionID,
		Date:          original.PostingDate,
		Description:   original.Description,
		Lines:         lines,
	}, journal.Meta{TransactionID: reversalID, Date: postingDate, Description: description})
	if err := entry.Validate(); err != nil {
		return nil, attempt.fail(err)
	}
	changes, err := accounting.BalanceChanges(entry.Lines, linesAccounts(entry, snap))
	if err != nil {
		return nil, attempt.fail(err)
	}

	attempt.enter(domain.StateCommitting)
	originalID := transactionID
	record := domain.PostingRecord{
		TransactionID:  reversalID,
		IdempotencyKey: key,
		RequestHash:    hash,
		Reference:      original.Reference,
		Description:    description,
		PostingDate:    postingDate,
		Domain:         original.Domain,
		Context:        original.Context,
		Status:         domain.Posted,
		ReversalOf:     &originalID,
		AuditFields:    s.auditFields(userID, now),
	}
	bundle := domain.PostingBundle{Record: record, Entry: entry, Stock: movement, BalanceChanges: changes}
	if err := s.postingRepo.CommitPosting(ctx, bundle); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			if res, rerr := s.replay(ctx, key, hash); rerr != nil {
				return nil, attempt.fail(rerr)
			} else if res != nil {
				return attempt.replayed(res), nil
			}
		}
		return nil, attempt.fail(err)
	}

	return attempt.committed(&domain.PostingResult{
		TransactionID: reversalID,
		Record:        record,
		Entry:         entry,
	}), nil
}

func (s *postingService) GetPosting(ctx context.Context, transactionID string) (*domain.PostingResult, error) {
	record, err := s.postingRepo.FindPostingByID(ctx, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find posting", slog.String("transaction_id", transactionID))
		}
		return nil, err
	}
	return s.result(ctx, record, false)
}

func (s *postingService) ListPostings(ctx context.Context, params dto.ListPostingsParams) (*dto.ListPostingsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	postings, nextToken, err := s.postingRepo.ListPostings(ctx, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list postings")
		return nil, err
	}
	if postings == nil {
		postings = []domain.PostingRecord{}
	}
	return &dto.ListPostingsResponse{Postings: postings, NextToken: nextToken}, nil
}

func (s *postingService) GetStockLevel(ctx context.Context, itemID string) (*domain.StockLevel, error) {
	level, err := s.postingRepo.FindStockLevel(ctx, itemID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find stock level", slog.String("item_id", itemID))
		}
		return nil, err
	}
	return level, nil
}

// replay returns the stored result for a known idempotency key, nil when the key is unused.
func (s *postingService) replay(ctx context.Context, key, hash string) (*domain.PostingResult, error) {
	existing, err := s.postingRepo.FindPostingByIdempotencyKey(ctx, key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if existing.RequestHash != hash {
		return nil, fmt.Errorf("%w: idempotency key %q was already used for a different request", apperrors.ErrConflict, key)
	}
	return s.result(ctx, existing, true)
}

func (s *postingService) result(ctx context.Context, record *domain.PostingRecord, replayed bool) (*domain.PostingResult, error) {
	lines, err := s.postingRepo.FindJournalLines(ctx, record.TransactionID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load journal lines", slog.String("transaction_id", record.TransactionID))
		return nil, err
	}
	return &domain.PostingResult{
		TransactionID: record.TransactionID,
		Record:        *record,
		Entry: domain.JournalEntry{
			TransactionID: record.TransactionID,
			Date:          record.PostingDate,
			Description:   record.Description,
			Lines:         lines,
		},
		Replayed: replayed,
	}, nil
}

// checkStock rejects sales the current stock cannot cover and fills a missing
// unit cost from the weighted average. The repository re-checks under lock.
func (s *postingService) checkStock(ctx context.Context, tc *domain.TransactionContext) (*domain.StockMovement, error) {
	movement := tc.StockMovement()
	if movement == nil {
		return nil, nil
	}
	level, err := s.currentLevel(ctx, movement.ItemID)
	if err != nil {
		return nil, err
	}
	if _, err := level.Apply(*movement, s.now()); err != nil {
		return nil, err
	}
	if tc.Domain == domain.ItemSale {
		if !tc.UnitCost.IsPositive() {
			tc.UnitCost = level.AverageCost
		}
		movement.UnitCost = tc.UnitCost
	}
	return movement, nil
}

func (s *postingService) precheckMovement(ctx context.Context, movement domain.StockMovement) error {
	level, err := s.currentLevel(ctx, movement.ItemID)
	if err != nil {
		return err
	}
	_, err = level.Apply(movement, s.now())
	return err
}

func (s *postingService) currentLevel(ctx context.Context, itemID string) (domain.StockLevel, error) {
	level, err := s.postingRepo.FindStockLevel(ctx, itemID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.StockLevel{ItemID: itemID, AverageCost: decimal.Zero}, nil
		}
		return domain.StockLevel{}, err
	}
	return *level, nil
}

// resolveLegs resolves every leg the context generates against one snapshot.
func (s *postingService) resolveLegs(tc domain.TransactionContext, snap *coa.Snapshot) (journal.Accounts, []domain.Resolution, error) {
	var accts journal.Accounts
	resolutions := make([]domain.Resolution, 0, 5)

	resolve := func(usage domain.Usage) (*domain.Account, error) {
		res, err := s.resolver.Resolve(domain.ResolveRequest{
			Category:  tc.Category,
			Type:      tc.Type,
			Direction: tc.Direction,
			Usage:     usage,
		}, snap)
		if err != nil {
			return nil, err
		}
		s.metrics.IncResolution(string(usage), res.Step)
		resolutions = append(resolutions, res)
		acc, _ := snap.Account(res.AccountCode)
		return &acc, nil
	}

	settlement, err := resolve(tc.SettlementUsage())
	if err != nil {
		return accts, nil, err
	}
	main, err := resolve(tc.MainUsage())
	if err != nil {
		return accts, nil, err
	}
	accts.Settlement, accts.Main = *settlement, *main

	if tc.HasTaxLeg() {
		if accts.Tax, err = resolve(tc.TaxUsage()); err != nil {
			return accts, nil, err
		}
	}
	if tc.HasCOGSLeg() {
		if accts.COGS, err = resolve(domain.UsageCOGS); err != nil {
			return accts, nil, err
		}
		if accts.Inventory, err = resolve(domain.UsageInventory); err != nil {
			return accts, nil, err
		}
	}
	return accts, resolutions, nil
}

func linesAccounts(entry domain.JournalEntry, snap *coa.Snapshot) map[string]domain.Account {
	accounts := make(map[string]domain.Account, len(entry.Lines))
	for _, l := range entry.Lines {
		if acc, ok := snap.Account(l.AccountCode); ok {
			accounts[l.AccountCode] = acc
		}
	}
	return accounts
}

// postingPayload is the part of a request that must match for an idempotent replay.
type postingPayload struct {
	ReversalOf  string                     `json:"reversalOf,omitempty"`
	Reference   string                     `json:"reference,omitempty"`
	Description string                     `json:"description,omitempty"`
	PostingDate *time.Time                 `json:"postingDate,omitempty"`
	Context     *domain.TransactionContext `json:"context,omitempty"`
}

func requestHash(p postingPayload) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to hash request: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
