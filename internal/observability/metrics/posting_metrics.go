package metrics

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/coa_posting_engine/internal/apperrors"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeCommitted = "committed"
	OutcomeReplayed  = "replayed"
	OutcomeFailed    = "failed"
)

const (
	ReasonValidation        = "validation"
	ReasonUnresolvedAccount = "unresolved_account"
	ReasonInsufficientStock = "insufficient_stock"
	ReasonUnbalancedEntry   = "unbalanced_entry"
	ReasonConflict          = "conflict"
	ReasonNotFound          = "not_found"
	ReasonStorage           = "storage"
	ReasonDeadlineExceeded  = "deadline_exceeded"
	ReasonUnknown           = "unknown"
)

const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// PostingMetrics captures posting engine health: outcomes, failure reasons,
// latency and how deep into the resolver cascade accounts are found.
type PostingMetrics struct {
	postings        *prometheus.CounterVec
	failures        *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	resolutionSteps *prometheus.CounterVec
	referenceCache  *prometheus.CounterVec
	stateChanges    *prometheus.CounterVec
}

var (
	postingMetricsOnce sync.Once
	postingMetrics     *PostingMetrics
)

// Posting returns the process-wide posting metrics registered on the default registerer.
func Posting(cfg Config) *PostingMetrics {
	postingMetricsOnce.Do(func() {
		postingMetrics = NewPostingMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return postingMetrics
}

// NewPostingMetrics registers a fresh set of collectors on registerer.
func NewPostingMetrics(registerer prometheus.Registerer, cfg Config) *PostingMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	constLabels := constLabels(cfg)

	postings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "coa_postings_total",
		Help:        "Posting attempts by transaction domain and outcome.",
		ConstLabels: constLabels,
	}, []string{"domain", "outcome"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "coa_posting_failures_total",
		Help:        "Failed postings by low-cardinality reason.",
		ConstLabels: constLabels,
	}, []string{"domain", "reason"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "coa_posting_duration_seconds",
		Help:        "Posting latency from validation to commit.",
		Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		ConstLabels: constLabels,
	}, []string{"domain"})
	resolutionSteps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "coa_resolution_step_total",
		Help:        "Resolved accounts by the cascade step that found them.",
		ConstLabels: constLabels,
	}, []string{"usage", "step"})
	referenceCache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "coa_reference_cache_total",
		Help:        "Reference data cache lookups by result.",
		ConstLabels: constLabels,
	}, []string{"result"})
	stateChanges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "coa_posting_state_transitions_total",
		Help:        "Posting coordinator state transitions.",
		ConstLabels: constLabels,
	}, []string{"state"})

	registerer.MustRegister(postings, failures, duration, resolutionSteps, referenceCache, stateChanges)

	return &PostingMetrics{
		postings:        postings,
		failures:        failures,
		duration:        duration,
		resolutionSteps: resolutionSteps,
		referenceCache:  referenceCache,
		stateChanges:    stateChanges,
	}
}

func constLabels(cfg Config) prometheus.Labels {
	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "coa-posting-engine"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	return prometheus.Labels{"service": serviceName, "env": environment}
}

// ObservePosting records the final outcome of one posting attempt.
func (m *PostingMetrics) ObservePosting(domain, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.postings.WithLabelValues(domain, outcome).Inc()
	m.duration.WithLabelValues(domain).Observe(duration.Seconds())
}

// IncFailure increments the failure counter with a classified reason.
func (m *PostingMetrics) IncFailure(domain string, err error) {
	if m == nil || err == nil {
		return
	}
	m.failures.WithLabelValues(domain, ClassifyPostingFailure(err)).Inc()
}

// IncResolution counts one resolved account.
func (m *PostingMetrics) IncResolution(usage, step string) {
	if m == nil {
		return
	}
	m.resolutionSteps.WithLabelValues(usage, step).Inc()
}

// IncReferenceCache counts a cache hit or miss.
func (m *PostingMetrics) IncReferenceCache(result string) {
	if m == nil {
		return
	}
	m.referenceCache.WithLabelValues(result).Inc()
}

// IncState counts a coordinator state transition.
func (m *PostingMetrics) IncState(state string) {
	if m == nil {
		return
	}
	m.stateChanges.WithLabelValues(state).Inc()
}

// ClassifyPostingFailure maps posting errors to low-cardinality reasons.
func ClassifyPostingFailure(err error) string {
	switch {
	case err == nil:
		return ReasonUnknown
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ReasonDeadlineExceeded
	case errors.Is(err, apperrors.ErrValidation):
		return ReasonValidation
	case errors.Is(err, apperrors.ErrUnresolvedAccount):
		return ReasonUnresolvedAccount
	case errors.Is(err, apperrors.ErrInsufficientStock):
		return ReasonInsufficientStock
	case errors.Is(err, apperrors.ErrUnbalancedEntry):
		return ReasonUnbalancedEntry
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrDuplicate):
		return ReasonConflict
	case errors.Is(err, apperrors.ErrNotFound):
		return ReasonNotFound
	case errors.Is(err, apperrors.ErrStorageFailure):
		return ReasonStorage
	}
	return ReasonUnknown
}
