package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SscSPs/coa_posting_engine/internal/core/coa"
	"github.com/SscSPs/coa_posting_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/coa_posting_engine/internal/core/ports/repositories"
	"github.com/SscSPs/coa_posting_engine/internal/observability/metrics"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// referenceCache keeps the account directory and mapping table as one
// snapshot, keyed by canonical table version so a new table never reads a
// snapshot built for an older one.
type referenceCache struct {
	entries  *expirable.LRU[string, *coa.Snapshot]
	accounts portsrepo.AccountReader
	rules    portsrepo.MappingRuleReader
	metrics  *metrics.PostingMetrics

	loadMu sync.Mutex
	// generation moves on every Purge; a load started before it is not cached
	generation atomic.Uint64
}

func newReferenceCache(accounts portsrepo.AccountReader, rules portsrepo.MappingRuleReader, ttl time.Duration, m *metrics.PostingMetrics) *referenceCache {
	return &referenceCache{
		entries:  expirable.NewLRU[string, *coa.Snapshot](4, nil, ttl),
		accounts: accounts,
		rules:    rules,
		metrics:  m,
	}
}

// Get returns the cached snapshot, loading it from the repositories on a miss.
func (c *referenceCache) Get(ctx context.Context) (*coa.Snapshot, error) {
	if snap, ok := c.entries.Get(coa.TableVersion); ok {
		c.metrics.IncReferenceCache(metrics.CacheHit)
		return snap, nil
	}

	// one loader at a time; the others wait and reuse its result
	c.loadMu.Lock()
	defer c.loadMu.Unlock()
	if snap, ok := c.entries.Get(coa.TableVersion); ok {
		c.metrics.IncReferenceCache(metrics.CacheHit)
		return snap, nil
	}
	c.metrics.IncReferenceCache(metrics.CacheMiss)

	gen := c.generation.Load()
	accounts, err := c.accounts.ListAccounts(ctx, domain.AccountFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load account directory: %w", err)
	}
	rules, err := c.rules.ListMappingRules(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load mapping rules: %w", err)
	}

	snap := coa.NewSnapshot(accounts, rules)
	if c.generation.Load() == gen {
		c.entries.Add(coa.TableVersion, snap)
	}
	return snap, nil
}

// Purge drops every cached snapshot, including one a concurrent load is about to add.
func (c *referenceCache) Purge() {
	c.generation.Add(1)
	c.entries.Purge()
}
