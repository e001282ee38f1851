package services

import (
	"context"

	"github.com/SscSPs/coa_posting_engine/internal/core/coa"
	"github.com/SscSPs/coa_posting_engine/internal/core/domain"
)

// ResolverSvc answers "which ledger account does this transaction hit".
type ResolverSvc interface {
	// ResolveAccount runs the resolution cascade against the current directory and mapping table.
	ResolveAccount(ctx context.Context, req domain.ResolveRequest) (*domain.Resolution, error)

	// Snapshot returns the cached reference data used for resolution.
	Snapshot(ctx context.Context) (*coa.Snapshot, error)

	// CanonicalTable returns the versioned category to account-class table.
	CanonicalTable() coa.Table

	// Invalidate drops the cached reference data after the directory or mapping table changed.
	Invalidate()
}
