package driving

import (
	"context"

	"github.com/ragforge-io/ragcore/internal/core/domain"
)

// IndexOptions tunes one IndexerPipeline.Run invocation (§4.6).
type IndexOptions struct {
	// ForceFullReindex deletes all chunk and tracking rows for a provider
	// before re-indexing it.
	ForceFullReindex bool

	// CleanupOrphans runs ReconcileOrphans after enumeration (default on).
	CleanupOrphans bool

	// MaxFiles truncates enumeration to this many descriptors per
	// provider, for test runs. Zero means unlimited.
	MaxFiles int
}

// DefaultIndexOptions returns cleanup_orphans enabled, no force reindex, no
// file cap — the production defaults named in §4.6.
func DefaultIndexOptions() IndexOptions {
	return IndexOptions{CleanupOrphans: true}
}

// IndexerPipeline orchestrates enumerate -> detect change -> extract ->
// chunk -> embed -> upsert -> reconcile, once per enabled provider (§4.6).
type IndexerPipeline interface {
	// Run executes one indexer pass over every enabled provider. It
	// returns a report of what happened even when some providers or
	// documents failed. A non-nil error is returned when no provider is
	// enabled (domain.ErrNoEnabledProviders), when the enabled providers
	// cannot be listed, or on cancellation (the context's error, with
	// report.Cancelled set).
	Run(ctx context.Context, opts IndexOptions) (domain.IndexRunReport, error)
}
