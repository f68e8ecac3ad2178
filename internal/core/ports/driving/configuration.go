package driving

import (
	"context"
	"time"

	"github.com/ragforge-io/ragcore/internal/core/domain"
)

// Configuration provides the current provider settings and AI settings to
// IndexerPipeline, QueryPipeline, and ChatPipeline (§4.9).
type Configuration interface {
	// GetProviderSettings returns the settings blob for pair, validated on
	// read. Returns (zero, false, nil) if absent or invalid rather than an
	// error, so callers can skip-with-warning per §4.1.
	GetProviderSettings(ctx context.Context, pair domain.ProviderPair) (domain.ProviderSettings, bool, error)

	// ListEnabledProviders returns every provider pair whose settings blob
	// has enabled == true and passes validation.
	ListEnabledProviders(ctx context.Context) ([]domain.ProviderSettings, error)

	// GetAiSettings returns the current model and prompt configuration.
	GetAiSettings(ctx context.Context) (domain.AiSettings, error)

	// Reload re-reads the persistent settings tables. In-flight requests
	// that already captured settings continue with them; only the next
	// invocation sees the reloaded values.
	Reload(ctx context.Context) error

	// LoadedAt returns the monotonic timestamp of the last successful
	// Reload (or process start). Consumers that cache derived resources
	// (model clients) compare this against their own version stamp.
	LoadedAt() time.Time

	// SeedFromEnvironment performs the one-time, idempotent seeding of a
	// well-known provider type's settings from environment variables, if
	// no settings row yet exists for it (§4.9 "Seeding").
	SeedFromEnvironment(ctx context.Context) error
}
