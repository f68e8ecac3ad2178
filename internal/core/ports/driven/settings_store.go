package driven

import (
	"context"
	"time"

	"github.com/ragforge-io/ragcore/internal/core/domain"
)

// SettingsStore persists the two opaque-JSON settings tables of spec.md §6:
// provider_settings keyed by provider pair, and ai_settings as a singleton.
type SettingsStore interface {
	// GetProviderSettings returns the settings blob for pair, or
	// domain.ErrNotFound if none exists.
	GetProviderSettings(ctx context.Context, pair domain.ProviderPair) (domain.ProviderSettings, error)

	// ListProviderSettings returns every persisted provider_settings row,
	// enabled or not.
	ListProviderSettings(ctx context.Context) ([]domain.ProviderSettings, error)

	// SaveProviderSettings creates or overwrites the settings row for
	// pair.
	SaveProviderSettings(ctx context.Context, settings domain.ProviderSettings) error

	// DeleteProviderSettings removes the settings row for pair. Callers
	// are responsible for cascading the ChunkStore deletion separately.
	DeleteProviderSettings(ctx context.Context, pair domain.ProviderPair) error

	// GetAiSettings returns the singleton AiSettings row, or
	// domain.ErrNotFound if it has never been seeded.
	GetAiSettings(ctx context.Context) (domain.AiSettings, error)

	// SaveAiSettings creates or overwrites the singleton AiSettings row.
	SaveAiSettings(ctx context.Context, settings domain.AiSettings) error
}

// ProviderRegistryStore persists the `providers` table: per-provider-pair
// registration metadata maintained by the IndexerPipeline.
type ProviderRegistryStore interface {
	// Upsert creates or updates the registry entry for entry.Pair,
	// preserving RegisteredAt if the row already exists.
	Upsert(ctx context.Context, entry domain.ProviderRegistryEntry) error

	// StampLastSync sets last_sync_at = when for pair.
	StampLastSync(ctx context.Context, pair domain.ProviderPair, when time.Time) error

	// ListEnabled returns every registry entry with enabled == true.
	ListEnabled(ctx context.Context) ([]domain.ProviderRegistryEntry, error)

	// List returns every registry entry.
	List(ctx context.Context) ([]domain.ProviderRegistryEntry, error)

	// Delete removes the registry entry for pair.
	Delete(ctx context.Context, pair domain.ProviderPair) error
}
