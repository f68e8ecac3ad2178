package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ragforge-io/ragcore/internal/core/domain"
)

// ProviderRegistry implements driven.ProviderRegistryStore against the
// `providers` table.
type ProviderRegistry struct {
	db *DB
}

// NewProviderRegistry wraps db.
func NewProviderRegistry(db *DB) *ProviderRegistry {
	return &ProviderRegistry{db: db}
}

func (r *ProviderRegistry) Upsert(ctx context.Context, entry domain.ProviderRegistryEntry) error {
	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("marshal registry metadata: %w", err)
	}

	registeredAt := entry.RegisteredAt
	if registeredAt.IsZero() {
		registeredAt = time.Now().UTC()
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO providers (provider_type, provider_name, enabled, registered_at, last_sync_at, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (provider_type, provider_name) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			metadata = EXCLUDED.metadata
	`, entry.Pair.ProviderType, entry.Pair.ProviderName, entry.Enabled, registeredAt, NullTime(timeOrNil(entry.LastSyncAt)), metadata)
	if err != nil {
		return fmt.Errorf("upsert provider registry entry: %w", err)
	}
	return nil
}

func timeOrNil(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func (r *ProviderRegistry) StampLastSync(ctx context.Context, pair domain.ProviderPair, when time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE providers SET last_sync_at = $3
		WHERE provider_type = $1 AND provider_name = $2
	`, pair.ProviderType, pair.ProviderName, when)
	if err != nil {
		return fmt.Errorf("stamp last sync: %w", err)
	}
	return nil
}

func (r *ProviderRegistry) ListEnabled(ctx context.Context) ([]domain.ProviderRegistryEntry, error) {
	return r.list(ctx, "WHERE enabled = true")
}

func (r *ProviderRegistry) List(ctx context.Context) ([]domain.ProviderRegistryEntry, error) {
	return r.list(ctx, "")
}

func (r *ProviderRegistry) list(ctx context.Context, where string) ([]domain.ProviderRegistryEntry, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT provider_type, provider_name, enabled, registered_at, last_sync_at, metadata
		FROM providers %s
		ORDER BY provider_type, provider_name
	`, where))
	if err != nil {
		return nil, fmt.Errorf("list provider registry: %w", err)
	}
	defer rows.Close()

	var out []domain.ProviderRegistryEntry
	for rows.Next() {
		var (
			e        domain.ProviderRegistryEntry
			metadata []byte
			lastSync sql.NullTime
		)
		if err := rows.Scan(&e.Pair.ProviderType, &e.Pair.ProviderName, &e.Enabled, &e.RegisteredAt, &lastSync, &metadata); err != nil {
			return nil, fmt.Errorf("scan provider registry row: %w", err)
		}
		if lastSync.Valid {
			e.LastSyncAt = lastSync.Time
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal registry metadata: %w", err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *ProviderRegistry) Delete(ctx context.Context, pair domain.ProviderPair) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM providers WHERE provider_type = $1 AND provider_name = $2
	`, pair.ProviderType, pair.ProviderName)
	if err != nil {
		return fmt.Errorf("delete provider registry entry: %w", err)
	}
	return nil
}
