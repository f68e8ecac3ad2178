package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ragforge-io/ragcore/internal/core/domain"
)

// SettingsStore implements driven.SettingsStore against the
// provider_settings and ai_settings tables.
type SettingsStore struct {
	db *DB
}

// NewSettingsStore wraps db.
func NewSettingsStore(db *DB) *SettingsStore {
	return &SettingsStore{db: db}
}

func (s *SettingsStore) GetProviderSettings(ctx context.Context, pair domain.ProviderPair) (domain.ProviderSettings, error) {
	var (
		out    domain.ProviderSettings
		config []byte
	)
	out.Pair = pair

	err := s.db.QueryRowContext(ctx, `
		SELECT enabled, config FROM provider_settings
		WHERE provider_type = $1 AND provider_name = $2
	`, pair.ProviderType, pair.ProviderName).Scan(&out.Enabled, &config)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ProviderSettings{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.ProviderSettings{}, fmt.Errorf("get provider settings: %w", err)
	}
	if len(config) > 0 {
		if err := json.Unmarshal(config, &out.Config); err != nil {
			return domain.ProviderSettings{}, fmt.Errorf("unmarshal provider config: %w", err)
		}
	}
	return out, nil
}

func (s *SettingsStore) ListProviderSettings(ctx context.Context) ([]domain.ProviderSettings, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT provider_type, provider_name, enabled, config FROM provider_settings
	`)
	if err != nil {
		return nil, fmt.Errorf("list provider settings: %w", err)
	}
	defer rows.Close()

	var out []domain.ProviderSettings
	for rows.Next() {
		var (
			ps     domain.ProviderSettings
			config []byte
		)
		if err := rows.Scan(&ps.Pair.ProviderType, &ps.Pair.ProviderName, &ps.Enabled, &config); err != nil {
			return nil, fmt.Errorf("scan provider settings: %w", err)
		}
		if len(config) > 0 {
			if err := json.Unmarshal(config, &ps.Config); err != nil {
				return nil, fmt.Errorf("unmarshal provider config: %w", err)
			}
		}
		out = append(out, ps)
	}
	return out, rows.Err()
}

func (s *SettingsStore) SaveProviderSettings(ctx context.Context, settings domain.ProviderSettings) error {
	config, err := json.Marshal(settings.Config)
	if err != nil {
		return fmt.Errorf("marshal provider config: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO provider_settings (provider_type, provider_name, enabled, config, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (provider_type, provider_name) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			config = EXCLUDED.config,
			updated_at = now()
	`, settings.Pair.ProviderType, settings.Pair.ProviderName, settings.Enabled, config)
	if err != nil {
		return fmt.Errorf("save provider settings: %w", err)
	}
	return nil
}

func (s *SettingsStore) DeleteProviderSettings(ctx context.Context, pair domain.ProviderPair) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM provider_settings WHERE provider_type = $1 AND provider_name = $2
	`, pair.ProviderType, pair.ProviderName)
	if err != nil {
		return fmt.Errorf("delete provider settings: %w", err)
	}
	return nil
}

func (s *SettingsStore) GetAiSettings(ctx context.Context) (domain.AiSettings, error) {
	var out domain.AiSettings
	var embeddingBaseURL, embeddingAPIKey, completionBaseURL, completionAPIKey, smallModel, answerPrefix sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT embedding_model, embedding_dimension, embedding_base_url, embedding_api_key,
		       completion_model, completion_base_url, completion_api_key,
		       small_model, answer_prompt_prefix, max_top_k, batch_size, updated_at
		FROM ai_settings WHERE id = true
	`).Scan(
		&out.EmbeddingModel, &out.EmbeddingDimension, &embeddingBaseURL, &embeddingAPIKey,
		&out.CompletionModel, &completionBaseURL, &completionAPIKey,
		&smallModel, &answerPrefix, &out.MaxTopK, &out.BatchSize, &out.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.AiSettings{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.AiSettings{}, fmt.Errorf("get ai settings: %w", err)
	}

	out.EmbeddingBaseURL = embeddingBaseURL.String
	out.EmbeddingAPIKey = embeddingAPIKey.String
	out.CompletionBaseURL = completionBaseURL.String
	out.CompletionAPIKey = completionAPIKey.String
	out.SmallModel = smallModel.String
	out.AnswerPromptPrefix = answerPrefix.String
	return out, nil
}

func (s *SettingsStore) SaveAiSettings(ctx context.Context, settings domain.AiSettings) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ai_settings (id, embedding_model, embedding_dimension, embedding_base_url, embedding_api_key,
			completion_model, completion_base_url, completion_api_key, small_model, answer_prompt_prefix,
			max_top_k, batch_size, updated_at)
		VALUES (true, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
		ON CONFLICT (id) DO UPDATE SET
			embedding_model = EXCLUDED.embedding_model,
			embedding_dimension = EXCLUDED.embedding_dimension,
			embedding_base_url = EXCLUDED.embedding_base_url,
			embedding_api_key = EXCLUDED.embedding_api_key,
			completion_model = EXCLUDED.completion_model,
			completion_base_url = EXCLUDED.completion_base_url,
			completion_api_key = EXCLUDED.completion_api_key,
			small_model = EXCLUDED.small_model,
			answer_prompt_prefix = EXCLUDED.answer_prompt_prefix,
			max_top_k = EXCLUDED.max_top_k,
			batch_size = EXCLUDED.batch_size,
			updated_at = now()
	`,
		settings.EmbeddingModel, settings.EmbeddingDimension, nullIfEmpty(settings.EmbeddingBaseURL), nullIfEmpty(settings.EmbeddingAPIKey),
		settings.CompletionModel, nullIfEmpty(settings.CompletionBaseURL), nullIfEmpty(settings.CompletionAPIKey),
		nullIfEmpty(settings.SmallModel), nullIfEmpty(settings.AnswerPromptPrefix), settings.MaxTopK, settings.BatchSize,
	)
	if err != nil {
		return fmt.Errorf("save ai settings: %w", err)
	}
	return nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
