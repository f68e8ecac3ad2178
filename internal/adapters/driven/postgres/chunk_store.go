package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/ragforge-io/ragcore/internal/core/domain"
)

// ChunkStore implements driven.ChunkStore against Postgres + pgvector.
type ChunkStore struct {
	db *DB
}

// NewChunkStore wraps db.
func NewChunkStore(db *DB) *ChunkStore {
	return &ChunkStore{db: db}
}

func (s *ChunkStore) UpsertDocumentChunks(ctx context.Context, pair domain.ProviderPair, documentID, filename string, chunks []domain.Chunk) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		for _, c := range chunks {
			metadata, err := json.Marshal(c.Metadata)
			if err != nil {
				return fmt.Errorf("marshal chunk metadata: %w", err)
			}

			_, err = tx.ExecContext(ctx, `
				INSERT INTO docs_chunks
					(provider_type, provider_name, document_id, filename, chunk_num, text, char_start, char_end, embedding, metadata)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
				ON CONFLICT (document_id, chunk_num) DO UPDATE SET
					filename = EXCLUDED.filename,
					text = EXCLUDED.text,
					char_start = EXCLUDED.char_start,
					char_end = EXCLUDED.char_end,
					embedding = EXCLUDED.embedding,
					metadata = EXCLUDED.metadata
			`,
				pair.ProviderType, pair.ProviderName, documentID, filename,
				c.ChunkNum, c.Text, c.CharStart, c.CharEnd,
				pgvector.NewVector(c.Embedding), metadata,
			)
			if err != nil {
				if isDimensionError(err) {
					return domain.ErrDimensionMismatch
				}
				return fmt.Errorf("upsert chunk %d: %w", c.ChunkNum, err)
			}
		}

		_, err := tx.ExecContext(ctx, `
			DELETE FROM docs_chunks
			WHERE document_id = $1 AND chunk_num >= $2
		`, documentID, len(chunks))
		if err != nil {
			return fmt.Errorf("delete tail chunks: %w", err)
		}
		return nil
	})
}

func isDimensionError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "different vector dimensions") ||
		(strings.Contains(msg, "expected") && strings.Contains(msg, "dimensions"))
}

func (s *ChunkStore) UpdateFileTracking(ctx context.Context, pair domain.ProviderPair, documentID, filename, etag string, lastModified time.Time, relativePath string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO docs_files (provider_type, provider_name, document_id, filename, relative_path, etag, last_modified, indexed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (provider_type, provider_name, document_id) DO UPDATE SET
			filename = EXCLUDED.filename,
			relative_path = EXCLUDED.relative_path,
			etag = EXCLUDED.etag,
			last_modified = EXCLUDED.last_modified,
			indexed_at = now()
	`, pair.ProviderType, pair.ProviderName, documentID, filename, relativePath, etag, lastModified)
	if err != nil {
		return fmt.Errorf("update file tracking: %w", err)
	}
	return nil
}

func (s *ChunkStore) IsIndexed(ctx context.Context, pair domain.ProviderPair, documentID, etag string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT count(*) FROM docs_files
		WHERE provider_type = $1 AND provider_name = $2 AND document_id = $3 AND etag = $4
	`, pair.ProviderType, pair.ProviderName, documentID, etag).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check indexed state: %w", err)
	}
	return count > 0, nil
}

func (s *ChunkStore) ReconcileOrphans(ctx context.Context, pair domain.ProviderPair, currentlyPresentIDs []string) (int, int, error) {
	var documentsRemoved, chunksRemoved int

	err := s.db.Transaction(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT document_id FROM docs_files
			WHERE provider_type = $1 AND provider_name = $2
			  AND NOT (document_id = ANY($3))
		`, pair.ProviderType, pair.ProviderName, pq.Array(currentlyPresentIDs))
		if err != nil {
			return fmt.Errorf("find orphans: %w", err)
		}
		var orphans []string
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			orphans = append(orphans, id)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		rows.Close()

		if len(orphans) == 0 {
			return nil
		}

		chunkRes, err := tx.ExecContext(ctx, `
			DELETE FROM docs_chunks
			WHERE provider_type = $1 AND provider_name = $2 AND document_id = ANY($3)
		`, pair.ProviderType, pair.ProviderName, pq.Array(orphans))
		if err != nil {
			return fmt.Errorf("delete orphan chunks: %w", err)
		}
		if n, err := chunkRes.RowsAffected(); err == nil {
			chunksRemoved = int(n)
		}

		fileRes, err := tx.ExecContext(ctx, `
			DELETE FROM docs_files
			WHERE provider_type = $1 AND provider_name = $2 AND document_id = ANY($3)
		`, pair.ProviderType, pair.ProviderName, pq.Array(orphans))
		if err != nil {
			return fmt.Errorf("delete orphan file tracking: %w", err)
		}
		if n, err := fileRes.RowsAffected(); err == nil {
			documentsRemoved = int(n)
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return documentsRemoved, chunksRemoved, nil
}

func (s *ChunkStore) DeleteProvider(ctx context.Context, pair domain.ProviderPair) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM docs_chunks WHERE provider_type = $1 AND provider_name = $2
		`, pair.ProviderType, pair.ProviderName); err != nil {
			return fmt.Errorf("delete provider chunks: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM docs_files WHERE provider_type = $1 AND provider_name = $2
		`, pair.ProviderType, pair.ProviderName); err != nil {
			return fmt.Errorf("delete provider file tracking: %w", err)
		}
		return nil
	})
}

func (s *ChunkStore) Search(ctx context.Context, queryVector []float32, k int, filters domain.SearchFilters) ([]domain.RankedChunk, error) {
	query := `
		SELECT document_id, provider_type, provider_name, filename, chunk_num, text, char_start, char_end, metadata, created_at,
		       embedding <=> $1 AS distance
		FROM docs_chunks
		WHERE 1=1
	`
	args := []any{pgvector.NewVector(queryVector)}
	if filters.ProviderType != "" {
		args = append(args, filters.ProviderType)
		query += fmt.Sprintf(" AND provider_type = $%d", len(args))
	}
	if filters.ProviderName != "" {
		args = append(args, filters.ProviderName)
		query += fmt.Sprintf(" AND provider_name = $%d", len(args))
	}
	args = append(args, k)
	query += fmt.Sprintf(" ORDER BY distance ASC, document_id ASC, chunk_num ASC LIMIT $%d", len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer rows.Close()

	var out []domain.RankedChunk
	for rows.Next() {
		var (
			rc       domain.RankedChunk
			metadata []byte
		)
		if err := rows.Scan(
			&rc.Chunk.DocumentID, &rc.Chunk.Pair.ProviderType, &rc.Chunk.Pair.ProviderName,
			&rc.Chunk.Filename, &rc.Chunk.ChunkNum, &rc.Chunk.Text, &rc.Chunk.CharStart, &rc.Chunk.CharEnd,
			&metadata, &rc.Chunk.CreatedAt, &rc.Distance,
		); err != nil {
			return nil, fmt.Errorf("scan search row: %w", err)
		}
		if len(metadata) > 0 {
			_ = json.Unmarshal(metadata, &rc.Chunk.Metadata)
		}
		out = append(out, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ChunkStore) FetchContextWindow(ctx context.Context, targets []domain.ContextTarget, w int) ([]domain.Chunk, error) {
	if len(targets) == 0 {
		return nil, nil
	}

	var out []domain.Chunk
	seen := make(map[string]bool)
	for _, t := range targets {
		lo := t.ChunkNum - w
		hi := t.ChunkNum + w

		rows, err := s.db.QueryContext(ctx, `
			SELECT document_id, provider_type, provider_name, filename, chunk_num, text, char_start, char_end, metadata, created_at
			FROM docs_chunks
			WHERE document_id = $1 AND chunk_num BETWEEN $2 AND $3
			ORDER BY chunk_num ASC
		`, t.DocumentID, lo, hi)
		if err != nil {
			return nil, fmt.Errorf("fetch context window: %w", err)
		}

		for rows.Next() {
			var (
				c        domain.Chunk
				metadata []byte
			)
			if err := rows.Scan(&c.DocumentID, &c.Pair.ProviderType, &c.Pair.ProviderName, &c.Filename, &c.ChunkNum, &c.Text, &c.CharStart, &c.CharEnd, &metadata, &c.CreatedAt); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan context chunk: %w", err)
			}
			key := c.DocumentID + "#" + fmt.Sprint(c.ChunkNum)
			if seen[key] {
				continue
			}
			seen[key] = true
			if len(metadata) > 0 {
				_ = json.Unmarshal(metadata, &c.Metadata)
			}
			out = append(out, c)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return out, nil
}

func (s *ChunkStore) CountChunks(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM docs_chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return n, nil
}

func (s *ChunkStore) CountDocuments(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM docs_files`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}
