package driven

import (
	"context"
	"time"

	"github.com/ragforge-io/ragcore/internal/core/domain"
)

// ChunkStore persists chunks and their vectors, tracks per-document
// indexing state, and supports similarity search (§4.5).
type ChunkStore interface {
	// UpsertDocumentChunks atomically replaces the chunk set of documentID
	// with chunks: each supplied chunk is written keyed by
	// (document_id, chunk_num), and any existing row for documentID with
	// chunk_num >= len(chunks) is deleted (I2/I3). Fails with
	// domain.ErrDimensionMismatch if any vector's dimension differs from
	// the configured dimension.
	UpsertDocumentChunks(ctx context.Context, pair domain.ProviderPair, documentID, filename string, chunks []domain.Chunk) error

	// UpdateFileTracking inserts or overwrites the tracking row for
	// documentID; (document_id, provider pair) is the unique key.
	UpdateFileTracking(ctx context.Context, pair domain.ProviderPair, documentID, filename, etag string, lastModified time.Time, relativePath string) error

	// IsIndexed reports whether a tracking row exists for (pair, documentID)
	// with exactly the given etag.
	IsIndexed(ctx context.Context, pair domain.ProviderPair, documentID, etag string) (bool, error)

	// ReconcileOrphans deletes the tracking row and chunk rows for every
	// tracked document_id under pair that is absent from
	// currentlyPresentIDs. Returns the number of documents and chunks
	// removed.
	ReconcileOrphans(ctx context.Context, pair domain.ProviderPair, currentlyPresentIDs []string) (documentsRemoved, chunksRemoved int, err error)

	// DeleteProvider removes all tracking rows and chunk rows for pair.
	DeleteProvider(ctx context.Context, pair domain.ProviderPair) error

	// Search returns the k nearest chunks to queryVector by cosine
	// distance, nearest first, len(result) <= k. filters may restrict
	// provider_type and/or provider_name.
	Search(ctx context.Context, queryVector []float32, k int, filters domain.SearchFilters) ([]domain.RankedChunk, error)

	// FetchContextWindow returns, for each target, the chunks of its
	// document with chunk_num in [target.ChunkNum-w, target.ChunkNum+w],
	// ordered by chunk_num.
	FetchContextWindow(ctx context.Context, targets []domain.ContextTarget, w int) ([]domain.Chunk, error)

	// CountChunks returns the total number of chunk rows.
	CountChunks(ctx context.Context) (int, error)

	// CountDocuments returns the total number of tracked documents.
	CountDocuments(ctx context.Context) (int, error)
}
