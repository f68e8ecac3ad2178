package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ragforge-io/ragcore/internal/core/domain"
	"github.com/ragforge-io/ragcore/internal/core/ports/driven"
	"github.com/ragforge-io/ragcore/internal/core/ports/driving"
)

// Indexer implements driving.IndexerPipeline: for each enabled provider,
// reconcile the ChunkStore with the provider's current state.
type Indexer struct {
	config      driving.Configuration
	factories   map[string]driven.ProviderFactory
	extractors  driven.ExtractorRegistry
	chunker     driven.Chunker
	embedder    driven.Embedder
	chunkStore  driven.ChunkStore
	registry    driven.ProviderRegistryStore
	logger      *slog.Logger
}

// IndexerConfig holds dependencies for Indexer.
type IndexerConfig struct {
	Configuration driving.Configuration
	Factories     map[string]driven.ProviderFactory
	Extractors    driven.ExtractorRegistry
	Chunker       driven.Chunker
	Embedder      driven.Embedder
	ChunkStore    driven.ChunkStore
	Registry      driven.ProviderRegistryStore
	Logger        *slog.Logger
}

// NewIndexer creates a new Indexer.
func NewIndexer(cfg IndexerConfig) *Indexer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{
		config:     cfg.Configuration,
		factories:  cfg.Factories,
		extractors: cfg.Extractors,
		chunker:    cfg.Chunker,
		embedder:   cfg.Embedder,
		chunkStore: cfg.ChunkStore,
		registry:   cfg.Registry,
		logger:     logger,
	}
}

var _ driving.IndexerPipeline = (*Indexer)(nil)

// Run executes one indexer pass over every enabled provider (§4.6).
func (ix *Indexer) Run(ctx context.Context, opts driving.IndexOptions) (domain.IndexRunReport, error) {
	start := time.Now()
	report := domain.IndexRunReport{}

	enabled, err := ix.config.ListEnabledProviders(ctx)
	if err != nil {
		return report, fmt.Errorf("listing enabled providers: %w", err)
	}
	if len(enabled) == 0 {
		ix.logger.Warn("indexer run found no enabled providers")
		report.ElapsedSeconds = time.Since(start).Seconds()
		return report, domain.ErrNoEnabledProviders
	}

	for _, settings := range enabled {
		select {
		case <-ctx.Done():
			report.Cancelled = true
			report.ElapsedSeconds = time.Since(start).Seconds()
			return report, ctx.Err()
		default:
		}

		runReport := ix.runProvider(ctx, settings, opts)
		report.Providers = append(report.Providers, runReport)
		report.ProvidersProcessed++
		report.DocumentsProcessed += runReport.DocumentsProcessed
		report.DocumentsSkipped += runReport.DocumentsSkipped
		report.ChunksWritten += runReport.ChunksWritten

		if errors.Is(ctx.Err(), context.Canceled) {
			report.Cancelled = true
			report.ElapsedSeconds = time.Since(start).Seconds()
			return report, ctx.Err()
		}
	}

	report.ElapsedSeconds = time.Since(start).Seconds()
	return report, nil
}

func (ix *Indexer) runProvider(ctx context.Context, settings domain.ProviderSettings, opts driving.IndexOptions) domain.ProviderRunReport {
	pair := settings.Pair
	runReport := domain.ProviderRunReport{Pair: pair, StartedAt: time.Now()}
	logger := ix.logger.With("provider_type", pair.ProviderType, "provider_name", pair.ProviderName)

	factory, ok := ix.factories[pair.ProviderType]
	if !ok {
		runReport.Err = fmt.Sprintf("no provider factory registered for type %q", pair.ProviderType)
		logger.Error("provider factory missing", "error", runReport.Err)
		runReport.CompletedAt = time.Now()
		return runReport
	}

	provider, err := factory.Build(pair, settings.Config)
	if err != nil {
		runReport.Err = err.Error()
		logger.Error("failed to build provider", "error", err)
		runReport.CompletedAt = time.Now()
		return runReport
	}

	// Step 2: register the provider with its current metadata.
	if meta, err := provider.Describe(ctx); err != nil {
		logger.Warn("provider describe failed", "error", err)
	} else if ix.registry != nil {
		entry := domain.ProviderRegistryEntry{Pair: pair, Enabled: settings.Enabled, Metadata: meta}
		if err := ix.registry.Upsert(ctx, entry); err != nil {
			logger.Warn("failed to upsert provider registry entry", "error", err)
		}
	}

	if opts.ForceFullReindex {
		logger.Warn("force_full_reindex set, deleting existing chunks for provider")
		if err := ix.chunkStore.DeleteProvider(ctx, pair); err != nil {
			logger.Error("failed to delete provider chunks for full reindex", "error", err)
		}
	}

	descriptors, err := provider.Enumerate(ctx)
	if err != nil {
		runReport.Err = err.Error()
		logger.Error("provider enumeration failed", "error", err)
		runReport.CompletedAt = time.Now()
		return runReport
	}
	if opts.MaxFiles > 0 && len(descriptors) > opts.MaxFiles {
		descriptors = descriptors[:opts.MaxFiles]
	}

	if opts.CleanupOrphans {
		ids := make([]string, len(descriptors))
		for i, d := range descriptors {
			ids[i] = d.DocumentID
		}
		removedDocs, removedChunks, err := ix.chunkStore.ReconcileOrphans(ctx, pair, ids)
		if err != nil {
			logger.Warn("orphan reconciliation failed", "error", err)
		} else {
			runReport.OrphanDocuments = removedDocs
			runReport.OrphanChunks = removedChunks
		}
	}

	for _, descriptor := range descriptors {
		select {
		case <-ctx.Done():
			runReport.Err = ctx.Err().Error()
			runReport.CompletedAt = time.Now()
			return runReport
		default:
		}

		written, skipped, err := ix.processDocument(ctx, provider, pair, descriptor)
		if err != nil {
			runReport.DocumentsFailed++
			logger.Error("document processing failed", "document_id", descriptor.DocumentID, "error", err)
			continue
		}
		if skipped {
			runReport.DocumentsSkipped++
			continue
		}
		runReport.DocumentsProcessed++
		runReport.ChunksWritten += written
	}

	if ix.registry != nil {
		if err := ix.registry.StampLastSync(ctx, pair, time.Now()); err != nil {
			logger.Warn("failed to stamp last_sync_at", "error", err)
		}
	}

	runReport.CompletedAt = time.Now()
	return runReport
}

// processDocument runs the per-document procedure of §4.6. It returns the
// number of chunks written and whether the document was skipped.
func (ix *Indexer) processDocument(ctx context.Context, provider driven.Provider, pair domain.ProviderPair, descriptor domain.DocumentDescriptor) (int, bool, error) {
	logger := ix.logger.With("document_id", descriptor.DocumentID, "filename", descriptor.Filename)

	if descriptor.Etag != "" {
		indexed, err := ix.chunkStore.IsIndexed(ctx, pair, descriptor.DocumentID, descriptor.Etag)
		if err != nil {
			return 0, false, fmt.Errorf("checking indexed state: %w", err)
		}
		if indexed {
			return 0, true, nil
		}
	}

	reader, err := provider.Fetch(ctx, descriptor.DocumentID)
	if err != nil {
		return 0, false, fmt.Errorf("fetch failed: %w", err)
	}
	defer reader.Close()

	extractor, err := ix.extractors.For(descriptor.Filename)
	if err != nil {
		logger.Warn("no extractor for document", "error", err)
		return 0, true, nil
	}
	text, err := extractor.ExtractText(ctx, reader, descriptor.Filename)
	if err != nil || text == "" {
		logger.Warn("extraction produced no usable text", "error", err)
		return 0, true, nil
	}

	chunks, err := ix.chunker.Chunk(text)
	if err != nil || len(chunks) == 0 {
		logger.Warn("chunking produced zero chunks", "error", err)
		return 0, true, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := ix.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, false, fmt.Errorf("embedding failed: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, false, domain.ErrChunkCountMismatch
	}

	for i := range chunks {
		chunks[i].Pair = pair
		chunks[i].DocumentID = descriptor.DocumentID
		chunks[i].Filename = descriptor.Filename
		chunks[i].Embedding = vectors[i]
		if chunks[i].Metadata == nil {
			chunks[i].Metadata = map[string]any{}
		}
		chunks[i].Metadata["provider_type"] = pair.ProviderType
		chunks[i].Metadata["provider_name"] = pair.ProviderName
		chunks[i].Metadata["etag"] = descriptor.Etag
		chunks[i].Metadata["last_modified"] = descriptor.LastModified
		chunks[i].Metadata["relative_path"] = descriptor.RelativePath
	}

	if err := ix.chunkStore.UpsertDocumentChunks(ctx, pair, descriptor.DocumentID, descriptor.Filename, chunks); err != nil {
		return 0, false, fmt.Errorf("upsert failed: %w", err)
	}

	if descriptor.Etag != "" && !descriptor.LastModified.IsZero() {
		if err := ix.chunkStore.UpdateFileTracking(ctx, pair, descriptor.DocumentID, descriptor.Filename, descriptor.Etag, descriptor.LastModified, descriptor.RelativePath); err != nil {
			logger.Warn("failed to update file tracking", "error", err)
		}
	}

	return len(chunks), false, nil
}
