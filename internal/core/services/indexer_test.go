package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/ragforge-io/ragcore/internal/adapters/driven/extractors"
	"github.com/ragforge-io/ragcore/internal/core/domain"
	"github.com/ragforge-io/ragcore/internal/core/ports/driven"
	"github.com/ragforge-io/ragcore/internal/core/ports/driven/mocks"
	"github.com/ragforge-io/ragcore/internal/core/ports/driving"
)

// mockFactoryAdapter adapts mocks.MockProviderFactory (which returns the
// concrete *MockProvider) to driven.ProviderFactory.
type mockFactoryAdapter struct {
	inner *mocks.MockProviderFactory
}

func (a mockFactoryAdapter) Type() string { return a.inner.Type() }

func (a mockFactoryAdapter) Build(pair domain.ProviderPair, config map[string]any) (driven.Provider, error) {
	return a.inner.Build(pair, config)
}

// indexerTestConfig is a driving.Configuration fake whose enabled provider
// list is controlled directly by the test, unlike queryTestConfig.
type indexerTestConfig struct {
	providers []domain.ProviderSettings
}

func (f *indexerTestConfig) GetProviderSettings(ctx context.Context, pair domain.ProviderPair) (domain.ProviderSettings, bool, error) {
	for _, p := range f.providers {
		if p.Pair == pair {
			return p, true, nil
		}
	}
	return domain.ProviderSettings{}, false, nil
}
func (f *indexerTestConfig) ListEnabledProviders(ctx context.Context) ([]domain.ProviderSettings, error) {
	var out []domain.ProviderSettings
	for _, p := range f.providers {
		if p.Enabled {
			out = append(out, p)
		}
	}
	return out, nil
}
func (f *indexerTestConfig) GetAiSettings(ctx context.Context) (domain.AiSettings, error) {
	return domain.DefaultAiSettings(), nil
}
func (f *indexerTestConfig) Reload(ctx context.Context) error             { return nil }
func (f *indexerTestConfig) LoadedAt() time.Time                         { return time.Time{} }
func (f *indexerTestConfig) SeedFromEnvironment(ctx context.Context) error { return nil }

const testPair = "local"

func newTestIndexer(t *testing.T, providers []domain.ProviderSettings, provider *mocks.MockProvider) (*Indexer, *mocks.MockChunkStore, *mocks.MockProviderRegistryStore) {
	t.Helper()
	chunkStore := mocks.NewMockChunkStore(3)
	registry := mocks.NewMockProviderRegistryStore()
	embedder := mocks.NewMockEmbedder()
	embedder.SetDimensions(3)

	factory := mockFactoryAdapter{inner: &mocks.MockProviderFactory{
		BuildFn: func(pair domain.ProviderPair, config map[string]any) (*mocks.MockProvider, error) {
			return provider, nil
		},
	}}

	extractorRegistry := extractors.NewRegistry()
	extractorRegistry.Register(".txt", mocks.NewMockExtractor())

	ix := NewIndexer(IndexerConfig{
		Configuration: &indexerTestConfig{providers: providers},
		Factories:     map[string]driven.ProviderFactory{testPair: factory},
		Extractors:    extractorRegistry,
		Chunker:       mocks.NewMockChunker(),
		Embedder:      embedder,
		ChunkStore:    chunkStore,
		Registry:      registry,
	})
	return ix, chunkStore, registry
}

func TestIndexerRunNoEnabledProviders(t *testing.T) {
	ix, _, _ := newTestIndexer(t, nil, mocks.NewMockProvider())
	_, err := ix.Run(context.Background(), driving.DefaultIndexOptions())
	if !errors.Is(err, domain.ErrNoEnabledProviders) {
		t.Fatalf("expected ErrNoEnabledProviders, got %v", err)
	}
}

func TestIndexerRunProcessesDocuments(t *testing.T) {
	pair := domain.ProviderPair{ProviderType: testPair, ProviderName: "docs"}
	provider := mocks.NewMockProvider()
	provider.EnumerateFn = func(ctx context.Context) ([]domain.DocumentDescriptor, error) {
		return []domain.DocumentDescriptor{
			{DocumentID: "doc1", Filename: "doc1.txt", Etag: "v1", LastModified: time.Now()},
		}, nil
	}
	provider.FetchFn = func(ctx context.Context, documentID string) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader("hello world")), nil
	}

	providers := []domain.ProviderSettings{{Pair: pair, Enabled: true}}
	ix, chunkStore, registry := newTestIndexer(t, providers, provider)

	report, err := ix.Run(context.Background(), driving.DefaultIndexOptions())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.ProvidersProcessed != 1 || report.DocumentsProcessed != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.ChunksWritten == 0 {
		t.Error("expected chunks written")
	}
	if len(chunkStore.ChunksForDocument("doc1")) == 0 {
		t.Error("expected doc1 chunks persisted")
	}
	entries, _ := registry.List(context.Background())
	if len(entries) != 1 {
		t.Errorf("expected 1 registry entry, got %d", len(entries))
	}
}

func TestIndexerRunSkipsAlreadyIndexedDocument(t *testing.T) {
	pair := domain.ProviderPair{ProviderType: testPair, ProviderName: "docs"}
	provider := mocks.NewMockProvider()
	descriptor := domain.DocumentDescriptor{DocumentID: "doc1", Filename: "doc1.txt", Etag: "v1", LastModified: time.Now()}
	provider.EnumerateFn = func(ctx context.Context) ([]domain.DocumentDescriptor, error) {
		return []domain.DocumentDescriptor{descriptor}, nil
	}
	fetchCount := 0
	provider.FetchFn = func(ctx context.Context, documentID string) (io.ReadCloser, error) {
		fetchCount++
		return io.NopCloser(strings.NewReader("hello world")), nil
	}

	providers := []domain.ProviderSettings{{Pair: pair, Enabled: true}}
	ix, chunkStore, _ := newTestIndexer(t, providers, provider)

	_ = chunkStore.UpdateFileTracking(context.Background(), pair, "doc1", "doc1.txt", "v1", descriptor.LastModified, "")

	report, err := ix.Run(context.Background(), driving.DefaultIndexOptions())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.DocumentsSkipped != 1 {
		t.Errorf("expected 1 skipped document, got %d", report.DocumentsSkipped)
	}
	if fetchCount != 0 {
		t.Error("already-indexed document should not be fetched")
	}
}

func TestIndexerRunForceFullReindexDeletesProviderChunks(t *testing.T) {
	pair := domain.ProviderPair{ProviderType: testPair, ProviderName: "docs"}
	provider := mocks.NewMockProvider()
	provider.EnumerateFn = func(ctx context.Context) ([]domain.DocumentDescriptor, error) {
		return nil, nil
	}

	providers := []domain.ProviderSettings{{Pair: pair, Enabled: true}}
	ix, chunkStore, _ := newTestIndexer(t, providers, provider)

	_ = chunkStore.UpsertDocumentChunks(context.Background(), pair, "stale-doc", "stale.txt", []domain.Chunk{{
		ChunkNum: 0, Text: "stale", Embedding: []float32{0.1, 0.2, 0.3},
	}})
	_ = chunkStore.UpdateFileTracking(context.Background(), pair, "stale-doc", "stale.txt", "old-etag", time.Now(), "")

	opts := driving.DefaultIndexOptions()
	opts.ForceFullReindex = true
	if _, err := ix.Run(context.Background(), opts); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(chunkStore.ChunksForDocument("stale-doc")) != 0 {
		t.Error("expected stale document chunks to be deleted on force full reindex")
	}
}

func TestIndexerRunCleanupOrphansRemovesMissingDocuments(t *testing.T) {
	pair := domain.ProviderPair{ProviderType: testPair, ProviderName: "docs"}
	provider := mocks.NewMockProvider()
	provider.EnumerateFn = func(ctx context.Context) ([]domain.DocumentDescriptor, error) {
		return nil, nil // nothing present upstream anymore
	}

	providers := []domain.ProviderSettings{{Pair: pair, Enabled: true}}
	ix, chunkStore, _ := newTestIndexer(t, providers, provider)

	_ = chunkStore.UpsertDocumentChunks(context.Background(), pair, "gone-doc", "gone.txt", []domain.Chunk{{
		ChunkNum: 0, Text: "gone", Embedding: []float32{0.1, 0.2, 0.3},
	}})
	_ = chunkStore.UpdateFileTracking(context.Background(), pair, "gone-doc", "gone.txt", "etag", time.Now(), "")

	report, err := ix.Run(context.Background(), driving.DefaultIndexOptions())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Providers[0].OrphanDocuments != 1 {
		t.Errorf("expected 1 orphan document removed, got %d", report.Providers[0].OrphanDocuments)
	}
	if len(chunkStore.ChunksForDocument("gone-doc")) != 0 {
		t.Error("expected orphaned chunks removed")
	}
}

func TestIndexerRunEmbeddingFailureFailsDocumentWithoutAbortingRun(t *testing.T) {
	pair := domain.ProviderPair{ProviderType: testPair, ProviderName: "docs"}
	provider := mocks.NewMockProvider()
	provider.EnumerateFn = func(ctx context.Context) ([]domain.DocumentDescriptor, error) {
		return []domain.DocumentDescriptor{
			{DocumentID: "doc1", Filename: "doc1.txt", Etag: "v1", LastModified: time.Now()},
		}, nil
	}
	provider.FetchFn = func(ctx context.Context, documentID string) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader("hello world")), nil
	}

	providers := []domain.ProviderSettings{{Pair: pair, Enabled: true}}
	ix, chunkStore, _ := newTestIndexer(t, providers, provider)

	// Force the embedder on this indexer to fail once.
	embedder := mocks.NewMockEmbedder()
	embedder.SetDimensions(3)
	embedder.SetFailNext(true)
	ix.embedder = embedder

	report, err := ix.Run(context.Background(), driving.DefaultIndexOptions())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Providers[0].DocumentsFailed != 1 {
		t.Errorf("expected 1 failed document, got %d", report.Providers[0].DocumentsFailed)
	}
	if len(chunkStore.ChunksForDocument("doc1")) != 0 {
		t.Error("expected no chunks persisted for a failed embedding")
	}
}

func TestIndexerRunCancelledContext(t *testing.T) {
	pair1 := domain.ProviderPair{ProviderType: testPair, ProviderName: "one"}
	pair2 := domain.ProviderPair{ProviderType: testPair, ProviderName: "two"}
	provider := mocks.NewMockProvider()

	providers := []domain.ProviderSettings{
		{Pair: pair1, Enabled: true},
		{Pair: pair2, Enabled: true},
	}
	ix, _, _ := newTestIndexer(t, providers, provider)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := ix.Run(ctx, driving.DefaultIndexOptions())
	if !report.Cancelled {
		t.Errorf("expected report.Cancelled, got %+v (err=%v)", report, err)
	}
}
