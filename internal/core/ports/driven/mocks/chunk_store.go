package mocks

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/ragforge-io/ragcore/internal/core/domain"
)

// MockChunkStore is an in-memory implementation of driven.ChunkStore used
// by pipeline tests that must not hit a database (§2.1 "Test tooling").
// It follows the Postgres adapter's contract for upsert, tracking,
// reconciliation and per-pair deletion, and orders Search results the same
// way (distance, then document_id, then chunk_num).
type MockChunkStore struct {
	mu        sync.RWMutex
	dimension int

	// chunksByDoc[documentID] holds the dense chunk_num -> chunk map.
	chunksByDoc map[string]map[int]domain.Chunk
	docPair     map[string]domain.ProviderPair
	docFilename map[string]string
	tracking    map[string]domain.FileTrackingRow // key: pair.String()+"/"+documentID
}

// NewMockChunkStore creates an empty store with the given embedding
// dimension (0 disables dimension checking, for tests that don't care).
func NewMockChunkStore(dimension int) *MockChunkStore {
	return &MockChunkStore{
		dimension:   dimension,
		chunksByDoc: make(map[string]map[int]domain.Chunk),
		docPair:     make(map[string]domain.ProviderPair),
		docFilename: make(map[string]string),
		tracking:    make(map[string]domain.FileTrackingRow),
	}
}

func trackingKey(pair domain.ProviderPair, documentID string) string {
	return pair.String() + "/" + documentID
}

func (m *MockChunkStore) UpsertDocumentChunks(ctx context.Context, pair domain.ProviderPair, documentID, filename string, chunks []domain.Chunk) error {
	if m.dimension > 0 {
		for _, c := range chunks {
			if len(c.Embedding) != m.dimension {
				return domain.ErrDimensionMismatch
			}
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	byNum := make(map[int]domain.Chunk, len(chunks))
	for _, c := range chunks {
		c.Pair = pair
		c.DocumentID = documentID
		c.Filename = filename
		c.CreatedAt = time.Now()
		byNum[c.ChunkNum] = c
	}
	m.chunksByDoc[documentID] = byNum
	m.docPair[documentID] = pair
	m.docFilename[documentID] = filename
	return nil
}

func (m *MockChunkStore) UpdateFileTracking(ctx context.Context, pair domain.ProviderPair, documentID, filename, etag string, lastModified time.Time, relativePath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracking[trackingKey(pair, documentID)] = domain.FileTrackingRow{
		Pair: pair, DocumentID: documentID, Filename: filename,
		Etag: etag, LastModified: lastModified, RelativePath: relativePath,
	}
	return nil
}

func (m *MockChunkStore) IsIndexed(ctx context.Context, pair domain.ProviderPair, documentID, etag string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row, ok := m.tracking[trackingKey(pair, documentID)]
	return ok && row.Etag == etag, nil
}

func (m *MockChunkStore) ReconcileOrphans(ctx context.Context, pair domain.ProviderPair, currentlyPresentIDs []string) (int, int, error) {
	present := make(map[string]bool, len(currentlyPresentIDs))
	for _, id := range currentlyPresentIDs {
		present[id] = true
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	docsRemoved, chunksRemoved := 0, 0
	for key, row := range m.tracking {
		if row.Pair != pair || present[row.DocumentID] {
			continue
		}
		delete(m.tracking, key)
		chunksRemoved += len(m.chunksByDoc[row.DocumentID])
		delete(m.chunksByDoc, row.DocumentID)
		delete(m.docPair, row.DocumentID)
		delete(m.docFilename, row.DocumentID)
		docsRemoved++
	}
	return docsRemoved, chunksRemoved, nil
}

func (m *MockChunkStore) DeleteProvider(ctx context.Context, pair domain.ProviderPair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, row := range m.tracking {
		if row.Pair == pair {
			delete(m.tracking, key)
		}
	}
	for docID, docPair := range m.docPair {
		if docPair != pair {
			continue
		}
		delete(m.chunksByDoc, docID)
		delete(m.docPair, docID)
		delete(m.docFilename, docID)
	}
	return nil
}

func cosineDistance(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

func (m *MockChunkStore) Search(ctx context.Context, queryVector []float32, k int, filters domain.SearchFilters) ([]domain.RankedChunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ranked []domain.RankedChunk
	for docID, byNum := range m.chunksByDoc {
		pair := m.docPair[docID]
		if filters.ProviderType != "" && pair.ProviderType != filters.ProviderType {
			continue
		}
		if filters.ProviderName != "" && pair.ProviderName != filters.ProviderName {
			continue
		}
		nums := make([]int, 0, len(byNum))
		for n := range byNum {
			nums = append(nums, n)
		}
		sort.Ints(nums)
		for _, n := range nums {
			c := byNum[n]
			ranked = append(ranked, domain.RankedChunk{Chunk: c, Distance: cosineDistance(queryVector, c.Embedding)})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Distance != ranked[j].Distance {
			return ranked[i].Distance < ranked[j].Distance
		}
		if ranked[i].Chunk.DocumentID != ranked[j].Chunk.DocumentID {
			return ranked[i].Chunk.DocumentID < ranked[j].Chunk.DocumentID
		}
		return ranked[i].Chunk.ChunkNum < ranked[j].Chunk.ChunkNum
	})
	if k > 0 && k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked, nil
}

func (m *MockChunkStore) FetchContextWindow(ctx context.Context, targets []domain.ContextTarget, w int) ([]domain.Chunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.Chunk
	for _, t := range targets {
		byNum, ok := m.chunksByDoc[t.DocumentID]
		if !ok {
			continue
		}
		lo, hi := t.ChunkNum-w, t.ChunkNum+w
		nums := make([]int, 0, len(byNum))
		for n := range byNum {
			if n >= lo && n <= hi {
				nums = append(nums, n)
			}
		}
		sort.Ints(nums)
		for _, n := range nums {
			out = append(out, byNum[n])
		}
	}
	return out, nil
}

func (m *MockChunkStore) CountChunks(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, byNum := range m.chunksByDoc {
		total += len(byNum)
	}
	return total, nil
}

func (m *MockChunkStore) CountDocuments(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tracking), nil
}

// ChunksForDocument returns the chunks of documentID ordered by chunk_num,
// for test assertions.
func (m *MockChunkStore) ChunksForDocument(documentID string) []domain.Chunk {
	m.mu.RLock()
	defer m.mu.RUnlock()
	byNum, ok := m.chunksByDoc[documentID]
	if !ok {
		return nil
	}
	nums := make([]int, 0, len(byNum))
	for n := range byNum {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	out := make([]domain.Chunk, len(nums))
	for i, n := range nums {
		out[i] = byNum[n]
	}
	return out
}
