package mocks

import (
	"context"
	"hash/fnv"
)

// MockEmbedder is a deterministic fake implementation of driven.Embedder
// for pipeline tests — the same text always yields the same vector.
type MockEmbedder struct {
	dimensions int
	batchSize  int
	model      string
	failNext   bool
}

// NewMockEmbedder creates a new MockEmbedder with the 1536-dim default.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{
		dimensions: 1536,
		batchSize:  16,
		model:      "mock-embedding-model",
	}
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.failNext {
		m.failNext = false
		return nil, context.DeadlineExceeded
	}
	return m.generateEmbedding(text), nil
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.failNext {
		m.failNext = false
		return nil, context.DeadlineExceeded
	}
	result := make([][]float32, len(texts))
	for i, text := range texts {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		result[i] = m.generateEmbedding(text)
	}
	return result, nil
}

func (m *MockEmbedder) Dimensions() int { return m.dimensions }
func (m *MockEmbedder) BatchSize() int  { return m.batchSize }
func (m *MockEmbedder) Model() string   { return m.model }

func (m *MockEmbedder) HealthCheck(ctx context.Context) error { return nil }
func (m *MockEmbedder) Close() error                          { return nil }

// generateEmbedding generates a deterministic embedding based on text hash.
func (m *MockEmbedder) generateEmbedding(text string) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	embedding := make([]float32, m.dimensions)
	for i := range embedding {
		seed = seed*1103515245 + 12345
		embedding[i] = float32(seed%1000) / 1000.0
	}
	return embedding
}

// SetFailNext makes the next Embed/EmbedBatch call fail, for testing the
// "embedding failure skips the document" path.
func (m *MockEmbedder) SetFailNext(fail bool) { m.failNext = fail }

// SetDimensions overrides the embedding dimension, for testing
// domain.ErrDimensionMismatch handling.
func (m *MockEmbedder) SetDimensions(dim int) { m.dimensions = dim }
