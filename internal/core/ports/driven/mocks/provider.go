package mocks

import (
	"context"
	"io"
	"strings"

	"github.com/ragforge-io/ragcore/internal/core/domain"
)

// MockProvider is a mock implementation of driven.Provider for testing.
type MockProvider struct {
	TypeFn      func() string
	EnumerateFn func(ctx context.Context) ([]domain.DocumentDescriptor, error)
	FetchFn     func(ctx context.Context, documentID string) (io.ReadCloser, error)
	DescribeFn  func(ctx context.Context) (map[string]any, error)
}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Type() string {
	if m.TypeFn != nil {
		return m.TypeFn()
	}
	return domain.ProviderTypeLocal
}

func (m *MockProvider) Enumerate(ctx context.Context) ([]domain.DocumentDescriptor, error) {
	if m.EnumerateFn != nil {
		return m.EnumerateFn(ctx)
	}
	return nil, nil
}

func (m *MockProvider) Fetch(ctx context.Context, documentID string) (io.ReadCloser, error) {
	if m.FetchFn != nil {
		return m.FetchFn(ctx, documentID)
	}
	return io.NopCloser(strings.NewReader("")), nil
}

func (m *MockProvider) Describe(ctx context.Context) (map[string]any, error) {
	if m.DescribeFn != nil {
		return m.DescribeFn(ctx)
	}
	return map[string]any{}, nil
}

// MockProviderFactory is a ProviderFactory-shaped mock. Its Build returns the
// concrete *MockProvider, so it does not itself satisfy
// driven.ProviderFactory; tests wrap it in an adapter for that.
type MockProviderFactory struct {
	TypeFn  func() string
	BuildFn func(pair domain.ProviderPair, config map[string]any) (*MockProvider, error)
}

func NewMockProviderFactory() *MockProviderFactory {
	return &MockProviderFactory{}
}

func (m *MockProviderFactory) Type() string {
	if m.TypeFn != nil {
		return m.TypeFn()
	}
	return domain.ProviderTypeLocal
}

func (m *MockProviderFactory) Build(pair domain.ProviderPair, config map[string]any) (*MockProvider, error) {
	if m.BuildFn != nil {
		return m.BuildFn(pair, config)
	}
	return NewMockProvider(), nil
}

// MockExtractor is a mock implementation of driven.Extractor for testing.
type MockExtractor struct {
	ExtensionsFn  func() []string
	ExtractTextFn func(ctx context.Context, r io.Reader, filename string) (string, error)
}

func NewMockExtractor() *MockExtractor {
	return &MockExtractor{}
}

func (m *MockExtractor) Extensions() []string {
	if m.ExtensionsFn != nil {
		return m.ExtensionsFn()
	}
	return []string{".txt"}
}

func (m *MockExtractor) ExtractText(ctx context.Context, r io.Reader, filename string) (string, error) {
	if m.ExtractTextFn != nil {
		return m.ExtractTextFn(ctx, r, filename)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// MockChunker is a mock implementation of driven.Chunker for testing.
type MockChunker struct {
	ChunkFn func(text string) ([]domain.Chunk, error)
}

func NewMockChunker() *MockChunker {
	return &MockChunker{}
}

func (m *MockChunker) Chunk(text string) ([]domain.Chunk, error) {
	if m.ChunkFn != nil {
		return m.ChunkFn(text)
	}
	return []domain.Chunk{{ChunkNum: 0, Text: text, CharStart: 0, CharEnd: len(text)}}, nil
}
