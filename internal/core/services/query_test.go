package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ragforge-io/ragcore/internal/core/domain"
	"github.com/ragforge-io/ragcore/internal/core/ports/driven"
	"github.com/ragforge-io/ragcore/internal/core/ports/driven/mocks"
)

func newFakeQueryDeps(t *testing.T) (*Query, *mocks.MockChunkStore, *mocks.MockEmbedder, *mocks.MockCompletionService) {
	t.Helper()
	chunkStore := mocks.NewMockChunkStore(3)
	embedder := mocks.NewMockEmbedder()
	embedder.SetDimensions(3)
	completion := mocks.NewMockCompletionService()

	ai := domain.DefaultAiSettings()
	ai.MaxTopK = 10

	q := NewQuery(QueryConfig{
		Configuration: &queryTestConfig{ai: ai},
		Embedder:      embedder,
		ChunkStore:    chunkStore,
		Completion:    completion,
	})
	return q, chunkStore, embedder, completion
}

// queryTestConfig satisfies driving.Configuration for query/chat tests.
type queryTestConfig struct {
	ai domain.AiSettings
}

func (f *queryTestConfig) GetProviderSettings(ctx context.Context, pair domain.ProviderPair) (domain.ProviderSettings, bool, error) {
	return domain.ProviderSettings{}, false, nil
}
func (f *queryTestConfig) ListEnabledProviders(ctx context.Context) ([]domain.ProviderSettings, error) {
	return nil, nil
}
func (f *queryTestConfig) GetAiSettings(ctx context.Context) (domain.AiSettings, error) {
	return f.ai, nil
}
func (f *queryTestConfig) Reload(ctx context.Context) error             { return nil }
func (f *queryTestConfig) LoadedAt() time.Time                          { return time.Time{} }
func (f *queryTestConfig) SeedFromEnvironment(ctx context.Context) error { return nil }

func TestQueryAnswerRejectsEmptyQuestion(t *testing.T) {
	q, _, _, _ := newFakeQueryDeps(t)
	_, err := q.Answer(context.Background(), domain.QueryRequest{Question: "   "})
	if !errors.Is(err, domain.ErrEmptyQuestion) {
		t.Fatalf("expected ErrEmptyQuestion, got %v", err)
	}
}

func TestQueryAnswerNoResultsReturnsGracefulMessage(t *testing.T) {
	q, _, _, _ := newFakeQueryDeps(t)
	resp, err := q.Answer(context.Background(), domain.QueryRequest{Question: "what is x?"})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if resp.Answer != noRelevantContextAnswer {
		t.Errorf("answer = %q, want graceful no-context message", resp.Answer)
	}
	if resp.Sources != nil || resp.TokensUsed != 0 {
		t.Errorf("expected zero sources/tokens, got %+v", resp)
	}
}

func TestQueryAnswerComposesPromptFromSources(t *testing.T) {
	q, chunkStore, _, completion := newFakeQueryDeps(t)
	pair := domain.ProviderPair{ProviderType: "local", ProviderName: "docs"}
	_ = chunkStore.UpsertDocumentChunks(context.Background(), pair, "doc1", "doc1.txt", []domain.Chunk{{
		ChunkNum: 0, Text: "relevant passage", Embedding: []float32{0.1, 0.2, 0.3},
	}})

	var capturedMessages []driven.ChatMessage
	completion.CompleteFn = func(ctx context.Context, messages []driven.ChatMessage, opts driven.CompletionOptions) (string, int, error) {
		capturedMessages = messages
		return "synthesized answer", 7, nil
	}

	resp, err := q.Answer(context.Background(), domain.QueryRequest{Question: "what is in the doc?"})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if resp.Answer != "synthesized answer" || resp.TokensUsed != 7 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if len(resp.Sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(resp.Sources))
	}
	if len(capturedMessages) != 2 {
		t.Fatalf("expected system+user messages, got %d", len(capturedMessages))
	}
}

func TestQueryAnswerPropagatesCompletionError(t *testing.T) {
	q, chunkStore, _, completion := newFakeQueryDeps(t)
	pair := domain.ProviderPair{ProviderType: "local", ProviderName: "docs"}
	_ = chunkStore.UpsertDocumentChunks(context.Background(), pair, "doc1", "doc1.txt", []domain.Chunk{{
		ChunkNum: 0, Text: "passage", Embedding: []float32{0.1, 0.2, 0.3},
	}})
	completion.CompleteFn = func(ctx context.Context, messages []driven.ChatMessage, opts driven.CompletionOptions) (string, int, error) {
		return "", 0, errors.New("upstream unavailable")
	}

	_, err := q.Answer(context.Background(), domain.QueryRequest{Question: "anything?"})
	if err == nil {
		t.Fatal("expected error from completion failure")
	}
}
