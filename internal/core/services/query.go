package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/ragforge-io/ragcore/internal/core/domain"
	"github.com/ragforge-io/ragcore/internal/core/ports/driven"
	"github.com/ragforge-io/ragcore/internal/core/ports/driving"
)

const noRelevantContextAnswer = "I could not find anything relevant."

// Query implements driving.QueryPipeline: embed, search, compose a cited
// prompt, and call the completion model (§4.7).
type Query struct {
	config     driving.Configuration
	embedder   driven.Embedder
	chunkStore driven.ChunkStore
	completion driven.CompletionService
}

// QueryConfig holds dependencies for Query.
type QueryConfig struct {
	Configuration driving.Configuration
	Embedder      driven.Embedder
	ChunkStore    driven.ChunkStore
	Completion    driven.CompletionService
}

// NewQuery creates a new Query pipeline.
func NewQuery(cfg QueryConfig) *Query {
	return &Query{
		config:     cfg.Configuration,
		embedder:   cfg.Embedder,
		chunkStore: cfg.ChunkStore,
		completion: cfg.Completion,
	}
}

var _ driving.QueryPipeline = (*Query)(nil)

// Answer answers a single standalone question.
func (q *Query) Answer(ctx context.Context, req domain.QueryRequest) (domain.QueryResponse, error) {
	if strings.TrimSpace(req.Question) == "" {
		return domain.QueryResponse{}, domain.ErrEmptyQuestion
	}

	aiSettings, err := q.config.GetAiSettings(ctx)
	if err != nil {
		return domain.QueryResponse{}, fmt.Errorf("loading ai settings: %w", err)
	}
	topK := clampTopK(req.TopK, aiSettings.MaxTopK)

	vector, err := q.embedder.Embed(ctx, req.Question)
	if err != nil {
		return domain.QueryResponse{}, fmt.Errorf("embedding question: %w", err)
	}

	filters := domain.SearchFilters{ProviderType: req.ProviderType, ProviderName: req.ProviderName}
	sources, err := q.chunkStore.Search(ctx, vector, topK, filters)
	if err != nil {
		return domain.QueryResponse{}, fmt.Errorf("searching chunk store: %w", err)
	}

	if len(sources) == 0 {
		return domain.QueryResponse{Answer: noRelevantContextAnswer, Sources: nil, TokensUsed: 0}, nil
	}

	messages := []driven.ChatMessage{
		{Role: "system", Content: answerSystemPrompt(aiSettings.AnswerPromptPrefix)},
		{Role: "user", Content: composeContextPrompt(req.Question, sources)},
	}
	answer, tokens, err := q.completion.Complete(ctx, messages, driven.CompletionOptions{Model: aiSettings.CompletionModel})
	if err != nil {
		return domain.QueryResponse{}, fmt.Errorf("completion call: %w", err)
	}

	return domain.QueryResponse{Answer: answer, Sources: sources, TokensUsed: tokens}, nil
}

func clampTopK(requested, maxTopK int) int {
	if maxTopK <= 0 {
		maxTopK = 20
	}
	if requested <= 0 {
		if maxTopK < 5 {
			return maxTopK
		}
		return 5
	}
	if requested > maxTopK {
		return maxTopK
	}
	return requested
}

func answerSystemPrompt(prefix string) string {
	base := "Answer only from the provided context. If the context is insufficient, say so explicitly. Cite sources inline using the bracketed numbers shown, e.g. [1], [2]."
	if prefix == "" {
		return base
	}
	return prefix + "\n\n" + base
}

func composeContextPrompt(question string, sources []domain.RankedChunk) string {
	var b strings.Builder
	b.WriteString("Context:\n")
	for i, s := range sources {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, s.Chunk.Text)
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	return b.String()
}
