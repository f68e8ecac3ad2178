package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/ragforge-io/ragcore/internal/core/domain"
	"github.com/ragforge-io/ragcore/internal/core/ports/driven"
	"github.com/ragforge-io/ragcore/internal/core/ports/driving"
)

const maxDocumentGroups = 5

// Chat implements driving.ChatPipeline: multi-turn RAG with refinement and
// a bounded (two-attempt) retrieve/evaluate/retry loop (§4.8).
type Chat struct {
	config     driving.Configuration
	embedder   driven.Embedder
	chunkStore driven.ChunkStore
	completion driven.CompletionService
	logger     *slog.Logger
}

// ChatConfig holds dependencies for Chat.
type ChatConfig struct {
	Configuration driving.Configuration
	Embedder      driven.Embedder
	ChunkStore    driven.ChunkStore
	Completion    driven.CompletionService
	Logger        *slog.Logger
}

// NewChat creates a new Chat pipeline.
func NewChat(cfg ChatConfig) *Chat {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Chat{
		config:     cfg.Configuration,
		embedder:   cfg.Embedder,
		chunkStore: cfg.ChunkStore,
		completion: cfg.Completion,
		logger:     logger,
	}
}

var _ driving.ChatPipeline = (*Chat)(nil)

type noopSink struct{}

func (noopSink) Emit(domain.ChatStep) {}

// Answer runs the full chat pipeline described by §4.8.
func (c *Chat) Answer(ctx context.Context, req domain.ChatRequest, sink driving.ChatStepSink) (domain.ChatResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return domain.ChatResponse{}, domain.ErrEmptyQuestion
	}
	if sink == nil {
		sink = noopSink{}
	}

	aiSettings, err := c.config.GetAiSettings(ctx)
	if err != nil {
		return domain.ChatResponse{}, fmt.Errorf("loading ai settings: %w", err)
	}
	topK := clampTopK(req.TopK, aiSettings.MaxTopK)
	filters := domain.SearchFilters{ProviderType: req.ProviderType, ProviderName: req.ProviderName}

	resp := domain.ChatResponse{History: append(append([]domain.ChatTurn{}, req.History...), domain.ChatTurn{Role: "user", Content: req.Message})}
	emit := func(state domain.ChatState, message string) {
		step := domain.ChatStep{Message: message}
		resp.Steps = append(resp.Steps, step)
		if req.StreamSteps {
			sink.Emit(step)
		}
	}

	phrase, refineTokens, err := c.refine(ctx, req.Message, aiSettings)
	if err != nil {
		return domain.ChatResponse{}, fmt.Errorf("refining query: %w", err)
	}
	resp.TokensUsed += refineTokens
	emit(domain.ChatStateRefining, fmt.Sprintf("Searching for: %s", phrase))

	var sources []domain.RankedChunk
	answered := false

	for attempt := 1; attempt <= 2; attempt++ {
		vector, err := c.embedder.Embed(ctx, phrase)
		if err != nil {
			return domain.ChatResponse{}, fmt.Errorf("embedding search phrase: %w", err)
		}
		found, err := c.chunkStore.Search(ctx, vector, topK, filters)
		if err != nil {
			return domain.ChatResponse{}, fmt.Errorf("searching chunk store: %w", err)
		}

		if len(found) == 0 {
			if attempt == 2 {
				emit(domain.ChatStateNoContext, "No relevant context found after two attempts.")
				resp.Answer = "I could not find relevant context. Could you rephrase your question?"
				resp.History = append(resp.History, domain.ChatTurn{Role: "assistant", Content: historyAnswer(resp.Answer)})
				return resp, nil
			}
			rephrased, tokens, err := c.rephrase(ctx, phrase, nil, aiSettings)
			if err != nil {
				return domain.ChatResponse{}, fmt.Errorf("rephrasing after empty search: %w", err)
			}
			resp.TokensUsed += tokens
			phrase = rephrased
			emit(domain.ChatStateSearching2, fmt.Sprintf("Refining search to: %s", phrase))
			continue
		}

		verdict, tokens, err := c.evaluateAnswerability(ctx, phrase, found, aiSettings)
		if err != nil {
			return domain.ChatResponse{}, fmt.Errorf("evaluating answerability: %w", err)
		}
		resp.TokensUsed += tokens

		if !verdict.Answerable && attempt == 1 {
			if verdict.SuggestedQuery != nil && *verdict.SuggestedQuery != "" {
				phrase = *verdict.SuggestedQuery
			} else {
				rephrased, tokens, err := c.rephrase(ctx, phrase, found, aiSettings)
				if err != nil {
					return domain.ChatResponse{}, fmt.Errorf("rephrasing after unanswerable verdict: %w", err)
				}
				resp.TokensUsed += tokens
				phrase = rephrased
			}
			emit(domain.ChatStateEvaluating1, fmt.Sprintf("Context insufficient, retrying with: %s", phrase))
			continue
		}

		sources = found
		answer, tokens, err := c.generateAnswer(ctx, phrase, found, req.History, aiSettings)
		if err != nil {
			return domain.ChatResponse{}, fmt.Errorf("generating answer: %w", err)
		}
		resp.TokensUsed += tokens
		resp.Answer = answer
		answered = true
		emit(domain.ChatStateAnswering, "Generating answer.")
		break
	}

	if !answered {
		emit(domain.ChatStateNotAnswerable, "Could not answer from available context.")
		resp.Answer = "I could not find enough context to answer that confidently."
	}

	resp.Sources = sources
	resp.Files = documentGroups(sources)
	resp.History = append(resp.History, domain.ChatTurn{Role: "assistant", Content: historyAnswer(resp.Answer)})
	return resp, nil
}

// historyAnswer formats an assistant answer for storage in chat history
// (§8 S5); resp.Answer itself is returned to the caller unprefixed.
func historyAnswer(answer string) string {
	return "Answer:\n" + answer
}

func (c *Chat) refine(ctx context.Context, message string, ai domain.AiSettings) (string, int, error) {
	messages := []driven.ChatMessage{
		{Role: "system", Content: "Rewrite the user's message into a concise 5-20 word search phrase capturing their intent. Strip greetings and pleasantries. Respond with only the phrase."},
		{Role: "user", Content: message},
	}
	phrase, tokens, err := c.completion.Complete(ctx, messages, driven.CompletionOptions{Model: ai.SmallModel})
	if err != nil {
		return "", 0, err
	}
	return strings.TrimSpace(phrase), tokens, nil
}

func (c *Chat) rephrase(ctx context.Context, previousPhrase string, previousResults []domain.RankedChunk, ai domain.AiSettings) (string, int, error) {
	var b strings.Builder
	b.WriteString("The previous search phrase was: ")
	b.WriteString(previousPhrase)
	b.WriteString("\nIt returned ")
	fmt.Fprintf(&b, "%d", len(previousResults))
	b.WriteString(" results, which were insufficient. Produce a different 5-20 word search phrase likely to retrieve more relevant content. Respond with only the phrase.")

	messages := []driven.ChatMessage{
		{Role: "system", Content: "You refine search phrases for a document retrieval system."},
		{Role: "user", Content: b.String()},
	}
	phrase, tokens, err := c.completion.Complete(ctx, messages, driven.CompletionOptions{Model: ai.SmallModel})
	if err != nil {
		return "", 0, err
	}
	return strings.TrimSpace(phrase), tokens, nil
}

func (c *Chat) evaluateAnswerability(ctx context.Context, phrase string, found []domain.RankedChunk, ai domain.AiSettings) (domain.AnswerabilityVerdict, int, error) {
	var b strings.Builder
	b.WriteString("Search phrase: ")
	b.WriteString(phrase)
	b.WriteString("\nRetrieved context:\n")
	for i, s := range found {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, s.Chunk.Text)
	}
	b.WriteString("\nCan the search phrase be answered from this context? Respond with JSON only: {\"answerable\": bool, \"suggested_query\": string|null}.")

	messages := []driven.ChatMessage{
		{Role: "system", Content: "You judge whether retrieved context can answer a query. Respond with strict JSON, no prose."},
		{Role: "user", Content: b.String()},
	}
	raw, tokens, err := c.completion.Complete(ctx, messages, driven.CompletionOptions{Model: ai.SmallModel, JSONMode: true})
	if err != nil {
		return domain.AnswerabilityVerdict{}, 0, err
	}

	var verdict domain.AnswerabilityVerdict
	if jsonErr := json.Unmarshal([]byte(raw), &verdict); jsonErr != nil {
		c.logger.Debug("answerability verdict was not valid JSON", "raw", raw, "error", jsonErr)
		verdict = domain.AnswerabilityVerdict{Answerable: false, SuggestedQuery: nil}
	}
	return verdict, tokens, nil
}

func (c *Chat) generateAnswer(ctx context.Context, phrase string, found []domain.RankedChunk, history []domain.ChatTurn, ai domain.AiSettings) (string, int, error) {
	messages := []driven.ChatMessage{
		{Role: "system", Content: answerSystemPrompt(ai.AnswerPromptPrefix)},
	}
	for _, turn := range history {
		messages = append(messages, driven.ChatMessage{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, driven.ChatMessage{Role: "user", Content: composeContextPrompt(phrase, found)})

	return c.completion.Complete(ctx, messages, driven.CompletionOptions{Model: ai.CompletionModel})
}

// documentGroups derives the top distinct documents with their best snippet
// and distance, ordered by best distance, at most maxDocumentGroups.
func documentGroups(sources []domain.RankedChunk) []domain.DocumentGroup {
	byDoc := make(map[string]domain.DocumentGroup)
	order := make([]string, 0)
	for _, s := range sources {
		g, ok := byDoc[s.Chunk.DocumentID]
		if !ok {
			byDoc[s.Chunk.DocumentID] = domain.DocumentGroup{
				DocumentID:   s.Chunk.DocumentID,
				Filename:     s.Chunk.Filename,
				Address:      s.Address(),
				Text:         s.Chunk.Text,
				Distance:     s.Distance,
				ProviderType: s.Chunk.Pair.ProviderType,
				ProviderName: s.Chunk.Pair.ProviderName,
			}
			order = append(order, s.Chunk.DocumentID)
			continue
		}
		if s.Distance < g.Distance {
			g.Text = s.Chunk.Text
			g.Distance = s.Distance
			byDoc[s.Chunk.DocumentID] = g
		}
	}

	groups := make([]domain.DocumentGroup, 0, len(order))
	for _, id := range order {
		groups = append(groups, byDoc[id])
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Distance < groups[j].Distance })
	if len(groups) > maxDocumentGroups {
		groups = groups[:maxDocumentGroups]
	}
	return groups
}
