package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/ragforge-io/ragcore/internal/core/domain"
	"github.com/ragforge-io/ragcore/internal/core/ports/driving"
)

const maxDocSearchGroups = 5

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError translates a pipeline error to the HTTP status contract of
// spec.md §7: invalid input (including a blank question) maps to 400,
// everything else to 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrEmptyQuestion) {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

type healthResponse struct {
	Status    string `json:"status"`
	Chunks    int    `json:"chunks"`
	Documents int    `json:"documents"`
}

// handleHealth godoc
// @Summary Health check and corpus stats
// @Router /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	chunks, err := s.chunkStore.CountChunks(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	docs, err := s.chunkStore.CountDocuments(ctx)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Chunks: chunks, Documents: docs})
}

type providerView struct {
	ProviderType string         `json:"provider_type"`
	ProviderName string         `json:"provider_name"`
	Enabled      bool           `json:"enabled"`
	RegisteredAt string         `json:"registered_at"`
	LastSyncAt   string         `json:"last_sync_at,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

type listProvidersResponse struct {
	Providers []providerView `json:"providers"`
}

// handleListProviders godoc
// @Summary List enabled providers
// @Router /providers [get]
func (s *Server) handleListProviders(w http.ResponseWriter, r *http.Request) {
	entries, err := s.registry.ListEnabled(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]providerView, 0, len(entries))
	for _, e := range entries {
		v := providerView{
			ProviderType: e.Pair.ProviderType,
			ProviderName: e.Pair.ProviderName,
			Enabled:      e.Enabled,
			RegisteredAt: e.RegisteredAt.Format("2006-01-02T15:04:05Z07:00"),
			Metadata:     e.Metadata,
		}
		if !e.LastSyncAt.IsZero() {
			v.LastSyncAt = e.LastSyncAt.Format("2006-01-02T15:04:05Z07:00")
		}
		out = append(out, v)
	}
	writeJSON(w, http.StatusOK, listProvidersResponse{Providers: out})
}

type sourceView struct {
	DocumentID   string  `json:"document_id"`
	Filename     string  `json:"filename"`
	ChunkNum     int     `json:"chunk_num"`
	Text         string  `json:"text"`
	Distance     float64 `json:"distance"`
	Citation     string  `json:"citation"`
	ProviderType string  `json:"provider_type,omitempty"`
	ProviderName string  `json:"provider_name,omitempty"`
}

func sourceViews(sources []domain.RankedChunk) []sourceView {
	out := make([]sourceView, 0, len(sources))
	for _, rc := range sources {
		out = append(out, sourceView{
			DocumentID:   rc.Chunk.DocumentID,
			Filename:     rc.Chunk.Filename,
			ChunkNum:     rc.Chunk.ChunkNum,
			Text:         rc.Chunk.Text,
			Distance:     rc.Distance,
			Citation:     rc.Citation(),
			ProviderType: rc.Chunk.Pair.ProviderType,
			ProviderName: rc.Chunk.Pair.ProviderName,
		})
	}
	return out
}

type queryResponseBody struct {
	Answer     string       `json:"answer"`
	Sources    []sourceView `json:"sources"`
	TokensUsed int          `json:"tokens_used"`
}

// handleQuery godoc
// @Summary Single-shot retrieval-augmented answer
// @Router /query [post]
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req domain.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidInput)
		return
	}

	resp, err := s.query.Answer(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, queryResponseBody{
		Answer:     resp.Answer,
		Sources:    sourceViews(resp.Sources),
		TokensUsed: resp.TokensUsed,
	})
}

type chatResponseBody struct {
	Answer     string               `json:"answer"`
	Steps      []domain.ChatStep    `json:"steps"`
	Files      []domain.DocumentGroup `json:"files"`
	Sources    []sourceView         `json:"sources"`
	TokensUsed int                  `json:"tokens_used"`
	History    []domain.ChatTurn    `json:"history"`
}

// handleChat godoc
// @Summary Multi-turn retrieval-augmented chat, with optional step streaming
// @Router /chat [post]
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req domain.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidInput)
		return
	}

	if req.StreamSteps {
		s.handleChatStream(w, r, req)
		return
	}

	resp, err := s.chat.Answer(r.Context(), req, nil)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponseBody{
		Answer:     resp.Answer,
		Steps:      resp.Steps,
		Files:      resp.Files,
		Sources:    sourceViews(resp.Sources),
		TokensUsed: resp.TokensUsed,
		History:    resp.History,
	})
}

// sseSink streams each ChatStep as a line-delimited JSON event, flushing
// after every write so the client sees progress as it happens.
type sseSink struct {
	w       http.ResponseWriter
	flusher http.Flusher
	enc     *json.Encoder
}

func (s *sseSink) Emit(step domain.ChatStep) {
	_ = s.enc.Encode(domain.ChatStreamEvent{Type: "step", Message: step.Message})
	if s.flusher != nil {
		s.flusher.Flush()
	}
}

func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request, req domain.ChatRequest) {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	sink := &sseSink{w: w, flusher: flusher, enc: json.NewEncoder(w)}

	resp, err := s.chat.Answer(r.Context(), req, sink)
	if err != nil {
		// §7: emit a terminal apology rather than closing the stream
		// abruptly, since retrieval may already have completed.
		apology := domain.ChatResponse{
			Answer:  "I'm sorry, I couldn't complete that request.",
			History: req.History,
		}
		_ = sink.enc.Encode(domain.ChatStreamEvent{Type: "final", Final: &apology})
		if flusher != nil {
			flusher.Flush()
		}
		return
	}

	_ = sink.enc.Encode(domain.ChatStreamEvent{Type: "final", Files: resp.Files, Final: &resp})
	if flusher != nil {
		flusher.Flush()
	}
}

type docGroupView struct {
	DocumentID   string  `json:"document_id"`
	Filename     string  `json:"filename"`
	Address      string  `json:"address"`
	Text         string  `json:"text"`
	Distance     float64 `json:"distance"`
	ProviderType string  `json:"provider_type,omitempty"`
	ProviderName string  `json:"provider_name,omitempty"`
}

type docSearchResponse struct {
	Documents []docGroupView `json:"documents"`
}

// handleDocSearch godoc
// @Summary Document-level grouped retrieval
// @Router /docsearch [post]
func (s *Server) handleDocSearch(w http.ResponseWriter, r *http.Request) {
	var req domain.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidInput)
		return
	}
	if len(strings.TrimSpace(req.Question)) == 0 {
		writeError(w, domain.ErrEmptyQuestion)
		return
	}

	ctx := r.Context()
	aiSettings, err := s.config.GetAiSettings(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	topK := clampTopK(req.TopK, aiSettings.MaxTopK)

	vector, err := s.embedder.Embed(ctx, req.Question)
	if err != nil {
		writeError(w, err)
		return
	}

	filters := domain.SearchFilters{ProviderType: req.ProviderType, ProviderName: req.ProviderName}
	ranked, err := s.chunkStore.Search(ctx, vector, topK, filters)
	if err != nil {
		writeError(w, err)
		return
	}

	groups := documentGroups(ranked)
	out := make([]docGroupView, 0, len(groups))
	for _, g := range groups {
		out = append(out, docGroupView{
			DocumentID:   g.DocumentID,
			Filename:     g.Filename,
			Address:      g.Address,
			Text:         g.Text,
			Distance:     g.Distance,
			ProviderType: g.ProviderType,
			ProviderName: g.ProviderName,
		})
	}
	writeJSON(w, http.StatusOK, docSearchResponse{Documents: out})
}

func clampTopK(requested, max int) int {
	if max <= 0 {
		max = 20
	}
	if requested <= 0 {
		return max
	}
	if requested > max {
		return max
	}
	return requested
}

// documentGroups dedupes ranked chunks by document, keeping the
// best-distance chunk per document, sorted by distance and capped at
// maxDocSearchGroups — mirroring ChatPipeline's own Files computation.
func documentGroups(ranked []domain.RankedChunk) []domain.DocumentGroup {
	best := make(map[string]domain.RankedChunk)
	for _, rc := range ranked {
		cur, ok := best[rc.Chunk.DocumentID]
		if !ok || rc.Distance < cur.Distance {
			best[rc.Chunk.DocumentID] = rc
		}
	}

	groups := make([]domain.DocumentGroup, 0, len(best))
	for _, rc := range best {
		groups = append(groups, domain.DocumentGroup{
			DocumentID:   rc.Chunk.DocumentID,
			Filename:     rc.Chunk.Filename,
			Address:      rc.Address(),
			Text:         rc.Chunk.Text,
			Distance:     rc.Distance,
			ProviderType: rc.Chunk.Pair.ProviderType,
			ProviderName: rc.Chunk.Pair.ProviderName,
		})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Distance < groups[j].Distance })
	if len(groups) > maxDocSearchGroups {
		groups = groups[:maxDocSearchGroups]
	}
	return groups
}

var _ driving.ChatStepSink = (*sseSink)(nil)
