package domain

import "time"

// QueryRequest is the input to QueryPipeline.Answer: {question, top_k?,
// provider_type?, provider_name?} per spec.md §4.7.
type QueryRequest struct {
	Question     string `json:"question"`
	TopK         int    `json:"top_k,omitempty"`
	ProviderType string `json:"provider_type,omitempty"`
	ProviderName string `json:"provider_name,omitempty"`
}

// QueryResponse is the output of QueryPipeline.Answer.
type QueryResponse struct {
	Answer     string        `json:"answer"`
	Sources    []RankedChunk `json:"sources"`
	TokensUsed int           `json:"tokens_used"`
}

// ChatTurn is one entry of the chat history: role is "user" or "assistant".
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the input to ChatPipeline.Answer per spec.md §4.8.
type ChatRequest struct {
	Message      string     `json:"message"`
	History      []ChatTurn `json:"history,omitempty"`
	TopK         int        `json:"top_k,omitempty"`
	ProviderType string     `json:"provider_type,omitempty"`
	ProviderName string     `json:"provider_name,omitempty"`
	StreamSteps  bool       `json:"stream_steps,omitempty"`
}

// ChatStep is one progress message emitted during a ChatPipeline run.
type ChatStep struct {
	Message string `json:"message"`
}

// DocumentGroup is one entry of the document-level view derived from a
// ranked chunk set: the best-distance chunk for a distinct document.
type DocumentGroup struct {
	DocumentID   string  `json:"document_id"`
	Filename     string  `json:"filename"`
	Address      string  `json:"address"`
	Text         string  `json:"text"`
	Distance     float64 `json:"distance"`
	ProviderType string  `json:"provider_type"`
	ProviderName string  `json:"provider_name"`
}

// ChatResponse is the non-streaming output of ChatPipeline.Answer.
type ChatResponse struct {
	Answer     string          `json:"answer"`
	Steps      []ChatStep      `json:"steps"`
	Files      []DocumentGroup `json:"files"`
	Sources    []RankedChunk   `json:"sources"`
	TokensUsed int             `json:"tokens_used"`
	History    []ChatTurn      `json:"history"`
}

// ChatStreamEvent is one line of the line-delimited JSON stream emitted when
// stream_steps == true: {type: "step", message} or the terminal
// {type: "final", files, final}.
type ChatStreamEvent struct {
	Type    string          `json:"type"`
	Message string          `json:"message,omitempty"`
	Files   []DocumentGroup `json:"files,omitempty"`
	Final   *ChatResponse   `json:"final,omitempty"`
}

// AnswerabilityVerdict is the lenient-parsed JSON returned by the
// answerability evaluator: {answerable, suggested_query}. Unparseable
// content defaults to {false, nil}.
type AnswerabilityVerdict struct {
	Answerable     bool    `json:"answerable"`
	SuggestedQuery *string `json:"suggested_query"`
}

// ChatState names the per-request state machine states of spec.md §4.8.
type ChatState string

const (
	ChatStateRefining      ChatState = "refining"
	ChatStateSearching1    ChatState = "searching_1"
	ChatStateEvaluating1   ChatState = "evaluating_1"
	ChatStateSearching2    ChatState = "searching_2"
	ChatStateEvaluating2   ChatState = "evaluating_2"
	ChatStateAnswering     ChatState = "answering"
	ChatStateDone          ChatState = "done"
	ChatStateNoContext     ChatState = "no_context"
	ChatStateNotAnswerable ChatState = "not_answerable"
)

// IndexRunReport summarizes one IndexerPipeline run across all providers,
// per spec.md §4.6 step 4.
type IndexRunReport struct {
	ProvidersProcessed int                 `json:"providers_processed"`
	DocumentsProcessed int                 `json:"documents_processed"`
	DocumentsSkipped   int                 `json:"documents_skipped"`
	ChunksWritten      int                 `json:"chunks_written"`
	ElapsedSeconds     float64             `json:"elapsed_seconds"`
	Providers          []ProviderRunReport `json:"providers"`
	Cancelled          bool                `json:"cancelled"`
}

// ProviderRunReport summarizes one provider's pass within an indexer run.
type ProviderRunReport struct {
	Pair               ProviderPair `json:"-"`
	DocumentsProcessed int          `json:"documents_processed"`
	DocumentsSkipped   int          `json:"documents_skipped"`
	DocumentsFailed    int          `json:"documents_failed"`
	ChunksWritten      int          `json:"chunks_written"`
	OrphanDocuments    int          `json:"orphan_documents"`
	OrphanChunks       int          `json:"orphan_chunks"`
	StartedAt          time.Time    `json:"started_at"`
	CompletedAt        time.Time    `json:"completed_at"`
	Err                string       `json:"error,omitempty"`
}
