package domain

import "time"

// Well-known provider_type tags. Adding a new provider is strictly
// additive: compute its descriptor, implement Enumerate/Fetch/Describe,
// register it under a new tag here. No other component changes.
const (
	ProviderTypeLocal    = "local"
	ProviderTypeS3       = "s3"
	ProviderTypeOneDrive = "onedrive"
)

// ProviderRegistryEntry is the persisted `providers` row: per-provider-pair
// metadata maintained by the IndexerPipeline on every run.
type ProviderRegistryEntry struct {
	Pair         ProviderPair
	Enabled      bool
	RegisteredAt time.Time
	LastSyncAt   time.Time
	Metadata     map[string]any
}

// ProviderSettings is the opaque per-provider-pair configuration blob. It is
// the authoritative source for whether a provider is enabled and how it
// authenticates; Configuration validates it on read.
type ProviderSettings struct {
	Pair    ProviderPair
	Enabled bool
	Config  map[string]any
}

// AiSettings is the opaque blob containing the embedding/completion model
// identifiers, base URL, API key, and prompt strings.
type AiSettings struct {
	EmbeddingModel     string
	EmbeddingDimension int
	EmbeddingBaseURL   string
	EmbeddingAPIKey    string
	CompletionModel    string
	CompletionBaseURL  string
	CompletionAPIKey   string
	SmallModel         string // used for refine/rephrase/evaluate steps in ChatPipeline
	AnswerPromptPrefix string
	MaxTopK            int
	BatchSize          int
	UpdatedAt          time.Time
}

// DefaultAiSettings returns the defaults named throughout spec.md (1536-dim
// embeddings, batch size 16, max_top_k left to the caller's discretion but
// bounded to a sane default here).
func DefaultAiSettings() AiSettings {
	return AiSettings{
		EmbeddingModel:     "text-embedding-3-small",
		EmbeddingDimension: 1536,
		CompletionModel:    "gpt-4o-mini",
		SmallModel:         "gpt-4o-mini",
		MaxTopK:            20,
		BatchSize:          16,
	}
}
