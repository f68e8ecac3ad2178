package driven

import "context"

// Embedder maps one or a batch of texts to fixed-dimension float vectors
// using a remote embedding model (§4.4).
type Embedder interface {
	// Embed returns the vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input, in the same order. Inputs
	// are grouped into sub-batches of BatchSize() and issued sequentially;
	// a sub-batch failure fails the whole call. Cancellation is checked
	// between sub-batches.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding dimension this model produces.
	Dimensions() int

	// BatchSize returns the configured sub-batch size (default 16).
	BatchSize() int

	// Model returns the model name being used.
	Model() string

	// HealthCheck verifies the embedding service is available.
	HealthCheck(ctx context.Context) error

	// Close releases resources held by the embedder.
	Close() error
}
