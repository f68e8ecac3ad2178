// Package ai implements the Embedder and CompletionService driven ports
// against the official OpenAI SDK.
package ai

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/ragforge-io/ragcore/internal/core/domain"
)

// EmbedderConfig configures an Embedder bound to one model.
type EmbedderConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	BatchSize  int
}

// Embedder wraps the OpenAI embeddings endpoint, batching EmbedBatch calls
// into sub-batches of BatchSize (§4.4).
type Embedder struct {
	client    openai.Client
	model     string
	dims      int
	batchSize int
}

// NewEmbedder constructs an Embedder from cfg. BatchSize defaults to 16 if
// unset, matching spec.md's default.
func NewEmbedder(cfg EmbedderConfig) (*Embedder, error) {
	if cfg.Model == "" {
		return nil, domain.ErrInvalidSettings
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 16
	}
	return &Embedder{
		client:    openai.NewClient(opts...),
		model:     cfg.Model,
		dims:      cfg.Dimensions,
		batchSize: batchSize,
	}, nil
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		end := start + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := e.embed(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}

	if len(out) != len(texts) {
		return nil, domain.ErrChunkCountMismatch
	}
	return out, nil
}

func (e *Embedder) embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, domain.ErrChunkCountMismatch
	}

	byIndex := make([][]float32, len(texts))
	for _, d := range resp.Data {
		vec := make([]float32, len(d.Embedding))
		for i, f := range d.Embedding {
			vec[i] = float32(f)
		}
		if e.dims != 0 && len(vec) != e.dims {
			return nil, domain.ErrDimensionMismatch
		}
		byIndex[d.Index] = vec
	}
	return byIndex, nil
}

func (e *Embedder) Dimensions() int { return e.dims }

func (e *Embedder) BatchSize() int { return e.batchSize }

func (e *Embedder) Model() string { return e.model }

func (e *Embedder) HealthCheck(ctx context.Context) error {
	_, err := e.Embed(ctx, "healthcheck")
	return err
}

func (e *Embedder) Close() error { return nil }
