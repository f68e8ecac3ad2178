// Package chunker implements the fixed-window text chunking algorithm of
// spec.md §4.3.
package chunker

import (
	"fmt"
	"strings"

	"github.com/ragforge-io/ragcore/internal/core/domain"
	"github.com/ragforge-io/ragcore/internal/core/ports/driven"
)

// Config holds the chunking parameters, in code points, not bytes.
type Config struct {
	// ChunkSize is the maximum number of code points per segment.
	ChunkSize int
	// ChunkOverlap is the number of code points each segment shares with
	// its predecessor; must be strictly less than ChunkSize.
	ChunkOverlap int
}

// DefaultConfig returns the spec's defaults: 1000 code points, 200 overlap.
func DefaultConfig() Config {
	return Config{ChunkSize: 1000, ChunkOverlap: 200}
}

// FixedWindowChunker implements driven.Chunker with deterministic,
// boundary-blind fixed-width overlapping windows (I6).
type FixedWindowChunker struct {
	cfg Config
}

// New creates a FixedWindowChunker, validating that overlap < size.
func New(cfg Config) (*FixedWindowChunker, error) {
	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk_size must be positive", domain.ErrChunkerConfig)
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, domain.ErrChunkerConfig
	}
	return &FixedWindowChunker{cfg: cfg}, nil
}

var _ driven.Chunker = (*FixedWindowChunker)(nil)

// Chunk slices text into overlapping fixed-size segments over code points.
// Empty or whitespace-only input yields zero segments; otherwise every
// window in the advancing sequence is emitted unconditionally, per I6.
func (c *FixedWindowChunker) Chunk(text string) ([]domain.Chunk, error) {
	if len(strings.TrimSpace(text)) == 0 {
		return nil, nil
	}

	runes := []rune(text)
	n := len(runes)
	stride := c.cfg.ChunkSize - c.cfg.ChunkOverlap

	var chunks []domain.Chunk
	chunkNum := 0
	for p := 0; p < n; p += stride {
		end := p + c.cfg.ChunkSize
		if end > n {
			end = n
		}
		chunks = append(chunks, domain.Chunk{
			ChunkNum:  chunkNum,
			Text:      string(runes[p:end]),
			CharStart: p,
			CharEnd:   end,
		})
		chunkNum++
	}
	return chunks, nil
}
