package driven

import (
	"context"
	"io"

	"github.com/ragforge-io/ragcore/internal/core/domain"
)

// Provider presents one source of documents as a uniform capability set:
// {Enumerate, Fetch, Describe}. Implementations are plain values carrying
// their own configuration; selection is by provider_type tag (§4.1).
type Provider interface {
	// Type returns the provider_type tag this value implements.
	Type() string

	// Enumerate returns the current set of document descriptors. Ordering
	// is unspecified; descriptors for the same underlying file must carry
	// the same document_id across calls.
	Enumerate(ctx context.Context) ([]domain.DocumentDescriptor, error)

	// Fetch returns a byte stream for the current content of the document.
	// Returns domain.ErrNotFound if the document disappeared since
	// enumeration.
	Fetch(ctx context.Context, documentID string) (io.ReadCloser, error)

	// Describe returns provider metadata suitable for persisting to the
	// ProviderRegistry entry (account type, configured root path or
	// bucket, etc).
	Describe(ctx context.Context) (map[string]any, error)
}

// ProviderFactory constructs a Provider from a validated settings blob for
// one provider pair. Adding a new provider type is strictly additive:
// register a new factory under a new tag.
type ProviderFactory interface {
	// Type returns the provider_type this factory builds.
	Type() string

	// Build constructs a Provider bound to one provider pair from its
	// settings config map.
	Build(pair domain.ProviderPair, config map[string]any) (Provider, error)
}

// Extractor produces plain UTF-8 text from a byte stream given its
// filename, preserving paragraph boundaries as newlines (§4.2).
type Extractor interface {
	// Extensions returns the lowercased extensions (with leading dot) this
	// extractor claims, e.g. {".txt", ".md"}.
	Extensions() []string

	// ExtractText decodes r into plain text. Corrupted input yields ("",
	// nil) and the caller logs a warning rather than aborting. Cancellation
	// is honored between paragraphs by extractors that process text paragraph
	// by paragraph, and otherwise once the stream has been read.
	ExtractText(ctx context.Context, r io.Reader, filename string) (string, error)
}

// Chunker slices extracted text into overlapping fixed-size segments (§4.3).
// Chunk is a pure function of (text, chunk_size, chunk_overlap) — see I6.
type Chunker interface {
	Chunk(text string) ([]domain.Chunk, error)
}

// ExtractorRegistry dispatches by lowercased file extension to the first
// Extractor registered for it (§4.2 "first registered wins"; no priority
// tiers).
type ExtractorRegistry interface {
	// Register claims ext (e.g. ".docx") for e, if not already claimed.
	Register(ext string, e Extractor)

	// For returns the Extractor claiming filename's extension, or
	// domain.ErrUnsupported if none does.
	For(filename string) (Extractor, error)
}
