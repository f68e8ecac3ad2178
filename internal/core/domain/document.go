package domain

import (
	"strconv"
	"time"
)

// ProviderPair identifies the ownership domain for every document and chunk:
// a provider type ("local", "s3", "onedrive", ...) plus an operator-chosen
// instance label.
type ProviderPair struct {
	ProviderType string `json:"provider_type"`
	ProviderName string `json:"provider_name"`
}

// String renders the pair as "{provider_type}/{provider_name}".
func (p ProviderPair) String() string {
	return p.ProviderType + "/" + p.ProviderName
}

// IsZero reports whether the pair carries neither a type nor a name.
func (p ProviderPair) IsZero() bool {
	return p.ProviderType == "" && p.ProviderName == ""
}

// DocumentDescriptor is what Provider.Enumerate yields for one document: its
// stable identity plus enough metadata to decide whether it has changed.
type DocumentDescriptor struct {
	Pair         ProviderPair `json:"-"`
	DocumentID   string       `json:"document_id"`
	Filename     string       `json:"filename"`
	RelativePath string       `json:"relative_path,omitempty"`
	Etag         string       `json:"etag"`
	LastModified time.Time    `json:"last_modified"`
}

// FileTrackingRow is the persisted record of the last successful indexing of
// a document: it exists iff the document's content has been indexed at
// least once (I4).
type FileTrackingRow struct {
	Pair         ProviderPair
	DocumentID   string
	Filename     string
	Etag         string
	LastModified time.Time
	RelativePath string
}

// Chunk is a contiguous text segment of a document, stored with its
// embedding. (document_id, chunk_num) is unique; chunk_num is 0-based and
// dense after a successful index (I2).
type Chunk struct {
	ID         int64          `json:"id,omitempty"`
	DocumentID string         `json:"document_id"`
	Pair       ProviderPair   `json:"-"`
	Filename   string         `json:"filename"`
	ChunkNum   int            `json:"chunk_num"`
	Text       string         `json:"text"`
	CharStart  int            `json:"char_start"`
	CharEnd    int            `json:"char_end"`
	Embedding  []float32      `json:"embedding,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// RankedChunk pairs a chunk with its cosine distance to a query vector,
// nearest first.
type RankedChunk struct {
	Chunk    Chunk   `json:"chunk"`
	Distance float64 `json:"distance"`
}

// Citation renders the citation string for a ranked chunk per the format in
// spec.md §6: "[{provider_type}/{provider_name}:{filename}#chunk{chunk_num}]"
// when both provider fields are non-empty, else "[{filename}#chunk{chunk_num}]".
func (r RankedChunk) Citation() string {
	if r.Chunk.Pair.ProviderType != "" && r.Chunk.Pair.ProviderName != "" {
		return "[" + r.Chunk.Pair.String() + ":" + r.Chunk.Filename + "#chunk" + strconv.Itoa(r.Chunk.ChunkNum) + "]"
	}
	return "[" + r.Chunk.Filename + "#chunk" + strconv.Itoa(r.Chunk.ChunkNum) + "]"
}

// Address renders the document-level address used by /docsearch:
// "{provider_type}/{provider_name}:{filename}" when both provider fields are
// non-empty, else "{filename}".
func (r RankedChunk) Address() string {
	if r.Chunk.Pair.ProviderType != "" && r.Chunk.Pair.ProviderName != "" {
		return r.Chunk.Pair.String() + ":" + r.Chunk.Filename
	}
	return r.Chunk.Filename
}

// SearchFilters restricts Search results to a provider type and/or a
// specific provider pair.
type SearchFilters struct {
	ProviderType string
	ProviderName string
}

// ContextTarget identifies a chunk to widen context around.
type ContextTarget struct {
	DocumentID string
	ChunkNum   int
}
