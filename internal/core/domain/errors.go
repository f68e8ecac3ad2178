package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates the resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidProvider indicates an unknown provider_type was specified.
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrServiceUnavailable indicates a remote model or provider service
	// could not be reached.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrUnsupported indicates no extractor claims the document's extension
	ErrUnsupported = errors.New("unsupported document type")

	// ErrDimensionMismatch indicates an embedding's dimension does not match
	// the configured AiSettings dimension
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrChunkCountMismatch indicates EmbedBatch returned a different number
	// of vectors than the number of chunk texts supplied
	ErrChunkCountMismatch = errors.New("embedding count does not match chunk count")

	// ErrStorageError indicates an underlying I/O fault in the ChunkStore
	ErrStorageError = errors.New("storage error")

	// ErrCancelled indicates the operation was aborted by cooperative
	// cancellation (operator signal or request context)
	ErrCancelled = errors.New("cancelled")

	// ErrInvalidSettings indicates a settings blob failed validation
	ErrInvalidSettings = errors.New("invalid settings")

	// ErrChunkerConfig indicates an invalid chunker configuration:
	// chunk_size <= 0, chunk_overlap < 0, or chunk_overlap >= chunk_size
	ErrChunkerConfig = errors.New("chunk_overlap must be less than chunk_size")

	// ErrNoEnabledProviders indicates the indexer found zero enabled providers
	ErrNoEnabledProviders = errors.New("no enabled providers")

	// ErrEmptyQuestion indicates a blank question was submitted to /query, /chat or /docsearch
	ErrEmptyQuestion = errors.New("question must not be empty")
)
