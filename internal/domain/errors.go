// Package domain holds shared contracts and sentinel errors for the knowledge pipeline.
package domain

import "errors"

var (
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrMalformedDocument signals unparsable input; batch ingestion skips and
	// reports it, never aborts.
	ErrMalformedDocument = errors.New("malformed document")
	// ErrInvalidRequest signals a request the domain rejects.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrEmbeddingUnavailable signals embedding provider failure after retry
	// exhaustion; chunks are never indexed without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
	// ErrGenerationUnavailable signals generation provider failure after retry
	// exhaustion; answering degrades to retrieved sources only.
	ErrGenerationUnavailable = errors.New("generation service unavailable")
)
