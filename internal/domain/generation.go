package domain

import "context"

// Passage is one retrieved chunk supplied to the generator as grounding context.
type Passage struct {
	ChunkID    string
	DocumentID string
	Text       string
}

// GenerationResult is the generator's schema-validated response.
// UsedChunkIDs lists the passages the answer actually drew on; the caller
// maps them to citations.
type GenerationResult struct {
	Text         string
	UsedChunkIDs []string
	TotalTokens  int
}

// Generator composes a grounded answer from a question and passages.
// Implementations must return ErrGenerationUnavailable (wrapped) on provider
// failure or on a response that does not match the contract.
type Generator interface {
	Generate(ctx context.Context, question string, passages []Passage) (GenerationResult, error)
}
