// Package chunk defines the retrieval unit produced by the chunker.
package chunk

import (
	"fmt"

	"github.com/kailas-cloud/paperbase/internal/domain/doctype"
)

// Chunk is a contiguous slice of a document's normalized text.
// Chunks are created by the chunker and owned by the indexer; a re-ingested
// document replaces its chunk set wholesale.
type Chunk struct {
	id         string
	documentID string
	sourceType doctype.Type
	text       string
	seq        int
	vector     []float32
}

// New validates and creates a Chunk. The id is derived from the owning
// document and the sequence index so re-indexing is an upsert.
func New(documentID string, sourceType doctype.Type, text string, seq int) (Chunk, error) {
	if documentID == "" {
		return Chunk{}, fmt.Errorf("document ID is required")
	}
	if !sourceType.IsValid() {
		return Chunk{}, fmt.Errorf("unknown source type %q", sourceType)
	}
	if text == "" {
		return Chunk{}, fmt.Errorf("chunk text is required")
	}
	if seq < 0 {
		return Chunk{}, fmt.Errorf("sequence index must be non-negative")
	}

	return Chunk{
		id:         fmt.Sprintf("%s:%d", documentID, seq),
		documentID: documentID,
		sourceType: sourceType,
		text:       text,
		seq:        seq,
	}, nil
}

// Reconstruct creates a Chunk without validation (storage hydration).
func Reconstruct(id, documentID string, sourceType doctype.Type, text string, seq int, vector []float32) Chunk {
	return Chunk{id: id, documentID: documentID, sourceType: sourceType, text: text, seq: seq, vector: vector}
}

// ID returns the chunk identifier.
func (c *Chunk) ID() string { return c.id }

// DocumentID returns the owning document identifier.
func (c *Chunk) DocumentID() string { return c.documentID }

// SourceType returns the owning document's source format.
func (c *Chunk) SourceType() doctype.Type { return c.sourceType }

// Text returns the chunk text.
func (c *Chunk) Text() string { return c.text }

// Seq returns the chunk position within its document.
func (c *Chunk) Seq() int { return c.seq }

// Vector returns the embedding vector.
func (c *Chunk) Vector() []float32 { return c.vector }

// WithVector returns a copy with the given vector set.
func (c *Chunk) WithVector(v []float32) Chunk {
	out := *c
	out.vector = v
	return out
}
