package ingest

import (
	"context"
	"iter"

	"github.com/kailas-cloud/paperbase/internal/domain"
	domchunk "github.com/kailas-cloud/paperbase/internal/domain/chunk"
	domdoc "github.com/kailas-cloud/paperbase/internal/domain/document"
)

// DocumentWriter persists document metadata and raw text.
type DocumentWriter interface {
	Upsert(ctx context.Context, doc *domdoc.Document) error
}

// ChunkWriter persists chunks and replaces a document's chunk set.
type ChunkWriter interface {
	Upsert(ctx context.Context, chunks []domchunk.Chunk) error
	DeleteByDocument(ctx context.Context, documentID string) error
}

// Chunker splits normalized text into semantically coherent pieces.
type Chunker interface {
	Chunk(text string) iter.Seq[string]
}

// Embedder vectorizes chunk texts in batch.
type Embedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}
