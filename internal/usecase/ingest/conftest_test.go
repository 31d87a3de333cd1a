package ingest

import (
	"context"
	"iter"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/paperbase/internal/domain"
	domchunk "github.com/kailas-cloud/paperbase/internal/domain/chunk"
	domdoc "github.com/kailas-cloud/paperbase/internal/domain/document"
)

type mockDocs struct {
	upsertFn func(ctx context.Context, doc *domdoc.Document) error
	upserted []string
}

func (m *mockDocs) Upsert(ctx context.Context, doc *domdoc.Document) error {
	m.upserted = append(m.upserted, doc.ID())
	if m.upsertFn != nil {
		return m.upsertFn(ctx, doc)
	}
	return nil
}

type mockChunks struct {
	upsertFn func(ctx context.Context, chunks []domchunk.Chunk) error
	deleteFn func(ctx context.Context, documentID string) error
	upserted [][]domchunk.Chunk
	deleted  []string
}

func (m *mockChunks) Upsert(ctx context.Context, chunks []domchunk.Chunk) error {
	m.upserted = append(m.upserted, chunks)
	if m.upsertFn != nil {
		return m.upsertFn(ctx, chunks)
	}
	return nil
}

func (m *mockChunks) DeleteByDocument(ctx context.Context, documentID string) error {
	m.deleted = append(m.deleted, documentID)
	if m.deleteFn != nil {
		return m.deleteFn(ctx, documentID)
	}
	return nil
}

// sentenceChunker splits on ". " so chunk boundaries are predictable in tests.
type sentenceChunker struct{}

func (sentenceChunker) Chunk(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, part := range strings.Split(text, ". ") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if !yield(part) {
				return
			}
		}
	}
}

type mockEmbedder struct {
	batchFn func(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
	calls   int
}

func (m *mockEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.calls++
	if m.batchFn != nil {
		return m.batchFn(ctx, texts)
	}
	embeddings := make([][]float32, len(texts))
	for i := range texts {
		embeddings[i] = []float32{0.1, 0.2}
	}
	return domain.BatchEmbeddingResult{Embeddings: embeddings, TotalTokens: 5 * len(texts)}, nil
}

func newTestService(_ *testing.T) (*Service, *mockDocs, *mockChunks, *mockEmbedder) {
	docs := &mockDocs{}
	chunks := &mockChunks{}
	embed := &mockEmbedder{}
	svc := New(docs, chunks, sentenceChunker{}, embed, zap.NewNop())
	return svc, docs, chunks, embed
}
