// Package ingest runs the normalize-chunk-embed-index pipeline.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/paperbase/internal/domain"
	dombatch "github.com/kailas-cloud/paperbase/internal/domain/batch"
	domchunk "github.com/kailas-cloud/paperbase/internal/domain/chunk"
	"github.com/kailas-cloud/paperbase/internal/domain/doctype"
	domdoc "github.com/kailas-cloud/paperbase/internal/domain/document"
	"github.com/kailas-cloud/paperbase/internal/normalize"
)

// MaxBatchSize is the maximum number of documents per batch request.
const MaxBatchSize = 100

// Item is one document submitted for ingestion.
type Item struct {
	ID         string
	SourceType doctype.Type
	RawText    string
}

// Report summarizes a single successful ingestion.
type Report struct {
	DocumentID  string
	ChunkCount  int
	TotalTokens int
}

// Service ingests documents: normalize, chunk, embed, index.
type Service struct {
	docs         DocumentWriter
	chunks       ChunkWriter
	chunker      Chunker
	embed        Embedder
	maxBatchSize int
	logger       *zap.Logger
}

// New creates an ingestion service.
func New(docs DocumentWriter, chunks ChunkWriter, ch Chunker, embed Embedder, logger *zap.Logger) *Service {
	return &Service{
		docs: docs, chunks: chunks, chunker: ch, embed: embed,
		maxBatchSize: MaxBatchSize,
		logger:       logger,
	}
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// Ingest processes one document end to end. Re-ingesting an existing id
// replaces its stored document and chunk set wholesale; chunks are never
// indexed without embeddings.
func (s *Service) Ingest(ctx context.Context, item Item) (Report, error) {
	doc, err := domdoc.New(item.ID, item.SourceType, item.RawText, time.Now().UTC())
	if err != nil {
		return Report{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	normalized := normalize.Text(doc.RawText())
	if normalized == "" {
		return Report{}, fmt.Errorf("%w: no usable text after normalization", domain.ErrMalformedDocument)
	}

	var texts []string
	for piece := range s.chunker.Chunk(normalized) {
		texts = append(texts, piece)
	}
	if len(texts) == 0 {
		return Report{}, fmt.Errorf("%w: no chunks produced", domain.ErrMalformedDocument)
	}

	embRes, err := s.embed.BatchEmbed(ctx, texts)
	if err != nil {
		return Report{}, fmt.Errorf("embed chunks of %s: %w", doc.ID(), err)
	}

	chunks := make([]domchunk.Chunk, 0, len(texts))
	for seq, text := range texts {
		c, err := domchunk.New(doc.ID(), doc.SourceType(), text, seq)
		if err != nil {
			return Report{}, fmt.Errorf("build chunk %d of %s: %w", seq, doc.ID(), err)
		}
		chunks = append(chunks, c.WithVector(embRes.Embeddings[seq]))
	}

	// Drop the previous chunk set before writing the new one so a shrinking
	// document leaves no stale chunks behind.
	if err := s.chunks.DeleteByDocument(ctx, doc.ID()); err != nil {
		return Report{}, fmt.Errorf("supersede chunks of %s: %w", doc.ID(), err)
	}
	if err := s.docs.Upsert(ctx, &doc); err != nil {
		return Report{}, fmt.Errorf("store document %s: %w", doc.ID(), err)
	}
	if err := s.chunks.Upsert(ctx, chunks); err != nil {
		return Report{}, fmt.Errorf("store chunks of %s: %w", doc.ID(), err)
	}

	s.logger.Info("Document ingested",
		zap.String("document_id", doc.ID()),
		zap.String("source_type", string(doc.SourceType())),
		zap.Int("chunks", len(chunks)),
		zap.Int("tokens", embRes.TotalTokens),
	)

	return Report{
		DocumentID:  doc.ID(),
		ChunkCount:  len(chunks),
		TotalTokens: embRes.TotalTokens,
	}, nil
}

// IngestBatch processes documents independently: a malformed item is skipped
// and reported, an infrastructure failure is reported, and the rest of the
// batch proceeds either way.
func (s *Service) IngestBatch(ctx context.Context, items []Item) []dombatch.Result {
	results := make([]dombatch.Result, len(items))

	if len(items) > s.maxBatchSize {
		for i, item := range items {
			results[i] = dombatch.NewError(
				item.ID,
				fmt.Errorf("batch size exceeds %d: %w", s.maxBatchSize, domain.ErrInvalidRequest),
			)
		}
		return results
	}

	for i, item := range items {
		report, err := s.Ingest(ctx, item)
		switch {
		case err == nil:
			results[i] = dombatch.NewOK(item.ID, report.ChunkCount)
		case errors.Is(err, domain.ErrMalformedDocument) || errors.Is(err, domain.ErrInvalidRequest):
			s.logger.Warn("Skipping malformed document",
				zap.String("document_id", item.ID), zap.Error(err))
			results[i] = dombatch.NewSkipped(item.ID, err)
		default:
			results[i] = dombatch.NewError(item.ID, err)
		}
	}
	return results
}
