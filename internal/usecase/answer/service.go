// Package answer composes grounded answers with source citations.
package answer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/paperbase/internal/domain"
	"github.com/kailas-cloud/paperbase/internal/domain/search/mode"
	"github.com/kailas-cloud/paperbase/internal/domain/search/request"
	"github.com/kailas-cloud/paperbase/internal/domain/search/result"
)

// RefusalText is returned when no retrieved chunk clears the relevance bar.
// The generator is never called with empty context.
const RefusalText = "cannot answer from available documents"

// DefaultTopK is the number of chunks retrieved for grounding.
const DefaultTopK = 10

// Status describes how the answer was produced.
type Status string

// Answer status values.
const (
	// StatusAnswered means the generator composed a grounded answer.
	StatusAnswered Status = "answered"
	// StatusRefused means retrieval found nothing relevant enough.
	StatusRefused Status = "refused"
	// StatusDegraded means the generator was unavailable; only retrieved
	// sources are returned.
	StatusDegraded Status = "degraded"
)

// Source is one retrieved chunk backing the answer.
type Source struct {
	ChunkID    string
	DocumentID string
	Text       string
	Score      float64
}

// Answer is the outcome of answering one question.
// Citations are distinct source document ids, ordered.
type Answer struct {
	Text      string
	Citations []string
	Sources   []Source
	Status    Status
}

// Service answers questions over the indexed chunks.
type Service struct {
	search       Searcher
	generate     Generator
	topK         int
	minRelevance float64
	logger       *zap.Logger
}

// New creates an answering service. minRelevance is in the fused-score scale
// and filters retrieval before the generator sees anything.
func New(search Searcher, generate Generator, minRelevance float64, logger *zap.Logger) *Service {
	return &Service{
		search:       search,
		generate:     generate,
		topK:         DefaultTopK,
		minRelevance: minRelevance,
		logger:       logger,
	}
}

// WithTopK configures how many chunks are retrieved for grounding.
func (s *Service) WithTopK(topK int) *Service {
	if topK > 0 {
		s.topK = topK
	}
	return s
}

// Answer retrieves grounding chunks in hybrid mode and delegates composition
// to the generator. Generator failure degrades to retrieved sources only.
func (s *Service) Answer(ctx context.Context, question string) (Answer, error) {
	req, err := request.New(question, mode.Hybrid, "", s.topK, s.topK, s.minRelevance)
	if err != nil {
		return Answer{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	results, err := s.search.Search(ctx, &req)
	if err != nil {
		return Answer{}, fmt.Errorf("retrieve grounding: %w", err)
	}

	if len(results) == 0 {
		return Answer{Text: RefusalText, Status: StatusRefused}, nil
	}

	passages := make([]domain.Passage, len(results))
	for i := range results {
		r := &results[i]
		passages[i] = domain.Passage{
			ChunkID:    r.ChunkID(),
			DocumentID: r.DocumentID(),
			Text:       r.Text(),
		}
	}

	gen, err := s.generate.Generate(ctx, question, passages)
	if err != nil {
		if errors.Is(err, domain.ErrGenerationUnavailable) {
			s.logger.Warn("Generator unavailable, returning sources only", zap.Error(err))
			return Answer{
				Citations: distinctDocumentIDs(resultChunkIDs(results), results),
				Sources:   toSources(results),
				Status:    StatusDegraded,
			}, nil
		}
		return Answer{}, fmt.Errorf("generate answer: %w", err)
	}

	return Answer{
		Text:      gen.Text,
		Citations: distinctDocumentIDs(gen.UsedChunkIDs, results),
		Sources:   toSources(results),
		Status:    StatusAnswered,
	}, nil
}

// distinctDocumentIDs maps used chunk ids to their document ids, keeping
// first-use order and dropping duplicates and ids that were not retrieved.
func distinctDocumentIDs(chunkIDs []string, results []result.Result) []string {
	docByChunk := make(map[string]string, len(results))
	for i := range results {
		docByChunk[results[i].ChunkID()] = results[i].DocumentID()
	}

	var cited []string
	seen := make(map[string]bool)
	for _, id := range chunkIDs {
		doc, ok := docByChunk[id]
		if !ok || seen[doc] {
			continue
		}
		seen[doc] = true
		cited = append(cited, doc)
	}
	return cited
}

func resultChunkIDs(results []result.Result) []string {
	ids := make([]string, len(results))
	for i := range results {
		ids[i] = results[i].ChunkID()
	}
	return ids
}

func toSources(results []result.Result) []Source {
	sources := make([]Source, len(results))
	for i := range results {
		r := &results[i]
		sources[i] = Source{
			ChunkID:    r.ChunkID(),
			DocumentID: r.DocumentID(),
			Text:       r.Text(),
			Score:      r.Score(),
		}
	}
	return sources
}
