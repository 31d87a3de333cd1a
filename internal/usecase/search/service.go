// Package search retrieves chunks across semantic, lexical, and hybrid modes.
package search

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/paperbase/internal/domain/search/mode"
	"github.com/kailas-cloud/paperbase/internal/domain/search/request"
	"github.com/kailas-cloud/paperbase/internal/domain/search/result"
)

// Service handles chunk search across semantic, lexical, and hybrid modes.
type Service struct {
	repo  Repository
	embed Embedder
}

// New creates a search service.
func New(repo Repository, embed Embedder) *Service {
	return &Service{repo: repo, embed: embed}
}

// Search executes a chunk search in the requested mode and scope.
func (s *Service) Search(ctx context.Context, req *request.Request) ([]result.Result, error) {
	var (
		results []result.Result
		err     error
	)

	switch req.Mode() {
	case mode.Semantic:
		results, err = s.searchSemantic(ctx, req)
	case mode.Lexical:
		results, err = s.searchLexical(ctx, req)
	case mode.Hybrid:
		results, err = s.searchHybrid(ctx, req)
	default:
		return nil, fmt.Errorf("unsupported search mode: %s", req.Mode())
	}
	if err != nil {
		return nil, err
	}

	// Post-filter: min_score
	if req.MinScore() > 0 {
		filtered := results[:0]
		for _, r := range results {
			if r.Score() >= req.MinScore() {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}

	if len(results) > req.Limit() {
		results = results[:req.Limit()]
	}

	return results, nil
}

// searchSemantic embeds the query and runs KNN search.
func (s *Service) searchSemantic(ctx context.Context, req *request.Request) ([]result.Result, error) {
	embResult, err := s.embed.Embed(ctx, req.Query())
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	results, err := s.repo.SearchKNN(ctx, req.Scope(), embResult.Embedding, req.TopK())
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}
	return results, nil
}

// searchLexical runs BM25 search.
func (s *Service) searchLexical(ctx context.Context, req *request.Request) ([]result.Result, error) {
	results, err := s.repo.SearchBM25(ctx, req.Scope(), req.Query(), req.TopK())
	if err != nil {
		return nil, fmt.Errorf("search bm25: %w", err)
	}
	return results, nil
}

// searchHybrid runs KNN and BM25, then fuses via RRF.
func (s *Service) searchHybrid(ctx context.Context, req *request.Request) ([]result.Result, error) {
	embResult, err := s.embed.Embed(ctx, req.Query())
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	knnResults, err := s.repo.SearchKNN(ctx, req.Scope(), embResult.Embedding, req.TopK())
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}

	bm25Results, err := s.repo.SearchBM25(ctx, req.Scope(), req.Query(), req.TopK())
	if err != nil {
		return nil, fmt.Errorf("search bm25: %w", err)
	}

	return fuseRRF(knnResults, bm25Results, req.TopK()), nil
}
