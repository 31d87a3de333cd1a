package search

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/paperbase/internal/domain"
	"github.com/kailas-cloud/paperbase/internal/domain/doctype"
	"github.com/kailas-cloud/paperbase/internal/domain/search/mode"
	"github.com/kailas-cloud/paperbase/internal/domain/search/request"
	"github.com/kailas-cloud/paperbase/internal/domain/search/result"
)

type mockRepo struct {
	knnResults  []result.Result
	knnErr      error
	bm25Results []result.Result
	bm25Err     error
	knnCalled   bool
	bm25Called  bool
	lastScope   doctype.Type
}

func (m *mockRepo) SearchKNN(
	_ context.Context, scope doctype.Type, _ []float32, _ int,
) ([]result.Result, error) {
	m.knnCalled = true
	m.lastScope = scope
	return m.knnResults, m.knnErr
}

func (m *mockRepo) SearchBM25(
	_ context.Context, scope doctype.Type, _ string, _ int,
) ([]result.Result, error) {
	m.bm25Called = true
	m.lastScope = scope
	return m.bm25Results, m.bm25Err
}

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	calls  int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	return m.result, m.err
}

func newRequest(t *testing.T, m mode.Mode, scope doctype.Type, minScore float64) *request.Request {
	t.Helper()
	req, err := request.New("test query", m, scope, 10, 10, minScore)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return &req
}

func scoredResult(id string, score float64) result.Result {
	return result.New(id, "doc-1", score, "text", 0, nil)
}

func TestSearch_SemanticUsesKNNOnly(t *testing.T) {
	repo := &mockRepo{knnResults: []result.Result{scoredResult("a", 0.9)}}
	embed := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	svc := New(repo, embed)

	results, err := svc.Search(context.Background(), newRequest(t, mode.Semantic, "", 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !repo.knnCalled || repo.bm25Called {
		t.Errorf("semantic mode: knn=%v bm25=%v", repo.knnCalled, repo.bm25Called)
	}
	if embed.calls != 1 {
		t.Errorf("expected 1 embed call, got %d", embed.calls)
	}
	if len(results) != 1 || results[0].ChunkID() != "a" {
		t.Errorf("unexpected results %v", results)
	}
}

func TestSearch_LexicalSkipsEmbedding(t *testing.T) {
	repo := &mockRepo{bm25Results: []result.Result{scoredResult("a", 1.5)}}
	embed := &mockEmbedder{err: errors.New("must not be called")}
	svc := New(repo, embed)

	results, err := svc.Search(context.Background(), newRequest(t, mode.Lexical, "", 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if repo.knnCalled || !repo.bm25Called {
		t.Errorf("lexical mode: knn=%v bm25=%v", repo.knnCalled, repo.bm25Called)
	}
	if embed.calls != 0 {
		t.Errorf("lexical mode must not embed, got %d calls", embed.calls)
	}
	if len(results) != 1 {
		t.Errorf("unexpected results %v", results)
	}
}

func TestSearch_HybridFusesBothRankings(t *testing.T) {
	repo := &mockRepo{
		knnResults:  []result.Result{scoredResult("a", 0.9), scoredResult("b", 0.8)},
		bm25Results: []result.Result{scoredResult("b", 2.0), scoredResult("c", 1.0)},
	}
	embed := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	svc := New(repo, embed)

	results, err := svc.Search(context.Background(), newRequest(t, mode.Hybrid, "", 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !repo.knnCalled || !repo.bm25Called {
		t.Errorf("hybrid mode must run both searches")
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 fused results, got %d", len(results))
	}
	// "b" appears in both rankings and must lead
	if results[0].ChunkID() != "b" {
		t.Errorf("expected 'b' first, got %s", results[0].ChunkID())
	}
}

func TestSearch_ScopePassedThrough(t *testing.T) {
	repo := &mockRepo{}
	embed := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	svc := New(repo, embed)

	if _, err := svc.Search(context.Background(), newRequest(t, mode.Semantic, doctype.CSV, 0)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastScope != doctype.CSV {
		t.Errorf("scope = %q, want csv", repo.lastScope)
	}
}

func TestSearch_MinScoreFilters(t *testing.T) {
	repo := &mockRepo{knnResults: []result.Result{
		scoredResult("a", 0.9),
		scoredResult("b", 0.4),
		scoredResult("c", 0.1),
	}}
	embed := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	svc := New(repo, embed)

	results, err := svc.Search(context.Background(), newRequest(t, mode.Semantic, "", 0.5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].ChunkID() != "a" {
		t.Errorf("expected only 'a' above 0.5, got %v", results)
	}
}

func TestSearch_EmbedderFailure(t *testing.T) {
	repo := &mockRepo{}
	embed := &mockEmbedder{err: domain.ErrEmbeddingUnavailable}
	svc := New(repo, embed)

	_, err := svc.Search(context.Background(), newRequest(t, mode.Hybrid, "", 0))
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
	}
	if repo.knnCalled || repo.bm25Called {
		t.Error("no search should run when embedding fails")
	}
}

func TestSearch_RepoFailure(t *testing.T) {
	wantErr := errors.New("index gone")
	repo := &mockRepo{bm25Err: wantErr}
	embed := &mockEmbedder{}
	svc := New(repo, embed)

	_, err := svc.Search(context.Background(), newRequest(t, mode.Lexical, "", 0))
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected repo error, got %v", err)
	}
}
