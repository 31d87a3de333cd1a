// Package chunk persists chunks into per-type and combined FT indexes.
package chunk

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/paperbase/internal/db"
	"github.com/kailas-cloud/paperbase/internal/domain"
	domchunk "github.com/kailas-cloud/paperbase/internal/domain/chunk"
	"github.com/kailas-cloud/paperbase/internal/domain/doctype"
	"github.com/kailas-cloud/paperbase/internal/domain/search/result"
)

// store is the consumer interface for chunk persistence.
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	DelMulti(ctx context.Context, keys []string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchBM25(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// HNSWConfig tunes the vector index build parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo implements chunk storage and retrieval over FT indexes.
type Repo struct {
	store     store
	vectorDim int
	hnsw      HNSWConfig
}

// New creates a chunk repository.
func New(s store, vectorDim int) *Repo {
	return &Repo{store: s, vectorDim: vectorDim}
}

// WithHNSW sets HNSW build parameters for index creation.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	r.hnsw = cfg
	return r
}

// EnsureIndexes creates the per-type indexes and the combined index if absent.
// The combined index covers every per-type key prefix, so each chunk is
// written once and searchable in both scopes.
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	for _, t := range doctype.All() {
		if err := r.ensureIndex(ctx, indexName(t), []string{keyPrefix(t)}); err != nil {
			return err
		}
	}

	prefixes := make([]string, 0, len(doctype.All()))
	for _, t := range doctype.All() {
		prefixes = append(prefixes, keyPrefix(t))
	}
	return r.ensureIndex(ctx, combinedIndexName(), prefixes)
}

func (r *Repo) ensureIndex(ctx context.Context, name string, prefixes []string) error {
	exists, err := r.store.IndexExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check index %s: %w", name, err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     name,
		Prefixes: prefixes,
		Fields: []db.IndexField{
			{Name: "text", Type: db.IndexFieldText},
			{Name: "document_id", Type: db.IndexFieldTag},
			{Name: "source_type", Type: db.IndexFieldTag},
			{Name: "seq", Type: db.IndexFieldNumeric},
			{
				Name:              "vector",
				Type:              db.IndexFieldVector,
				VectorAlgo:        db.VectorHNSW,
				VectorDim:         r.vectorDim,
				VectorDistance:    db.DistanceCosine,
				VectorM:           r.hnsw.M,
				VectorEFConstruct: r.hnsw.EFConstruct,
			},
		},
	}

	if err := r.store.CreateIndex(ctx, def); err != nil && err != db.ErrIndexExists {
		return fmt.Errorf("create index %s: %w", name, err)
	}
	return nil
}

// Upsert writes chunks in one pipelined round-trip. Writing the same chunk id
// again overwrites the full field set: last write wins, no duplicates.
func (r *Repo) Upsert(ctx context.Context, chunks []domchunk.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, len(chunks))
	for i := range chunks {
		c := &chunks[i]
		items[i] = db.HashSetItem{
			Key:    chunkKey(c.SourceType(), c.ID()),
			Fields: buildHashFields(c),
		}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("upsert %d chunks: %w", len(chunks), err)
	}
	return nil
}

// DeleteByDocument removes every stored chunk of a document across all
// source types. Used on re-ingestion to replace the chunk set wholesale.
func (r *Repo) DeleteByDocument(ctx context.Context, documentID string) error {
	pattern := fmt.Sprintf("%schunk:*:%s:*", domain.KeyPrefix, documentID)
	keys, err := r.store.Scan(ctx, pattern)
	if err != nil {
		return fmt.Errorf("scan chunks of %s: %w", documentID, err)
	}
	if err := r.store.DelMulti(ctx, keys); err != nil {
		return fmt.Errorf("delete chunks of %s: %w", documentID, err)
	}
	return nil
}

// SearchKNN performs vector similarity search within the given scope.
// A zero-value scope searches the combined index.
func (r *Repo) SearchKNN(
	ctx context.Context, scope doctype.Type, vector []float32, topK int,
) ([]result.Result, error) {
	q := &db.KNNQuery{
		IndexName:    scopeIndexName(scope),
		Vector:       vector,
		K:            topK,
		ReturnFields: []string{"text", "document_id", "seq", "vector", "__vector_score"},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn scope %q: %w", scope, err)
	}
	return parseEntries(sr, true), nil
}

// SearchBM25 performs lexical search within the given scope.
// A zero-value scope searches the combined index.
func (r *Repo) SearchBM25(
	ctx context.Context, scope doctype.Type, query string, topK int,
) ([]result.Result, error) {
	q := &db.TextQuery{
		IndexName:    scopeIndexName(scope),
		Query:        query,
		TopK:         topK,
		ReturnFields: []string{"text", "document_id", "seq"},
	}

	sr, err := r.store.SearchBM25(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search bm25 scope %q: %w", scope, err)
	}
	return parseEntries(sr, false), nil
}

// Count returns the number of indexed chunks in the given scope.
func (r *Repo) Count(ctx context.Context, scope doctype.Type) (int, error) {
	n, err := r.store.SearchCount(ctx, scopeIndexName(scope), "*")
	if err != nil {
		return 0, fmt.Errorf("count scope %q: %w", scope, err)
	}
	return n, nil
}

func scopeIndexName(scope doctype.Type) string {
	if scope == "" {
		return combinedIndexName()
	}
	return indexName(scope)
}

func keyPrefix(t doctype.Type) string {
	return fmt.Sprintf("%schunk:%s:", domain.KeyPrefix, t)
}

func chunkKey(t doctype.Type, chunkID string) string {
	return keyPrefix(t) + chunkID
}

func indexName(t doctype.Type) string {
	return fmt.Sprintf("%schunks:%s:idx", domain.KeyPrefix, t)
}

func combinedIndexName() string {
	return fmt.Sprintf("%schunks:all:idx", domain.KeyPrefix)
}
