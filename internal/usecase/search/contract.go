package search

import (
	"context"

	"github.com/kailas-cloud/paperbase/internal/domain"
	"github.com/kailas-cloud/paperbase/internal/domain/doctype"
	"github.com/kailas-cloud/paperbase/internal/domain/search/result"
)

// Repository defines the storage contract for search operations.
type Repository interface {
	SearchKNN(ctx context.Context, scope doctype.Type, vector []float32, topK int) ([]result.Result, error)
	SearchBM25(ctx context.Context, scope doctype.Type, query string, topK int) ([]result.Result, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
