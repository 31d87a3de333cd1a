package answer

import (
	"context"

	"github.com/kailas-cloud/paperbase/internal/domain"
	"github.com/kailas-cloud/paperbase/internal/domain/search/request"
	"github.com/kailas-cloud/paperbase/internal/domain/search/result"
)

// Searcher retrieves chunks for grounding.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) ([]result.Result, error)
}

// Generator composes a grounded answer from retrieved passages.
type Generator interface {
	Generate(ctx context.Context, question string, passages []domain.Passage) (domain.GenerationResult, error)
}
