package knowledge

import (
	"context"
	"time"

	dombatch "github.com/kailas-cloud/paperbase/internal/domain/batch"
	"github.com/kailas-cloud/paperbase/internal/domain/field"
	domform "github.com/kailas-cloud/paperbase/internal/domain/form"
	"github.com/kailas-cloud/paperbase/internal/domain/search/request"
	"github.com/kailas-cloud/paperbase/internal/domain/search/result"
	"github.com/kailas-cloud/paperbase/internal/usecase/answer"
	"github.com/kailas-cloud/paperbase/internal/usecase/ingest"
)

// Ingester runs the document ingestion pipeline.
type Ingester interface {
	Ingest(ctx context.Context, item ingest.Item) (ingest.Report, error)
	IngestBatch(ctx context.Context, items []ingest.Item) []dombatch.Result
}

// Searcher retrieves chunks.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) ([]result.Result, error)
}

// Answerer composes grounded answers.
type Answerer interface {
	Answer(ctx context.Context, question string) (answer.Answer, error)
}

// FieldTracker records observations and derives resolutions.
type FieldTracker interface {
	Record(ctx context.Context, fieldName, value, sourceDocumentID string, extractedAt time.Time) error
	Resolve(ctx context.Context, fieldName string) (field.Resolution, error)
	ResolveAll(ctx context.Context) ([]field.Resolution, error)
}

// FormResolver fills form templates from the tracker.
type FormResolver interface {
	ResolveForm(ctx context.Context, f *domform.Form) (map[string]domform.FillResult, error)
}
