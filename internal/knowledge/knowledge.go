// Package knowledge is the library facade over the document pipeline:
// ingestion, search, answering, field tracking, and form fill.
package knowledge

import (
	"context"
	"time"

	"go.uber.org/zap"

	dombatch "github.com/kailas-cloud/paperbase/internal/domain/batch"
	"github.com/kailas-cloud/paperbase/internal/domain/field"
	domform "github.com/kailas-cloud/paperbase/internal/domain/form"
	"github.com/kailas-cloud/paperbase/internal/domain/search/request"
	"github.com/kailas-cloud/paperbase/internal/domain/search/result"
	"github.com/kailas-cloud/paperbase/internal/usecase/answer"
	"github.com/kailas-cloud/paperbase/internal/usecase/ingest"
)

// Service wires the pipeline stages behind one surface. Ingestion also feeds
// the field tracker through the FieldParser collaborator.
type Service struct {
	ingester Ingester
	searcher Searcher
	answerer Answerer
	fields   FieldTracker
	forms    FormResolver
	parser   FieldParser
	logger   *zap.Logger
}

// New creates the knowledge facade. parser may be nil to disable field
// extraction during ingestion.
func New(
	ingester Ingester,
	searcher Searcher,
	answerer Answerer,
	fields FieldTracker,
	forms FormResolver,
	parser FieldParser,
	logger *zap.Logger,
) *Service {
	return &Service{
		ingester: ingester,
		searcher: searcher,
		answerer: answerer,
		fields:   fields,
		forms:    forms,
		parser:   parser,
		logger:   logger,
	}
}

// Ingest runs the pipeline for one document, then extracts structured fields
// from the raw text into the observation log. Extraction failures are logged
// and do not fail the ingestion: the document is already indexed.
func (s *Service) Ingest(ctx context.Context, item ingest.Item) (ingest.Report, error) {
	report, err := s.ingester.Ingest(ctx, item)
	if err != nil {
		return ingest.Report{}, err
	}

	s.extractFields(ctx, item)
	return report, nil
}

// IngestBatch ingests documents independently and extracts fields from each
// successful item.
func (s *Service) IngestBatch(ctx context.Context, items []ingest.Item) []dombatch.Result {
	results := s.ingester.IngestBatch(ctx, items)
	for i, r := range results {
		if r.Status() == dombatch.StatusOK {
			s.extractFields(ctx, items[i])
		}
	}
	return results
}

func (s *Service) extractFields(ctx context.Context, item ingest.Item) {
	if s.parser == nil {
		return
	}

	extractedAt := time.Now().UTC()
	for _, pf := range s.parser.Parse(item.RawText) {
		if err := s.fields.Record(ctx, pf.Name, pf.Value, item.ID, extractedAt); err != nil {
			s.logger.Warn("Failed to record extracted field",
				zap.String("field", pf.Name),
				zap.String("document_id", item.ID),
				zap.Error(err),
			)
		}
	}
}

// Search retrieves chunks for a validated request.
func (s *Service) Search(ctx context.Context, req *request.Request) ([]result.Result, error) {
	return s.searcher.Search(ctx, req)
}

// Answer answers a question grounded in the indexed chunks.
func (s *Service) Answer(ctx context.Context, question string) (answer.Answer, error) {
	return s.answerer.Answer(ctx, question)
}

// RecordField appends one observation to the field log.
func (s *Service) RecordField(
	ctx context.Context, fieldName, value, sourceDocumentID string, extractedAt time.Time,
) error {
	return s.fields.Record(ctx, fieldName, value, sourceDocumentID, extractedAt)
}

// ResolveField derives the current resolution of one field.
func (s *Service) ResolveField(ctx context.Context, fieldName string) (field.Resolution, error) {
	return s.fields.Resolve(ctx, fieldName)
}

// ResolveAllFields derives resolutions for every tracked field.
func (s *Service) ResolveAllFields(ctx context.Context) ([]field.Resolution, error) {
	return s.fields.ResolveAll(ctx)
}

// ResolveForm fills a form template from the tracker state.
func (s *Service) ResolveForm(ctx context.Context, f *domform.Form) (map[string]domform.FillResult, error) {
	return s.forms.ResolveForm(ctx, f)
}
