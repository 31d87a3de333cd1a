package knowledge

import (
	"context"
	"sort"
	"time"

	dombatch "github.com/kailas-cloud/paperbase/internal/domain/batch"
	"github.com/kailas-cloud/paperbase/internal/domain/field"
	domform "github.com/kailas-cloud/paperbase/internal/domain/form"
	"github.com/kailas-cloud/paperbase/internal/domain/search/request"
	"github.com/kailas-cloud/paperbase/internal/domain/search/result"
	"github.com/kailas-cloud/paperbase/internal/usecase/answer"
	"github.com/kailas-cloud/paperbase/internal/usecase/ingest"
)

type mockIngester struct {
	ingestFn      func(ctx context.Context, item ingest.Item) (ingest.Report, error)
	ingestBatchFn func(ctx context.Context, items []ingest.Item) []dombatch.Result
}

func (m *mockIngester) Ingest(ctx context.Context, item ingest.Item) (ingest.Report, error) {
	if m.ingestFn != nil {
		return m.ingestFn(ctx, item)
	}
	return ingest.Report{DocumentID: item.ID, ChunkCount: 1, TotalTokens: 5}, nil
}

func (m *mockIngester) IngestBatch(ctx context.Context, items []ingest.Item) []dombatch.Result {
	if m.ingestBatchFn != nil {
		return m.ingestBatchFn(ctx, items)
	}
	results := make([]dombatch.Result, 0, len(items))
	for _, item := range items {
		results = append(results, dombatch.NewOK(item.ID, 1))
	}
	return results
}

type mockSearcher struct {
	searchFn func(ctx context.Context, req *request.Request) ([]result.Result, error)
}

func (m *mockSearcher) Search(ctx context.Context, req *request.Request) ([]result.Result, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, req)
	}
	return nil, nil
}

type mockAnswerer struct {
	answerFn func(ctx context.Context, question string) (answer.Answer, error)
}

func (m *mockAnswerer) Answer(ctx context.Context, question string) (answer.Answer, error) {
	if m.answerFn != nil {
		return m.answerFn(ctx, question)
	}
	return answer.Answer{Status: answer.StatusRefused, Text: answer.RefusalText}, nil
}

type recordedField struct {
	name        string
	value       string
	sourceDocID string
	extractedAt time.Time
}

type mockTracker struct {
	recorded   []recordedField
	recordFn   func(ctx context.Context, fieldName, value, sourceDocumentID string, extractedAt time.Time) error
	resolveFn  func(ctx context.Context, fieldName string) (field.Resolution, error)
	resolveAll func(ctx context.Context) ([]field.Resolution, error)
}

func (m *mockTracker) Record(
	ctx context.Context, fieldName, value, sourceDocumentID string, extractedAt time.Time,
) error {
	m.recorded = append(m.recorded, recordedField{fieldName, value, sourceDocumentID, extractedAt})
	if m.recordFn != nil {
		return m.recordFn(ctx, fieldName, value, sourceDocumentID, extractedAt)
	}
	return nil
}

func (m *mockTracker) Resolve(ctx context.Context, fieldName string) (field.Resolution, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, fieldName)
	}
	return field.Resolve(fieldName, nil), nil
}

func (m *mockTracker) ResolveAll(ctx context.Context) ([]field.Resolution, error) {
	if m.resolveAll != nil {
		return m.resolveAll(ctx)
	}
	return nil, nil
}

type mockForms struct {
	resolveFormFn func(ctx context.Context, f *domform.Form) (map[string]domform.FillResult, error)
}

func (m *mockForms) ResolveForm(ctx context.Context, f *domform.Form) (map[string]domform.FillResult, error) {
	if m.resolveFormFn != nil {
		return m.resolveFormFn(ctx, f)
	}
	return map[string]domform.FillResult{}, nil
}

// memLog is an in-memory observation log for wiring the real field tracker
// in end-to-end tests.
type memLog struct {
	observations []field.Observation
}

func (l *memLog) Append(_ context.Context, obs field.Observation) error {
	l.observations = append(l.observations, obs)
	return nil
}

func (l *memLog) List(_ context.Context, fieldName string) ([]field.Observation, error) {
	var out []field.Observation
	for _, obs := range l.observations {
		if obs.FieldName() == fieldName {
			out = append(out, obs)
		}
	}
	return out, nil
}

func (l *memLog) ListAll(_ context.Context) ([]field.Observation, error) {
	out := make([]field.Observation, len(l.observations))
	copy(out, l.observations)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ExtractedAt().Before(out[j].ExtractedAt())
	})
	return out, nil
}
