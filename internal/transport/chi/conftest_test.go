package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"go.uber.org/zap"

	dombatch "github.com/kailas-cloud/paperbase/internal/domain/batch"
	"github.com/kailas-cloud/paperbase/internal/domain/field"
	domform "github.com/kailas-cloud/paperbase/internal/domain/form"
	"github.com/kailas-cloud/paperbase/internal/domain/search/request"
	"github.com/kailas-cloud/paperbase/internal/domain/search/result"
	"github.com/kailas-cloud/paperbase/internal/knowledge"
	"github.com/kailas-cloud/paperbase/internal/usecase/answer"
	healthuc "github.com/kailas-cloud/paperbase/internal/usecase/health"
	"github.com/kailas-cloud/paperbase/internal/usecase/ingest"
)

type mockIngester struct {
	ingestBatchFn func(ctx context.Context, items []ingest.Item) []dombatch.Result
}

func (m *mockIngester) Ingest(_ context.Context, item ingest.Item) (ingest.Report, error) {
	return ingest.Report{DocumentID: item.ID, ChunkCount: 1}, nil
}

func (m *mockIngester) IngestBatch(ctx context.Context, items []ingest.Item) []dombatch.Result {
	if m.ingestBatchFn != nil {
		return m.ingestBatchFn(ctx, items)
	}
	results := make([]dombatch.Result, 0, len(items))
	for _, item := range items {
		results = append(results, dombatch.NewOK(item.ID, 2))
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
	return answer.Answer{Text: answer.RefusalText, Status: answer.StatusRefused}, nil
}

type mockTracker struct {
	recordFn   func(ctx context.Context, fieldName, value, sourceDocumentID string, extractedAt time.Time) error
	resolveFn  func(ctx context.Context, fieldName string) (field.Resolution, error)
	resolveAll func(ctx context.Context) ([]field.Resolution, error)
}

func (m *mockTracker) Record(
	ctx context.Context, fieldName, value, sourceDocumentID string, extractedAt time.Time,
) error {
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
	out := make(map[string]domform.FillResult, len(f.Fields()))
	for _, fld := range f.Fields() {
		out[fld.Name()] = domform.FillResult{Status: domform.StatusMissing, Position: fld.Position(), Reason: "no observations recorded"}
	}
	return out, nil
}

type mockPinger struct {
	pingFn func(ctx context.Context) error
}

func (m *mockPinger) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

type testDeps struct {
	ingester *mockIngester
	searcher *mockSearcher
	answerer *mockAnswerer
	tracker  *mockTracker
	forms    *mockForms
	pinger   *mockPinger
}

func newTestServer(deps *testDeps) *httptest.Server {
	app := knowledge.New(
		deps.ingester, deps.searcher, deps.answerer,
		deps.tracker, deps.forms, nil, zap.NewNop(),
	)
	health := healthuc.New(deps.pinger, nil, nil)
	srv := NewServer(app, health, zap.NewNop())
	return httptest.NewServer(NewRouter(srv, nil))
}

func newTestDeps() *testDeps {
	return &testDeps{
		ingester: &mockIngester{},
		searcher: &mockSearcher{},
		answerer: &mockAnswerer{},
		tracker:  &mockTracker{},
		forms:    &mockForms{},
		pinger:   &mockPinger{},
	}
}

func doJSON(method, url, body string) (*http.Response, error) {
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return http.DefaultClient.Do(req)
}
