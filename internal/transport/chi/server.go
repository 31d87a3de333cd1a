// Package chi exposes the knowledge pipeline over a REST API.
package chi

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/paperbase/internal/domain"
	dombatch "github.com/kailas-cloud/paperbase/internal/domain/batch"
	"github.com/kailas-cloud/paperbase/internal/domain/doctype"
	"github.com/kailas-cloud/paperbase/internal/domain/field"
	domform "github.com/kailas-cloud/paperbase/internal/domain/form"
	"github.com/kailas-cloud/paperbase/internal/domain/search/mode"
	"github.com/kailas-cloud/paperbase/internal/domain/search/request"
	"github.com/kailas-cloud/paperbase/internal/knowledge"
	logpkg "github.com/kailas-cloud/paperbase/internal/logger"
	"github.com/kailas-cloud/paperbase/internal/pdfextract"
	"github.com/kailas-cloud/paperbase/internal/usecase/answer"
	healthuc "github.com/kailas-cloud/paperbase/internal/usecase/health"
	"github.com/kailas-cloud/paperbase/internal/usecase/ingest"
)

const maxBatchSize = 100

type errorCode string

// Wire error codes.
const (
	codeBadRequest            errorCode = "bad_request"
	codeValidationFailed      errorCode = "validation_failed"
	codeDocumentNotFound      errorCode = "document_not_found"
	codeMalformedDocument     errorCode = "malformed_document"
	codeRateLimited           errorCode = "rate_limited"
	codeEmbeddingUnavailable  errorCode = "embedding_unavailable"
	codeGenerationUnavailable errorCode = "generation_unavailable"
	codeInternalError         errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP front of the knowledge facade.
type Server struct {
	app           *knowledge.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(app *knowledge.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		app:    app,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrMalformedDocument, http.StatusBadRequest, codeMalformedDocument),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, codeDocumentNotFound),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited),
		sentinelHandler(domain.ErrEmbeddingUnavailable, http.StatusBadGateway, codeEmbeddingUnavailable),
		sentinelHandler(domain.ErrGenerationUnavailable, http.StatusBadGateway, codeGenerationUnavailable),
	}
	return s
}

type ingestItemRequest struct {
	ID            string `json:"id,omitempty"`
	SourceType    string `json:"source_type"`
	Content       string `json:"content,omitempty"`
	ContentBase64 string `json:"content_base64,omitempty"`
}

type ingestRequest struct {
	Documents []ingestItemRequest `json:"documents"`
}

type ingestResultItem struct {
	ID     string         `json:"id"`
	Status string         `json:"status"`
	Chunks int            `json:"chunks,omitempty"`
	Error  *errorResponse `json:"error,omitempty"`
}

type ingestResponse struct {
	Items     []ingestResultItem `json:"items"`
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
}

// IngestDocuments handles POST /api/v1/documents. Documents are processed
// independently; a malformed item is reported in its slot and never aborts
// the rest of the batch.
func (s *Server) IngestDocuments(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if len(req.Documents) == 0 || len(req.Documents) > maxBatchSize {
		writeError(w, http.StatusBadRequest, codeValidationFailed,
			fmt.Sprintf("documents count must be between 1 and %d", maxBatchSize))
		return
	}

	items := make([]ingest.Item, 0, len(req.Documents))
	for _, d := range req.Documents {
		item, err := s.itemFromRequest(d)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
			return
		}
		items = append(items, item)
	}

	results := s.app.IngestBatch(r.Context(), items)

	succeeded, failed := 0, 0
	out := make([]ingestResultItem, len(results))
	for i, res := range results {
		out[i] = batchResultToWire(res)
		if res.Status() == dombatch.StatusOK {
			succeeded++
		} else {
			failed++
		}
	}

	writeJSON(w, http.StatusOK, ingestResponse{Items: out, Succeeded: succeeded, Failed: failed})
}

// itemFromRequest builds one pipeline item. PDF payloads arrive base64-encoded
// and are reduced to plain text here; an unextractable PDF flows through with
// empty text so the pipeline reports it malformed in its batch slot.
func (s *Server) itemFromRequest(d ingestItemRequest) (ingest.Item, error) {
	id := d.ID
	if id == "" {
		id = uuid.NewString()
	}

	text := d.Content
	if d.ContentBase64 != "" {
		raw, err := base64.StdEncoding.DecodeString(d.ContentBase64)
		if err != nil {
			return ingest.Item{}, fmt.Errorf("document %s: invalid base64 content: %w", id, err)
		}
		if doctype.Type(d.SourceType) == doctype.PDF {
			text, err = pdfextract.Text(raw)
			if err != nil {
				s.logger.Warn("PDF extraction failed", zap.String("document_id", id), zap.Error(err))
				text = ""
			}
		} else {
			text = string(raw)
		}
	}

	return ingest.Item{ID: id, SourceType: doctype.Type(d.SourceType), RawText: text}, nil
}

type searchResultItem struct {
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	Score      float64 `json:"score"`
	Text       string  `json:"text"`
	Seq        int     `json:"seq"`
}

type searchResponse struct {
	Items []searchResultItem `json:"items"`
	Total int                `json:"total"`
}

// Search handles GET /api/v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	topK, err := intParam(q.Get("top_k"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "top_k must be an integer")
		return
	}
	limit, err := intParam(q.Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "limit must be an integer")
		return
	}
	minScore, err := floatParam(q.Get("min_score"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "min_score must be a number")
		return
	}

	req, err := request.New(
		q.Get("q"),
		mode.Mode(q.Get("mode")),
		doctype.Type(q.Get("scope")),
		topK, limit, minScore,
	)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	results, err := s.app.Search(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]searchResultItem, len(results))
	for i := range results {
		items[i] = searchResultItem{
			ChunkID:    results[i].ChunkID(),
			DocumentID: results[i].DocumentID(),
			Score:      results[i].Score(),
			Text:       results[i].Text(),
			Seq:        results[i].Seq(),
		}
	}

	writeJSON(w, http.StatusOK, searchResponse{Items: items, Total: len(items)})
}

type answerRequest struct {
	Question string `json:"question"`
}

type answerResponse struct {
	Answer    string             `json:"answer"`
	Status    string             `json:"status"`
	Citations []string           `json:"citations,omitempty"`
	Sources   []searchResultItem `json:"sources,omitempty"`
}

// Answer handles POST /api/v1/answer.
func (s *Server) Answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ans, err := s.app.Answer(r.Context(), req.Question)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, answerToWire(ans))
}

func answerToWire(ans answer.Answer) answerResponse {
	sources := make([]searchResultItem, len(ans.Sources))
	for i, src := range ans.Sources {
		sources[i] = searchResultItem{
			ChunkID:    src.ChunkID,
			DocumentID: src.DocumentID,
			Score:      src.Score,
			Text:       src.Text,
		}
	}
	return answerResponse{
		Answer:    ans.Text,
		Status:    string(ans.Status),
		Citations: ans.Citations,
		Sources:   sources,
	}
}

type recordFieldRequest struct {
	FieldName        string     `json:"field_name"`
	Value            string     `json:"value"`
	SourceDocumentID string     `json:"source_document_id"`
	ExtractedAt      *time.Time `json:"extracted_at,omitempty"`
}

// RecordField handles POST /api/v1/fields.
func (s *Server) RecordField(w http.ResponseWriter, r *http.Request) {
	var req recordFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	extractedAt := time.Time{}
	if req.ExtractedAt != nil {
		extractedAt = *req.ExtractedAt
	}

	if err := s.app.RecordField(r.Context(), req.FieldName, req.Value, req.SourceDocumentID, extractedAt); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type observationResponse struct {
	Value            string    `json:"value"`
	SourceDocumentID string    `json:"source_document_id"`
	ExtractedAt      time.Time `json:"extracted_at"`
}

type resolutionResponse struct {
	FieldName    string                `json:"field_name"`
	Status       string                `json:"status"`
	Value        string                `json:"value,omitempty"`
	Source       *observationResponse  `json:"source,omitempty"`
	Observations []observationResponse `json:"observations,omitempty"`
}

// ResolveField handles GET /api/v1/fields/{name}.
func (s *Server) ResolveField(w http.ResponseWriter, r *http.Request, name string) {
	res, err := s.app.ResolveField(r.Context(), name)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resolutionToWire(res))
}

// ListFields handles GET /api/v1/fields.
func (s *Server) ListFields(w http.ResponseWriter, r *http.Request) {
	resolutions, err := s.app.ResolveAllFields(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]resolutionResponse, len(resolutions))
	for i := range resolutions {
		items[i] = resolutionToWire(resolutions[i])
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func resolutionToWire(res field.Resolution) resolutionResponse {
	out := resolutionResponse{
		FieldName: res.FieldName(),
		Status:    string(res.Status()),
	}

	if res.Status() == field.StatusResolved {
		out.Value = res.Value()
		src := res.Source()
		out.Source = &observationResponse{
			Value:            src.Value(),
			SourceDocumentID: src.SourceDocumentID(),
			ExtractedAt:      src.ExtractedAt(),
		}
	}

	observations := res.Observations()
	if len(observations) > 0 {
		out.Observations = make([]observationResponse, len(observations))
		for i := range observations {
			out.Observations[i] = observationResponse{
				Value:            observations[i].Value(),
				SourceDocumentID: observations[i].SourceDocumentID(),
				ExtractedAt:      observations[i].ExtractedAt(),
			}
		}
	}

	return out
}

type formFieldRequest struct {
	Name     string           `json:"name"`
	Position domform.Position `json:"position"`
}

type resolveFormRequest struct {
	Fields []formFieldRequest `json:"fields"`
}

type fillResultResponse struct {
	Status           string           `json:"status"`
	Value            string           `json:"value,omitempty"`
	SourceDocumentID string           `json:"source_document_id,omitempty"`
	Position         domform.Position `json:"position"`
	Reason           string           `json:"reason,omitempty"`
}

// ResolveForm handles POST /api/v1/forms/resolve.
func (s *Server) ResolveForm(w http.ResponseWriter, r *http.Request) {
	var req resolveFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	fields := make([]domform.Field, 0, len(req.Fields))
	for _, f := range req.Fields {
		fld, err := domform.NewField(f.Name, f.Position)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
			return
		}
		fields = append(fields, fld)
	}

	form, err := domform.New(fields)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	filled, err := s.app.ResolveForm(r.Context(), &form)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	out := make(map[string]fillResultResponse, len(filled))
	for name, res := range filled {
		out[name] = fillResultResponse{
			Status:           string(res.Status),
			Value:            res.Value,
			SourceDocumentID: res.SourceID,
			Position:         res.Position,
			Reason:           res.Reason,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"fields": out})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidRequest,
		domain.ErrMalformedDocument,
		domain.ErrDocumentNotFound,
		domain.ErrRateLimited,
		domain.ErrEmbeddingUnavailable,
		domain.ErrGenerationUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context())
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

func batchResultToWire(r dombatch.Result) ingestResultItem {
	item := ingestResultItem{
		ID:     r.ID(),
		Status: string(r.Status()),
		Chunks: r.Chunks(),
	}
	if r.Err() != nil {
		item.Error = &errorResponse{
			Code:    batchErrorCode(r.Err()),
			Message: safeDomainMessage(r.Err()),
		}
	}
	return item
}

func batchErrorCode(err error) errorCode {
	switch {
	case errors.Is(err, domain.ErrMalformedDocument):
		return codeMalformedDocument
	case errors.Is(err, domain.ErrInvalidRequest):
		return codeValidationFailed
	case errors.Is(err, domain.ErrRateLimited):
		return codeRateLimited
	case errors.Is(err, domain.ErrEmbeddingUnavailable):
		return codeEmbeddingUnavailable
	default:
		return codeInternalError
	}
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

func floatParam(v string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.ParseFloat(v, 64)
}
