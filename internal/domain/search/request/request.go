// Package request defines the validated search query value object.
package request

import (
	"fmt"

	"github.com/kailas-cloud/paperbase/internal/domain/doctype"
	"github.com/kailas-cloud/paperbase/internal/domain/search/mode"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 4096
	DefaultTopK    = 10
	MaxTopK        = 100
	DefaultLimit   = 10
	MaxLimit       = 100
)

// Request is a validated search query.
type Request struct {
	query      string
	searchMode mode.Mode
	scope      doctype.Type
	topK       int
	limit      int
	minScore   float64
}

// New validates and normalizes search parameters.
// Defaults: mode=hybrid, topK=10, limit=10. Limit is clamped to topK.
// A zero-value scope searches across all source types.
func New(
	query string,
	m mode.Mode,
	scope doctype.Type,
	topK, limit int,
	minScore float64,
) (Request, error) {
	if query == "" {
		return Request{}, fmt.Errorf("query is required")
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if m == "" {
		m = mode.Hybrid
	}
	if !m.IsValid() {
		return Request{}, fmt.Errorf("invalid search mode: %q", m)
	}
	if scope != "" && !scope.IsValid() {
		return Request{}, fmt.Errorf("invalid search scope: %q", scope)
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if limit > topK {
		limit = topK
	}
	if minScore < 0 || minScore > 1 {
		return Request{}, fmt.Errorf("min_score must be between 0 and 1")
	}

	return Request{
		query:      query,
		searchMode: m,
		scope:      scope,
		topK:       topK,
		limit:      limit,
		minScore:   minScore,
	}, nil
}

// Query returns the search query text.
func (r *Request) Query() string { return r.query }

// Mode returns the search strategy.
func (r *Request) Mode() mode.Mode { return r.searchMode }

// Scope returns the source-type scope ("" = all types).
func (r *Request) Scope() doctype.Type { return r.scope }

// TopK returns the number of candidates to retrieve per ranking.
func (r *Request) TopK() int { return r.topK }

// Limit returns the maximum results to return.
func (r *Request) Limit() int { return r.limit }

// MinScore returns the minimum score threshold.
func (r *Request) MinScore() float64 { return r.minScore }
