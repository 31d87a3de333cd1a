// Package form resolves form templates against the field tracker.
package form

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/paperbase/internal/domain/field"
	domform "github.com/kailas-cloud/paperbase/internal/domain/form"
)

// Resolver derives the current resolution of a field.
type Resolver interface {
	Resolve(ctx context.Context, fieldName string) (field.Resolution, error)
}

// Service fills form templates from tracked field resolutions.
type Service struct {
	fields Resolver
	logger *zap.Logger
}

// New creates a form fill service.
func New(fields Resolver, logger *zap.Logger) *Service {
	return &Service{fields: fields, logger: logger}
}

// ResolveForm resolves every field of the form. The result is a pure function
// of the tracker state and the form: filled fields carry value, provenance,
// and the form's position metadata; conflicting fields come back missing with
// the conflict spelled out rather than silently picking a value.
func (s *Service) ResolveForm(ctx context.Context, f *domform.Form) (map[string]domform.FillResult, error) {
	results := make(map[string]domform.FillResult, len(f.Fields()))

	for _, formField := range f.Fields() {
		res, err := s.fields.Resolve(ctx, formField.Name())
		if err != nil {
			return nil, fmt.Errorf("resolve form field %s: %w", formField.Name(), err)
		}
		results[formField.Name()] = toFillResult(res, formField.Position())
	}

	s.logger.Info("Form resolved",
		zap.Int("fields", len(f.Fields())),
		zap.Int("filled", countFilled(results)),
	)
	return results, nil
}

func toFillResult(res field.Resolution, pos domform.Position) domform.FillResult {
	switch res.Status() {
	case field.StatusResolved:
		source := res.Source()
		return domform.FillResult{
			Status:   domform.StatusFilled,
			Value:    res.Value(),
			SourceID: source.SourceDocumentID(),
			Position: pos,
		}
	case field.StatusConflict:
		return domform.FillResult{
			Status:   domform.StatusMissing,
			Position: pos,
			Reason:   conflictReason(res.Observations()),
		}
	default:
		return domform.FillResult{
			Status:   domform.StatusMissing,
			Position: pos,
			Reason:   "no observations recorded",
		}
	}
}

func conflictReason(observations []field.Observation) string {
	reason := "conflicting values:"
	for i := range observations {
		o := &observations[i]
		reason += fmt.Sprintf(" %q from %s at %s;",
			o.Value(), o.SourceDocumentID(), o.ExtractedAt().Format(time.RFC3339))
	}
	return reason
}

func countFilled(results map[string]domform.FillResult) int {
	var n int
	for _, r := range results {
		if r.Status == domform.StatusFilled {
			n++
		}
	}
	return n
}
