// Package field defines extracted-field observations and their derived resolution.
package field

import (
	"fmt"
	"strings"
	"time"
)

// Observation is one (field_name, value) pair seen in one document.
// Observations form an append-only log; they are never edited or deleted.
type Observation struct {
	fieldName        string
	value            string
	sourceDocumentID string
	extractedAt      time.Time
}

// NewObservation validates and creates an Observation.
func NewObservation(fieldName, value, sourceDocumentID string, extractedAt time.Time) (Observation, error) {
	if strings.TrimSpace(fieldName) == "" {
		return Observation{}, fmt.Errorf("field name is required")
	}
	if strings.TrimSpace(value) == "" {
		return Observation{}, fmt.Errorf("value is required")
	}
	if sourceDocumentID == "" {
		return Observation{}, fmt.Errorf("source document ID is required")
	}
	if extractedAt.IsZero() {
		return Observation{}, fmt.Errorf("extraction timestamp is required")
	}

	return Observation{
		fieldName:        strings.TrimSpace(fieldName),
		value:            value,
		sourceDocumentID: sourceDocumentID,
		extractedAt:      extractedAt.UTC(),
	}, nil
}

// ReconstructObservation creates an Observation without validation (storage hydration).
func ReconstructObservation(fieldName, value, sourceDocumentID string, extractedAt time.Time) Observation {
	return Observation{
		fieldName: fieldName, value: value,
		sourceDocumentID: sourceDocumentID, extractedAt: extractedAt,
	}
}

// FieldName returns the observed field name.
func (o Observation) FieldName() string { return o.fieldName }

// Value returns the observed value in its original casing.
func (o Observation) Value() string { return o.value }

// SourceDocumentID returns the document the value was observed in.
func (o Observation) SourceDocumentID() string { return o.sourceDocumentID }

// ExtractedAt returns the observation timestamp.
func (o Observation) ExtractedAt() time.Time { return o.extractedAt }

// NormalizedValue returns the value trimmed and case-folded for equality checks.
// Display always uses the original casing.
func (o Observation) NormalizedValue() string {
	return strings.ToLower(strings.TrimSpace(o.value))
}
