package field

import "sort"

// Status is the derived state of a field's observation log.
type Status string

// Resolution states.
const (
	// StatusMissing means no observations exist for the field.
	StatusMissing Status = "missing"
	// StatusResolved means all observations agree after normalization.
	StatusResolved Status = "resolved"
	// StatusConflict means observations disagree; no value is preferred.
	StatusConflict Status = "conflict"
)

// Resolution is the derived view over all observations for one field.
// It is a pure function of the observation log, recomputed on demand and
// never stored as independent truth.
type Resolution struct {
	fieldName    string
	status       Status
	value        string
	source       Observation
	observations []Observation
}

// FieldName returns the field this resolution is for.
func (r *Resolution) FieldName() string { return r.fieldName }

// Status returns the resolution state.
func (r *Resolution) Status() Status { return r.status }

// Value returns the agreed value (resolved state only), in the casing of the
// latest observation.
func (r *Resolution) Value() string { return r.value }

// Source returns the provenance observation (resolved state only): the
// observation with the latest extracted_at.
func (r *Resolution) Source() Observation { return r.source }

// Observations returns the full timestamp-ordered observation list.
// Populated for resolved and conflict states.
func (r *Resolution) Observations() []Observation { return r.observations }

// Resolve derives the resolution for a field from its observation log.
// Observations are sorted by extracted_at ascending (source document ID as
// tiebreaker) before derivation, so any concurrently-consistent input order
// yields the same result as the canonical replay.
func Resolve(fieldName string, observations []Observation) Resolution {
	if len(observations) == 0 {
		return Resolution{fieldName: fieldName, status: StatusMissing}
	}

	sorted := make([]Observation, len(observations))
	copy(sorted, observations)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].extractedAt.Equal(sorted[j].extractedAt) {
			return sorted[i].extractedAt.Before(sorted[j].extractedAt)
		}
		return sorted[i].sourceDocumentID < sorted[j].sourceDocumentID
	})

	first := sorted[0].NormalizedValue()
	for _, o := range sorted[1:] {
		if o.NormalizedValue() != first {
			return Resolution{fieldName: fieldName, status: StatusConflict, observations: sorted}
		}
	}

	latest := sorted[len(sorted)-1]
	return Resolution{
		fieldName:    fieldName,
		status:       StatusResolved,
		value:        latest.Value(),
		source:       latest,
		observations: sorted,
	}
}
