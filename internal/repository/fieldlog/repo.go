// Package fieldlog persists the append-only field observation log.
package fieldlog

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/kailas-cloud/paperbase/internal/domain"
	"github.com/kailas-cloud/paperbase/internal/domain/field"
)

// store is the consumer interface for observation persistence.
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements the observation log over hashes. Each observation is one
// hash keyed by (field, source document, timestamp), so recording the same
// observation twice overwrites the identical record instead of duplicating it.
type Repo struct {
	store store
}

// New creates an observation log repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Append records one observation. Existing records are never modified.
func (r *Repo) Append(ctx context.Context, obs field.Observation) error {
	key := obsKey(obs.FieldName(), obs.SourceDocumentID(), obs.ExtractedAt())
	if err := r.store.HSet(ctx, key, buildHashFields(obs)); err != nil {
		return fmt.Errorf("append observation %s: %w", key, err)
	}
	return nil
}

// List returns every recorded observation of one field, oldest first.
// The key glob is a prefix match only (field "city" also matches keys of a
// field named "city:alt"), so the stored field_name is authoritative.
func (r *Repo) List(ctx context.Context, fieldName string) ([]field.Observation, error) {
	observations, err := r.list(ctx, fmt.Sprintf("%sfield:%s:*", domain.KeyPrefix, fieldName))
	if err != nil {
		return nil, err
	}

	filtered := make([]field.Observation, 0, len(observations))
	for _, obs := range observations {
		if obs.FieldName() == fieldName {
			filtered = append(filtered, obs)
		}
	}
	if len(filtered) == 0 {
		return nil, nil
	}
	return filtered, nil
}

// ListAll returns every recorded observation across all fields, oldest first.
func (r *Repo) ListAll(ctx context.Context) ([]field.Observation, error) {
	return r.list(ctx, fmt.Sprintf("%sfield:*", domain.KeyPrefix))
}

func (r *Repo) list(ctx context.Context, pattern string) ([]field.Observation, error) {
	keys, err := r.store.Scan(ctx, pattern)
	if err != nil {
		return nil, fmt.Errorf("scan observations: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load observations: %w", err)
	}

	observations := make([]field.Observation, 0, len(hashes))
	for i, fields := range hashes {
		if len(fields) == 0 {
			continue
		}
		obs, err := parseHashFields(fields)
		if err != nil {
			return nil, fmt.Errorf("parse observation %s: %w", keys[i], err)
		}
		observations = append(observations, obs)
	}

	sort.SliceStable(observations, func(i, j int) bool {
		a, b := &observations[i], &observations[j]
		if !a.ExtractedAt().Equal(b.ExtractedAt()) {
			return a.ExtractedAt().Before(b.ExtractedAt())
		}
		return a.SourceDocumentID() < b.SourceDocumentID()
	})
	return observations, nil
}

func buildHashFields(obs field.Observation) map[string]string {
	return map[string]string{
		"field_name":   obs.FieldName(),
		"value":        obs.Value(),
		"source_doc":   obs.SourceDocumentID(),
		"extracted_at": strconv.FormatInt(obs.ExtractedAt().UnixNano(), 10),
	}
}

func parseHashFields(fields map[string]string) (field.Observation, error) {
	nanos, err := strconv.ParseInt(fields["extracted_at"], 10, 64)
	if err != nil {
		return field.Observation{}, fmt.Errorf("extracted_at: %w", err)
	}
	return field.ReconstructObservation(
		fields["field_name"],
		fields["value"],
		fields["source_doc"],
		time.Unix(0, nanos).UTC(),
	), nil
}

func obsKey(fieldName, sourceDocID string, extractedAt time.Time) string {
	return fmt.Sprintf("%sfield:%s:%s:%d", domain.KeyPrefix, fieldName, sourceDocID, extractedAt.UnixNano())
}
