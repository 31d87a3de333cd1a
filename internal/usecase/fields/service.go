// Package fields manages the append-only observation log and its resolutions.
package fields

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/paperbase/internal/domain"
	"github.com/kailas-cloud/paperbase/internal/domain/field"
)

// Log is the storage contract for the observation log.
type Log interface {
	Append(ctx context.Context, obs field.Observation) error
	List(ctx context.Context, fieldName string) ([]field.Observation, error)
	ListAll(ctx context.Context) ([]field.Observation, error)
}

// Service records observations and derives resolutions on demand.
// Resolutions are never stored; the log is the only truth.
type Service struct {
	log    Log
	logger *zap.Logger
}

// New creates a field tracking service.
func New(log Log, logger *zap.Logger) *Service {
	return &Service{log: log, logger: logger}
}

// Record appends one observation. A zero extractedAt defaults to now.
func (s *Service) Record(
	ctx context.Context, fieldName, value, sourceDocumentID string, extractedAt time.Time,
) error {
	if extractedAt.IsZero() {
		extractedAt = time.Now().UTC()
	}

	obs, err := field.NewObservation(fieldName, value, sourceDocumentID, extractedAt)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	if err := s.log.Append(ctx, obs); err != nil {
		return fmt.Errorf("record %s: %w", obs.FieldName(), err)
	}

	s.logger.Debug("Field observation recorded",
		zap.String("field", obs.FieldName()),
		zap.String("source", obs.SourceDocumentID()),
	)
	return nil
}

// Resolve derives the current resolution of one field from its log.
func (s *Service) Resolve(ctx context.Context, fieldName string) (field.Resolution, error) {
	if fieldName == "" {
		return field.Resolution{}, fmt.Errorf("%w: field name is required", domain.ErrInvalidRequest)
	}

	observations, err := s.log.List(ctx, fieldName)
	if err != nil {
		return field.Resolution{}, fmt.Errorf("load observations of %s: %w", fieldName, err)
	}
	return field.Resolve(fieldName, observations), nil
}

// ResolveAll derives resolutions for every field present in the log,
// sorted by field name.
func (s *Service) ResolveAll(ctx context.Context) ([]field.Resolution, error) {
	observations, err := s.log.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load observation log: %w", err)
	}

	byField := make(map[string][]field.Observation)
	for _, obs := range observations {
		byField[obs.FieldName()] = append(byField[obs.FieldName()], obs)
	}

	names := make([]string, 0, len(byField))
	for name := range byField {
		names = append(names, name)
	}
	sort.Strings(names)

	resolutions := make([]field.Resolution, 0, len(names))
	for _, name := range names {
		resolutions = append(resolutions, field.Resolve(name, byField[name]))
	}
	return resolutions, nil
}
