package form

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/paperbase/internal/domain/field"
	domform "github.com/kailas-cloud/paperbase/internal/domain/form"
)

type mockResolver struct {
	observations map[string][]field.Observation
	err          error
}

func (m *mockResolver) Resolve(_ context.Context, fieldName string) (field.Resolution, error) {
	if m.err != nil {
		return field.Resolution{}, m.err
	}
	return field.Resolve(fieldName, m.observations[fieldName]), nil
}

func makeForm(t *testing.T, names ...string) domform.Form {
	t.Helper()
	fields := make([]domform.Field, 0, len(names))
	for i, name := range names {
		f, err := domform.NewField(name, domform.Position{Page: 1, X: float64(i * 10), Y: 20})
		if err != nil {
			t.Fatalf("form.NewField: %v", err)
		}
		fields = append(fields, f)
	}
	f, err := domform.New(fields)
	if err != nil {
		t.Fatalf("form.New: %v", err)
	}
	return f
}

func makeObs(t *testing.T, name, value, source string, at time.Time) field.Observation {
	t.Helper()
	o, err := field.NewObservation(name, value, source, at)
	if err != nil {
		t.Fatalf("field.NewObservation: %v", err)
	}
	return o
}

func TestResolveForm_FilledAndMissing(t *testing.T) {
	t1 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	resolver := &mockResolver{observations: map[string][]field.Observation{
		"city": {
			makeObs(t, "city", "boston", "doc-1", t1),
			makeObs(t, "city", "Boston", "doc-2", t2),
		},
	}}
	svc := New(resolver, zap.NewNop())
	f := makeForm(t, "city", "ssn")

	results, err := svc.ResolveForm(context.Background(), &f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	city := results["city"]
	if city.Status != domform.StatusFilled {
		t.Errorf("city status = %q, want filled", city.Status)
	}
	if city.Value != "Boston" {
		t.Errorf("city value = %q, want latest casing Boston", city.Value)
	}
	if city.SourceID != "doc-2" {
		t.Errorf("city source = %q, want doc-2", city.SourceID)
	}

	ssn := results["ssn"]
	if ssn.Status != domform.StatusMissing {
		t.Errorf("ssn status = %q, want missing", ssn.Status)
	}
	if ssn.Reason == "" {
		t.Error("missing field must carry a reason")
	}
}

func TestResolveForm_ConflictNeverAutoFilled(t *testing.T) {
	t1 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	resolver := &mockResolver{observations: map[string][]field.Observation{
		"address": {
			makeObs(t, "address", "12 Main St", "doc-1", t1),
			makeObs(t, "address", "99 Elm Ave", "doc-2", t1.Add(time.Hour)),
		},
	}}
	svc := New(resolver, zap.NewNop())
	f := makeForm(t, "address")

	results, err := svc.ResolveForm(context.Background(), &f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	addr := results["address"]
	if addr.Status != domform.StatusMissing {
		t.Errorf("conflicting field status = %q, want missing", addr.Status)
	}
	if addr.Value != "" {
		t.Errorf("conflicting field must not auto-fill, got %q", addr.Value)
	}
	if !strings.Contains(addr.Reason, "12 Main St") || !strings.Contains(addr.Reason, "99 Elm Ave") {
		t.Errorf("reason must list both values: %q", addr.Reason)
	}
	if !strings.Contains(addr.Reason, "doc-1") || !strings.Contains(addr.Reason, "doc-2") {
		t.Errorf("reason must name both sources: %q", addr.Reason)
	}
}

func TestResolveForm_PositionPassedThrough(t *testing.T) {
	resolver := &mockResolver{observations: map[string][]field.Observation{}}
	svc := New(resolver, zap.NewNop())
	f := makeForm(t, "first_name", "last_name")

	results, err := svc.ResolveForm(context.Background(), &f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if results["first_name"].Position.X != 0 || results["last_name"].Position.X != 10 {
		t.Errorf("positions not passed through: %+v %+v",
			results["first_name"].Position, results["last_name"].Position)
	}
}

func TestResolveForm_ResolverError(t *testing.T) {
	wantErr := errors.New("log unavailable")
	svc := New(&mockResolver{err: wantErr}, zap.NewNop())
	f := makeForm(t, "city")

	if _, err := svc.ResolveForm(context.Background(), &f); !errors.Is(err, wantErr) {
		t.Fatalf("expected resolver error, got %v", err)
	}
}
