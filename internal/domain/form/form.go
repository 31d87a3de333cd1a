// Package form defines the target form template and fill results.
package form

import "fmt"

// Position is where a field sits on the rendered form. Produced by an
// external form-parsing collaborator and passed through unchanged.
type Position struct {
	Page int     `json:"page"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Field is one slot in a form template.
type Field struct {
	name     string
	position Position
}

// NewField creates a form field.
func NewField(name string, position Position) (Field, error) {
	if name == "" {
		return Field{}, fmt.Errorf("field name is required")
	}
	return Field{name: name, position: position}, nil
}

// Name returns the field name.
func (f *Field) Name() string { return f.name }

// Position returns the field position.
func (f *Field) Position() Position { return f.position }

// Form is an ordered list of fields to be filled.
type Form struct {
	fields []Field
}

// New creates a Form from an ordered field list.
func New(fields []Field) (Form, error) {
	if len(fields) == 0 {
		return Form{}, fmt.Errorf("form requires at least one field")
	}
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f.name] {
			return Form{}, fmt.Errorf("duplicate form field %q", f.name)
		}
		seen[f.name] = true
	}
	out := make([]Field, len(fields))
	copy(out, fields)
	return Form{fields: out}, nil
}

// Fields returns the ordered field list.
func (f *Form) Fields() []Field { return f.fields }

// FillStatus is the per-field outcome of a form fill.
type FillStatus string

// Fill outcomes. A conflicting field is reported as missing with a reason;
// it is never auto-filled.
const (
	StatusFilled  FillStatus = "filled"
	StatusMissing FillStatus = "missing"
)

// FillResult is the outcome for one form field.
type FillResult struct {
	Status   FillStatus
	Value    string
	SourceID string
	Position Position
	Reason   string
}
