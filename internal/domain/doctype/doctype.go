// Package doctype defines the supported document source types.
package doctype

// Type is the source format of an ingested document.
type Type string

// Supported source types. Each gets its own chunk index in addition to the combined one.
const (
	PDF  Type = "pdf"
	CSV  Type = "csv"
	DOCX Type = "docx"
	JSON Type = "json"
	Text Type = "text"
)

// All returns every supported source type in a stable order.
func All() []Type {
	return []Type{PDF, CSV, DOCX, JSON, Text}
}

// IsValid checks if the type is one of the supported values.
func (t Type) IsValid() bool {
	switch t {
	case PDF, CSV, DOCX, JSON, Text:
		return true
	}
	return false
}
