// Package document defines the ingested document aggregate.
package document

import (
	"fmt"
	"regexp"
	"time"

	"github.com/kailas-cloud/paperbase/internal/domain/doctype"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// MaxRawTextSize is the maximum raw text size in bytes.
const MaxRawTextSize = 1 << 20 // 1MB

// Document is a single ingested file (immutable value object).
// Re-ingesting the same id supersedes the stored document; it is never mutated in place.
type Document struct {
	id         string
	sourceType doctype.Type
	rawText    string
	ingestedAt time.Time
}

// New validates and creates a Document.
// ID: ^[a-zA-Z0-9_-]+$, 1-256 chars. RawText: non-empty, max 1MB.
func New(id string, sourceType doctype.Type, rawText string, ingestedAt time.Time) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("document ID is required")
	}
	if len(id) > 256 {
		return Document{}, fmt.Errorf("document ID too long (max 256)")
	}
	if !idRegex.MatchString(id) {
		return Document{}, fmt.Errorf("document ID must be alphanumeric with underscores and hyphens")
	}
	if !sourceType.IsValid() {
		return Document{}, fmt.Errorf("unknown source type %q", sourceType)
	}
	if rawText == "" {
		return Document{}, fmt.Errorf("raw text is required")
	}
	if len(rawText) > MaxRawTextSize {
		return Document{}, fmt.Errorf("raw text too large (max %d bytes)", MaxRawTextSize)
	}
	if ingestedAt.IsZero() {
		ingestedAt = time.Now().UTC()
	}

	return Document{id: id, sourceType: sourceType, rawText: rawText, ingestedAt: ingestedAt.UTC()}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(id string, sourceType doctype.Type, rawText string, ingestedAt time.Time) Document {
	return Document{id: id, sourceType: sourceType, rawText: rawText, ingestedAt: ingestedAt}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// SourceType returns the document source format.
func (d *Document) SourceType() doctype.Type { return d.sourceType }

// RawText returns the raw extracted text.
func (d *Document) RawText() string { return d.rawText }

// IngestedAt returns the ingestion timestamp.
func (d *Document) IngestedAt() time.Time { return d.ingestedAt }
