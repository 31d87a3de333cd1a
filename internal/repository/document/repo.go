// Package document persists document metadata and raw text.
package document

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/paperbase/internal/domain"
	"github.com/kailas-cloud/paperbase/internal/domain/doctype"
	domdoc "github.com/kailas-cloud/paperbase/internal/domain/document"
)

// store is the consumer interface for document persistence.
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements document storage over hashes.
type Repo struct {
	store store
}

// New creates a document repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Upsert writes the document hash. Re-ingesting the same id replaces the
// stored fields wholesale.
func (r *Repo) Upsert(ctx context.Context, doc *domdoc.Document) error {
	if err := r.store.HSet(ctx, docKey(doc.ID()), buildHashFields(doc)); err != nil {
		return fmt.Errorf("upsert document %s: %w", doc.ID(), err)
	}
	return nil
}

// Get loads a document by id. Returns domain.ErrDocumentNotFound when absent.
func (r *Repo) Get(ctx context.Context, id string) (domdoc.Document, error) {
	fields, err := r.store.HGetAll(ctx, docKey(id))
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get document %s: %w", id, err)
	}
	if len(fields) == 0 {
		return domdoc.Document{}, domain.ErrDocumentNotFound
	}
	doc, err := parseHashFields(id, fields)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("parse document %s: %w", id, err)
	}
	return doc, nil
}

// Exists reports whether a document with the given id is stored.
func (r *Repo) Exists(ctx context.Context, id string) (bool, error) {
	ok, err := r.store.Exists(ctx, docKey(id))
	if err != nil {
		return false, fmt.Errorf("check document %s: %w", id, err)
	}
	return ok, nil
}

// Delete removes the document hash. Deleting a missing document is a no-op.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.store.Del(ctx, docKey(id)); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return nil
}

// List returns all stored documents sorted by the order Scan yields them.
func (r *Repo) List(ctx context.Context) ([]domdoc.Document, error) {
	keys, err := r.store.Scan(ctx, docKeyPattern())
	if err != nil {
		return nil, fmt.Errorf("scan documents: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}

	docs := make([]domdoc.Document, 0, len(hashes))
	for i, fields := range hashes {
		if len(fields) == 0 {
			continue // deleted between scan and load
		}
		doc, err := parseHashFields(docIDFromKey(keys[i]), fields)
		if err != nil {
			return nil, fmt.Errorf("parse document %s: %w", keys[i], err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func buildHashFields(doc *domdoc.Document) map[string]string {
	return map[string]string{
		"source_type": string(doc.SourceType()),
		"raw_text":    doc.RawText(),
		"ingested_at": doc.IngestedAt().Format(time.RFC3339Nano),
	}
}

func parseHashFields(id string, fields map[string]string) (domdoc.Document, error) {
	ingestedAt, err := time.Parse(time.RFC3339Nano, fields["ingested_at"])
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("ingested_at: %w", err)
	}
	return domdoc.Reconstruct(
		id,
		doctype.Type(fields["source_type"]),
		fields["raw_text"],
		ingestedAt,
	), nil
}

func docKey(id string) string {
	return fmt.Sprintf("%sdoc:%s", domain.KeyPrefix, id)
}

func docKeyPattern() string {
	return fmt.Sprintf("%sdoc:*", domain.KeyPrefix)
}

func docIDFromKey(key string) string {
	return key[len(domain.KeyPrefix)+len("doc:"):]
}
