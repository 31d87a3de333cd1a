// Package batch defines per-item outcomes for batch ingestion.
package batch

// ItemStatus is the processing outcome of a single batch item.
type ItemStatus string

// Batch item status values.
const (
	StatusOK      ItemStatus = "ok"
	StatusSkipped ItemStatus = "skipped"
	StatusError   ItemStatus = "error"
)

// Result is the outcome of ingesting one document in a batch.
// A skipped item was malformed; an error item hit an infrastructure failure.
// Either way the rest of the batch proceeds.
type Result struct {
	id     string
	status ItemStatus
	chunks int
	err    error
}

// NewOK creates a successful ingestion result.
func NewOK(id string, chunks int) Result {
	return Result{id: id, status: StatusOK, chunks: chunks}
}

// NewSkipped creates a result for a malformed document that was not indexed.
func NewSkipped(id string, err error) Result {
	return Result{id: id, status: StatusSkipped, err: err}
}

// NewError creates a failed ingestion result.
func NewError(id string, err error) Result {
	return Result{id: id, status: StatusError, err: err}
}

// ID returns the document identifier.
func (r Result) ID() string { return r.id }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Chunks returns the number of chunks indexed for an ok item.
func (r Result) Chunks() int { return r.chunks }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }
