// Package result defines the search hit value object.
package result

// Result is a single chunk hit from a search.
type Result struct {
	chunkID    string
	documentID string
	score      float64
	text       string
	seq        int
	vector     []float32
}

// New creates a search result.
func New(chunkID, documentID string, score float64, text string, seq int, vector []float32) Result {
	return Result{
		chunkID: chunkID, documentID: documentID, score: score,
		text: text, seq: seq, vector: vector,
	}
}

// ChunkID returns the chunk identifier.
func (r *Result) ChunkID() string { return r.chunkID }

// DocumentID returns the owning document identifier.
func (r *Result) DocumentID() string { return r.documentID }

// Score returns the relevance score.
func (r *Result) Score() float64 { return r.score }

// Text returns the chunk text.
func (r *Result) Text() string { return r.text }

// Seq returns the chunk position within its document.
func (r *Result) Seq() int { return r.seq }

// Vector returns the chunk embedding vector.
func (r *Result) Vector() []float32 { return r.vector }
