// Package mode defines the retrieval strategies over the chunk indexes.
package mode

// Mode is the search strategy.
type Mode string

// Search mode constants.
const (
	// Hybrid fuses lexical and semantic rankings.
	Hybrid Mode = "hybrid"
	// Semantic runs vector KNN search only.
	Semantic Mode = "semantic"
	// Lexical runs BM25 keyword search only.
	Lexical Mode = "lexical"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Hybrid || m == Semantic || m == Lexical
}
