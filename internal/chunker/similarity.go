package chunker

import (
	"math"
	"regexp"
	"strings"
)

var tokenRegex = regexp.MustCompile(`\w+`)

// TokenSimilarity is the default boundary signal: cosine similarity over
// case-folded term-frequency vectors of the two sentences.
func TokenSimilarity(a, b string) float64 {
	fa := termFrequencies(a)
	fb := termFrequencies(b)
	if len(fa) == 0 || len(fb) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for term, ca := range fa {
		normA += ca * ca
		if cb, ok := fb[term]; ok {
			dot += ca * cb
		}
	}
	for _, cb := range fb {
		normB += cb * cb
	}
	if dot == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func termFrequencies(s string) map[string]float64 {
	freq := make(map[string]float64)
	for _, tok := range tokenRegex.FindAllString(strings.ToLower(s), -1) {
		freq[tok]++
	}
	return freq
}

// VectorSimilarity scores two embedding vectors by cosine similarity,
// clamped to [0, 1]. Used when the boundary signal comes from an embedder.
func VectorSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return math.Max(0, dot/(math.Sqrt(normA)*math.Sqrt(normB)))
}
