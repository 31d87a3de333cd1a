// Package chunker splits normalized text into retrieval units.
package chunker

import (
	"iter"
	"regexp"
	"strings"
)

// Defaults mirror the ingestion pipeline settings.
const (
	DefaultMaxChunkSize        = 500
	DefaultSimilarityThreshold = 0.5
)

// SimilarityFunc scores topical similarity of two adjacent sentences in [0, 1].
type SimilarityFunc func(a, b string) float64

// Chunker produces topically coherent chunks bounded by a hard size cap.
type Chunker struct {
	maxChunkSize int
	threshold    float64
	sim          SimilarityFunc
}

// New creates a Chunker. Non-positive maxChunkSize and out-of-range threshold
// fall back to defaults; a nil similarity function falls back to TokenSimilarity.
func New(maxChunkSize int, threshold float64, sim SimilarityFunc) *Chunker {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultMaxChunkSize
	}
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultSimilarityThreshold
	}
	if sim == nil {
		sim = TokenSimilarity
	}
	return &Chunker{maxChunkSize: maxChunkSize, threshold: threshold, sim: sim}
}

// Chunk returns a lazy, restartable sequence of chunks in source order.
// Boundaries are preferred where adjacent-sentence similarity drops below the
// threshold; a hard split at maxChunkSize runes applies otherwise. Chunks are
// never empty and trailing content is never dropped.
func (c *Chunker) Chunk(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		var cur []string
		curLen := 0

		flush := func() bool {
			if len(cur) == 0 {
				return true
			}
			ok := yield(strings.Join(cur, " "))
			cur = cur[:0]
			curLen = 0
			return ok
		}

		for _, sentence := range splitSentences(text) {
			if len(cur) > 0 && c.sim(cur[len(cur)-1], sentence) < c.threshold {
				if !flush() {
					return
				}
			}

			if runeLen(sentence) > c.maxChunkSize {
				if !flush() {
					return
				}
				for _, piece := range hardSplit(sentence, c.maxChunkSize) {
					if !yield(piece) {
						return
					}
				}
				continue
			}

			if curLen > 0 && curLen+1+runeLen(sentence) > c.maxChunkSize {
				if !flush() {
					return
				}
			}

			cur = append(cur, sentence)
			if curLen > 0 {
				curLen++ // joining space
			}
			curLen += runeLen(sentence)
		}

		flush()
	}
}

// Leading terminators attach to the first sentence, trailing ones to the
// sentence they close, so matches cover the whole input.
var sentenceRegex = regexp.MustCompile(`[.!?]*[^.!?]+[.!?]*`)

func splitSentences(text string) []string {
	matches := sentenceRegex.FindAllString(text, -1)
	sentences := make([]string, 0, len(matches))
	for _, m := range matches {
		if s := strings.TrimSpace(m); s != "" {
			sentences = append(sentences, s)
		}
	}
	if len(sentences) == 0 {
		if s := strings.TrimSpace(text); s != "" {
			sentences = []string{s}
		}
	}
	return sentences
}

// hardSplit cuts a sentence longer than the cap into cap-sized pieces,
// breaking at word boundaries. A single word longer than the cap is cut at
// rune boundaries.
func hardSplit(s string, maxSize int) []string {
	var out []string
	var cur strings.Builder
	curLen := 0

	flush := func() {
		if curLen > 0 {
			out = append(out, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, word := range strings.Fields(s) {
		wl := runeLen(word)
		if wl > maxSize {
			flush()
			runes := []rune(word)
			for start := 0; start < len(runes); start += maxSize {
				end := min(start+maxSize, len(runes))
				out = append(out, string(runes[start:end]))
			}
			continue
		}
		if curLen > 0 && curLen+1+wl > maxSize {
			flush()
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(word)
		curLen += wl
	}
	flush()
	return out
}

func runeLen(s string) int {
	return len([]rune(s))
}
