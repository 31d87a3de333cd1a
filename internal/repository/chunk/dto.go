package chunk

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/paperbase/internal/db"
	domchunk "github.com/kailas-cloud/paperbase/internal/domain/chunk"
	"github.com/kailas-cloud/paperbase/internal/domain/doctype"
	"github.com/kailas-cloud/paperbase/internal/domain/search/result"
)

// buildHashFields converts a domain Chunk into a flat map[string]string for HSET.
func buildHashFields(c *domchunk.Chunk) map[string]string {
	return map[string]string{
		"text":        c.Text(),
		"document_id": c.DocumentID(),
		"source_type": string(c.SourceType()),
		"seq":         strconv.Itoa(c.Seq()),
		"vector":      vectorToBytes(c.Vector()),
	}
}

// parseHashFields converts a flat hash map back into a domain Chunk.
func parseHashFields(id string, m map[string]string) domchunk.Chunk {
	seq, _ := strconv.Atoi(m["seq"])
	return domchunk.Reconstruct(
		id, m["document_id"], doctype.Type(m["source_type"]),
		m["text"], seq, bytesToVector(m["vector"]),
	)
}

// parseEntries converts db search entries into domain search results.
func parseEntries(sr *db.SearchResult, includeVectors bool) []result.Result {
	if sr == nil || sr.Total == 0 {
		return nil
	}

	results := make([]result.Result, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		seq, _ := strconv.Atoi(entry.Fields["seq"])
		var vector []float32
		if includeVectors {
			vector = bytesToVector(entry.Fields["vector"])
		}
		results = append(results, result.New(
			chunkIDFromKey(entry.Key),
			entry.Fields["document_id"],
			entry.Score,
			entry.Fields["text"],
			seq,
			vector,
		))
	}
	return results
}

// chunkIDFromKey strips the "paperbase:chunk:<type>:" prefix from a stored key.
func chunkIDFromKey(key string) string {
	parts := strings.SplitN(key, ":", 4)
	if len(parts) == 4 {
		return parts[3]
	}
	return key
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector deserializes a binary string back to []float32.
func bytesToVector(s string) []float32 {
	b := []byte(s)
	if len(b) == 0 || len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
