package search

import (
	"sort"

	"github.com/kailas-cloud/paperbase/internal/domain/search/result"
)

// rrfK is the Reciprocal Rank Fusion constant (standard value from Cormack et al. 2009).
const rrfK = 60

// fuseRRF merges KNN and BM25 results via Reciprocal Rank Fusion.
// score(c) = sum of 1/(k + rank_i(c)) for each ranking where c appears.
// A chunk ranked in both lists always outscores a chunk at the same ranks in
// only one. When a chunk appears in both lists, the KNN result is kept (it
// may carry the vector). Ties break by chunk id for determinism.
func fuseRRF(knn, bm25 []result.Result, topK int) []result.Result {
	type scored struct {
		res   result.Result
		score float64
	}

	merged := make(map[string]*scored)

	for rank := range knn {
		r := &knn[rank]
		s := 1.0 / float64(rrfK+rank+1)
		merged[r.ChunkID()] = &scored{res: knn[rank], score: s}
	}

	for rank := range bm25 {
		r := &bm25[rank]
		s := 1.0 / float64(rrfK+rank+1)
		if existing, ok := merged[r.ChunkID()]; ok {
			existing.score += s
		} else {
			merged[r.ChunkID()] = &scored{res: bm25[rank], score: s}
		}
	}

	results := make([]result.Result, 0, len(merged))
	for _, s := range merged {
		// Rebuild result with the fused RRF score
		results = append(results, result.New(
			s.res.ChunkID(), s.res.DocumentID(), s.score,
			s.res.Text(), s.res.Seq(), s.res.Vector(),
		))
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score() != results[j].Score() {
			return results[i].Score() > results[j].Score()
		}
		return results[i].ChunkID() < results[j].ChunkID()
	})

	if len(results) > topK {
		results = results[:topK]
	}

	return results
}
