package retrieval

import (
	"context"
	"math"
	"sort"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/models"
)

// Candidate is an example returned by the similarity stage with its score.
type Candidate struct {
	Example models.Example
	Score   float64
}

// SimilaritySearcher is the first retrieval stage: the n examples nearest to
// vector, ordered by descending similarity.
type SimilaritySearcher interface {
	Search(ctx context.Context, vector []float32, n int) ([]Candidate, error)
}

// SelectByTables is the second retrieval stage. It keeps candidates sharing at
// least one table with tables, preserving order, and truncates to k. It never
// pads with non-matching candidates.
func SelectByTables(candidates []Candidate, tables []string, k int) []models.Example {
	if k <= 0 {
		return []models.Example{}
	}

	out := make([]models.Example, 0, k)
	for _, c := range candidates {
		if !c.Example.SharesTable(tables) {
			continue
		}
		out = append(out, c.Example)
		if len(out) == k {
			break
		}
	}
	return out
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0 for
// mismatched lengths and zero vectors.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// rankTopN scores every vector against query and returns the best n,
// highest first. Ties keep insertion order.
func rankTopN(query []float32, examples []models.Example, vectors [][]float32, n int) []Candidate {
	candidates := make([]Candidate, len(examples))
	for i := range examples {
		candidates[i] = Candidate{Example: examples[i], Score: CosineSimilarity(query, vectors[i])}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if n >= 0 && len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates
}
