package services

import (
	"math"
	"sort"

	"github.com/blavejr/storefrontAI/models"
)

// Rank scores every indexed product against the query vector and returns up to
// topK candidates in descending similarity order. Ties keep ascending index
// position (stable sort), so identical inputs always produce identical output.
// This is a brute-force O(N*D) scan, fine at catalog scale.
func Rank(query []float32, snap *IndexSnapshot, topK int) []models.ScoredCandidate {
	if topK <= 0 || snap == nil {
		return nil
	}

	candidates := make([]models.ScoredCandidate, 0, snap.Len())
	for i, vec := range snap.Vectors {
		candidates = append(candidates, models.ScoredCandidate{
			ID:    snap.IDs[i],
			Score: cosineSimilarity(query, vec),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates
}

// cosineSimilarity computes dot(a,b) / (|a|*|b|). A zero-magnitude vector on
// either side has no direction to compare, so it scores -Inf and ranks last
// instead of producing a division error.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return math.Inf(-1)
	}

	var dotProduct, normA, normB float64
	for i := 0; i < len(a); i++ {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return math.Inf(-1)
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
