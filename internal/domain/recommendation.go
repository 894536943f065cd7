package domain

import "fmt"

// SimilarityHit is one match from the vector-similarity search. The
// embedding ID ties the vector back to a tenant row.
type SimilarityHit struct {
	EmbeddingID string  `json:"id"`
	Score       float64 `json:"score"`
}

// ScoreMap maps an embedding ID to its similarity score.
type ScoreMap map[string]float64

// BuildScoreMap collapses search hits into a score map plus the list of
// embedding IDs to fetch, in first-seen order. When the same ID appears
// twice the first score wins, so map and list always agree.
func BuildScoreMap(hits []SimilarityHit) (ScoreMap, []string) {
	scores := make(ScoreMap, len(hits))
	ids := make([]string, 0, len(hits))
	for _, hit := range hits {
		if _, seen := scores[hit.EmbeddingID]; seen {
			continue
		}
		scores[hit.EmbeddingID] = hit.Score
		ids = append(ids, hit.EmbeddingID)
	}
	return scores, ids
}

// Recommendation pairs a candidate tenant with its similarity score and an
// AI-generated explanation. Insight is always populated: either generated
// text or the fallback from FallbackInsight.
type Recommendation struct {
	Tenant  Tenant  `json:"tenant"`
	Score   float64 `json:"score"`
	Insight string  `json:"ai_insight"`
}

// FallbackInsight is the deterministic insight text used when generation
// fails for a candidate.
func FallbackInsight(name string) string {
	return fmt.Sprintf("Could not generate insight for %s.", name)
}
