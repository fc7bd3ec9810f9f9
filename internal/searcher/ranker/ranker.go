// Package ranker scores documents against a query under a log-damped,
// L2-normalized TF-IDF vector model with cosine similarity.
package ranker

import (
	"sort"

	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/indexer/index"
)

const DefaultTopK = 10

type ScoredDoc struct {
	DocID string  `json:"doc_id"`
	Score float64 `json:"score"`
}

// Rank scores every document that shares at least one term with query and
// returns the topK best by descending score, ties broken by ascending DocID.
// Zero scores are dropped. topK <= 0 or an empty query yields no results.
func Rank(query Vector, ix *index.InvertedIndex, docVecs map[string]Vector, topK int) []ScoredDoc {
	if topK <= 0 || len(query) == 0 || ix.Empty() {
		return []ScoredDoc{}
	}

	candidates := make(map[string]struct{})
	for term := range query {
		for docID := range ix.Postings[term] {
			candidates[docID] = struct{}{}
		}
	}

	result := make([]ScoredDoc, 0, len(candidates))
	for docID := range candidates {
		score := Cosine(query, docVecs[docID])
		if score == 0 {
			continue
		}
		result = append(result, ScoredDoc{DocID: docID, Score: score})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Score != result[j].Score {
			return result[i].Score > result[j].Score
		}
		return result[i].DocID < result[j].DocID
	})
	if len(result) > topK {
		result = result[:topK]
	}
	return result
}
