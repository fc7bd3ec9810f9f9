package ranker

import (
	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/indexer/index"
)

// DocTerm is one cell of the explain matrix.
type DocTerm struct {
	TF     int     `json:"tf"`
	Weight float64 `json:"weight"`
}

// ExplainRow describes how one query term contributes to scoring.
type ExplainRow struct {
	Term        string             `json:"term"`
	DF          int                `json:"df"`
	IDF         float64            `json:"idf"`
	QueryTF     int                `json:"query_tf"`
	QueryWeight float64            `json:"query_weight"`
	Docs        map[string]DocTerm `json:"docs"`
}

// Explain builds a tf/df/idf matrix for the distinct query terms against
// docIDs. Weights are the normalized values used by Rank.
func Explain(ix *index.InvertedIndex, idf IDFTable, docVecs map[string]Vector, terms []string, docIDs []string) []ExplainRow {
	query := QueryVector(terms, idf)
	queryTF := make(map[string]int, len(terms))
	order := make([]string, 0, len(terms))
	for _, t := range terms {
		if queryTF[t] == 0 {
			order = append(order, t)
		}
		queryTF[t]++
	}

	rows := make([]ExplainRow, 0, len(order))
	for _, term := range order {
		row := ExplainRow{
			Term:        term,
			DF:          ix.DF[term],
			IDF:         idf[term],
			QueryTF:     queryTF[term],
			QueryWeight: query[term],
			Docs:        make(map[string]DocTerm, len(docIDs)),
		}
		for _, docID := range docIDs {
			row.Docs[docID] = DocTerm{
				TF:     ix.TF(term, docID),
				Weight: docVecs[docID][term],
			}
		}
		rows = append(rows, row)
	}
	return rows
}
