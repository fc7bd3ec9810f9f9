// Package selection prunes the index vocabulary by document frequency.
//
// Terms that appear in too few documents are noise, terms that appear in
// nearly all of them do not discriminate. Whatever survives both bounds is
// capped to the TopN most frequent terms.
package selection

import (
	"fmt"
	"math"
	"sort"
)

const Method = "DF threshold + Top-N"

// Params bound the selected vocabulary. TopN <= 0 disables the cap.
type Params struct {
	MinDF      int     `json:"minDF"`
	MaxDFRatio float64 `json:"maxDFRatio"`
	TopN       int     `json:"topN"`
}

func DefaultParams() Params {
	return Params{MinDF: 2, MaxDFRatio: 0.85, TopN: 8000}
}

func (p Params) Validate() error {
	if p.MinDF < 1 {
		return fmt.Errorf("minDF must be >= 1, got %d", p.MinDF)
	}
	if p.MaxDFRatio <= 0 || p.MaxDFRatio > 1 || math.IsNaN(p.MaxDFRatio) {
		return fmt.Errorf("maxDFRatio must be in (0, 1], got %g", p.MaxDFRatio)
	}
	return nil
}

// MaxDF is the absolute upper df bound for a corpus of n documents. It never
// drops below one document.
func (p Params) MaxDF(n int) int {
	maxDF := int(math.Floor(p.MaxDFRatio * float64(n)))
	if maxDF < 1 {
		maxDF = 1
	}
	return maxDF
}

// Report records one pruning decision for audit. Retrieval never reads it.
type Report struct {
	Method         string  `json:"method"`
	TotalDocs      int     `json:"totalDocs"`
	VocabularySize int     `json:"vocabularySize"`
	SelectedSize   int     `json:"selectedSize"`
	MinDF          int     `json:"minDF"`
	MaxDFRatio     float64 `json:"maxDFRatio"`
	MaxDF          int     `json:"maxDF"`
	TopN           int     `json:"topN"`
}

// Selection is the persisted form: the sorted surviving vocabulary plus the
// report that produced it.
type Selection struct {
	SelectedTerms []string `json:"selected_terms"`
	Report        Report   `json:"report"`
}

// Set returns the selected terms as a lookup set for index.Build.
func (s *Selection) Set() map[string]struct{} {
	set := make(map[string]struct{}, len(s.SelectedTerms))
	for _, t := range s.SelectedTerms {
		set[t] = struct{}{}
	}
	return set
}

// DocumentFrequency counts, for each term, the documents containing it.
func DocumentFrequency(docTokens map[string][]string) map[string]int {
	df := make(map[string]int)
	for _, tokens := range docTokens {
		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	return df
}

type termDF struct {
	term string
	df   int
}

// Select keeps terms with MinDF <= df <= MaxDF(N), then the TopN of those by
// descending df with ties broken by ascending term. An empty corpus yields an
// empty selection.
func Select(docTokens map[string][]string, p Params) *Selection {
	n := len(docTokens)
	report := Report{
		Method:     Method,
		TotalDocs:  n,
		MinDF:      p.MinDF,
		MaxDFRatio: p.MaxDFRatio,
		TopN:       p.TopN,
	}
	if n == 0 {
		return &Selection{SelectedTerms: []string{}, Report: report}
	}

	df := DocumentFrequency(docTokens)
	maxDF := p.MaxDF(n)
	kept := make([]termDF, 0, len(df))
	for term, count := range df {
		if count >= p.MinDF && count <= maxDF {
			kept = append(kept, termDF{term: term, df: count})
		}
	}
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].df != kept[j].df {
			return kept[i].df > kept[j].df
		}
		return kept[i].term < kept[j].term
	})
	if p.TopN > 0 && len(kept) > p.TopN {
		kept = kept[:p.TopN]
	}

	terms := make([]string, len(kept))
	for i, k := range kept {
		terms[i] = k.term
	}
	sort.Strings(terms)

	report.VocabularySize = len(df)
	report.SelectedSize = len(terms)
	report.MaxDF = maxDF
	return &Selection{SelectedTerms: terms, Report: report}
}
