// Package index builds the term -> {document: tf} inverted index.
//
// An InvertedIndex is never mutated after Build returns. Rebuilding a corpus
// produces a new value, so readers can share one without locking.
package index

import (
	"fmt"
	"sort"

	apperrors "github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/errors"
)

type InvertedIndex struct {
	Postings map[string]map[string]int `json:"postings"`
	DF       map[string]int            `json:"df"`
	DocLen   map[string]int            `json:"doc_len"`
	N        int                       `json:"N"`
}

// Build counts term frequencies per document. When allowed is non-nil, terms
// outside it are dropped before counting. Document frequency is derived from
// the finished postings.
func Build(docTokens map[string][]string, allowed map[string]struct{}) *InvertedIndex {
	ix := &InvertedIndex{
		Postings: make(map[string]map[string]int),
		DF:       make(map[string]int),
		DocLen:   make(map[string]int, len(docTokens)),
		N:        len(docTokens),
	}
	for docID, tokens := range docTokens {
		length := 0
		for _, tok := range tokens {
			if allowed != nil {
				if _, ok := allowed[tok]; !ok {
					continue
				}
			}
			docs, exists := ix.Postings[tok]
			if !exists {
				docs = make(map[string]int)
				ix.Postings[tok] = docs
			}
			docs[docID]++
			length++
		}
		ix.DocLen[docID] = length
	}
	for term, docs := range ix.Postings {
		ix.DF[term] = len(docs)
	}
	return ix
}

// Empty reports whether the index holds no documents.
func (ix *InvertedIndex) Empty() bool {
	return ix == nil || ix.N == 0
}

// Lookup returns the postings for term ordered by DocID, or nil.
func (ix *InvertedIndex) Lookup(term string) PostingList {
	docs, exists := ix.Postings[term]
	if !exists {
		return nil
	}
	result := make(PostingList, 0, len(docs))
	for docID, tf := range docs {
		result = append(result, Posting{DocID: docID, Frequency: tf})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DocID < result[j].DocID
	})
	return result
}

// TF returns the frequency of term in docID, 0 when absent.
func (ix *InvertedIndex) TF(term, docID string) int {
	return ix.Postings[term][docID]
}

// HasDocument reports whether docID was part of the indexed corpus.
func (ix *InvertedIndex) HasDocument(docID string) bool {
	_, ok := ix.DocLen[docID]
	return ok
}

// Terms returns the vocabulary in lexicographic order.
func (ix *InvertedIndex) Terms() []string {
	terms := make([]string, 0, len(ix.Postings))
	for term := range ix.Postings {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// DocIDs returns every indexed document in lexicographic order.
func (ix *InvertedIndex) DocIDs() []string {
	ids := make([]string, 0, len(ix.DocLen))
	for id := range ix.DocLen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Snapshot flattens the index into term-ordered entries.
func (ix *InvertedIndex) Snapshot() []TermEntry {
	terms := ix.Terms()
	entries := make([]TermEntry, 0, len(terms))
	for _, term := range terms {
		entries = append(entries, TermEntry{
			Term:     term,
			DF:       ix.DF[term],
			Postings: ix.Lookup(term),
		})
	}
	return entries
}

// Validate checks the structural invariants of a decoded index. Failures wrap
// ErrCorruptArtifact.
func (ix *InvertedIndex) Validate() error {
	if ix.Postings == nil || ix.DF == nil || ix.DocLen == nil {
		return apperrors.Corruptf("index is missing postings, df or doc_len")
	}
	if ix.N < 0 {
		return apperrors.Corruptf("negative document count %d", ix.N)
	}
	if ix.N != len(ix.DocLen) {
		return apperrors.Corruptf("N=%d but doc_len lists %d documents", ix.N, len(ix.DocLen))
	}
	if len(ix.DF) != len(ix.Postings) {
		return apperrors.Corruptf("df has %d terms, postings has %d", len(ix.DF), len(ix.Postings))
	}
	for term, docs := range ix.Postings {
		if df, ok := ix.DF[term]; !ok || df != len(docs) {
			return apperrors.Corruptf("df(%q)=%d does not match %d postings", term, df, len(docs))
		}
		for docID, tf := range docs {
			if tf < 1 {
				return apperrors.Corruptf("postings[%q][%q] has tf %d", term, docID, tf)
			}
			if _, ok := ix.DocLen[docID]; !ok {
				return apperrors.Corruptf("postings[%q] references unknown document %q", term, docID)
			}
		}
	}
	return nil
}

// Stats summarizes the index for logging and reports.
type Stats struct {
	Documents  int `json:"documents"`
	Vocabulary int `json:"vocabulary"`
	Postings   int `json:"postings"`
}

func (ix *InvertedIndex) Stats() Stats {
	s := Stats{Documents: ix.N, Vocabulary: len(ix.Postings)}
	for _, docs := range ix.Postings {
		s.Postings += len(docs)
	}
	return s
}

func (s Stats) String() string {
	return fmt.Sprintf("docs=%d vocab=%d postings=%d", s.Documents, s.Vocabulary, s.Postings)
}
