package ranker

import (
	"math"
	"slices"

	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/indexer/index"
)

// Vector is a sparse term -> weight map. Zero weights are never stored.
type Vector map[string]float64

// Weight is the log-damped tf-idf weight. tf must be at least 1.
func Weight(tf int, idf float64) float64 {
	if tf < 1 {
		return 0
	}
	return (1 + math.Log(float64(tf))) * idf
}

// Terms returns the terms of v in ascending order.
func (v Vector) Terms() []string {
	terms := make([]string, 0, len(v))
	for term := range v {
		terms = append(terms, term)
	}
	slices.Sort(terms)
	return terms
}

// Norm returns the Euclidean length of v. Squares are summed in term order
// so equal vectors always yield bit-identical norms.
func (v Vector) Norm() float64 {
	var sum float64
	for _, term := range v.Terms() {
		w := v[term]
		sum += w * w
	}
	return math.Sqrt(sum)
}

// Normalize scales v to unit length in place. An empty or all-zero vector is
// left untouched.
func (v Vector) Normalize() {
	norm := v.Norm()
	if norm == 0 {
		return
	}
	for term, w := range v {
		v[term] = w / norm
	}
}

// Cosine returns the dot product of two normalized vectors. It walks the
// smaller vector in term order, so the result does not depend on map
// iteration and equal documents score exactly equal.
func Cosine(a, b Vector) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for _, term := range a.Terms() {
		if wb, ok := b[term]; ok {
			dot += a[term] * wb
		}
	}
	return dot
}

// fromTF weights a term-frequency map and normalizes it. Terms absent from
// idf, or with zero idf, are left out.
func fromTF(tf map[string]int, idf IDFTable) Vector {
	v := make(Vector, len(tf))
	for term, f := range tf {
		weight, ok := idf[term]
		if !ok {
			continue
		}
		if w := Weight(f, weight); w != 0 {
			v[term] = w
		}
	}
	v.Normalize()
	return v
}

// DocumentVectors builds one normalized vector per indexed document,
// including documents with no terms, which get an empty vector.
func DocumentVectors(ix *index.InvertedIndex, idf IDFTable) map[string]Vector {
	tfs := make(map[string]map[string]int, len(ix.DocLen))
	for docID := range ix.DocLen {
		tfs[docID] = make(map[string]int)
	}
	for term, docs := range ix.Postings {
		for docID, tf := range docs {
			if _, ok := tfs[docID]; !ok {
				tfs[docID] = make(map[string]int)
			}
			tfs[docID][term] = tf
		}
	}
	vecs := make(map[string]Vector, len(tfs))
	for docID, tf := range tfs {
		vecs[docID] = fromTF(tf, idf)
	}
	return vecs
}

// QueryVector weights already-analyzed query terms the same way documents are
// weighted. Terms unknown to idf cannot match and are dropped.
func QueryVector(terms []string, idf IDFTable) Vector {
	tf := make(map[string]int, len(terms))
	for _, t := range terms {
		tf[t]++
	}
	return fromTF(tf, idf)
}
