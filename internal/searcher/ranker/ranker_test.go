package ranker

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/errors"
)

const eps = 1e-9

func scenarioIndex() *index.InvertedIndex {
	return index.Build(map[string][]string{
		"d1": {"buku", "ajar", "ajar"},
		"d2": {"buku"},
		"d3": {"kelas", "ajar"},
	}, nil)
}

func TestComputeIDF(t *testing.T) {
	ix := scenarioIndex()
	smooth := ComputeIDF(ix, true)
	if got, want := smooth["kelas"], math.Log(4.0/2.0)+1; math.Abs(got-want) > eps {
		t.Errorf("smoothed idf[kelas] = %v, want %v", got, want)
	}
	raw := ComputeIDF(ix, false)
	if got, want := raw["ajar"], math.Log(3.0/2.0); math.Abs(got-want) > eps {
		t.Errorf("raw idf[ajar] = %v, want %v", got, want)
	}
	for term, w := range smooth {
		if w <= 0 {
			t.Errorf("smoothed idf[%q] = %v, want > 0", term, w)
		}
	}
	if got := idfValue(3, 0, false); got != 0 {
		t.Errorf("raw idf with df=0 = %v, want 0", got)
	}
}

func TestWeight(t *testing.T) {
	if got := Weight(1, 2); got != 2 {
		t.Errorf("Weight(1, 2) = %v, want 2", got)
	}
	if got, want := Weight(3, 1.5), (1+math.Log(3))*1.5; math.Abs(got-want) > eps {
		t.Errorf("Weight(3, 1.5) = %v, want %v", got, want)
	}
	if got := Weight(0, 5); got != 0 {
		t.Errorf("Weight(0, 5) = %v, want 0", got)
	}
}

func TestVectorsAreUnitOrEmpty(t *testing.T) {
	ix := index.Build(map[string][]string{
		"d1": {"buku", "ajar", "ajar"},
		"d2": {},
		"d3": {"kelas"},
	}, nil)
	idf := ComputeIDF(ix, true)
	vecs := DocumentVectors(ix, idf)
	if len(vecs) != 3 {
		t.Fatalf("got %d vectors, want 3", len(vecs))
	}
	for docID, v := range vecs {
		n := v.Norm()
		if len(v) == 0 {
			if n != 0 {
				t.Errorf("empty vector %s has norm %v", docID, n)
			}
			continue
		}
		if math.Abs(n-1) > eps {
			t.Errorf("vector %s has norm %v, want 1", docID, n)
		}
	}
	q := QueryVector([]string{"buku", "unknown", "buku"}, idf)
	if _, ok := q["unknown"]; ok {
		t.Error("out-of-vocabulary term must not enter the query vector")
	}
	if math.Abs(q.Norm()-1) > eps {
		t.Errorf("query norm = %v, want 1", q.Norm())
	}
}

func TestRawIDFDropsZeroWeights(t *testing.T) {
	ix := index.Build(map[string][]string{"d1": {"jahe"}, "d2": {"jahe", "sirih"}}, nil)
	idf := ComputeIDF(ix, false)
	vecs := DocumentVectors(ix, idf)
	if _, ok := vecs["d1"]["jahe"]; ok {
		t.Error("term in every document has idf 0 and must be omitted")
	}
}

func TestCosineSymmetric(t *testing.T) {
	a := Vector{"x": 0.6, "y": 0.8}
	b := Vector{"x": 1}
	if Cosine(a, b) != Cosine(b, a) {
		t.Error("cosine must not depend on argument order")
	}
	if got := Cosine(a, b); math.Abs(got-0.6) > eps {
		t.Errorf("Cosine = %v, want 0.6", got)
	}
}

func TestRankScenario(t *testing.T) {
	ix := scenarioIndex()
	idf := ComputeIDF(ix, true)
	vecs := DocumentVectors(ix, idf)
	q := QueryVector([]string{"buku", "ajar"}, idf)

	got := Rank(q, ix, vecs, 3)
	if len(got) != 3 {
		t.Fatalf("got %d results, want 3: %+v", len(got), got)
	}
	if got[0].DocID != "d1" {
		t.Errorf("top result = %s, want d1 (%+v)", got[0].DocID, got)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("results not sorted: %+v", got)
		}
	}
}

func TestRankEdgeCases(t *testing.T) {
	ix := scenarioIndex()
	idf := ComputeIDF(ix, true)
	vecs := DocumentVectors(ix, idf)
	q := QueryVector([]string{"buku"}, idf)

	if got := Rank(q, ix, vecs, 0); len(got) != 0 {
		t.Errorf("topK=0 returned %v", got)
	}
	if got := Rank(q, ix, vecs, -3); len(got) != 0 {
		t.Errorf("negative topK returned %v", got)
	}
	if got := Rank(QueryVector(nil, idf), ix, vecs, 10); len(got) != 0 {
		t.Errorf("empty query returned %v", got)
	}
	if got := Rank(QueryVector([]string{"daun"}, idf), ix, vecs, 10); len(got) != 0 {
		t.Errorf("unknown term returned %v", got)
	}
	empty := index.Build(nil, nil)
	if got := Rank(q, empty, nil, 10); len(got) != 0 {
		t.Errorf("empty index returned %v", got)
	}
	for _, r := range Rank(q, ix, vecs, 10) {
		if r.DocID == "d3" {
			t.Error("d3 shares no term with the query and must not be scored")
		}
	}
}

func TestRankTieBreakAndMonotonic(t *testing.T) {
	ix := index.Build(map[string][]string{
		"c": {"jahe"},
		"a": {"jahe"},
		"b": {"jahe"},
		"d": {"jahe", "jahe", "sirih"},
	}, nil)
	idf := ComputeIDF(ix, true)
	vecs := DocumentVectors(ix, idf)
	q := QueryVector([]string{"jahe"}, idf)

	full := Rank(q, ix, vecs, 10)
	var ids []string
	for _, r := range full {
		ids = append(ids, r.DocID)
	}
	if diff := cmp.Diff([]string{"a", "b", "c", "d"}, ids); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	for k := 1; k <= len(full); k++ {
		if diff := cmp.Diff(full[:k], Rank(q, ix, vecs, k)); diff != "" {
			t.Errorf("topK=%d is not a prefix of the full ranking:\n%s", k, diff)
		}
	}
	if diff := cmp.Diff(full, Rank(q, ix, vecs, 10)); diff != "" {
		t.Errorf("rank not deterministic:\n%s", diff)
	}
}

func TestRankIdenticalDocumentsTieExactly(t *testing.T) {
	terms := make([]string, 0, 60)
	for i := 0; i < 40; i++ {
		term := fmt.Sprintf("herba%c%c", 'a'+i%26, 'a'+i/26)
		for j := 0; j <= i%3; j++ {
			terms = append(terms, term)
		}
	}
	docs := map[string][]string{"other": {"kunyit", "herbaaa"}}
	for _, id := range []string{"d3", "d1", "d0", "d2"} {
		docs[id] = terms
	}
	ix := index.Build(docs, nil)
	idf := ComputeIDF(ix, true)
	q := QueryVector(terms[:25], idf)

	want := []string{"d0", "d1", "d2", "d3", "other"}
	first := Rank(q, ix, DocumentVectors(ix, idf), 10)
	for i := 0; i < 100; i++ {
		vecs := DocumentVectors(ix, idf)
		for _, id := range want[1:4] {
			if diff := cmp.Diff(vecs["d0"], vecs[id]); diff != "" {
				t.Fatalf("vector of %s differs from d0:\n%s", id, diff)
			}
		}
		got := Rank(q, ix, vecs, 10)
		if diff := cmp.Diff(first, got); diff != "" {
			t.Fatalf("call %d ranked differently:\n%s", i, diff)
		}
	}

	var ids []string
	for _, r := range first {
		ids = append(ids, r.DocID)
	}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	for _, r := range first[1:4] {
		if r.Score != first[0].Score {
			t.Errorf("%s scored %v, d0 scored %v", r.DocID, r.Score, first[0].Score)
		}
	}
}

func TestVerifyIDF(t *testing.T) {
	ix := scenarioIndex()
	idf := ComputeIDF(ix, true)
	if err := VerifyIDF(ix, idf, true); err != nil {
		t.Errorf("VerifyIDF on matching pair: %v", err)
	}
	if err := VerifyIDF(ix, idf, false); !errors.Is(err, apperrors.ErrGenerationMismatch) {
		t.Errorf("smoothing mismatch: got %v", err)
	}
	other := index.Build(map[string][]string{"x": {"buku", "ajar"}, "y": {"kelas"}}, nil)
	if err := VerifyIDF(ix, ComputeIDF(other, true), true); !errors.Is(err, apperrors.ErrGenerationMismatch) {
		t.Errorf("stale table: got %v", err)
	}
}

func TestIDFTableValidate(t *testing.T) {
	if err := (IDFTable{"a": 1}).Validate(); err != nil {
		t.Errorf("valid table: %v", err)
	}
	var missing IDFTable
	if err := missing.Validate(); !errors.Is(err, apperrors.ErrCorruptArtifact) {
		t.Errorf("nil table: %v", err)
	}
	if err := (IDFTable{"a": -1}).Validate(); !errors.Is(err, apperrors.ErrCorruptArtifact) {
		t.Errorf("negative weight: %v", err)
	}
}

func TestExplain(t *testing.T) {
	ix := scenarioIndex()
	idf := ComputeIDF(ix, true)
	vecs := DocumentVectors(ix, idf)
	rows := Explain(ix, idf, vecs, []string{"ajar", "buku", "ajar"}, []string{"d1", "d3"})
	if len(rows) != 2 || rows[0].Term != "ajar" || rows[1].Term != "buku" {
		t.Fatalf("unexpected rows %+v", rows)
	}
	if rows[0].QueryTF != 2 || rows[0].DF != 2 {
		t.Errorf("ajar row = %+v", rows[0])
	}
	if rows[0].Docs["d1"].TF != 2 || rows[0].Docs["d3"].TF != 1 {
		t.Errorf("ajar tf cells = %+v", rows[0].Docs)
	}
	if rows[1].Docs["d3"].TF != 0 || rows[1].Docs["d3"].Weight != 0 {
		t.Errorf("buku should be absent from d3: %+v", rows[1].Docs["d3"])
	}
}
