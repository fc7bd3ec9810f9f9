package index

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	apperrors "github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/errors"
)

func TestBuildBasic(t *testing.T) {
	ix := Build(map[string][]string{
		"d1": {"buku", "ajar", "ajar"},
		"d2": {"ajar", "kelas"},
	}, nil)

	if ix.N != 2 {
		t.Errorf("N = %d, want 2", ix.N)
	}
	if ix.DF["ajar"] != 2 {
		t.Errorf("df[ajar] = %d, want 2", ix.DF["ajar"])
	}
	if ix.Postings["ajar"]["d1"] != 2 {
		t.Errorf("postings[ajar][d1] = %d, want 2", ix.Postings["ajar"]["d1"])
	}
	if ix.Postings["kelas"]["d2"] != 1 {
		t.Errorf("postings[kelas][d2] = %d, want 1", ix.Postings["kelas"]["d2"])
	}
	if ix.DocLen["d1"] != 3 || ix.DocLen["d2"] != 2 {
		t.Errorf("doc_len = %v", ix.DocLen)
	}
	if err := ix.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestBuildDFMatchesPostings(t *testing.T) {
	ix := Build(map[string][]string{
		"a": {"jahe", "kunyit", "jahe", "sirih"},
		"b": {"kunyit"},
		"c": {"sirih", "sirih", "temulawak"},
		"d": {},
	}, nil)
	for term, docs := range ix.Postings {
		if ix.DF[term] != len(docs) {
			t.Errorf("df(%q) = %d, postings = %d", term, ix.DF[term], len(docs))
		}
	}
	if !ix.HasDocument("d") || ix.DocLen["d"] != 0 {
		t.Error("empty document should still be counted")
	}
}

func TestBuildAllowedTerms(t *testing.T) {
	docs := map[string][]string{
		"d1": {"buku", "ajar", "ajar"},
		"d2": {"ajar", "kelas"},
	}
	ix := Build(docs, map[string]struct{}{"ajar": {}})
	if diff := cmp.Diff([]string{"ajar"}, ix.Terms()); diff != "" {
		t.Errorf("Terms mismatch (-want +got):\n%s", diff)
	}
	if ix.DocLen["d1"] != 2 {
		t.Errorf("doc_len[d1] = %d, want 2 after filtering", ix.DocLen["d1"])
	}
	if len(docs["d1"]) != 3 {
		t.Error("Build must not mutate the input token streams")
	}

	empty := Build(docs, map[string]struct{}{})
	if len(empty.Postings) != 0 || empty.N != 2 {
		t.Errorf("empty allowed set: postings=%d N=%d", len(empty.Postings), empty.N)
	}
}

func TestBuildEmptyCorpus(t *testing.T) {
	ix := Build(nil, nil)
	if !ix.Empty() {
		t.Error("expected empty index")
	}
	if err := ix.Validate(); err != nil {
		t.Errorf("empty index should be well-formed: %v", err)
	}
}

func TestLookupOrdered(t *testing.T) {
	ix := Build(map[string][]string{
		"z": {"daun"},
		"a": {"daun", "daun"},
		"m": {"daun"},
	}, nil)
	want := PostingList{{"a", 2}, {"m", 1}, {"z", 1}}
	if diff := cmp.Diff(want, ix.Lookup("daun")); diff != "" {
		t.Errorf("Lookup mismatch (-want +got):\n%s", diff)
	}
	if ix.Lookup("akar") != nil {
		t.Error("expected nil for unknown term")
	}
}

func TestSnapshot(t *testing.T) {
	ix := Build(map[string][]string{"d1": {"b", "a"}, "d2": {"a"}}, nil)
	snap := ix.Snapshot()
	if len(snap) != 2 || snap[0].Term != "a" || snap[0].DF != 2 || snap[1].Term != "b" {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestValidateCorrupt(t *testing.T) {
	tests := []struct {
		name string
		ix   *InvertedIndex
	}{
		{"missing fields", &InvertedIndex{}},
		{"df drift", &InvertedIndex{
			Postings: map[string]map[string]int{"a": {"d1": 1}},
			DF:       map[string]int{"a": 2},
			DocLen:   map[string]int{"d1": 1},
			N:        1,
		}},
		{"zero tf", &InvertedIndex{
			Postings: map[string]map[string]int{"a": {"d1": 0}},
			DF:       map[string]int{"a": 1},
			DocLen:   map[string]int{"d1": 1},
			N:        1,
		}},
		{"n mismatch", &InvertedIndex{
			Postings: map[string]map[string]int{},
			DF:       map[string]int{},
			DocLen:   map[string]int{"d1": 0},
			N:        3,
		}},
		{"unknown doc", &InvertedIndex{
			Postings: map[string]map[string]int{"a": {"ghost": 1}},
			DF:       map[string]int{"a": 1},
			DocLen:   map[string]int{"d1": 1},
			N:        1,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ix.Validate()
			if !errors.Is(err, apperrors.ErrCorruptArtifact) {
				t.Errorf("Validate() = %v, want ErrCorruptArtifact", err)
			}
		})
	}
}
