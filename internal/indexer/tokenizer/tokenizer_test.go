package tokenizer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", []string{}},
		{"punctuation", "Ini adalah bukunya.", []string{"ini", "adalah", "bukunya"}},
		{"digits split", "daun123sirih", []string{"daun", "sirih"}},
		{"non latin", "jahe 生姜 kunyit", []string{"jahe", "kunyit"}},
		{"hyphen", "anti-radang", []string{"anti", "radang"}},
		{"only symbols", "!!! 42 ???", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.text)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Tokenize(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestFilterPreservesOrder(t *testing.T) {
	stop := StopwordSet(false)
	got := Filter([]string{"daun", "dan", "akar", "yang", "batang"}, stop)
	want := []string{"daun", "akar", "batang"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Filter mismatch (-want +got):\n%s", diff)
	}
}

func TestStopwordSetDomain(t *testing.T) {
	general := StopwordSet(false)
	withDomain := StopwordSet(true)
	if _, ok := general["tanaman"]; ok {
		t.Error("domain term present in general set")
	}
	if _, ok := withDomain["tanaman"]; !ok {
		t.Error("domain term missing from combined set")
	}
	for _, w := range GeneralStopwords() {
		if _, ok := withDomain[w]; !ok {
			t.Errorf("combined set lost general stopword %q", w)
		}
	}
}

func TestAnalyze(t *testing.T) {
	a := NewAnalyzer(Options{})
	got := a.Analyze("Ini adalah bukunya.")
	want := []string{"buku"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Analyze mismatch (-want +got):\n%s", diff)
	}

	raw := NewAnalyzer(Options{DisableStemming: true}).Analyze("Ini adalah bukunya.")
	if diff := cmp.Diff([]string{"bukunya"}, raw); diff != "" {
		t.Errorf("unstemmed Analyze mismatch (-want +got):\n%s", diff)
	}
}

func TestBreakdown(t *testing.T) {
	a := NewAnalyzer(Options{DomainStopwords: true})
	got := a.Breakdown("Tanaman ini menyembuhkan penyakit")
	want := Breakdown{
		Tokens:   []string{"tanaman", "ini", "menyembuhkan", "penyakit"},
		Filtered: []string{"menyembuhkan", "penyakit"},
		Stemmed:  []string{"sembuh", "sakit"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Breakdown mismatch (-want +got):\n%s", diff)
	}
	if !a.IsStopword("tanaman") {
		t.Error("expected tanaman to be a stopword with domain list enabled")
	}
}
