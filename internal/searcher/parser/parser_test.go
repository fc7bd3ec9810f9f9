package parser

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"

	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/indexer/tokenizer"
)

func TestParse(t *testing.T) {
	an := tokenizer.NewAnalyzer(tokenizer.Options{})
	plan := Parse("  Obat untuk PENYAKIT,  kulit! ", an)

	if plan.Normalized != "obat untuk penyakit kulit" {
		t.Errorf("Normalized = %q", plan.Normalized)
	}
	if diff := cmp.Diff([]string{"obat", "penyakit", "kulit"}, plan.Keywords); diff != "" {
		t.Errorf("Keywords (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"obat", "sakit", "kulit"}, plan.Terms); diff != "" {
		t.Errorf("Terms (-want +got):\n%s", diff)
	}
	if plan.Empty() {
		t.Error("plan should not be empty")
	}
}

func TestParseEmptyAndStopwordOnly(t *testing.T) {
	an := tokenizer.NewAnalyzer(tokenizer.Options{})
	for _, q := range []string{"", "   ", "123 !!", "yang dan di"} {
		plan := Parse(q, an)
		if !plan.Empty() {
			t.Errorf("Parse(%q) terms = %v, want none", q, plan.Terms)
		}
		if plan.Terms == nil || plan.Keywords == nil {
			t.Errorf("Parse(%q) returned nil slices", q)
		}
	}
}

func TestParseTruncatesLongQuery(t *testing.T) {
	an := tokenizer.NewAnalyzer(tokenizer.Options{})
	plan := Parse(strings.Repeat("a", MaxQueryLength+50), an)
	if len(plan.RawQuery) != MaxQueryLength {
		t.Errorf("RawQuery length = %d", len(plan.RawQuery))
	}
}

func TestParseTruncatesOnRuneBoundary(t *testing.T) {
	an := tokenizer.NewAnalyzer(tokenizer.Options{})
	// "é" is two bytes; the limit falls inside the last one that fits.
	query := strings.Repeat("a", MaxQueryLength-1) + "é jahe"
	plan := Parse(query, an)
	if !utf8.ValidString(plan.RawQuery) {
		t.Fatalf("RawQuery is not valid UTF-8: %q", plan.RawQuery[len(plan.RawQuery)-4:])
	}
	if len(plan.RawQuery) != MaxQueryLength-1 {
		t.Errorf("RawQuery length = %d, want %d", len(plan.RawQuery), MaxQueryLength-1)
	}
}
