// Package tokenizer turns raw Indonesian text into index terms. It case-folds
// input, extracts runs of ASCII letters, removes stop-words, and hands the
// survivors to the affix stemmer.
package tokenizer

import (
	"strings"

	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/indexer/stemmer"
)

// Tokenize lower-cases text and returns every maximal run of ASCII letters.
// Digits, punctuation and non-Latin script act as separators.
func Tokenize(text string) []string {
	text = strings.ToLower(text)
	return strings.FieldsFunc(text, func(r rune) bool {
		return r < 'a' || r > 'z'
	})
}

// Filter drops tokens contained in stop, preserving the order of the rest.
func Filter(tokens []string, stop map[string]struct{}) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		if _, isStop := stop[tok]; isStop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Options configures an Analyzer.
type Options struct {
	// DomainStopwords adds the corpus-specific noise list to the general
	// function-word list.
	DomainStopwords bool
	// DisableStemming skips the stemmer stage.
	DisableStemming bool
}

// Analyzer runs the full index-time pipeline: tokenize, filter, stem. The same
// Analyzer must be used for documents, queries and summaries so that term
// weights line up. It is safe for concurrent use.
type Analyzer struct {
	stop map[string]struct{}
	stem bool
}

func NewAnalyzer(opts Options) *Analyzer {
	return &Analyzer{
		stop: StopwordSet(opts.DomainStopwords),
		stem: !opts.DisableStemming,
	}
}

// Analyze returns the terms of text in document order.
func (a *Analyzer) Analyze(text string) []string {
	tokens := Filter(Tokenize(text), a.stop)
	if a.stem {
		tokens = stemmer.StemAll(tokens)
	}
	return tokens
}

// Breakdown is the per-stage view of one pass through the pipeline.
type Breakdown struct {
	Tokens   []string `json:"tokens"`
	Filtered []string `json:"filtered"`
	Stemmed  []string `json:"stemmed"`
}

// Breakdown runs the pipeline and keeps every intermediate stage.
func (a *Analyzer) Breakdown(text string) Breakdown {
	tokens := Tokenize(text)
	filtered := Filter(tokens, a.stop)
	stemmed := filtered
	if a.stem {
		stemmed = stemmer.StemAll(filtered)
	}
	return Breakdown{Tokens: tokens, Filtered: filtered, Stemmed: stemmed}
}

// IsStopword reports whether tok is removed by this analyzer.
func (a *Analyzer) IsStopword(tok string) bool {
	_, ok := a.stop[tok]
	return ok
}
