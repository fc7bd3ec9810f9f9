// Package parser turns a raw query string into the term lists the executor,
// the snippet extractor and the query cache need.
package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/indexer/tokenizer"
)

// MaxQueryLength bounds the raw query, in bytes, before analysis.
const MaxQueryLength = 1024

// QueryPlan is the analyzed form of one query.
type QueryPlan struct {
	RawQuery string
	// Normalized is the lowercase token sequence joined by single spaces. Two
	// queries with the same Normalized form return the same results.
	Normalized string
	// Keywords are the surface tokens left after stopword removal, used to
	// locate snippets in raw text.
	Keywords []string
	// Terms are the analyzed terms matched against the index.
	Terms []string
}

// Empty reports whether the query carries no searchable term.
func (p *QueryPlan) Empty() bool {
	return len(p.Terms) == 0
}

// Parse analyzes query with an. Overlong queries are cut to at most
// MaxQueryLength bytes, backing off to the start of a rune.
func Parse(query string, an *tokenizer.Analyzer) *QueryPlan {
	if len(query) > MaxQueryLength {
		cut := MaxQueryLength
		for cut > 0 && !utf8.RuneStart(query[cut]) {
			cut--
		}
		query = query[:cut]
	}
	b := an.Breakdown(query)
	plan := &QueryPlan{
		RawQuery:   query,
		Normalized: strings.Join(b.Tokens, " "),
		Keywords:   b.Filtered,
		Terms:      b.Stemmed,
	}
	if plan.Keywords == nil {
		plan.Keywords = []string{}
	}
	if plan.Terms == nil {
		plan.Terms = []string{}
	}
	return plan
}
