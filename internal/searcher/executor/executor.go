// Package executor answers search, document, explain and feature-report
// requests against the active corpus generation.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/indexer/selection"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/searcher/summarizer"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/logger"
)

const topTermsPerDocument = 10

// Options shape results. Zero values fall back to package defaults.
type Options struct {
	DefaultLimit  int
	MaxResults    int
	Summary       summarizer.Options
	Detail        summarizer.Options
	SnippetWindow int
}

// OptionsFromConfig maps the search config section.
func OptionsFromConfig(cfg config.SearchConfig) Options {
	return Options{
		DefaultLimit:  cfg.DefaultLimit,
		MaxResults:    cfg.MaxResults,
		Summary:       summarizer.Options{NumSentences: cfg.SummarySentence, MaxChars: cfg.SummaryMaxChars},
		Detail:        summarizer.Options{NumSentences: cfg.DetailSentences, MaxChars: cfg.DetailMaxChars},
		SnippetWindow: cfg.SnippetWindow,
	}
}

// Hit is one ranked document with its summary and snippet.
type Hit struct {
	DocID   string  `json:"doc_id"`
	Score   float64 `json:"score"`
	Summary string  `json:"summary"`
	Snippet string  `json:"snippet"`
}

type SearchResult struct {
	Query        string   `json:"query"`
	GenerationID string   `json:"generation_id"`
	Terms        []string `json:"terms"`
	TotalHits    int      `json:"total_hits"`
	Results      []Hit    `json:"results"`
}

// TermWeight is one entry of a document's strongest terms.
type TermWeight struct {
	Term   string  `json:"term"`
	TF     int     `json:"tf"`
	Weight float64 `json:"weight"`
}

type DocumentDetail struct {
	DocID        string       `json:"doc_id"`
	GenerationID string       `json:"generation_id"`
	Length       int          `json:"length"`
	Summary      string       `json:"summary"`
	Snippet      string       `json:"snippet,omitempty"`
	TopTerms     []TermWeight `json:"top_terms"`
}

type Explanation struct {
	Query        string              `json:"query"`
	GenerationID string              `json:"generation_id"`
	Breakdown    tokenizer.Breakdown `json:"breakdown"`
	Results      []ranker.ScoredDoc  `json:"results"`
	Matrix       []ranker.ExplainRow `json:"matrix"`
}

type FeatureReport struct {
	GenerationID string               `json:"generation_id"`
	Enabled      bool                 `json:"enabled"`
	Selection    *selection.Selection `json:"selection,omitempty"`
}

// GenerationInfo describes the active generation.
type GenerationInfo struct {
	ID         string    `json:"generation_id"`
	BuiltAt    time.Time `json:"built_at"`
	Documents  int       `json:"documents"`
	Vocabulary int       `json:"vocabulary"`
	SmoothIDF  bool      `json:"smooth_idf"`
}

type Executor struct {
	holder   *corpus.Holder
	analyzer *tokenizer.Analyzer
	opts     Options
	logger   *slog.Logger
}

func New(holder *corpus.Holder, analyzer *tokenizer.Analyzer, opts Options) *Executor {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = ranker.DefaultTopK
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = 100
	}
	if opts.Summary.NumSentences <= 0 {
		opts.Summary = summarizer.DefaultOptions()
	}
	if opts.Detail.NumSentences <= 0 {
		opts.Detail = summarizer.Options{NumSentences: 3, MaxChars: 450}
	}
	if opts.SnippetWindow <= 0 {
		opts.SnippetWindow = summarizer.DefaultSnippetWindow
	}
	return &Executor{
		holder:   holder,
		analyzer: analyzer,
		opts:     opts,
		logger:   logger.Component("query-executor"),
	}
}

// Limit resolves a requested result count: non-positive means the default,
// anything above MaxResults is clamped.
func (e *Executor) Limit(requested int) int {
	if requested <= 0 {
		return e.opts.DefaultLimit
	}
	if requested > e.opts.MaxResults {
		return e.opts.MaxResults
	}
	return requested
}

// Plan analyzes a raw query with the executor's analyzer.
func (e *Executor) Plan(query string) *parser.QueryPlan {
	return parser.Parse(query, e.analyzer)
}

// Generation returns the active generation or ErrNoIndex.
func (e *Executor) Generation() (*corpus.Generation, error) {
	gen := e.holder.Current()
	if gen == nil {
		return nil, fmt.Errorf("%w: run a rebuild first", apperrors.ErrNoIndex)
	}
	return gen, nil
}

// Info describes the active generation.
func (e *Executor) Info() (*GenerationInfo, error) {
	gen, err := e.Generation()
	if err != nil {
		return nil, err
	}
	return &GenerationInfo{
		ID:         gen.ID,
		BuiltAt:    gen.BuiltAt,
		Documents:  gen.Index.N,
		Vocabulary: len(gen.Index.Postings),
		SmoothIDF:  gen.Smooth,
	}, nil
}

// Execute ranks the active generation against plan and attaches summaries
// and snippets to the top limit hits. A plan without terms yields an empty
// result.
func (e *Executor) Execute(ctx context.Context, plan *parser.QueryPlan, limit int) (*SearchResult, error) {
	gen, err := e.Generation()
	if err != nil {
		return nil, err
	}
	limit = e.Limit(limit)
	result := &SearchResult{
		Query:        plan.RawQuery,
		GenerationID: gen.ID,
		Terms:        plan.Terms,
		Results:      []Hit{},
	}
	if plan.Empty() {
		return result, nil
	}

	// Rank every candidate so TotalHits counts all matches, not just the page.
	ranked := gen.Rank(plan.Terms, gen.Index.N)
	result.TotalHits = len(ranked)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	for _, sd := range ranked {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hit := Hit{DocID: sd.DocID, Score: sd.Score}
		if text, ok := gen.Text(sd.DocID); ok {
			hit.Summary = summarizer.Summarize(text, gen.IDF, e.analyzer, e.opts.Summary)
			hit.Snippet = summarizer.Snippet(text, plan.Keywords, e.opts.SnippetWindow)
		}
		result.Results = append(result.Results, hit)
	}

	logger.FromContext(ctx).Info("query executed",
		"component", "query-executor",
		"query", plan.RawQuery,
		"terms", plan.Terms,
		"generation", gen.ID,
		"total_hits", result.TotalHits,
		"results", len(result.Results),
	)
	return result, nil
}

// Document returns the detail view of docID. query, when non-empty, picks the
// snippet location.
func (e *Executor) Document(ctx context.Context, docID, query string) (*DocumentDetail, error) {
	gen, err := e.Generation()
	if err != nil {
		return nil, err
	}
	text, hasText := gen.Text(docID)
	if !gen.Index.HasDocument(docID) && !hasText {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrDocumentNotFound, docID)
	}
	detail := &DocumentDetail{
		DocID:        docID,
		GenerationID: gen.ID,
		Length:       gen.Index.DocLen[docID],
		TopTerms:     topTerms(gen, docID, topTermsPerDocument),
	}
	if hasText {
		detail.Summary = summarizer.Summarize(text, gen.IDF, e.analyzer, e.opts.Detail)
		if query != "" {
			detail.Snippet = summarizer.Snippet(text, e.Plan(query).Keywords, e.opts.SnippetWindow)
		}
	}
	return detail, nil
}

// Explain returns the preprocessing breakdown of query, its ranking, and the
// tf/df/idf matrix of its terms against the ranked documents.
func (e *Executor) Explain(ctx context.Context, query string, limit int) (*Explanation, error) {
	gen, err := e.Generation()
	if err != nil {
		return nil, err
	}
	breakdown := e.analyzer.Breakdown(query)
	ranked := gen.Rank(breakdown.Stemmed, e.Limit(limit))
	docIDs := make([]string, len(ranked))
	for i, sd := range ranked {
		docIDs[i] = sd.DocID
	}
	return &Explanation{
		Query:        query,
		GenerationID: gen.ID,
		Breakdown:    breakdown,
		Results:      ranked,
		Matrix:       gen.Explain(breakdown.Stemmed, docIDs),
	}, nil
}

// Features returns the feature-selection report of the active generation.
func (e *Executor) Features(ctx context.Context) (*FeatureReport, error) {
	gen, err := e.Generation()
	if err != nil {
		return nil, err
	}
	return &FeatureReport{
		GenerationID: gen.ID,
		Enabled:      gen.Selection != nil,
		Selection:    gen.Selection,
	}, nil
}

func topTerms(gen *corpus.Generation, docID string, n int) []TermWeight {
	vec := gen.DocVectors[docID]
	out := make([]TermWeight, 0, len(vec))
	for term, w := range vec {
		out = append(out, TermWeight{Term: term, TF: gen.Index.TF(term, docID), Weight: w})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Term < out[j].Term
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
