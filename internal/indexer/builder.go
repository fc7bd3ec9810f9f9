// Package indexer turns a document set into a searchable corpus generation
// and manages the lifecycle of those generations: building, persisting,
// loading, and publishing them to readers.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/indexer/selection"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/logger"
)

// BuildOptions control one corpus build.
type BuildOptions struct {
	// SelectionEnabled restricts the index vocabulary to the terms chosen by
	// document-frequency selection.
	SelectionEnabled bool
	Selection        selection.Params
	SmoothIDF        bool
	Workers          int
}

// BuildOptionsFromConfig maps the corpus and selection config sections.
func BuildOptionsFromConfig(cfg *config.Config) BuildOptions {
	return BuildOptions{
		SelectionEnabled: cfg.Selection.Enabled,
		Selection: selection.Params{
			MinDF:      cfg.Selection.MinDF,
			MaxDFRatio: cfg.Selection.MaxDFRatio,
			TopN:       cfg.Selection.TopN,
		},
		SmoothIDF: cfg.Corpus.SmoothIDF,
		Workers:   cfg.Corpus.BuildWorkers,
	}
}

// Builder runs the analyze -> select -> index -> idf pipeline.
type Builder struct {
	analyzer *tokenizer.Analyzer
	opts     BuildOptions
	logger   *slog.Logger
	now      func() time.Time
}

func NewBuilder(analyzer *tokenizer.Analyzer, opts BuildOptions) *Builder {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Builder{
		analyzer: analyzer,
		opts:     opts,
		logger:   logger.Component("builder"),
		now:      time.Now,
	}
}

// Analyzer returns the analyzer shared by indexing and querying.
func (b *Builder) Analyzer() *tokenizer.Analyzer {
	return b.analyzer
}

// Build produces a new generation from docs (id -> raw text). An empty docs
// map yields an empty, valid generation.
func (b *Builder) Build(ctx context.Context, docs map[string]string) (*corpus.Generation, error) {
	start := b.now()

	docTokens, err := b.analyzeAll(ctx, docs)
	if err != nil {
		return nil, err
	}

	var sel *selection.Selection
	var allowed map[string]struct{}
	if b.opts.SelectionEnabled {
		sel = selection.Select(docTokens, b.opts.Selection)
		allowed = sel.Set()
		if len(docs) > 0 && len(sel.SelectedTerms) == 0 {
			b.logger.Warn("feature selection kept no terms, index will be empty",
				"documents", len(docs),
				"min_df", b.opts.Selection.MinDF,
				"max_df_ratio", b.opts.Selection.MaxDFRatio,
			)
		}
	}

	ix := index.Build(docTokens, allowed)
	idf := ranker.ComputeIDF(ix, b.opts.SmoothIDF)

	fp, err := corpus.Fingerprint(ix)
	if err != nil {
		return nil, err
	}
	builtAt := b.now().UTC()
	gen, err := corpus.NewGeneration(corpus.Params{
		ID:        generationID(builtAt, fp),
		BuiltAt:   builtAt,
		Index:     ix,
		IDF:       idf,
		Smooth:    b.opts.SmoothIDF,
		Selection: sel,
		Texts:     docs,
	})
	if err != nil {
		return nil, fmt.Errorf("assembling generation: %w", err)
	}

	b.logger.Info("corpus built",
		"generation", gen.ID,
		"stats", ix.Stats().String(),
		"selection", sel != nil,
		"duration", b.now().Sub(start),
	)
	return gen, nil
}

// analyzeAll runs the analyzer over every document on a bounded worker pool.
func (b *Builder) analyzeAll(ctx context.Context, docs map[string]string) (map[string][]string, error) {
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([][]string, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Workers)
	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = b.analyzer.Analyze(docs[id])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analyzing documents: %w", err)
	}

	docTokens := make(map[string][]string, len(ids))
	for i, id := range ids {
		docTokens[id] = out[i]
	}
	return docTokens, nil
}

// generationID is unique per build even when the corpus is unchanged.
func generationID(builtAt time.Time, fingerprint string) string {
	return builtAt.Format("20060102T150405.000") + "-" + fingerprint[:8]
}
