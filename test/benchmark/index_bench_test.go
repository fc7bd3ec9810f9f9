package benchmark

import (
	"context"
	"fmt"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/indexer/selection"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/searcher/ranker"
)

func analyzedCorpus(n int) map[string][]string {
	an := tokenizer.NewAnalyzer(tokenizer.Options{})
	docs := synthCorpus(n, 8)
	out := make(map[string][]string, len(docs))
	for id, text := range docs {
		out[id] = an.Analyze(text)
	}
	return out
}

func BenchmarkIndexBuild(b *testing.B) {
	for _, n := range []int{100, 1000, 5000} {
		docTokens := analyzedCorpus(n)
		b.Run(fmt.Sprintf("docs_%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = index.Build(docTokens, nil)
			}
		})
	}
}

func BenchmarkSelect(b *testing.B) {
	docTokens := analyzedCorpus(2000)
	p := selection.Params{MinDF: 2, MaxDFRatio: 0.85, TopN: 30}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = selection.Select(docTokens, p)
	}
}

func BenchmarkVectorize(b *testing.B) {
	ix := index.Build(analyzedCorpus(2000), nil)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		idf := ranker.ComputeIDF(ix, true)
		_ = ranker.DocumentVectors(ix, idf)
	}
}

// BenchmarkBuilderWorkers measures the full build pipeline at different
// analysis parallelism levels.
func BenchmarkBuilderWorkers(b *testing.B) {
	docs := synthCorpus(2000, 8)
	an := tokenizer.NewAnalyzer(tokenizer.Options{})
	for _, workers := range []int{1, 4, 8} {
		builder := indexer.NewBuilder(an, indexer.BuildOptions{
			SelectionEnabled: true,
			Selection:        selection.DefaultParams(),
			SmoothIDF:        true,
			Workers:          workers,
		})
		b.Run(fmt.Sprintf("workers_%d", workers), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := builder.Build(context.Background(), docs); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
