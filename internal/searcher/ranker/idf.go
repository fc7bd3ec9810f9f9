package ranker

import (
	"fmt"
	"math"

	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/errors"
)

// IDFTable maps each indexed term to its inverse document frequency.
type IDFTable map[string]float64

// idfTolerance absorbs float formatting loss across a JSON round trip.
const idfTolerance = 1e-9

// ComputeIDF derives one weight per term of ix. The smoothed form is
// ln((N+1)/(df+1)) + 1 and is always positive; the raw form is ln(N/df).
func ComputeIDF(ix *index.InvertedIndex, smooth bool) IDFTable {
	idf := make(IDFTable, len(ix.DF))
	for term, df := range ix.DF {
		idf[term] = idfValue(ix.N, df, smooth)
	}
	return idf
}

func idfValue(n, df int, smooth bool) float64 {
	if smooth {
		return math.Log(float64(n+1)/float64(df+1)) + 1
	}
	if df == 0 {
		return 0
	}
	return math.Log(float64(n) / float64(df))
}

// Validate rejects weights that no index could have produced.
func (t IDFTable) Validate() error {
	if t == nil {
		return apperrors.Corruptf("idf table is missing")
	}
	for term, w := range t {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return apperrors.Corruptf("idf[%q] = %v", term, w)
		}
	}
	return nil
}

// VerifyIDF checks that idf was computed from ix: same vocabulary, and every
// weight equal to what ComputeIDF would produce. A table from another corpus
// build fails with ErrGenerationMismatch.
func VerifyIDF(ix *index.InvertedIndex, idf IDFTable, smooth bool) error {
	if len(idf) != len(ix.DF) {
		return fmt.Errorf("%w: idf has %d terms, index has %d",
			apperrors.ErrGenerationMismatch, len(idf), len(ix.DF))
	}
	for term, df := range ix.DF {
		got, ok := idf[term]
		if !ok {
			return fmt.Errorf("%w: term %q missing from idf", apperrors.ErrGenerationMismatch, term)
		}
		if want := idfValue(ix.N, df, smooth); math.Abs(got-want) > idfTolerance {
			return fmt.Errorf("%w: idf[%q] = %v, index implies %v",
				apperrors.ErrGenerationMismatch, term, got, want)
		}
	}
	return nil
}
