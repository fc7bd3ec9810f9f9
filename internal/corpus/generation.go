// Package corpus holds the immutable result of one corpus build and the
// atomically swappable reference readers use to reach it.
package corpus

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/indexer/selection"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/searcher/ranker"
)

// Generation is one snapshot of {index, idf, document vectors}. Nothing in it
// is modified after NewGeneration returns.
type Generation struct {
	ID         string
	BuiltAt    time.Time
	Smooth     bool
	Index      *index.InvertedIndex
	IDF        ranker.IDFTable
	DocVectors map[string]ranker.Vector
	// Selection is nil when the build ran without feature selection.
	Selection *selection.Selection
	// Texts holds raw document text for summaries; it may be empty when the
	// generation was loaded without access to the source documents.
	Texts map[string]string
}

// Params are the inputs to NewGeneration.
type Params struct {
	ID        string
	BuiltAt   time.Time
	Index     *index.InvertedIndex
	IDF       ranker.IDFTable
	Smooth    bool
	Selection *selection.Selection
	Texts     map[string]string
}

// NewGeneration verifies that p.IDF was derived from p.Index and precomputes
// the document vectors. An unpaired IDF table fails with
// ErrGenerationMismatch.
func NewGeneration(p Params) (*Generation, error) {
	if p.Index == nil {
		return nil, fmt.Errorf("building generation: nil index")
	}
	if err := ranker.VerifyIDF(p.Index, p.IDF, p.Smooth); err != nil {
		return nil, fmt.Errorf("building generation %s: %w", p.ID, err)
	}
	id := p.ID
	if id == "" {
		fp, err := Fingerprint(p.Index)
		if err != nil {
			return nil, err
		}
		id = fp[:16]
	}
	builtAt := p.BuiltAt
	if builtAt.IsZero() {
		builtAt = time.Now().UTC()
	}
	texts := p.Texts
	if texts == nil {
		texts = map[string]string{}
	}
	return &Generation{
		ID:         id,
		BuiltAt:    builtAt,
		Smooth:     p.Smooth,
		Index:      p.Index,
		IDF:        p.IDF,
		DocVectors: ranker.DocumentVectors(p.Index, p.IDF),
		Selection:  p.Selection,
		Texts:      texts,
	}, nil
}

// Rank scores analyzed query terms against this generation.
func (g *Generation) Rank(terms []string, topK int) []ranker.ScoredDoc {
	return ranker.Rank(ranker.QueryVector(terms, g.IDF), g.Index, g.DocVectors, topK)
}

// Explain returns the tf/df/idf matrix of terms against docIDs.
func (g *Generation) Explain(terms []string, docIDs []string) []ranker.ExplainRow {
	return ranker.Explain(g.Index, g.IDF, g.DocVectors, terms, docIDs)
}

// Text returns the raw text of docID, if this generation carries it.
func (g *Generation) Text(docID string) (string, bool) {
	t, ok := g.Texts[docID]
	return t, ok
}

// Fingerprint is a stable SHA-256 of the index content. encoding/json writes
// map keys in sorted order, so equal indexes hash equally.
func Fingerprint(ix *index.InvertedIndex) (string, error) {
	data, err := json.Marshal(ix)
	if err != nil {
		return "", fmt.Errorf("fingerprinting index: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Holder publishes the current generation to concurrent readers. Swapping in a
// new generation never disturbs readers still using the old one.
type Holder struct {
	current atomic.Pointer[Generation]
}

func NewHolder() *Holder {
	return &Holder{}
}

// Current returns the active generation, or nil before the first Swap.
func (h *Holder) Current() *Generation {
	return h.current.Load()
}

// Swap installs g and returns the generation it replaced.
func (h *Holder) Swap(g *Generation) *Generation {
	return h.current.Swap(g)
}
