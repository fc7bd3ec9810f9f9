package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/indexer/artifact"
	apperrors "github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/resilience"
)

// keepGenerations is how many persisted generations SQL stores retain, so an
// operator can roll back by hand.
const keepGenerations = 3

// DocumentSource supplies the raw corpus (id -> text).
type DocumentSource interface {
	Load(ctx context.Context) (map[string]string, error)
}

// Publisher announces finished generations. *kafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, event kafka.Event) error
}

// SwapHook runs after a new generation became visible to readers. prev is
// nil on the first swap.
type SwapHook func(ctx context.Context, prev, next *corpus.Generation)

// ServiceDeps wires a Service. Store, Publisher and Metrics are optional.
type ServiceDeps struct {
	Builder   *Builder
	Source    DocumentSource
	Holder    *corpus.Holder
	Store     artifact.Store
	Publisher Publisher
	Metrics   *metrics.Metrics
	// Origin identifies this replica in published events so it can skip its
	// own announcements.
	Origin string
	Retry  resilience.RetryConfig
}

// Service owns the corpus generation lifecycle. Rebuild and Reload are
// serialized; readers go through the Holder and never block on either.
type Service struct {
	deps   ServiceDeps
	logger *slog.Logger

	mu    sync.Mutex
	hooks []SwapHook
}

func NewService(deps ServiceDeps) *Service {
	if deps.Holder == nil {
		deps.Holder = corpus.NewHolder()
	}
	return &Service{
		deps:   deps,
		logger: logger.Component("indexer"),
	}
}

// OnSwap registers fn to run after every generation swap.
func (s *Service) OnSwap(fn SwapHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, fn)
}

// Holder returns the holder readers should use.
func (s *Service) Holder() *corpus.Holder {
	return s.deps.Holder
}

// Origin returns the replica identity stamped on published events.
func (s *Service) Origin() string {
	return s.deps.Origin
}

// RebuildResult summarizes a finished rebuild.
type RebuildResult struct {
	GenerationID string    `json:"generation_id"`
	Documents    int       `json:"documents"`
	Vocabulary   int       `json:"vocabulary"`
	Selected     int       `json:"selected_terms"`
	BuiltAt      time.Time `json:"built_at"`
	Persisted    bool      `json:"persisted"`
	DurationMs   int64     `json:"duration_ms"`
}

// Rebuild loads the corpus, builds a new generation, persists it, and swaps it
// in. The previous generation stays active if any step before the swap fails.
func (s *Service) Rebuild(ctx context.Context) (*RebuildResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()

	result, err := s.rebuildLocked(ctx)
	if m := s.deps.Metrics; m != nil {
		m.RebuildDuration.Observe(time.Since(start).Seconds())
		status := "success"
		if err != nil {
			status = "failed"
		}
		m.RebuildsTotal.WithLabelValues(status).Inc()
	}
	if err != nil {
		s.logger.Error("rebuild failed", "error", err)
		return nil, err
	}
	result.DurationMs = time.Since(start).Milliseconds()
	return result, nil
}

func (s *Service) rebuildLocked(ctx context.Context) (*RebuildResult, error) {
	docs, err := s.deps.Source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading documents: %w", err)
	}
	gen, err := s.deps.Builder.Build(ctx, docs)
	if err != nil {
		return nil, err
	}

	persisted := false
	if s.deps.Store != nil {
		bundle, err := artifact.FromGeneration(gen)
		if err != nil {
			return nil, err
		}
		if err := s.deps.Store.Save(ctx, bundle); err != nil {
			return nil, fmt.Errorf("saving generation %s: %w", gen.ID, err)
		}
		persisted = true
		s.prune(ctx)
	}

	s.swapLocked(ctx, gen)

	result := &RebuildResult{
		GenerationID: gen.ID,
		Documents:    gen.Index.N,
		Vocabulary:   len(gen.Index.Postings),
		BuiltAt:      gen.BuiltAt,
		Persisted:    persisted,
	}
	if gen.Selection != nil {
		result.Selected = len(gen.Selection.SelectedTerms)
	}
	if persisted {
		s.announce(ctx, gen)
	}
	return result, nil
}

// announce is best effort: the generation is already live locally and other
// replicas can still pick it up on restart.
func (s *Service) announce(ctx context.Context, gen *corpus.Generation) {
	if s.deps.Publisher == nil {
		return
	}
	event := IndexCompleteEvent{
		GenerationID: gen.ID,
		Documents:    gen.Index.N,
		Vocabulary:   len(gen.Index.Postings),
		BuiltAt:      gen.BuiltAt,
		Origin:       s.deps.Origin,
	}
	pubCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	err := s.deps.Publisher.Publish(pubCtx, kafka.Event{
		Key:   gen.ID,
		Type:  EventIndexComplete,
		Value: event,
	})
	if err != nil {
		s.logger.Warn("publishing index-complete event failed", "generation", gen.ID, "error", err)
	}
}

// LoadLatest loads the newest persisted generation and swaps it in. Missing,
// corrupt or mismatched artifacts are not retried; the current generation (or
// the no-index state) is kept.
func (s *Service) LoadLatest(ctx context.Context) (*corpus.Generation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLatestLocked(ctx)
}

func (s *Service) loadLatestLocked(ctx context.Context) (*corpus.Generation, error) {
	if s.deps.Store == nil {
		return nil, fmt.Errorf("%w: no artifact store configured", apperrors.ErrArtifactNotFound)
	}
	var bundle *artifact.Bundle
	err := resilience.Retry(ctx, "load-artifacts", s.deps.Retry, func() error {
		b, err := s.deps.Store.Load(ctx)
		if err != nil {
			if isPermanentLoadError(err) {
				return resilience.Permanent(err)
			}
			return err
		}
		bundle = b
		return nil
	})
	if err != nil {
		s.countLoad(err)
		return nil, err
	}

	texts, err := s.deps.Source.Load(ctx)
	if err != nil {
		s.logger.Warn("documents unavailable, summaries disabled for this generation",
			"generation", bundle.Manifest.GenerationID,
			"error", err,
		)
		texts = nil
	}
	gen, err := bundle.Generation(texts)
	if err != nil {
		s.countLoad(err)
		return nil, err
	}
	s.countLoad(nil)
	s.swapLocked(ctx, gen)
	s.logger.Info("generation loaded",
		"generation", gen.ID,
		"documents", gen.Index.N,
		"vocabulary", len(gen.Index.Postings),
	)
	return gen, nil
}

// Reload brings this replica up to generationID. It is a no-op when that
// generation is already active.
func (s *Service) Reload(ctx context.Context, generationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur := s.deps.Holder.Current(); cur != nil && cur.ID == generationID {
		s.logger.Debug("generation already active", "generation", generationID)
		return nil
	}
	gen, err := s.loadLatestLocked(ctx)
	if err != nil {
		return fmt.Errorf("reloading generation %s: %w", generationID, err)
	}
	if gen.ID != generationID {
		s.logger.Warn("store holds a different generation than announced",
			"announced", generationID,
			"loaded", gen.ID,
		)
	}
	return nil
}

// prune trims stores that retain history. Failure only costs disk space.
func (s *Service) prune(ctx context.Context) {
	p, ok := s.deps.Store.(artifact.Pruner)
	if !ok {
		return
	}
	removed, err := p.Prune(ctx, keepGenerations)
	if err != nil {
		s.logger.Warn("pruning old generations failed", "error", err)
		return
	}
	if removed > 0 {
		s.logger.Info("old generations pruned", "removed", removed, "kept", keepGenerations)
	}
}

func (s *Service) swapLocked(ctx context.Context, gen *corpus.Generation) {
	prev := s.deps.Holder.Swap(gen)
	if m := s.deps.Metrics; m != nil {
		m.GenerationSwaps.Inc()
		m.CorpusDocuments.Set(float64(gen.Index.N))
		m.CorpusVocabulary.Set(float64(len(gen.Index.Postings)))
	}
	for _, hook := range s.hooks {
		hook(ctx, prev, gen)
	}
}

func (s *Service) countLoad(err error) {
	m := s.deps.Metrics
	if m == nil {
		return
	}
	status := "ok"
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrArtifactNotFound):
		status = "not_found"
	case errors.Is(err, apperrors.ErrCorruptArtifact), errors.Is(err, apperrors.ErrGenerationMismatch):
		status = "corrupt"
	default:
		status = "error"
	}
	m.ArtifactLoadsTotal.WithLabelValues(status).Inc()
}

func isPermanentLoadError(err error) bool {
	return errors.Is(err, apperrors.ErrArtifactNotFound) ||
		errors.Is(err, apperrors.ErrCorruptArtifact) ||
		errors.Is(err, apperrors.ErrGenerationMismatch)
}
