package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/searcher/executor"
)

type memBackend struct {
	mu   sync.Mutex
	data map[string][]byte
	err  error
}

func newMemBackend() *memBackend {
	return &memBackend{data: make(map[string][]byte)}
}

func (m *memBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, false, m.err
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[key] = value
	return nil
}

func (m *memBackend) DeletePrefix(ctx context.Context, prefix string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
			n++
		}
	}
	return n, nil
}

func sampleResult(gen string) *executor.SearchResult {
	return &executor.SearchResult{
		Query:        "jahe",
		GenerationID: gen,
		Terms:        []string{"jahe"},
		TotalHits:    1,
		Results:      []executor.Hit{{DocID: "jahe.txt", Score: 0.9, Summary: "s", Snippet: "p"}},
	}
}

func TestGetOrComputeCachesPerGeneration(t *testing.T) {
	c := New(newMemBackend(), time.Minute, nil)
	ctx := context.Background()
	calls := 0
	compute := func(context.Context) (*executor.SearchResult, error) {
		calls++
		return sampleResult("g1"), nil
	}

	first, hit, err := c.GetOrCompute(ctx, "g1", "jahe", 10, compute)
	if err != nil || hit {
		t.Fatalf("first call: hit=%v err=%v", hit, err)
	}
	second, hit, err := c.GetOrCompute(ctx, "g1", "jahe", 10, compute)
	if err != nil || !hit {
		t.Fatalf("second call: hit=%v err=%v", hit, err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("cached result differs (-want +got):\n%s", diff)
	}
	if calls != 1 {
		t.Errorf("compute calls = %d, want 1", calls)
	}

	if _, hit, _ := c.GetOrCompute(ctx, "g2", "jahe", 10, compute); hit {
		t.Error("a new generation must not see old results")
	}
	if _, hit, _ := c.GetOrCompute(ctx, "g1", "jahe", 5, compute); hit {
		t.Error("a different limit must not share a key")
	}

	s := c.Stats()
	if !s.Enabled || s.Hits != 1 || s.Misses != 3 {
		t.Errorf("stats = %+v", s)
	}
}

func TestGetOrComputeCollapsesConcurrentCalls(t *testing.T) {
	c := New(newMemBackend(), time.Minute, nil)
	var calls atomic.Int32
	release := make(chan struct{})
	compute := func(context.Context) (*executor.SearchResult, error) {
		calls.Add(1)
		<-release
		return sampleResult("g1"), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := c.GetOrCompute(context.Background(), "g1", "jahe", 10, compute); err != nil {
				t.Error(err)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	if n := calls.Load(); n != 1 {
		t.Errorf("compute ran %d times, want 1", n)
	}
}

func TestSharedComputeSurvivesLeaderCancel(t *testing.T) {
	c := New(newMemBackend(), time.Minute, nil)
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	compute := func(ctx context.Context) (*executor.SearchResult, error) {
		once.Do(func() { close(started) })
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return sampleResult("g1"), nil
	}

	leaderCtx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 2)
	go func() {
		_, _, err := c.GetOrCompute(leaderCtx, "g1", "jahe", 10, compute)
		errs <- err
	}()
	<-started
	go func() {
		_, _, err := c.GetOrCompute(context.Background(), "g1", "jahe", 10, compute)
		errs <- err
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	close(release)

	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			t.Errorf("caller %d: %v", i, err)
		}
	}
	if _, ok := c.Get(context.Background(), "g1", "jahe", 10); !ok {
		t.Error("result computed for a cancelled leader should still be cached")
	}
}

func TestComputeErrorIsNotCached(t *testing.T) {
	c := New(newMemBackend(), time.Minute, nil)
	boom := errors.New("boom")
	if _, _, err := c.GetOrCompute(context.Background(), "g1", "x", 10, func(context.Context) (*executor.SearchResult, error) {
		return nil, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if _, ok := c.Get(context.Background(), "g1", "x", 10); ok {
		t.Error("failed computation must not be cached")
	}
}

func TestBackendFailureFallsThrough(t *testing.T) {
	backend := newMemBackend()
	backend.err = errors.New("connection refused")
	c := New(backend, time.Minute, nil)
	for i := 0; i < 10; i++ {
		res, hit, err := c.GetOrCompute(context.Background(), "g1", "jahe", 10, func(context.Context) (*executor.SearchResult, error) {
			return sampleResult("g1"), nil
		})
		if err != nil || hit || res == nil {
			t.Fatalf("call %d: res=%v hit=%v err=%v", i, res, hit, err)
		}
	}
	if got := c.Stats().Breaker; got != "open" {
		t.Errorf("breaker = %s, want open after repeated failures", got)
	}
}

func TestInvalidate(t *testing.T) {
	backend := newMemBackend()
	c := New(backend, time.Minute, nil)
	ctx := context.Background()
	c.Set(ctx, "g1", "a", 10, sampleResult("g1"))
	c.Set(ctx, "g1", "b", 10, sampleResult("g1"))
	c.Set(ctx, "g2", "a", 10, sampleResult("g2"))

	n, err := c.InvalidateGeneration(ctx, "g1")
	if err != nil || n != 2 {
		t.Fatalf("InvalidateGeneration = %d, %v", n, err)
	}
	if _, ok := c.Get(ctx, "g2", "a", 10); !ok {
		t.Error("other generation should survive")
	}
	if n, _ := c.Invalidate(ctx); n != 1 {
		t.Errorf("Invalidate removed %d, want 1", n)
	}
}

func TestNilCacheComputesDirectly(t *testing.T) {
	var c *QueryCache
	res, hit, err := c.GetOrCompute(context.Background(), "g1", "q", 10, func(context.Context) (*executor.SearchResult, error) {
		return sampleResult("g1"), nil
	})
	if err != nil || hit || res == nil {
		t.Fatalf("nil cache: res=%v hit=%v err=%v", res, hit, err)
	}
	if n, err := c.Invalidate(context.Background()); n != 0 || err != nil {
		t.Errorf("nil Invalidate = %d, %v", n, err)
	}
	if c.Stats().Enabled {
		t.Error("nil cache reports enabled")
	}
}
