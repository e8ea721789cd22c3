package web

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obad94/hotel-search-scraper/engine"
	"github.com/obad94/hotel-search-scraper/hotels"
)

type memRepo struct {
	mu   sync.Mutex
	runs map[string]Run
	ids  []string
}

func newMemRepo() *memRepo {
	return &memRepo{runs: make(map[string]Run)}
}

func (r *memRepo) Create(_ context.Context, run *Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.runs[run.ID] = *run
	r.ids = append(r.ids, run.ID)

	return nil
}

func (r *memRepo) Update(_ context.Context, run *Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.runs[run.ID]; !ok {
		return fmt.Errorf("run %s not found", run.ID)
	}

	r.runs[run.ID] = *run

	return nil
}

func (r *memRepo) Get(_ context.Context, id string) (Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, ok := r.runs[id]
	if !ok {
		return Run{}, fmt.Errorf("run %s not found", id)
	}

	return run, nil
}

func (r *memRepo) Select(_ context.Context, limit int) ([]Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Run

	for i := len(r.ids) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.runs[r.ids[i]])
	}

	return out, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okResult() *engine.Result {
	return &engine.Result{
		Success: true,
		Hotels:  []*hotels.Hotel{{ID: "htl_1", Name: "Pearl Continental"}},
		Meta:    hotels.RunMetadata{UniqueCount: 1},
	}
}

func TestSearchCachesEquivalentRequests(t *testing.T) {
	repo := newMemRepo()

	calls := 0
	scrape := func(context.Context, hotels.SearchRequest) *engine.Result {
		calls++

		return okResult()
	}

	svc := NewService(repo, scrape, discardLogger())
	ctx := context.Background()

	first, err := svc.Search(ctx, hotels.SearchRequest{City: "Karachi"})
	require.NoError(t, err)
	require.True(t, first.Success)
	assert.Equal(t, 1, calls)

	// Same normalized parameters: served from cache, no second scrape.
	second, err := svc.Search(ctx, hotels.SearchRequest{City: "  karachi "})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Same(t, first, second)

	runs, err := svc.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, StatusCompleted, runs[0].Status)
	assert.Equal(t, "Karachi", runs[0].City)
}

func TestSearchRateLimited(t *testing.T) {
	repo := newMemRepo()
	scrape := func(context.Context, hotels.SearchRequest) *engine.Result {
		return okResult()
	}

	svc := NewService(repo, scrape, discardLogger(), WithRateLimit(1))
	ctx := context.Background()

	_, err := svc.Search(ctx, hotels.SearchRequest{City: "Karachi"})
	require.NoError(t, err)

	// A different city misses the cache and hits the exhausted limiter.
	_, err = svc.Search(ctx, hotels.SearchRequest{City: "Lahore"})
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestSearchRecordsFailedRuns(t *testing.T) {
	repo := newMemRepo()
	scrape := func(context.Context, hotels.SearchRequest) *engine.Result {
		return &engine.Result{Success: false, Error: "browser launch failed", Hotels: []*hotels.Hotel{}}
	}

	svc := NewService(repo, scrape, discardLogger())

	res, err := svc.Search(context.Background(), hotels.SearchRequest{City: "Karachi"})
	require.NoError(t, err)
	assert.False(t, res.Success)

	runs, err := svc.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, StatusFailed, runs[0].Status)

	// Failures are never cached: the next equivalent request scrapes again.
	_, err = svc.Search(context.Background(), hotels.SearchRequest{City: "Karachi"})
	require.NoError(t, err)

	runs, _ = svc.List(context.Background(), 10)
	assert.Len(t, runs, 2)
}

func TestGetUnknownRun(t *testing.T) {
	svc := NewService(newMemRepo(), func(context.Context, hotels.SearchRequest) *engine.Result {
		return okResult()
	}, discardLogger())

	_, err := svc.Get(context.Background(), "missing")
	assert.Error(t, err)
}

func TestListClampsLimit(t *testing.T) {
	repo := newMemRepo()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(context.Background(), &Run{ID: fmt.Sprintf("r%d", i)}))
	}

	svc := NewService(repo, nil, discardLogger())

	runs, err := svc.List(context.Background(), -5)
	require.NoError(t, err)
	assert.Len(t, runs, 3)

	runs, err = svc.List(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestCacheKeyNormalization(t *testing.T) {
	a := hotels.SearchRequest{City: "Karachi", Adults: 2, Rooms: 1}
	b := hotels.SearchRequest{City: " KARACHI ", Adults: 2, Rooms: 1}
	c := hotels.SearchRequest{City: "Karachi", Adults: 3, Rooms: 1}

	assert.Equal(t, cacheKey(a), cacheKey(b))
	assert.NotEqual(t, cacheKey(a), cacheKey(c))
}
