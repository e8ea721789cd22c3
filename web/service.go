package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/obad94/hotel-search-scraper/engine"
	"github.com/obad94/hotel-search-scraper/hotels"
)

var ErrRateLimited = errors.New("too many scrape requests")

// ScrapeFunc runs one search; engine.RunSearch in production, a fake in tests.
type ScrapeFunc func(ctx context.Context, req hotels.SearchRequest) *engine.Result

type cacheEntry struct {
	res     *engine.Result
	expires time.Time
}

// Service fronts the engine for the HTTP layer: it caches results keyed by
// normalized search parameters, rate-limits scrape-triggering requests and
// records runs in the repository.
type Service struct {
	repo    RunRepository
	scrape  ScrapeFunc
	limiter *rate.Limiter
	log     *slog.Logger

	cacheTTL time.Duration
	mu       sync.Mutex
	cache    map[string]cacheEntry
}

type ServiceOption func(*Service)

func WithCacheTTL(d time.Duration) ServiceOption {
	return func(s *Service) {
		s.cacheTTL = d
	}
}

func WithRateLimit(perMinute int) ServiceOption {
	return func(s *Service) {
		s.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	}
}

func NewService(repo RunRepository, scrape ScrapeFunc, log *slog.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		repo:     repo,
		scrape:   scrape,
		log:      log,
		cacheTTL: 10 * time.Minute,
		limiter:  rate.NewLimiter(rate.Every(10*time.Second), 6),
		cache:    make(map[string]cacheEntry),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// cacheKey normalizes the parameters that define an equivalent search.
func cacheKey(req hotels.SearchRequest) string {
	return strings.ToLower(fmt.Sprintf("%s|%s|%s|%s|%d|%d|%d",
		strings.TrimSpace(req.City),
		req.DestID,
		req.CheckIn.Format("2006-01-02"),
		req.CheckOut.Format("2006-01-02"),
		req.Adults,
		req.Children,
		req.Rooms,
	))
}

// Search returns a cached result when a fresh one exists, otherwise triggers
// a scrape run, persists it and caches a successful outcome.
func (s *Service) Search(ctx context.Context, req hotels.SearchRequest) (*engine.Result, error) {
	req.Normalize(time.Now())

	key := cacheKey(req)

	s.mu.Lock()
	if e, ok := s.cache[key]; ok && time.Now().Before(e.expires) {
		s.mu.Unlock()

		s.log.Info("cache hit", "key", key)

		return e.res, nil
	}
	s.mu.Unlock()

	if !s.limiter.Allow() {
		return nil, ErrRateLimited
	}

	run := &Run{
		ID:        uuid.New().String(),
		City:      req.City,
		Request:   req,
		Status:    StatusWorking,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}

	res := s.scrape(ctx, req)

	run.Result = res
	run.UpdatedAt = time.Now().UTC()

	if res.Success {
		run.Status = StatusCompleted
	} else {
		run.Status = StatusFailed
	}

	if err := s.repo.Update(ctx, run); err != nil {
		s.log.Warn("failed to persist run result", "run", run.ID, "error", err)
	}

	if res.Success {
		s.mu.Lock()
		s.cache[key] = cacheEntry{res: res, expires: time.Now().Add(s.cacheTTL)}
		s.mu.Unlock()
	}

	return res, nil
}

func (s *Service) Get(ctx context.Context, id string) (Run, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	return s.repo.Select(ctx, limit)
}
