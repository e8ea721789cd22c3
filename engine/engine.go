// Package engine drives a small fixed pool of browser lanes through the
// scheduled query variants under a wall-clock budget, merging extracted
// records through the dedup aggregator and assembling run metadata.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/obad94/hotel-search-scraper/browser"
	"github.com/obad94/hotel-search-scraper/dedup"
	"github.com/obad94/hotel-search-scraper/hotels"
	"github.com/obad94/hotel-search-scraper/scheduler"
)

const (
	defaultNavTimeout = 30 * time.Second

	// safetyMargin is subtracted from the budget before dispatching a chunk,
	// leaving room for the chunk in flight to finish.
	safetyMargin = 8 * time.Second

	// emptyChunkFactor x lane count consecutive all-empty chunks signal a
	// global block or an exhausted result space.
	emptyChunkFactor = 3

	// emptyVariantFactor x lane count consecutive zero-yield variants is the
	// secondary streak guard for emptiness interleaved across chunks.
	emptyVariantFactor = 6

	longPauseEvery = 10
)

// Result is the payload handed back to the caller.
type Result struct {
	Success bool               `json:"success"`
	Error   string             `json:"error,omitempty"`
	Hotels  []*hotels.Hotel    `json:"hotels"`
	Meta    hotels.RunMetadata `json:"meta"`
}

type Engine struct {
	lanes      []Lane
	mgr        *browser.Manager
	log        *slog.Logger
	navTimeout time.Duration
	pauseScale float64
}

type Option func(*Engine)

// WithManager attaches a browser lane manager; the engine adopts its lanes
// and guarantees its shutdown when the run exits.
func WithManager(mgr *browser.Manager) Option {
	return func(e *Engine) {
		e.mgr = mgr
		e.lanes = e.lanes[:0]

		for _, lane := range mgr.Lanes() {
			e.lanes = append(e.lanes, lane)
		}
	}
}

// WithLanes injects lanes directly (tests, custom transports).
func WithLanes(lanes []Lane) Option {
	return func(e *Engine) {
		e.lanes = lanes
	}
}

func WithNavTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.navTimeout = d
	}
}

// WithPauseScale scales the inter-chunk pauses; 0 disables them.
func WithPauseScale(f float64) Option {
	return func(e *Engine) {
		e.pauseScale = f
	}
}

func New(log *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		log:        log,
		navTimeout: defaultNavTimeout,
		pauseScale: 1,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// runContext carries the mutable state of one run. Explicit fields, not
// package globals: the loop stays testable with injected fake lanes.
type runContext struct {
	req   *hotels.SearchRequest
	agg   *dedup.Aggregator
	start time.Time

	attempted          int
	blocked            int
	redirected         int
	reportedTotal      int
	emptyChunkStreak   int
	emptyVariantStreak int
	sortContribution   map[string]int
}

// Run executes one search. The returned Result is always best-effort: partial
// data plus coverage metadata, never a hard failure once the lanes exist.
func (e *Engine) Run(ctx context.Context, req hotels.SearchRequest) *Result {
	if e.mgr != nil {
		defer e.mgr.Close()
	}

	req.Normalize(time.Now())

	if len(e.lanes) == 0 {
		return &Result{
			Success: false,
			Error:   "no browser lanes available",
			Hotels:  []*hotels.Hotel{},
		}
	}

	if e.mgr != nil {
		if err := e.mgr.Warmup(ctx); err != nil {
			e.log.Warn("warmup failed, continuing without session cookies", "error", err)
		}
	}

	variants := scheduler.Schedule(req.BudgetSecs)

	rc := &runContext{
		req:              &req,
		agg:              dedup.NewAggregator(),
		start:            time.Now(),
		sortContribution: make(map[string]int),
	}

	budget := time.Duration(req.BudgetSecs) * time.Second
	laneCount := len(e.lanes)
	stopReason := "variant list exhausted"

	chunkLimit := emptyChunkFactor * laneCount
	variantLimit := emptyVariantFactor * laneCount

	for at := 0; at < len(variants); at += laneCount {
		if time.Since(rc.start) >= budget-safetyMargin {
			stopReason = "time budget reached"

			break
		}

		if rc.agg.Len() >= req.MaxResults {
			stopReason = "result cap reached"

			break
		}

		if err := ctx.Err(); err != nil {
			stopReason = "cancelled"

			break
		}

		end := min(at+laneCount, len(variants))
		chunk := variants[at:end]
		outcomes := make([]variantOutcome, len(chunk))

		// One lane per variant, variant i -> lane i mod L. Failures are
		// isolated: a lane's error never cancels its siblings.
		var wg sync.WaitGroup

		for i := range chunk {
			wg.Add(1)

			go func(i int) {
				defer wg.Done()

				outcomes[i] = e.processVariant(ctx, e.lanes[i%laneCount], chunk[i], at+i, rc)
			}(i)
		}

		wg.Wait()

		chunkNew, chunkTotal := 0, 0

		// Every outcome of the chunk is tallied before any stop decision:
		// attempted counts and the per-sort histogram must cover all records
		// that entered the aggregate.
		for _, o := range outcomes {
			rc.attempted++
			chunkNew += o.admitted
			chunkTotal += o.total

			rc.sortContribution[o.variant.SortLabel()] += o.admitted

			switch o.status {
			case statusBlocked:
				rc.blocked++
			case statusRedirected:
				rc.redirected++
			}

			if o.reported > 0 && rc.reportedTotal == 0 {
				rc.reportedTotal = o.reported
			}

			if o.total == 0 {
				rc.emptyVariantStreak++
			} else {
				rc.emptyVariantStreak = 0
			}
		}

		if rc.emptyVariantStreak >= variantLimit {
			stopReason = "empty variant streak"

			break
		}

		if chunkNew == 0 && chunkTotal == 0 {
			rc.emptyChunkStreak++
		} else {
			rc.emptyChunkStreak = 0
		}

		if rc.emptyChunkStreak >= chunkLimit {
			stopReason = "empty chunk streak"

			break
		}

		if end < len(variants) {
			e.pauseBetweenChunks(ctx, end)
		}
	}

	return e.buildResult(rc, len(variants), stopReason)
}

// pauseBetweenChunks inserts a randomized pause so the request cadence never
// looks fixed; periodically a longer one.
func (e *Engine) pauseBetweenChunks(ctx context.Context, variantsDone int) {
	if e.pauseScale <= 0 {
		return
	}

	var d time.Duration
	if variantsDone%longPauseEvery < len(e.lanes) {
		d = time.Duration(2000+rand.Intn(2000)) * time.Millisecond
	} else {
		d = time.Duration(400+rand.Intn(500)) * time.Millisecond
	}

	d = time.Duration(float64(d) * e.pauseScale)

	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

func (e *Engine) buildResult(rc *runContext, scheduled int, stopReason string) *Result {
	records := rc.agg.Records()

	priced := 0

	for _, h := range records {
		if h.PricePerNight != nil {
			priced++
		}
	}

	elapsed := time.Since(rc.start).Seconds()

	meta := hotels.RunMetadata{
		ElapsedSeconds:    elapsed,
		VariantsAttempted: rc.attempted,
		VariantsScheduled: scheduled,
		SortContribution:  rc.sortContribution,
		UniqueCount:       len(records),
		PricedCount:       priced,
		ReportedTotal:     rc.reportedTotal,
		CoveragePercent:   hotels.Coverage(len(records), rc.reportedTotal),
		BlockedCount:      rc.blocked,
		RedirectCount:     rc.redirected,
		DatesAdjusted:     rc.req.DatesAdjusted,
	}

	meta.CoverageNote = fmt.Sprintf(
		"%d unique properties from %d/%d variants in %.1fs (%s)",
		meta.UniqueCount, meta.VariantsAttempted, meta.VariantsScheduled, elapsed, stopReason,
	)

	e.log.Info("run finished",
		"unique", meta.UniqueCount,
		"attempted", meta.VariantsAttempted,
		"scheduled", meta.VariantsScheduled,
		"elapsed", fmt.Sprintf("%.1fs", elapsed),
		"reason", stopReason,
	)

	return &Result{
		Success: true,
		Hotels:  records,
		Meta:    meta,
	}
}

// RunSearch is the one-call invocation contract: it owns the whole lifecycle
// from browser launch to teardown. A browser that cannot start is the only
// hard failure.
func RunSearch(ctx context.Context, bcfg browser.Config, req hotels.SearchRequest, log *slog.Logger) *Result {
	mgr, err := browser.New(bcfg, log)
	if err != nil {
		return &Result{
			Success: false,
			Error:   err.Error(),
			Hotels:  []*hotels.Hotel{},
		}
	}

	eng := New(log, WithManager(mgr))

	return eng.Run(ctx, req)
}
