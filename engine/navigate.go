package engine

import (
	"context"
	"strings"
	"time"

	"github.com/obad94/hotel-search-scraper/browser"
	"github.com/obad94/hotel-search-scraper/hotels"
	"github.com/obad94/hotel-search-scraper/scheduler"
)

// Lane is one reusable browser tab: given a target URL it returns the settled
// page projection. Implemented by *browser.Lane; tests inject fakes.
type Lane interface {
	ID() int
	Fetch(ctx context.Context, url string, opts browser.FetchOptions) (*browser.PageState, error)
}

type variantStatus int

const (
	statusExtracted variantStatus = iota
	statusRedirected
	statusBlocked
	statusFailed
)

func (s variantStatus) String() string {
	switch s {
	case statusExtracted:
		return "extracted"
	case statusRedirected:
		return "redirected"
	case statusBlocked:
		return "blocked"
	default:
		return "failed"
	}
}

type variantOutcome struct {
	variant  scheduler.Variant
	status   variantStatus
	total    int // records extracted from the page
	admitted int // records accepted by the aggregator
	reported int // site-reported total, first variant only
	err      error
}

// BlockIndicators are the bot-challenge phrases matched (case-insensitively)
// against page text. Pattern data, not control flow: callers may extend it.
var BlockIndicators = []string{
	"are you a robot",
	"verify you are human",
	"captcha",
	"unusual traffic",
	"pardon our interruption",
}

// BlockTitleIndicators are matched against the document title alone.
var BlockTitleIndicators = []string{
	"challenge",
	"just a moment",
	"attention required",
}

// Blocking is a session-global condition, so the content check only runs for
// the first few variants; the first detections are sufficient signal.
const blockCheckWindow = 4

func looksBlocked(title, html string) bool {
	lt := strings.ToLower(title)

	for _, p := range BlockTitleIndicators {
		if strings.Contains(lt, p) {
			return true
		}
	}

	lh := strings.ToLower(html)

	for _, p := range BlockIndicators {
		if strings.Contains(lh, p) {
			return true
		}
	}

	return false
}

// isResultsURL reports whether the final URL still denotes a results listing.
// Anything else means the query was rejected or bounced to a landing page.
func isResultsURL(u string) bool {
	return strings.Contains(u, "/searchresults")
}

// processVariant drives one variant through the navigation state machine:
// built -> navigating -> loaded -> (blocked|redirected|settled) ->
// extracted|failed. Admission into the aggregate happens here, first settled
// first merged.
func (e *Engine) processVariant(ctx context.Context, lane Lane, v scheduler.Variant, idx int, rc *runContext) variantOutcome {
	out := variantOutcome{variant: v}

	u := scheduler.SearchURL(rc.req, v)

	opts := browser.FetchOptions{
		Timeout:         e.navTimeout,
		DismissOverlays: idx == 0,
	}

	ps, err := lane.Fetch(ctx, u, opts)
	if err != nil {
		out.status = statusFailed
		out.err = err

		e.log.Warn("variant navigation failed", "variant", v.Label(), "lane", lane.ID(), "error", err)

		return out
	}

	if !isResultsURL(ps.URL) {
		out.status = statusRedirected

		e.log.Info("variant redirected off results", "variant", v.Label(), "url", ps.URL)

		return out
	}

	if idx < blockCheckWindow && looksBlocked(ps.Title, ps.HTML) {
		out.status = statusBlocked

		e.log.Warn("block challenge detected", "variant", v.Label(), "title", ps.Title)

		return out
	}

	if idx == 0 {
		out.reported = hotels.ReportedTotal(ps.HTML)
	}

	found := hotels.ExtractHotels(ps.HTML, rc.req.Nights(), time.Now().UTC())

	out.status = statusExtracted
	out.total = len(found)

	for _, h := range found {
		if rc.agg.Add(ctx, h, v.Label()) {
			out.admitted++
		}
	}

	e.log.Info("variant extracted",
		"variant", v.Label(),
		"lane", lane.ID(),
		"cards", out.total,
		"new", out.admitted,
	)

	return out
}
