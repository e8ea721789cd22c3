package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"
)

// PageState is the settled projection of a rendered results page: the final
// URL after any redirect, the document title and the serialized DOM.
type PageState struct {
	URL   string
	Title string
	HTML  string
}

// FetchOptions tune one navigation/settle cycle.
type FetchOptions struct {
	Timeout         time.Duration
	ScrollPasses    int
	SettleDelay     time.Duration
	DismissOverlays bool
}

func (o *FetchOptions) defaults() {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}

	if o.ScrollPasses <= 0 {
		o.ScrollPasses = 3
	}

	if o.SettleDelay <= 0 {
		o.SettleDelay = 1800 * time.Millisecond
	}
}

// Lane is one reusable browser tab. A lane is owned by exactly one worker at a
// time and is never shared across concurrent variant attempts.
type Lane struct {
	id   int
	bctx playwright.BrowserContext
	page playwright.Page
	log  *slog.Logger
}

func (l *Lane) ID() int {
	return l.id
}

// Fetch navigates the lane to the given URL, triggers lazy-loaded content with
// incremental scrolls, waits for asynchronous price data, scrolls back to top
// and returns the settled page state. DOMContentLoaded is sufficient: the
// page's third-party trackers never reach network idle.
func (l *Lane) Fetch(ctx context.Context, u string, opts FetchOptions) (*PageState, error) {
	opts.defaults()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	_, err := l.page.Goto(u, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(opts.Timeout.Milliseconds())),
	})
	if err != nil {
		return nil, fmt.Errorf("goto: %w", err)
	}

	if opts.DismissOverlays {
		l.dismissOverlays()
	}

	for i := 1; i <= opts.ScrollPasses; i++ {
		expr := fmt.Sprintf("window.scrollTo(0, document.body.scrollHeight * %d / %d)", i, opts.ScrollPasses)
		if _, err := l.page.Evaluate(expr); err != nil {
			l.log.Debug("scroll failed", "lane", l.id, "error", err)

			break
		}

		l.page.WaitForTimeout(600)
	}

	l.page.WaitForTimeout(float64(opts.SettleDelay.Milliseconds()))

	if _, err := l.page.Evaluate("window.scrollTo(0, 0)"); err != nil {
		l.log.Debug("scroll to top failed", "lane", l.id, "error", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	html, err := l.page.Content()
	if err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}

	title, err := l.page.Title()
	if err != nil {
		title = ""
	}

	return &PageState{
		URL:   l.page.URL(),
		Title: title,
		HTML:  html,
	}, nil
}

// overlaySelectors covers the cookie banner and the sign-in promo dialog.
// Once dismissed they do not reappear within the session.
var overlaySelectors = []string{
	"#onetrust-accept-btn-handler",
	`button[aria-label="Dismiss sign-in info."]`,
	`button[aria-label="Dismiss sign in information."]`,
}

func (l *Lane) dismissOverlays() {
	for _, sel := range overlaySelectors {
		loc := l.page.Locator(sel)

		visible, err := loc.IsVisible()
		if err != nil || !visible {
			continue
		}

		if err := loc.Click(playwright.LocatorClickOptions{
			Timeout: playwright.Float(1000),
		}); err != nil {
			l.log.Debug("overlay dismissal failed", "lane", l.id, "selector", sel, "error", err)
		}
	}
}
