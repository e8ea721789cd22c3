// Package browser owns the headless browser process and a small fixed pool of
// reusable lanes (tabs). Every lane carries a consistent anti-detection
// profile and network-level resource filtering.
package browser

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/playwright-community/playwright-go"
)

const siteRoot = "https://www.booking.com"

type Config struct {
	LaneCount    int
	Headless     bool
	Proxy        string
	BlockedHosts []string
}

// Manager owns the browser process and the lane pool.
type Manager struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	lanes   []*Lane
	cfg     Config
	log     *slog.Logger
}

// New launches the browser and prepares the lane pool. A launch failure is
// fatal; an individual lane setup failure only degrades that lane out of the
// pool. At least one usable lane is required.
func New(cfg Config, log *slog.Logger) (*Manager, error) {
	if cfg.LaneCount < 1 {
		cfg.LaneCount = 2
	}

	if len(cfg.BlockedHosts) == 0 {
		cfg.BlockedHosts = DefaultBlockedHosts
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--no-sandbox",
			"--disable-dev-shm-usage",
		},
	}

	if cfg.Proxy != "" {
		launchOpts.Proxy = &playwright.Proxy{Server: cfg.Proxy}
	}

	b, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		_ = pw.Stop()

		return nil, fmt.Errorf("could not launch browser: %w", err)
	}

	m := &Manager{
		pw:      pw,
		browser: b,
		cfg:     cfg,
		log:     log,
	}

	for i := 0; i < cfg.LaneCount; i++ {
		lane, err := m.newLane(i)
		if err != nil {
			m.log.Warn("lane setup failed, degrading pool", "lane", i, "error", err)

			continue
		}

		m.lanes = append(m.lanes, lane)
	}

	if len(m.lanes) == 0 {
		m.Close()

		return nil, fmt.Errorf("no usable browser lanes")
	}

	return m, nil
}

func (m *Manager) newLane(id int) (*Lane, error) {
	bctx, err := m.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(randomUserAgent()),
		Locale:    playwright.String("en-US"),
		Viewport:  &playwright.Size{Width: 1366, Height: 768},
		ExtraHttpHeaders: map[string]string{
			"Accept-Language": "en-US,en;q=0.9",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("new context: %w", err)
	}

	if err := bctx.AddInitScript(playwright.Script{Content: playwright.String(stealthScript)}); err != nil {
		_ = bctx.Close()

		return nil, fmt.Errorf("add init script: %w", err)
	}

	blocked := m.cfg.BlockedHosts

	err = bctx.Route("**/*", func(route playwright.Route) {
		req := route.Request()
		if shouldBlockRequest(req.ResourceType(), req.URL(), blocked) {
			_ = route.Abort()

			return
		}

		_ = route.Continue()
	})
	if err != nil {
		_ = bctx.Close()

		return nil, fmt.Errorf("route interception: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()

		return nil, fmt.Errorf("new page: %w", err)
	}

	return &Lane{id: id, bctx: bctx, page: page, log: m.log}, nil
}

// Lanes returns the usable lane pool.
func (m *Manager) Lanes() []*Lane {
	return m.lanes
}

// Warmup performs the one-time session-seeding navigation on the first lane.
// Failure is non-fatal: the run continues without warmed cookies.
func (m *Manager) Warmup(ctx context.Context) error {
	if len(m.lanes) == 0 {
		return fmt.Errorf("no lanes to warm up")
	}

	lane := m.lanes[0]

	_, err := lane.page.Goto(siteRoot, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(20000),
	})
	if err != nil {
		return fmt.Errorf("warmup navigation: %w", err)
	}

	lane.page.WaitForTimeout(1500)
	lane.dismissOverlays()

	if err := ctx.Err(); err != nil {
		return err
	}

	m.log.Debug("warmup completed", "lane", lane.id)

	return nil
}

// Close tears down every lane, the browser process and the driver. Safe to
// call on every exit path.
func (m *Manager) Close() {
	for _, lane := range m.lanes {
		_ = lane.bctx.Close()
	}

	if m.browser != nil {
		_ = m.browser.Close()
	}

	if m.pw != nil {
		_ = m.pw.Stop()
	}
}
