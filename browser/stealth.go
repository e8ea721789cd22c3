package browser

import (
	"math/rand"
	"net/url"
	"strings"
)

// userAgents is the pool of realistic client identities a lane can assume.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
}

func randomUserAgent() string {
	return userAgents[rand.Intn(len(userAgents))]
}

// stealthScript overrides the properties a listing site commonly probes to
// spot automation. It runs before any page script on every navigation.
const stealthScript = `
Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
Object.defineProperty(navigator, 'plugins', { get: () => [1, 2, 3, 4, 5] });
Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'] });
Object.defineProperty(navigator, 'hardwareConcurrency', { get: () => 8 });
Object.defineProperty(navigator, 'deviceMemory', { get: () => 8 });
Object.defineProperty(navigator, 'maxTouchPoints', { get: () => 0 });

window.chrome = { runtime: {}, loadTimes: function() {}, csi: function() {} };

const originalQuery = window.navigator.permissions.query;
window.navigator.permissions.query = (parameters) => (
	parameters.name === 'notifications'
		? Promise.resolve({ state: Notification.permission })
		: originalQuery(parameters)
);

const getParameter = WebGLRenderingContext.prototype.getParameter;
WebGLRenderingContext.prototype.getParameter = function(parameter) {
	if (parameter === 37445) { return 'Intel Inc.'; }
	if (parameter === 37446) { return 'Intel Iris OpenGL Engine'; }
	return getParameter.call(this, parameter);
};
`

// blockedResourceTypes are visual/analytics payloads irrelevant to extraction.
// Stylesheets stay allowed: layout decides which elements become visible.
var blockedResourceTypes = map[string]struct{}{
	"image":     {},
	"font":      {},
	"media":     {},
	"texttrack": {},
	"manifest":  {},
}

// DefaultBlockedHosts is the analytics/tracker denylist. It is data, not
// control flow: callers may extend or replace it per run.
var DefaultBlockedHosts = []string{
	"google-analytics.com",
	"googletagmanager.com",
	"doubleclick.net",
	"googlesyndication.com",
	"facebook.net",
	"connect.facebook.net",
	"hotjar.com",
	"fullstory.com",
	"mouseflow.com",
	"clarity.ms",
	"criteo.com",
	"taboola.com",
	"adsrvr.org",
	"scorecardresearch.com",
	"quantserve.com",
}

// shouldBlockRequest decides whether a request is aborted at the network
// layer, by resource type or by destination host.
func shouldBlockRequest(resourceType, rawURL string, blockedHosts []string) bool {
	if _, ok := blockedResourceTypes[resourceType]; ok {
		return true
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	host := strings.ToLower(u.Hostname())

	for _, b := range blockedHosts {
		if host == b || strings.HasSuffix(host, "."+b) {
			return true
		}
	}

	return false
}
