// Package dedup holds the per-run identity index and the growing result
// collection. Admission is atomic: a record enters the collection if and only
// if its canonical key was absent from the index at that moment.
package dedup

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/obad94/hotel-search-scraper/hotels"
)

// Deduper gates admission of canonical identity keys.
type Deduper interface {
	AddIfNotExists(ctx context.Context, key string) bool
}

type hashDeduper struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// New returns an in-memory Deduper. The index lives for one run only.
func New() Deduper {
	return &hashDeduper{seen: make(map[string]struct{})}
}

func (d *hashDeduper) AddIfNotExists(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return false
	}

	d.seen[key] = struct{}{}

	return true
}

// KeyFor derives the canonical identity key of a listing: the lower-cased URL
// path with query and trailing slashes stripped; a cleaned raw-URL match when
// the URL does not parse; the collapsed lower-cased name when no URL exists.
func KeyFor(rawURL, name string) string {
	if rawURL != "" {
		if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
			return strings.TrimRight(strings.ToLower(u.Path), "/")
		}

		s := rawURL
		if i := strings.IndexByte(s, '?'); i >= 0 {
			s = s[:i]
		}

		return strings.TrimRight(strings.ToLower(s), "/")
	}

	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// Aggregator owns the dedup index and the accepted record collection.
type Aggregator struct {
	mu      sync.Mutex
	index   Deduper
	records []*hotels.Hotel
}

func NewAggregator() *Aggregator {
	return &Aggregator{index: New()}
}

// Add admits the record when its key is unseen, tagging it with discovery
// provenance and an ordinal synthetic identifier. First-seen wins; duplicates
// are discarded whole, never merged.
func (a *Aggregator) Add(ctx context.Context, h *hotels.Hotel, foundBy string) bool {
	if h == nil || h.Validate() != nil {
		return false
	}

	key := KeyFor(h.URL, h.Name)

	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.index.AddIfNotExists(ctx, key) {
		return false
	}

	h.FoundBy = foundBy
	h.ID = fmt.Sprintf("htl_%d", len(a.records)+1)

	a.records = append(a.records, h)

	return true
}

// Len reports the number of accepted records.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.records)
}

// Records returns the accepted records in admission order.
func (a *Aggregator) Records() []*hotels.Hotel {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]*hotels.Hotel, len(a.records))
	copy(out, a.records)

	return out
}
