package dedup

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obad94/hotel-search-scraper/hotels"
)

func TestKeyFor(t *testing.T) {
	tests := []struct {
		name string
		url  string
		hn   string
		want string
	}{
		{
			"url path lowercased, query stripped",
			"https://www.booking.com/hotel/pk/Pearl-Continental.html?aid=123&label=x",
			"Pearl Continental",
			"/hotel/pk/pearl-continental.html",
		},
		{
			"trailing slash stripped",
			"https://www.booking.com/hotel/pk/pearl/",
			"Pearl",
			"/hotel/pk/pearl",
		},
		{
			"no url falls back to collapsed name",
			"",
			"  Pearl   Continental  KARACHI ",
			"pearl continental karachi",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, KeyFor(tc.url, tc.hn))
		})
	}
}

func TestKeyForHostInsensitive(t *testing.T) {
	a := KeyFor("https://www.booking.com/hotel/pk/pearl.html?aid=1", "x")
	b := KeyFor("https://booking.com/hotel/pk/pearl.html", "y")

	assert.Equal(t, a, b)
}

func TestDeduperAdmitsOnce(t *testing.T) {
	d := New()
	ctx := context.Background()

	assert.True(t, d.AddIfNotExists(ctx, "/hotel/pk/pearl.html"))
	assert.False(t, d.AddIfNotExists(ctx, "/hotel/pk/pearl.html"))
	assert.True(t, d.AddIfNotExists(ctx, "/hotel/pk/avari.html"))
}

func TestAggregatorFirstSeenWins(t *testing.T) {
	agg := NewAggregator()
	ctx := context.Background()

	first := &hotels.Hotel{Name: "Pearl Continental", URL: "https://www.booking.com/hotel/pk/pearl.html?aid=1"}
	dupe := &hotels.Hotel{Name: "Pearl Continental Karachi", URL: "https://www.booking.com/hotel/pk/pearl.html?aid=2"}

	assert.True(t, agg.Add(ctx, first, "popularity"))
	assert.False(t, agg.Add(ctx, dupe, "price"))

	records := agg.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "Pearl Continental", records[0].Name)
	assert.Equal(t, "popularity", records[0].FoundBy)
	assert.Equal(t, "htl_1", records[0].ID)
}

func TestAggregatorSyntheticIDsAreOrdinal(t *testing.T) {
	agg := NewAggregator()

	for i := 0; i < 5; i++ {
		h := &hotels.Hotel{
			Name: fmt.Sprintf("Hotel %d", i),
			URL:  fmt.Sprintf("https://www.booking.com/hotel/pk/h%d.html", i),
		}
		require.True(t, agg.Add(context.Background(), h, "popularity"))
	}

	records := agg.Records()
	require.Len(t, records, 5)

	for i, h := range records {
		assert.Equal(t, fmt.Sprintf("htl_%d", i+1), h.ID)
	}
}

func TestAggregatorRejectsInvalid(t *testing.T) {
	agg := NewAggregator()
	ctx := context.Background()

	assert.False(t, agg.Add(ctx, nil, "popularity"))
	assert.False(t, agg.Add(ctx, &hotels.Hotel{URL: "https://example.com/x"}, "popularity"))
	assert.Equal(t, 0, agg.Len())
}

func TestAggregatorAdmissionGoesThroughIndex(t *testing.T) {
	agg := NewAggregator()
	ctx := context.Background()

	h := &hotels.Hotel{Name: "Pearl", URL: "https://www.booking.com/hotel/pk/pearl.html"}
	require.True(t, agg.Add(ctx, h, "popularity"))

	// Claiming the same canonical key through the index rejects it, and vice
	// versa: admission and membership share one gate.
	assert.False(t, agg.index.AddIfNotExists(ctx, KeyFor(h.URL, h.Name)))

	require.True(t, agg.index.AddIfNotExists(ctx, "/hotel/pk/avari.html"))
	assert.False(t, agg.Add(ctx, &hotels.Hotel{Name: "Avari", URL: "https://www.booking.com/hotel/pk/avari.html"}, "price"))
	assert.Equal(t, 1, agg.Len())
}
