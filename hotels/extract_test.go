package hotels

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultsPageFixture = `<!DOCTYPE html>
<html><body>
<h1>Karachi: 243 properties found</h1>
<div data-testid="property-card">
  <div data-testid="title">Pearl Continental Karachi</div>
  <a data-testid="title-link" href="https://www.booking.com/hotel/pk/pearl-continental-karachi.html?aid=304142&amp;label=gen-123">link</a>
  <img data-testid="image" src="https://cf.bstatic.com/images/hotel/pearl.jpg"/>
  <span data-testid="address">Club Road, Karachi</span>
  <span data-testid="distance">2.1 km from centre</span>
  <span data-testid="property-type-badge">Hotel</span>
  <div data-testid="rating-stars" aria-label="5 out of 5"></div>
  <div data-testid="review-score" aria-label="Scored 8.4">
    <div>8.4</div>
    <div>Very Good</div>
    <div>1,021 reviews</div>
  </div>
  <div data-testid="recommended-units">
    <h4>Deluxe Twin Room</h4>
    <div>Breakfast included · Free cancellation · Free WiFi</div>
  </div>
  <span data-testid="price-and-discounted-price">PKR 36,000</span>
  <span data-testid="strikethrough-price">PKR 45,000</span>
  <div data-testid="taxes-and-charges">+PKR 6,120 taxes and charges</div>
  <div data-testid="urgency-message">Only 2 rooms left at this price</div>
  <span data-testid="genius-badge">Genius</span>
  <span data-testid="deal-badge">Limited-time Deal</span>
  <span data-testid="facility-free-parking">Free parking</span>
</div>
<div data-testid="property-card">
  <span>card without a title is discarded</span>
</div>
<div data-testid="property-card">
  <div data-testid="title">Gulshan Guest House</div>
</div>
</body></html>`

func TestExtractHotels(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	got := ExtractHotels(resultsPageFixture, 2, now)
	require.Len(t, got, 2)

	h := got[0]
	assert.Equal(t, "Pearl Continental Karachi", h.Name)
	assert.Equal(t, "https://www.booking.com/hotel/pk/pearl-continental-karachi.html?aid=2311236", h.URL)
	assert.Equal(t, "https://cf.bstatic.com/images/hotel/pearl.jpg", h.ImageURL)
	assert.Equal(t, "Club Road, Karachi", h.Address)
	assert.Equal(t, "2.1 km from centre", h.DistanceFromCenter)
	assert.Equal(t, "Hotel", h.PropertyType)
	assert.Equal(t, "PKR", h.Currency)
	assert.Equal(t, now, h.ScrapedAt)

	require.NotNil(t, h.StarRating)
	assert.Equal(t, 5, *h.StarRating)

	require.NotNil(t, h.ReviewScore)
	assert.InDelta(t, 8.4, *h.ReviewScore, 0.001)
	assert.Equal(t, "Very Good", h.ReviewLabel)
	assert.Equal(t, 1021, h.ReviewCount)

	require.NotNil(t, h.TotalPrice)
	assert.Equal(t, 36000, *h.TotalPrice)
	require.NotNil(t, h.PricePerNight)
	assert.Equal(t, 18000, *h.PricePerNight)
	require.NotNil(t, h.OriginalPrice)
	assert.Equal(t, 45000, *h.OriginalPrice)
	assert.Equal(t, "+PKR 6,120 taxes and charges", h.TaxNote)

	require.Len(t, h.Rooms, 1)
	assert.Equal(t, RoomDouble, h.Rooms[0].Category)
	assert.Equal(t, MealBreakfastIncluded, h.Rooms[0].MealPlan)
	assert.Equal(t, CancellationFree, h.Rooms[0].Cancellation)
	assert.Equal(t, "Deluxe Twin Room", h.Rooms[0].RawText)

	assert.Equal(t, []string{"WiFi", "Parking"}, h.Amenities)

	assert.True(t, h.Urgent)
	assert.Equal(t, 2, h.RoomsLeft)
	assert.True(t, h.GeniusBadge)
	assert.True(t, h.HasDeal)
	assert.Equal(t, "Limited-time Deal", h.DealLabel)

	// A bare card still yields a record with classifier defaults.
	bare := got[1]
	assert.Equal(t, "Gulshan Guest House", bare.Name)
	assert.Nil(t, bare.TotalPrice)
	require.Len(t, bare.Rooms, 1)
	assert.Equal(t, RoomStandard, bare.Rooms[0].Category)
}

func TestExtractHotelsEmptyPage(t *testing.T) {
	assert.Empty(t, ExtractHotels("<html><body><h1>no results</h1></body></html>", 1, time.Now()))
	assert.Empty(t, ExtractHotels("", 1, time.Now()))
}

func TestNormalizeListingURL(t *testing.T) {
	assert.Equal(t,
		"https://www.booking.com/hotel/pk/x.html?aid=2311236",
		normalizeListingURL("https://www.booking.com/hotel/pk/x.html?ucfs=1&dest_id=-2767043#map"),
	)
	assert.Equal(t,
		"https://www.booking.com/hotel/pk/x.html?aid=2311236",
		normalizeListingURL("https://www.booking.com/hotel/pk/x.html"),
	)
}

func TestReportedTotal(t *testing.T) {
	assert.Equal(t, 243, ReportedTotal(resultsPageFixture))
	assert.Equal(t, 1400, ReportedTotal("<html><body><h1>Karachi: 1,400 search results</h1></body></html>"))
	assert.Equal(t, 0, ReportedTotal("<html><body><h1>Karachi</h1></body></html>"))
	assert.Equal(t, 0, ReportedTotal(""))
}
