package hotels

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNights(t *testing.T) {
	req := SearchRequest{CheckIn: date(2026, 9, 10), CheckOut: date(2026, 9, 13)}
	assert.Equal(t, 3, req.Nights())

	req = SearchRequest{CheckIn: date(2026, 9, 10), CheckOut: date(2026, 9, 10)}
	assert.Equal(t, 1, req.Nights())

	req = SearchRequest{}
	assert.Equal(t, 1, req.Nights())
}

func TestNormalizeDefaults(t *testing.T) {
	now := date(2026, 8, 31)

	var req SearchRequest
	req.Normalize(now)

	assert.Equal(t, DefaultCity, req.City)
	assert.Equal(t, DefaultDestID, req.DestID)
	assert.Equal(t, 2, req.Adults)
	assert.Equal(t, 1, req.Rooms)
	assert.Equal(t, 120, req.BudgetSecs)
	assert.Equal(t, date(2026, 9, 1), req.CheckIn)
	assert.Equal(t, date(2026, 9, 2), req.CheckOut)
	assert.False(t, req.DatesAdjusted)
}

func TestNormalizeShiftsPastDatesPreservingNights(t *testing.T) {
	now := date(2026, 8, 31)

	req := SearchRequest{
		CheckIn:  date(2026, 8, 20),
		CheckOut: date(2026, 8, 23),
	}
	req.Normalize(now)

	assert.True(t, req.DatesAdjusted)
	assert.Equal(t, date(2026, 9, 1), req.CheckIn)
	assert.Equal(t, date(2026, 9, 4), req.CheckOut)
	assert.Equal(t, 3, req.Nights())
}

func TestNormalizeKeepsFutureDates(t *testing.T) {
	now := date(2026, 8, 31)

	req := SearchRequest{
		CheckIn:  date(2026, 10, 1),
		CheckOut: date(2026, 10, 5),
	}
	req.Normalize(now)

	assert.False(t, req.DatesAdjusted)
	assert.Equal(t, date(2026, 10, 1), req.CheckIn)
	assert.Equal(t, date(2026, 10, 5), req.CheckOut)
}

func TestNormalizeFillsMissingCheckOut(t *testing.T) {
	now := date(2026, 8, 31)

	req := SearchRequest{CheckIn: date(2026, 9, 10)}
	req.Normalize(now)

	assert.Equal(t, date(2026, 9, 11), req.CheckOut)
}

func TestCoverage(t *testing.T) {
	assert.Equal(t, 75, Coverage(150, 200))
	assert.Equal(t, 100, Coverage(200, 200))
	assert.Equal(t, 0, Coverage(10, 0))
	assert.Equal(t, 33, Coverage(1, 3))
}

func TestCsvRowMatchesHeaders(t *testing.T) {
	stars := 4
	score := 8.6
	price := 12000

	h := &Hotel{
		ID:            "htl_1",
		Name:          "Pearl Continental",
		StarRating:    &stars,
		ReviewScore:   &score,
		PricePerNight: &price,
		Amenities:     []string{"WiFi", "Pool"},
		Urgent:        true,
		RoomsLeft:     2,
		FoundBy:       "popularity",
		ScrapedAt:     time.Now(),
	}

	headers := h.CsvHeaders()
	row := h.CsvRow()

	require.Equal(t, len(headers), len(row))
	assert.Equal(t, "4", row[6])
	assert.Equal(t, "8.6", row[7])
	assert.Equal(t, "WiFi; Pool", row[17])
	assert.Equal(t, "true", row[18])
}

func TestCsvRowEmptyOptionals(t *testing.T) {
	h := &Hotel{Name: "No Frills Inn"}
	row := h.CsvRow()

	assert.Equal(t, "", row[6])
	assert.Equal(t, "", row[12])
}

func TestPrimaryRoomFallback(t *testing.T) {
	h := &Hotel{Name: "x"}
	room := h.PrimaryRoom()

	assert.Equal(t, RoomStandard, room.Category)
	assert.Equal(t, MealRoomOnly, room.MealPlan)

	h.Rooms = []RoomOption{{Category: RoomSuite}, {Category: RoomSingle}}
	assert.Equal(t, RoomSuite, h.PrimaryRoom().Category)
}

func TestValidate(t *testing.T) {
	h := &Hotel{}
	assert.Error(t, h.Validate())

	h.Name = "Beach Luxury Hotel"
	assert.NoError(t, h.Validate())
}
