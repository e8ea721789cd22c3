package hotels

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyRoom(t *testing.T) {
	tests := []struct {
		in   string
		want RoomCategory
	}{
		{"Deluxe Double Room", RoomDouble},
		{"Twin Room with City View", RoomDouble},
		{"King Room", RoomDouble},
		{"Standard Single Room", RoomSingle},
		{"Studio Apartment", RoomSingle},
		{"Triple Room", RoomTriple},
		{"Quadruple Room", RoomQuad},
		{"Quintuple Room", RoomQuint},
		{"Family Suite", RoomFamily},
		{"Junior Suite", RoomSuite},
		{"Deluxe Room", RoomDeluxe},
		{"Bed in 8-Bed Mixed Dormitory", RoomDormitory},
		{"Entire Villa", RoomEntire},
		{"", RoomStandard},
		{"   ", RoomStandard},
		{"Premium Mountain View Room", RoomDouble},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, ClassifyRoom(tc.in), "input %q", tc.in)
	}
}

func TestClassifyRoomIdempotent(t *testing.T) {
	// Feeding a category label back in must not change the category.
	for _, c := range []RoomCategory{
		RoomSingle, RoomDouble, RoomTriple, RoomQuad, RoomQuint,
		RoomFamily, RoomSuite, RoomDeluxe, RoomDormitory,
	} {
		assert.Equal(t, c, ClassifyRoom(string(c)), "category %q", c)
	}
}

func TestClassifyMealPlanMostInclusiveWins(t *testing.T) {
	tests := []struct {
		in   string
		want MealPlan
	}{
		{"All inclusive, breakfast included", MealAllInclusive},
		{"Full board", MealFullBoard},
		{"Half board with breakfast", MealHalfBoard},
		{"Breakfast included", MealBreakfastIncluded},
		{"Good breakfast available", MealBreakfastAvailable},
		{"Free cancellation", MealRoomOnly},
		{"", MealRoomOnly},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, ClassifyMealPlan(tc.in), "input %q", tc.in)
	}
}

func TestClassifyCancellation(t *testing.T) {
	assert.Equal(t, CancellationFree, ClassifyCancellation("FREE cancellation before 18:00"))
	assert.Equal(t, CancellationFree, ClassifyCancellation("No prepayment needed"))
	assert.Equal(t, CancellationNonRef, ClassifyCancellation("Non-refundable"))
	assert.Equal(t, CancellationNonRef, ClassifyCancellation("non refundable rate"))
	assert.Equal(t, CancellationUnknown, ClassifyCancellation("Breakfast included"))
}

func TestDetectAmenities(t *testing.T) {
	got := DetectAmenities(
		"Free WiFi · Outdoor pool",
		"Private bathroom with spa bath",
		"free wifi again",
	)

	assert.Equal(t, []string{"WiFi", "Pool", "Spa", "Private Bathroom"}, got)
}

func TestDetectAmenitiesEmpty(t *testing.T) {
	assert.Empty(t, DetectAmenities("a plain room description"))
}

func TestMaxOccupancy(t *testing.T) {
	assert.Equal(t, 1, RoomSingle.MaxOccupancy())
	assert.Equal(t, 2, RoomDouble.MaxOccupancy())
	assert.Equal(t, 5, RoomQuint.MaxOccupancy())
	assert.Equal(t, 8, RoomDormitory.MaxOccupancy())
	assert.Equal(t, 2, RoomStandard.MaxOccupancy())
}
