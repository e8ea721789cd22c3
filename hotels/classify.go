package hotels

import "strings"

// roomRules is checked in priority order: phrases like "deluxe double" match
// several categories, so the more specific rule must sit first.
var roomRules = []struct {
	category RoomCategory
	keywords []string
}{
	{RoomQuint, []string{"quint", "5-bed", "5 bed", "five bed"}},
	{RoomFamily, []string{"family"}},
	{RoomSuite, []string{"suite", "presidential", "penthouse"}},
	{RoomQuad, []string{"quad", "4-bed", "4 bed", "four bed"}},
	{RoomTriple, []string{"triple", "3-bed", "3 bed", "three bed"}},
	{RoomDouble, []string{"double", "twin", "king", "queen", "2-bed", "2 bed"}},
	{RoomSingle, []string{"single", "1-bed", "1 bed", "studio"}},
	{RoomDeluxe, []string{"deluxe"}},
	{RoomDormitory, []string{"dorm", "bunk", "shared"}},
	{RoomEntire, []string{"entire", "apartment", "flat", "house", "villa"}},
}

// ClassifyRoom maps free-form room configuration text onto the closed category
// set. Every input maps to exactly one category; absent text falls back to the
// standard room, unmatched text to the double default.
func ClassifyRoom(raw string) RoomCategory {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return RoomStandard
	}

	for _, rule := range roomRules {
		for _, kw := range rule.keywords {
			if strings.Contains(s, kw) {
				return rule.category
			}
		}
	}

	return RoomDouble
}

// ClassifyMealPlan picks the most inclusive plan named in the text.
func ClassifyMealPlan(raw string) MealPlan {
	s := strings.ToLower(raw)

	switch {
	case strings.Contains(s, "all inclusive"), strings.Contains(s, "all-inclusive"):
		return MealAllInclusive
	case strings.Contains(s, "full board"):
		return MealFullBoard
	case strings.Contains(s, "half board"):
		return MealHalfBoard
	case strings.Contains(s, "breakfast included"), strings.Contains(s, "free breakfast"),
		strings.Contains(s, "with breakfast"):
		return MealBreakfastIncluded
	case strings.Contains(s, "breakfast"):
		return MealBreakfastAvailable
	default:
		return MealRoomOnly
	}
}

// ClassifyCancellation reads the cancellation policy from card text.
func ClassifyCancellation(raw string) CancellationPolicy {
	s := strings.ToLower(raw)

	switch {
	case strings.Contains(s, "free cancellation"), strings.Contains(s, "no prepayment"):
		return CancellationFree
	case strings.Contains(s, "non-refundable"), strings.Contains(s, "non refundable"),
		strings.Contains(s, "nonrefundable"):
		return CancellationNonRef
	default:
		return CancellationUnknown
	}
}

var amenityVocabulary = []struct {
	name     string
	keywords []string
}{
	{"WiFi", []string{"wifi", "wi-fi", "wireless internet"}},
	{"Parking", []string{"parking"}},
	{"Pool", []string{"pool"}},
	{"Gym", []string{"gym", "fitness"}},
	{"Spa", []string{"spa"}},
	{"Kitchen", []string{"kitchen", "kitchenette"}},
	{"Balcony", []string{"balcony", "terrace"}},
	{"Air Conditioning", []string{"air conditioning", "air-conditioned", " ac "}},
	{"Private Bathroom", []string{"private bathroom", "ensuite", "en-suite"}},
	{"TV", []string{"tv", "television"}},
	{"Restaurant", []string{"restaurant"}},
}

// DetectAmenities scans the given text fragments against a fixed vocabulary.
// The result preserves vocabulary order and contains no duplicates.
func DetectAmenities(texts ...string) []string {
	joined := " " + strings.ToLower(strings.Join(texts, " ")) + " "

	var out []string

	for _, a := range amenityVocabulary {
		for _, kw := range a.keywords {
			if strings.Contains(joined, kw) {
				out = append(out, a.name)

				break
			}
		}
	}

	return out
}
