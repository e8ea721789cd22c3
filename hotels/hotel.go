package hotels

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// RoomCategory is the closed set of room classifications.
type RoomCategory string

const (
	RoomSingle    RoomCategory = "Single"
	RoomDouble    RoomCategory = "Double"
	RoomTriple    RoomCategory = "Triple"
	RoomQuad      RoomCategory = "Quad"
	RoomQuint     RoomCategory = "Quint"
	RoomFamily    RoomCategory = "Family"
	RoomSuite     RoomCategory = "Suite"
	RoomDeluxe    RoomCategory = "Deluxe"
	RoomDormitory RoomCategory = "Dormitory"
	RoomEntire    RoomCategory = "Entire Property"
	RoomStandard  RoomCategory = "Standard"
)

// MaxOccupancy returns the occupancy implied by the room category.
func (c RoomCategory) MaxOccupancy() int {
	switch c {
	case RoomSingle:
		return 1
	case RoomTriple:
		return 3
	case RoomQuad:
		return 4
	case RoomQuint:
		return 5
	case RoomFamily:
		return 5
	case RoomSuite, RoomDeluxe:
		return 3
	case RoomDormitory:
		return 8
	case RoomEntire:
		return 6
	default:
		return 2
	}
}

type MealPlan string

const (
	MealRoomOnly           MealPlan = "Room Only"
	MealBreakfastAvailable MealPlan = "Breakfast Available"
	MealBreakfastIncluded  MealPlan = "Breakfast Included"
	MealHalfBoard          MealPlan = "Half Board"
	MealFullBoard          MealPlan = "Full Board"
	MealAllInclusive       MealPlan = "All Inclusive"
)

type CancellationPolicy string

const (
	CancellationFree    CancellationPolicy = "Free Cancellation"
	CancellationNonRef  CancellationPolicy = "Non-Refundable"
	CancellationUnknown CancellationPolicy = ""
)

// RoomOption is one room configuration parsed from a listing card.
type RoomOption struct {
	Category     RoomCategory       `json:"category"`
	MaxOccupancy int                `json:"max_occupancy"`
	MealPlan     MealPlan           `json:"meal_plan"`
	Cancellation CancellationPolicy `json:"cancellation"`
	RawText      string             `json:"raw_text"`
}

// Hotel is one aggregated listing record. One Hotel per physical property;
// the first parsed room option is primary for the top-level convenience fields.
type Hotel struct {
	ID                 string       `json:"id"`
	Name               string       `json:"name"`
	URL                string       `json:"url"`
	ImageURL           string       `json:"image_url"`
	Address            string       `json:"address"`
	DistanceFromCenter string       `json:"distance_from_center"`
	StarRating         *int         `json:"star_rating"`
	ReviewScore        *float64     `json:"review_score"`
	ReviewCount        int          `json:"review_count"`
	ReviewLabel        string       `json:"review_label"`
	PropertyType       string       `json:"property_type"`
	Rooms              []RoomOption `json:"rooms"`
	PricePerNight      *int         `json:"price_per_night"`
	TotalPrice         *int         `json:"total_price"`
	OriginalPrice      *int         `json:"original_price"`
	TaxNote            string       `json:"tax_note"`
	Currency           string       `json:"currency"`
	Amenities          []string     `json:"amenities"`
	Urgent             bool         `json:"urgent"`
	RoomsLeft          int          `json:"rooms_left"`
	HasDeal            bool         `json:"has_deal"`
	DealLabel          string       `json:"deal_label"`
	GeniusBadge        bool         `json:"genius_badge"`
	Sustainability     string       `json:"sustainability"`
	FoundBy            string       `json:"found_by"`
	ScrapedAt          time.Time    `json:"scraped_at"`
}

// PrimaryRoom returns the first parsed room option, or a default one when the
// card exposed no room configuration at all.
func (h *Hotel) PrimaryRoom() RoomOption {
	if len(h.Rooms) > 0 {
		return h.Rooms[0]
	}

	return RoomOption{Category: RoomStandard, MaxOccupancy: RoomStandard.MaxOccupancy(), MealPlan: MealRoomOnly}
}

func (h *Hotel) Validate() error {
	if h.Name == "" {
		return fmt.Errorf("name is empty")
	}

	return nil
}

func (h *Hotel) CsvHeaders() []string {
	return []string{
		"id",
		"name",
		"url",
		"image_url",
		"address",
		"distance_from_center",
		"star_rating",
		"review_score",
		"review_count",
		"review_label",
		"property_type",
		"rooms",
		"price_per_night",
		"total_price",
		"original_price",
		"tax_note",
		"currency",
		"amenities",
		"urgent",
		"rooms_left",
		"has_deal",
		"deal_label",
		"genius_badge",
		"sustainability",
		"found_by",
		"scraped_at",
	}
}

func (h *Hotel) CsvRow() []string {
	return []string{
		h.ID,
		h.Name,
		h.URL,
		h.ImageURL,
		h.Address,
		h.DistanceFromCenter,
		stringify(h.StarRating),
		stringify(h.ReviewScore),
		stringify(h.ReviewCount),
		h.ReviewLabel,
		h.PropertyType,
		stringify(h.Rooms),
		stringify(h.PricePerNight),
		stringify(h.TotalPrice),
		stringify(h.OriginalPrice),
		h.TaxNote,
		h.Currency,
		strings.Join(h.Amenities, "; "),
		stringify(h.Urgent),
		stringify(h.RoomsLeft),
		stringify(h.HasDeal),
		h.DealLabel,
		stringify(h.GeniusBadge),
		h.Sustainability,
		h.FoundBy,
		h.ScrapedAt.Format(time.RFC3339),
	}
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case *int:
		if val == nil {
			return ""
		}

		return fmt.Sprintf("%d", *val)
	case *float64:
		if val == nil {
			return ""
		}

		return fmt.Sprintf("%.1f", *val)
	case int:
		return fmt.Sprintf("%d", val)
	case bool:
		if val {
			return "true"
		}

		return "false"
	default:
		d, _ := json.Marshal(v)

		return string(d)
	}
}

// SearchRequest is the input of one engine run.
type SearchRequest struct {
	City       string    `json:"city"`
	DestID     string    `json:"dest_id"`
	CheckIn    time.Time `json:"checkin"`
	CheckOut   time.Time `json:"checkout"`
	Adults     int       `json:"adults"`
	Children   int       `json:"children"`
	Rooms      int       `json:"rooms"`
	BudgetSecs int       `json:"budget_seconds"`
	MaxResults int       `json:"max_results"`

	// DatesAdjusted is set by Normalize when a past check-in date was shifted.
	DatesAdjusted bool `json:"-"`
}

const (
	DefaultCity   = "Karachi"
	DefaultDestID = "-2767043"

	defaultBudgetSecs = 120
	defaultMaxResults = 500
)

// Nights returns the stay length in nights, defaulting to 1 when either date
// is absent.
func (r *SearchRequest) Nights() int {
	if r.CheckIn.IsZero() || r.CheckOut.IsZero() {
		return 1
	}

	n := int(math.Round(r.CheckOut.Sub(r.CheckIn).Hours() / 24))
	if n < 1 {
		n = 1
	}

	return n
}

// Normalize fills defaults and enforces the check-in date invariant: a check-in
// strictly before today shifts both dates forward, preserving the stay length.
func (r *SearchRequest) Normalize(now time.Time) {
	if r.City == "" {
		r.City = DefaultCity
	}

	if r.DestID == "" {
		r.DestID = DefaultDestID
	}

	if r.Adults <= 0 {
		r.Adults = 2
	}

	if r.Children < 0 {
		r.Children = 0
	}

	if r.Rooms <= 0 {
		r.Rooms = 1
	}

	if r.BudgetSecs <= 0 {
		r.BudgetSecs = defaultBudgetSecs
	}

	if r.MaxResults <= 0 {
		r.MaxResults = defaultMaxResults
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if r.CheckIn.IsZero() {
		r.CheckIn = today.AddDate(0, 0, 1)
		r.CheckOut = r.CheckIn.AddDate(0, 0, 1)

		return
	}

	if r.CheckOut.IsZero() {
		r.CheckOut = r.CheckIn.AddDate(0, 0, 1)
	}

	if r.CheckIn.Before(today) {
		nights := r.Nights()
		r.CheckIn = today.AddDate(0, 0, 1)
		r.CheckOut = r.CheckIn.AddDate(0, 0, nights)
		r.DatesAdjusted = true
	}
}

// RunMetadata describes the coverage of one run.
type RunMetadata struct {
	ElapsedSeconds    float64        `json:"elapsed_seconds"`
	VariantsAttempted int            `json:"variants_attempted"`
	VariantsScheduled int            `json:"variants_scheduled"`
	SortContribution  map[string]int `json:"sort_contribution"`
	UniqueCount       int            `json:"unique_count"`
	PricedCount       int            `json:"priced_count"`
	ReportedTotal     int            `json:"reported_total"`
	CoveragePercent   int            `json:"coverage_percent"`
	BlockedCount      int            `json:"blocked_count"`
	RedirectCount     int            `json:"redirect_count"`
	DatesAdjusted     bool           `json:"dates_adjusted"`
	CoverageNote      string         `json:"coverage_note"`
}

// Coverage computes the coverage percentage from unique and reported counts.
func Coverage(unique, reported int) int {
	if reported <= 0 {
		return 0
	}

	return int(math.Round(100 * float64(unique) / float64(reported)))
}
