package hotels

import (
	"fmt"
	"net/url"
	"regexp"
	"runtime/debug"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	cardSelector = `div[data-testid="property-card"]`

	// Single affiliate tag appended to every normalized property URL.
	affiliateParam = "aid=2311236"

	defaultCurrency = "PKR"
)

var (
	inlinePriceRe   = regexp.MustCompile(`(?:PKR|Rs\.?|US\$|USD|INR|[₨₹$€£])\s?[\d.,\x{00a0}\x{202f} ]*\d`)
	reportedTotalRe = regexp.MustCompile(`([\d,]+)\s+(?:propert|search result|place)`)
)

// ExtractHotels walks every listing card on a settled results page and
// assembles one Hotel per card. Cards without a resolvable name are discarded;
// a failure inside one card skips that card only.
func ExtractHotels(html string, nights int, now time.Time) []*Hotel {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var out []*Hotel

	doc.Find(cardSelector).Each(func(_ int, card *goquery.Selection) {
		h, err := extractCard(card, nights, now)
		if err != nil || h == nil {
			return
		}

		out = append(out, h)
	})

	return out
}

func extractCard(card *goquery.Selection, nights int, now time.Time) (h *Hotel, err error) {
	defer func() {
		if r := recover(); r != nil {
			h = nil
			err = fmt.Errorf("recovered from panic: %v stack: %s", r, debug.Stack())
		}
	}()

	name := strings.TrimSpace(card.Find(`div[data-testid="title"]`).First().Text())
	if name == "" {
		return nil, nil
	}

	h = &Hotel{
		Name:      name,
		Currency:  defaultCurrency,
		ScrapedAt: now,
	}

	if href, ok := card.Find(`a[data-testid="title-link"]`).First().Attr("href"); ok {
		h.URL = normalizeListingURL(href)
	}

	if src, ok := card.Find(`img[data-testid="image"]`).First().Attr("src"); ok {
		h.ImageURL = src
	}

	h.Address = strings.TrimSpace(card.Find(`span[data-testid="address"]`).First().Text())
	h.DistanceFromCenter = strings.TrimSpace(card.Find(`span[data-testid="distance"]`).First().Text())
	h.PropertyType = strings.TrimSpace(card.Find(`span[data-testid="property-type-badge"]`).First().Text())
	h.Sustainability = strings.TrimSpace(card.Find(`span[data-testid="sustainability-badge"]`).First().Text())

	extractStars(card, h)
	extractReviews(card, h)
	extractPrices(card, h, nights)
	extractRooms(card, h)
	extractBadges(card, h)

	return h, nil
}

// normalizeListingURL strips query parameters and appends the affiliate tag.
func normalizeListingURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		if i := strings.IndexByte(raw, '?'); i >= 0 {
			raw = raw[:i]
		}

		return raw + "?" + affiliateParam
	}

	u.RawQuery = ""
	u.Fragment = ""

	return u.String() + "?" + affiliateParam
}

func extractStars(card *goquery.Selection, h *Hotel) {
	sel := card.Find(`div[data-testid="rating-stars"], div[data-testid="rating-squares"]`).First()
	if sel.Length() == 0 {
		return
	}

	label := sel.AttrOr("aria-label", "")
	if label == "" {
		label = sel.Text()
	}

	h.StarRating = ParseStarRating(label)
}

func extractReviews(card *goquery.Selection, h *Hotel) {
	block := card.Find(`div[data-testid="review-score"]`).First()
	if block.Length() == 0 {
		return
	}

	label := block.AttrOr("aria-label", "")
	if label == "" {
		label = block.Text()
	}

	h.ReviewScore = ParseReviewScore(label)

	// The score block carries score, word label and count as sibling divs.
	block.Find("div").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		t := strings.TrimSpace(s.Text())
		if t == "" || strings.ContainsAny(t, "0123456789") {
			return true
		}

		h.ReviewLabel = t

		return false
	})

	block.Find("div").Each(func(_ int, s *goquery.Selection) {
		t := strings.ToLower(s.Text())
		if strings.Contains(t, "review") {
			h.ReviewCount = ParseReviewCount(t)
		}
	})
}

// extractPrices tries the dedicated price block first and degrades through
// progressively looser sources until one yields an in-range figure.
func extractPrices(card *goquery.Selection, h *Hotel, nights int) {
	sources := []func() string{
		func() string {
			return card.Find(`span[data-testid="price-and-discounted-price"]`).First().Text()
		},
		func() string {
			return inlinePriceRe.FindString(card.Text())
		},
		func() string {
			return card.Find(`div[data-testid="availability-rate-wrapper"]`).First().Text()
		},
		func() string {
			var txt string

			card.Find("[class]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
				if strings.Contains(strings.ToLower(s.AttrOr("class", "")), "price") {
					txt = s.Text()

					return false
				}

				return true
			})

			return txt
		},
	}

	for _, src := range sources {
		raw := src()
		if raw == "" {
			continue
		}

		if total, ok := ParseMoney(raw); ok {
			perNight := PerNight(total, nights)
			h.TotalPrice = &total
			h.PricePerNight = &perNight

			break
		}
	}

	if orig, ok := ParseMoney(card.Find(`span[data-testid="strikethrough-price"]`).First().Text()); ok {
		h.OriginalPrice = &orig
	}

	h.TaxNote = strings.TrimSpace(card.Find(`div[data-testid="taxes-and-charges"]`).First().Text())
}

func extractRooms(card *goquery.Selection, h *Hotel) {
	units := card.Find(`div[data-testid="recommended-units"]`)

	var texts []string

	units.Find("h4").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			texts = append(texts, t)
		}
	})

	if len(texts) == 0 {
		if t := strings.TrimSpace(card.Find(`div[data-testid="property-card-unit-configuration"]`).Text()); t != "" {
			texts = append(texts, t)
		}
	}

	unitText := strings.TrimSpace(units.Text())

	for _, t := range texts {
		cat := ClassifyRoom(t)
		h.Rooms = append(h.Rooms, RoomOption{
			Category:     cat,
			MaxOccupancy: cat.MaxOccupancy(),
			MealPlan:     ClassifyMealPlan(t + " " + unitText),
			Cancellation: ClassifyCancellation(t + " " + unitText),
			RawText:      t,
		})
	}

	if len(h.Rooms) == 0 {
		cat := ClassifyRoom("")
		h.Rooms = append(h.Rooms, RoomOption{
			Category:     cat,
			MaxOccupancy: cat.MaxOccupancy(),
			MealPlan:     ClassifyMealPlan(unitText),
			Cancellation: ClassifyCancellation(unitText),
			RawText:      unitText,
		})
	}

	var badgeTexts []string

	card.Find(`span[data-testid^="facility"]`).Each(func(_ int, s *goquery.Selection) {
		badgeTexts = append(badgeTexts, s.Text())
	})

	h.Amenities = DetectAmenities(append(badgeTexts, unitText, card.Text())...)
}

func extractBadges(card *goquery.Selection, h *Hotel) {
	if deal := strings.TrimSpace(card.Find(`span[data-testid*="deal"]`).First().Text()); deal != "" {
		h.HasDeal = true
		h.DealLabel = deal
	}

	if card.Find(`span[data-testid="genius-badge"], span[aria-label="Genius"]`).Length() > 0 {
		h.GeniusBadge = true
	}

	urgency := strings.TrimSpace(card.Find(`div[data-testid="urgency-message"], span[data-testid="urgency-message"]`).First().Text())
	if urgency == "" {
		lower := strings.ToLower(card.Text())
		if i := strings.Index(lower, "only "); i >= 0 && strings.Contains(lower[i:min(i+60, len(lower))], "left") {
			urgency = lower[i:min(i+60, len(lower))]
		} else if strings.Contains(lower, "in high demand") {
			urgency = "in high demand"
		}
	}

	h.Urgent, h.RoomsLeft = ParseUrgency(urgency)
}

// ReportedTotal reads the site's self-reported result count from the results
// page header, e.g. "Karachi: 243 properties found". Returns 0 when the header
// is missing or unparseable.
func ReportedTotal(html string) int {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0
	}

	header := doc.Find("h1").First().Text()

	m := reportedTotalRe.FindStringSubmatch(header)
	if len(m) < 2 {
		return 0
	}

	return ParseReviewCount(m[1])
}
