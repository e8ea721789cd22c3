package hotels

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Monetary candidates outside this range are ignored: below it they are room or
// night counts sitting next to the price, above it they are tracking IDs.
const (
	minPlausiblePrice = 50
	maxPlausiblePrice = 50_000_000
)

var (
	currencyTokens = []string{
		"PKR", "Rs.", "Rs", "US$", "USD", "EUR", "GBP", "INR",
		"₨", "₹", "$", "€", "£",
	}

	digitRunRe     = regexp.MustCompile(`\d+`)
	separatorRe    = regexp.MustCompile(`(\d)[.,\s](\d)`)
	digitTokenRe   = regexp.MustCompile(`\d`)
	decimalRe      = regexp.MustCompile(`(\d+(?:[.,]\d+)?)`)
	urgencyCountRe = regexp.MustCompile(`\d+`)
)

// ParseMoney extracts the conservative per-stay price from a raw text run.
// Price blocks often carry a total and a cheaper unit subtotal in the same text,
// so the minimum in-range numeric token wins. Known fragility: a stray in-range
// number near the price (e.g. a large night count product) can shadow it.
func ParseMoney(raw string) (int, bool) {
	s := raw

	// NBSP and narrow no-break space show up between currency and amount.
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.ReplaceAll(s, "\u202f", " ")
	s = strings.ReplaceAll(s, "\u2009", " ")

	for _, tok := range currencyTokens {
		s = strings.ReplaceAll(s, tok, " ")
	}

	// Collapse thousands separators (comma, period, space) between digits.
	for separatorRe.MatchString(s) {
		s = separatorRe.ReplaceAllString(s, "$1$2")
	}

	best := 0
	found := false

	for _, m := range digitRunRe.FindAllString(s, -1) {
		n, err := strconv.Atoi(m)
		if err != nil {
			continue
		}

		if n <= minPlausiblePrice || n >= maxPlausiblePrice {
			continue
		}

		if !found || n < best {
			best = n
			found = true
		}
	}

	return best, found
}

// PerNight derives the rounded per-night price from a stay total.
func PerNight(total, nights int) int {
	if nights < 1 {
		nights = 1
	}

	return int(math.Round(float64(total) / float64(nights)))
}

// ParseStarRating reads the star class from an accessible label such as
// "4 out of 5" or "4-star hotel". Returns nil when no 0-5 digit is present.
func ParseStarRating(raw string) *int {
	m := digitTokenRe.FindString(raw)
	if m == "" {
		return nil
	}

	n, err := strconv.Atoi(m)
	if err != nil || n > 5 {
		return nil
	}

	return &n
}

// ParseReviewScore reads a 0-10 review score from text such as
// "Scored 8.6" or "8.6 out of 10". Comma decimals are accepted.
func ParseReviewScore(raw string) *float64 {
	m := decimalRe.FindString(raw)
	if m == "" {
		return nil
	}

	m = strings.ReplaceAll(m, ",", ".")

	f, err := strconv.ParseFloat(m, 64)
	if err != nil || f < 0 || f > 10 {
		return nil
	}

	return &f
}

// ParseReviewCount extracts the integer count from "1,234 reviews".
func ParseReviewCount(raw string) int {
	s := raw
	for separatorRe.MatchString(s) {
		s = separatorRe.ReplaceAllString(s, "$1$2")
	}

	m := digitRunRe.FindString(s)
	if m == "" {
		return 0
	}

	n, _ := strconv.Atoi(m)

	return n
}

// ParseUrgency reads a limited-availability message. When the message carries a
// number it is the remaining-room count; otherwise the count stays unspecified.
func ParseUrgency(raw string) (urgent bool, roomsLeft int) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return false, 0
	}

	if m := urgencyCountRe.FindString(s); m != "" {
		roomsLeft, _ = strconv.Atoi(m)
	}

	return true, roomsLeft
}
