// Package scheduler enumerates the query variants a run attempts and
// truncates the list to fit the wall-clock budget. Variants in later tiers
// have diminishing marginal unique yield, so tight budgets keep only the
// high-yield prefix.
package scheduler

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"

	"github.com/obad94/hotel-search-scraper/hotels"
)

// Variant is one immutable sort-order/filter combination.
type Variant struct {
	Sort   string // order query parameter, empty for the site default
	Filter string // nflt filter expression, empty for none
	Tier   int    // ordering rank only
}

// Label identifies the variant in provenance tags and logs.
func (v Variant) Label() string {
	sort := v.Sort
	if sort == "" {
		sort = "popularity"
	}

	if v.Filter == "" {
		return sort
	}

	return sort + "+" + v.Filter
}

// SortLabel is the sort-order component alone, used for contribution counts.
func (v Variant) SortLabel() string {
	if v.Sort == "" {
		return "popularity"
	}

	return v.Sort
}

const (
	sortPopularity  = ""
	sortReviewScore = "bayesian_review_score"
	sortPrice       = "price"
	sortClassDesc   = "class"
	sortDeals       = "upsort_bh"
	sortDistance    = "distance_from_search"
	sortClassAsc    = "class_asc"
)

// variants is the full static priority-ordered list.
var variants = buildVariants()

func buildVariants() []Variant {
	var out []Variant

	add := func(tier int, sort, filter string) {
		out = append(out, Variant{Sort: sort, Filter: filter, Tier: tier})
	}

	// Tier 1: every distinct sort order, unfiltered.
	for _, s := range []string{sortPopularity, sortReviewScore, sortPrice, sortClassDesc, sortDeals, sortDistance} {
		add(1, s, "")
	}

	// Tier 2: star filters crossed with the highest-yield sorts.
	for _, class := range []int{5, 4, 3} {
		for _, s := range []string{sortPopularity, sortPrice} {
			add(2, s, fmt.Sprintf("class=%d", class))
		}
	}

	// Tier 3: review-score thresholds on high-yield sorts.
	for _, score := range []int{90, 80} {
		for _, s := range []string{sortPopularity, sortReviewScore} {
			add(3, s, fmt.Sprintf("review_score=%d", score))
		}
	}

	// Tier 4: star filters on secondary sorts.
	for _, class := range []int{5, 4, 3} {
		for _, s := range []string{sortReviewScore, sortDistance} {
			add(4, s, fmt.Sprintf("class=%d", class))
		}
	}

	// Tier 5: property-type and cross filters.
	for _, f := range []string{"ht_id=204", "ht_id=201", "ht_id=216", "mealplan=1", "fc=2"} {
		add(5, sortPopularity, f)
	}

	// Tier 6: compound star and review-score filters.
	for _, f := range []string{"class=5;review_score=90", "class=4;review_score=80", "class=3;review_score=80"} {
		add(6, sortPrice, f)
	}

	// Tier 7: alternate orderings.
	add(7, sortClassAsc, "")
	add(7, sortClassAsc, "class=3")

	return out
}

const (
	fullBudgetSecs   = 90
	mediumBudgetSecs = 60
	mediumPrefix     = 20
	minimalPrefix    = 8
)

// Schedule returns the budget-sized prefix of the variant list. The result is
// a copy: callers never alias the static list.
func Schedule(budgetSecs int) []Variant {
	switch {
	case budgetSecs >= fullBudgetSecs:
		return slices.Clone(variants)
	case budgetSecs >= mediumBudgetSecs:
		return slices.Clone(variants[:mediumPrefix])
	default:
		return slices.Clone(variants[:minimalPrefix])
	}
}

// All returns the complete static variant list.
func All() []Variant {
	return slices.Clone(variants)
}

const searchBase = "https://www.booking.com/searchresults.html"

// SearchURL builds the results URL for one variant. The request must already
// be normalized (check-in invariant enforced).
func SearchURL(req *hotels.SearchRequest, v Variant) string {
	q := url.Values{}
	q.Set("ss", req.City)
	q.Set("dest_id", req.DestID)
	q.Set("dest_type", "city")
	q.Set("checkin", req.CheckIn.Format("2006-01-02"))
	q.Set("checkout", req.CheckOut.Format("2006-01-02"))
	q.Set("group_adults", strconv.Itoa(req.Adults))
	q.Set("group_children", strconv.Itoa(req.Children))
	q.Set("no_rooms", strconv.Itoa(req.Rooms))
	q.Set("selected_currency", "PKR")

	if v.Sort != "" {
		q.Set("order", v.Sort)
	}

	if v.Filter != "" {
		q.Set("nflt", v.Filter)
	}

	return searchBase + "?" + q.Encode()
}
