package runner

import (
	"fmt"
	"time"

	"github.com/obad94/hotel-search-scraper/browser"
	"github.com/obad94/hotel-search-scraper/hotels"
)

// SearchRequest converts the parsed flags into an engine request.
func (c *Config) SearchRequest() (hotels.SearchRequest, error) {
	req := hotels.SearchRequest{
		City:       c.City,
		DestID:     c.DestID,
		Adults:     c.Adults,
		Children:   c.Children,
		Rooms:      c.Rooms,
		BudgetSecs: c.BudgetSecs,
		MaxResults: c.MaxResults,
	}

	if c.CheckIn != "" {
		t, err := time.Parse("2006-01-02", c.CheckIn)
		if err != nil {
			return req, fmt.Errorf("invalid checkin date %q: %w", c.CheckIn, err)
		}

		req.CheckIn = t
	}

	if c.CheckOut != "" {
		t, err := time.Parse("2006-01-02", c.CheckOut)
		if err != nil {
			return req, fmt.Errorf("invalid checkout date %q: %w", c.CheckOut, err)
		}

		req.CheckOut = t
	}

	return req, nil
}

// BrowserConfig derives the lane manager configuration.
func (c *Config) BrowserConfig() browser.Config {
	return browser.Config{
		LaneCount: c.Lanes,
		Headless:  !c.Debug,
		Proxy:     c.Proxy,
	}
}
