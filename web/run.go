package web

import (
	"context"
	"time"

	"github.com/obad94/hotel-search-scraper/engine"
	"github.com/obad94/hotel-search-scraper/hotels"
)

type RunStatus string

const (
	StatusWorking   RunStatus = "working"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// Run is one recorded scrape invocation with its result payload.
type Run struct {
	ID        string               `json:"id"`
	City      string               `json:"city"`
	Request   hotels.SearchRequest `json:"request"`
	Status    RunStatus            `json:"status"`
	Result    *engine.Result       `json:"result,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// RunRepository persists finished runs for later retrieval. The engine itself
// stays stateless; persistence is purely a caller-side concern.
type RunRepository interface {
	Create(ctx context.Context, run *Run) error
	Update(ctx context.Context, run *Run) error
	Get(ctx context.Context, id string) (Run, error)
	Select(ctx context.Context, limit int) ([]Run, error)
}
