// Package postgres provides the PostgreSQL-backed run repository, used when
// DATABASE_URL is configured; sqlite is the fallback.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/obad94/hotel-search-scraper/engine"
	"github.com/obad94/hotel-search-scraper/hotels"
	"github.com/obad94/hotel-search-scraper/web"
)

type runRepository struct {
	db *sql.DB
}

func NewRunRepository(db *sql.DB) web.RunRepository {
	return &runRepository{db: db}
}

// Migrate creates the runs table when it does not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		city TEXT NOT NULL,
		status TEXT NOT NULL,
		request JSONB NOT NULL,
		result JSONB,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
	`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate runs: %w", err)
	}

	return nil
}

func (r *runRepository) Create(ctx context.Context, run *web.Run) error {
	reqData, resData, err := encodeRun(run)
	if err != nil {
		return err
	}

	const q = `INSERT INTO runs (id, city, status, request, result, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.db.ExecContext(ctx, q, run.ID, run.City, string(run.Status), reqData, resData, run.CreatedAt, run.UpdatedAt)

	return err
}

func (r *runRepository) Update(ctx context.Context, run *web.Run) error {
	reqData, resData, err := encodeRun(run)
	if err != nil {
		return err
	}

	const q = `UPDATE runs SET city = $1, status = $2, request = $3, result = $4, updated_at = $5 WHERE id = $6`

	_, err = r.db.ExecContext(ctx, q, run.City, string(run.Status), reqData, resData, run.UpdatedAt, run.ID)

	return err
}

func (r *runRepository) Get(ctx context.Context, id string) (web.Run, error) {
	const q = `SELECT id, city, status, request, result, created_at, updated_at FROM runs WHERE id = $1`

	return scanRun(r.db.QueryRowContext(ctx, q, id))
}

func (r *runRepository) Select(ctx context.Context, limit int) ([]web.Run, error) {
	const q = `SELECT id, city, status, request, result, created_at, updated_at FROM runs ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []web.Run

	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}

		out = append(out, run)
	}

	return out, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func encodeRun(run *web.Run) (reqData string, resData sql.NullString, err error) {
	reqBytes, err := json.Marshal(run.Request)
	if err != nil {
		return "", sql.NullString{}, err
	}

	if run.Result != nil {
		resBytes, err := json.Marshal(run.Result)
		if err != nil {
			return "", sql.NullString{}, err
		}

		resData = sql.NullString{String: string(resBytes), Valid: true}
	}

	return string(reqBytes), resData, nil
}

func scanRun(row scannable) (web.Run, error) {
	var (
		run       web.Run
		status    string
		reqData   string
		resData   sql.NullString
		createdAt time.Time
		updatedAt time.Time
	)

	if err := row.Scan(&run.ID, &run.City, &status, &reqData, &resData, &createdAt, &updatedAt); err != nil {
		return web.Run{}, err
	}

	run.Status = web.RunStatus(status)
	run.CreatedAt = createdAt
	run.UpdatedAt = updatedAt

	var req hotels.SearchRequest
	if err := json.Unmarshal([]byte(reqData), &req); err != nil {
		return web.Run{}, err
	}

	run.Request = req

	if resData.Valid {
		var res engine.Result
		if err := json.Unmarshal([]byte(resData.String), &res); err != nil {
			return web.Run{}, err
		}

		run.Result = &res
	}

	return run, nil
}
