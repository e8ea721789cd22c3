package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // sqlite driver

	"github.com/obad94/hotel-search-scraper/engine"
	"github.com/obad94/hotel-search-scraper/hotels"
	"github.com/obad94/hotel-search-scraper/web"
)

type repo struct {
	db *sql.DB
}

// NewWithDB wraps an already-initialized database handle; the caller owns the
// handle's lifecycle.
func NewWithDB(db *sql.DB) web.RunRepository {
	return &repo{db: db}
}

// InitDB opens (and if needed initializes) the sqlite run store at path.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		city TEXT NOT NULL,
		status TEXT NOT NULL,
		request TEXT NOT NULL,
		result TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
	`

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("init schema: %w", err)
	}

	return db, nil
}

func (r *repo) Create(ctx context.Context, run *web.Run) error {
	reqData, resData, err := encodeRun(run)
	if err != nil {
		return err
	}

	const q = `INSERT INTO runs (id, city, status, request, result, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, q, run.ID, run.City, string(run.Status), reqData, resData, run.CreatedAt, run.UpdatedAt)

	return err
}

func (r *repo) Update(ctx context.Context, run *web.Run) error {
	reqData, resData, err := encodeRun(run)
	if err != nil {
		return err
	}

	const q = `UPDATE runs SET city = ?, status = ?, request = ?, result = ?, updated_at = ? WHERE id = ?`

	_, err = r.db.ExecContext(ctx, q, run.City, string(run.Status), reqData, resData, run.UpdatedAt, run.ID)

	return err
}

func (r *repo) Get(ctx context.Context, id string) (web.Run, error) {
	const q = `SELECT id, city, status, request, result, created_at, updated_at FROM runs WHERE id = ?`

	return scanRun(r.db.QueryRowContext(ctx, q, id))
}

func (r *repo) Select(ctx context.Context, limit int) ([]web.Run, error) {
	const q = `SELECT id, city, status, request, result, created_at, updated_at FROM runs ORDER BY created_at DESC LIMIT ?`

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
