// Package webrunner serves the HTTP API around the engine, persisting runs in
// PostgreSQL when DATABASE_URL is configured and sqlite otherwise.
package webrunner

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver

	"github.com/obad94/hotel-search-scraper/engine"
	"github.com/obad94/hotel-search-scraper/hotels"
	"github.com/obad94/hotel-search-scraper/postgres"
	"github.com/obad94/hotel-search-scraper/runner"
	"github.com/obad94/hotel-search-scraper/web"
	"github.com/obad94/hotel-search-scraper/web/sqlite"
)

type webrunner struct {
	srv *web.Server
	cfg *runner.Config
	log *slog.Logger
	db  *sql.DB
}

func New(cfg *runner.Config, log *slog.Logger) (runner.Runner, error) {
	if cfg.RunMode != runner.RunModeWeb {
		return nil, fmt.Errorf("%w: %d", runner.ErrInvalidRunMode, cfg.RunMode)
	}

	if cfg.DataFolder == "" {
		return nil, fmt.Errorf("data folder is required")
	}

	if err := os.MkdirAll(cfg.DataFolder, os.ModePerm); err != nil {
		return nil, err
	}

	ans := &webrunner{
		cfg: cfg,
		log: log,
	}

	var repo web.RunRepository

	if cfg.Dsn != "" {
		log.Info("postgres configured, using it for run storage")

		db, err := openPostgresConn(cfg.Dsn)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}

		if err := postgres.Migrate(context.Background(), db); err != nil {
			_ = db.Close()

			return nil, err
		}

		ans.db = db
		repo = postgres.NewRunRepository(db)
	} else {
		log.Info("no DATABASE_URL configured, using sqlite")

		db, err := sqlite.InitDB(filepath.Join(cfg.DataFolder, "runs.db"))
		if err != nil {
			return nil, err
		}

		ans.db = db
		repo = sqlite.NewWithDB(db)
	}

	scrape := func(ctx context.Context, req hotels.SearchRequest) *engine.Result {
		return engine.RunSearch(ctx, cfg.BrowserConfig(), req, log)
	}

	svc := web.NewService(repo, scrape, log)
	ans.srv = web.NewServer(svc, cfg.Addr, log)

	return ans, nil
}

func openPostgresConn(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()

		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

func (w *webrunner) Run(ctx context.Context) error {
	egroup, ctx := errgroup.WithContext(ctx)

	egroup.Go(func() error {
		return w.srv.Start(ctx)
	})

	return egroup.Wait()
}

func (w *webrunner) Close(context.Context) error {
	if w.db != nil {
		return w.db.Close()
	}

	return nil
}
