// Package filerunner performs one scrape run from the command line and
// writes the result collection to a file or stdout.
package filerunner

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/obad94/hotel-search-scraper/engine"
	"github.com/obad94/hotel-search-scraper/hotels"
	"github.com/obad94/hotel-search-scraper/runner"
)

type fileRunner struct {
	cfg     *runner.Config
	log     *slog.Logger
	out     io.Writer
	outfile *os.File
}

func New(cfg *runner.Config, log *slog.Logger) (runner.Runner, error) {
	if cfg.RunMode != runner.RunModeFile {
		return nil, fmt.Errorf("%w: %d", runner.ErrInvalidRunMode, cfg.RunMode)
	}

	ans := &fileRunner{
		cfg: cfg,
		log: log,
		out: os.Stdout,
	}

	if cfg.ResultsFile != "" && cfg.ResultsFile != "stdout" {
		f, err := os.Create(cfg.ResultsFile)
		if err != nil {
			return nil, fmt.Errorf("create results file: %w", err)
		}

		ans.outfile = f
		ans.out = f
	}

	return ans, nil
}

func (r *fileRunner) Run(ctx context.Context) error {
	req, err := r.cfg.SearchRequest()
	if err != nil {
		return err
	}

	res := engine.RunSearch(ctx, r.cfg.BrowserConfig(), req, r.log)
	if !res.Success {
		return fmt.Errorf("scrape failed: %s", res.Error)
	}

	if r.cfg.JSON {
		return r.writeJSON(res)
	}

	return r.writeCSV(res.Hotels)
}

func (r *fileRunner) Close(context.Context) error {
	if r.outfile != nil {
		return r.outfile.Close()
	}

	return nil
}

func (r *fileRunner) writeJSON(res *engine.Result) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")

	return enc.Encode(res)
}

func (r *fileRunner) writeCSV(records []*hotels.Hotel) error {
	w := csv.NewWriter(r.out)
	defer w.Flush()

	if len(records) == 0 {
		return nil
	}

	if err := w.Write(records[0].CsvHeaders()); err != nil {
		return err
	}

	for _, h := range records {
		if err := w.Write(h.CsvRow()); err != nil {
			return err
		}
	}

	w.Flush()

	return w.Error()
}
