package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/playwright-community/playwright-go"

	"github.com/obad94/hotel-search-scraper/runner"
	"github.com/obad94/hotel-search-scraper/runner/filerunner"
	"github.com/obad94/hotel-search-scraper/runner/webrunner"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	cfg := runner.ParseConfig()
	log := runner.SetupLogger(cfg.Debug)

	if cfg.RunMode == runner.RunModeInstallPlaywright {
		if err := installPlaywright(); err != nil {
			log.Error("playwright installation failed", "error", err)
			os.Exit(1)
		}

		return
	}

	runner.Banner()

	r, err := newRunner(cfg, log)
	if err != nil {
		log.Error("could not create runner", "error", err)
		os.Exit(1)
	}

	defer func() {
		_ = r.Close(context.Background())
	}()

	if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func newRunner(cfg *runner.Config, log *slog.Logger) (runner.Runner, error) {
	switch cfg.RunMode {
	case runner.RunModeFile:
		return filerunner.New(cfg, log)
	case runner.RunModeWeb:
		return webrunner.New(cfg, log)
	default:
		return nil, fmt.Errorf("%w: %d", runner.ErrInvalidRunMode, cfg.RunMode)
	}
}

func installPlaywright() error {
	return playwright.Install(&playwright.RunOptions{
		Browsers: []string{"chromium"},
	})
}
