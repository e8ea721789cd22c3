// Package web is the HTTP surface around the scraping engine: it accepts
// search requests, serves recorded runs and reports process health. Request
// validation beyond date sanity, caching and rate limiting live here, not in
// the engine.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/obad94/hotel-search-scraper/hotels"
)

type Server struct {
	srv *http.Server
	svc *Service
	log *slog.Logger
}

func NewServer(svc *Service, addr string, log *slog.Logger) *Server {
	s := &Server{
		svc: svc,
		log: log,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Minute))

	r.Post("/api/search", s.handleSearch)
	r.Get("/api/runs", s.handleListRuns)
	r.Get("/api/runs/{id}", s.handleGetRun)
	r.Get("/health", s.handleHealth)

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s
}

// Start serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		errCh <- s.srv.ListenAndServe()
	}()

	s.log.Info("http server listening", "addr", s.srv.Addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return s.srv.Shutdown(shutdownCtx)
	}
}

// searchPayload is the wire form of a SearchRequest: dates as YYYY-MM-DD.
type searchPayload struct {
	City       string `json:"city"`
	DestID     string `json:"dest_id"`
	CheckIn    string `json:"checkin"`
	CheckOut   string `json:"checkout"`
	Adults     int    `json:"adults"`
	Children   int    `json:"children"`
	Rooms      int    `json:"rooms"`
	BudgetSecs int    `json:"budget_seconds"`
	MaxResults int    `json:"max_results"`
}

func (p *searchPayload) toRequest() (hotels.SearchRequest, error) {
	req := hotels.SearchRequest{
		City:       p.City,
		DestID:     p.DestID,
		Adults:     p.Adults,
		Children:   p.Children,
		Rooms:      p.Rooms,
		BudgetSecs: p.BudgetSecs,
		MaxResults: p.MaxResults,
	}

	if p.CheckIn != "" {
		t, err := time.Parse("2006-01-02", p.CheckIn)
		if err != nil {
			return req, errors.New("invalid checkin date, want YYYY-MM-DD")
		}

		req.CheckIn = t
	}

	if p.CheckOut != "" {
		t, err := time.Parse("2006-01-02", p.CheckOut)
		if err != nil {
			return req, errors.New("invalid checkout date, want YYYY-MM-DD")
		}

		req.CheckOut = t
	}

	return req, nil
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var payload searchPayload

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		renderError(w, http.StatusBadRequest, "invalid request body")

		return
	}

	req, err := payload.toRequest()
	if err != nil {
		renderError(w, http.StatusBadRequest, err.Error())

		return
	}

	res, err := s.svc.Search(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrRateLimited) {
			renderError(w, http.StatusTooManyRequests, err.Error())

			return
		}

		s.log.Error("search failed", "error", err)
		renderError(w, http.StatusInternalServerError, "search failed")

		return
	}

	renderJSON(w, http.StatusOK, res)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	runs, err := s.svc.List(r.Context(), limit)
	if err != nil {
		s.log.Error("list runs failed", "error", err)
		renderError(w, http.StatusInternalServerError, "could not list runs")

		return
	}

	renderJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	run, err := s.svc.Get(r.Context(), id)
	if err != nil {
		renderError(w, http.StatusNotFound, "run not found")

		return
	}

	renderJSON(w, http.StatusOK, run)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	type health struct {
		Status      string  `json:"status"`
		CPUPercent  float64 `json:"cpu_percent"`
		MemPercent  float64 `json:"mem_percent"`
		MemUsedMB   uint64  `json:"mem_used_mb"`
		GoroutineOK bool    `json:"ok"`
	}

	h := health{Status: "ok", GoroutineOK: true}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		h.CPUPercent = percents[0]
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		h.MemPercent = vm.UsedPercent
		h.MemUsedMB = vm.Used / 1024 / 1024
	}

	renderJSON(w, http.StatusOK, h)
}

func renderJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func renderError(w http.ResponseWriter, status int, msg string) {
	renderJSON(w, status, map[string]string{"error": msg})
}
