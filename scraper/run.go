package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aluiziolira/go-crawl-books/config"
	"github.com/aluiziolira/go-crawl-books/models"
	"github.com/aluiziolira/go-crawl-books/sink"
)

// Runner wires the walker, dispatcher and sink into one crawl run.
type Runner struct {
	cfg        *config.Config
	fetcher    *Fetcher
	walker     *Walker
	dispatcher *Dispatcher
	sink       sink.Sink
	Metrics    *Metrics
}

// NewRunner builds a Runner. out may be nil when the caller only wants
// the in-memory collection.
func NewRunner(cfg *config.Config, out sink.Sink) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	metrics := NewMetrics()
	fetcher, err := NewFetcher(cfg, metrics)
	if err != nil {
		return nil, err
	}

	return &Runner{
		cfg:        cfg,
		fetcher:    fetcher,
		walker:     NewWalker(cfg, fetcher, metrics),
		dispatcher: NewDispatcher(fetcher, cfg.Workers, metrics),
		sink:       out,
		Metrics:    metrics,
	}, nil
}

// Fetcher exposes the shared fetcher, mainly so tests can swap the
// transport.
func (r *Runner) Fetcher() *Fetcher {
	return r.fetcher
}

// CheckReachable probes the site root within the configured timeout.
func (r *Runner) CheckReachable(ctx context.Context) error {
	if _, err := r.fetcher.Fetch(ctx, PhaseProbe, r.cfg.BaseURL); err != nil {
		return fmt.Errorf("site %s unreachable: %w", r.cfg.BaseURL, err)
	}
	return nil
}

// Run executes one full crawl: probe, walk, dispatch, persist. Failures
// below the run are absorbed into the result; the returned error is
// non-nil only when the site root was unreachable and nothing ran.
func (r *Runner) Run(ctx context.Context) (*models.RunResult, error) {
	result := &models.RunResult{
		StartTime:    time.Now(),
		ErrorsByType: make(map[string]int),
	}
	defer func() {
		result.EndTime = time.Now()
	}()

	slog.Info("starting crawl", slog.String("base_url", r.cfg.BaseURL))

	if err := r.CheckReachable(ctx); err != nil {
		slog.Error("reachability check failed, aborting run", slog.Any("error", err))
		return result, err
	}
	slog.Info("site reachable", slog.String("base_url", r.cfg.BaseURL))

	urls, pages := r.walker.Walk(ctx)
	result.PagesWalked = pages
	result.TotalURLs = len(urls)
	if len(urls) == 0 {
		slog.Info("no books discovered, nothing to fetch")
		return result, nil
	}
	slog.Info("discovery complete",
		slog.Int("pages", pages),
		slog.Int("books", len(urls)),
		slog.Int("workers", r.cfg.Workers),
	)

	books, failures := r.dispatcher.Dispatch(ctx, urls)
	result.Books = books
	result.SuccessCount = len(books)
	result.FailureCount = len(failures)
	for _, failure := range failures {
		result.FailedURLs = append(result.FailedURLs, failure.URL)
		result.ErrorsByType[errorTypeLabel(failure.Err)]++
	}

	slog.Info("crawl complete",
		slog.Int("succeeded", result.SuccessCount),
		slog.Int("failed", result.FailureCount),
	)

	if r.sink != nil && len(books) > 0 {
		if err := r.sink.Persist(books); err != nil {
			slog.Error("persisting records failed, keeping in-memory results", slog.Any("error", err))
		} else {
			result.Persisted = true
		}
	}

	return result, nil
}
