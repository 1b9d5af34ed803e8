package scraper

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/aluiziolira/go-crawl-books/models"
	"github.com/aluiziolira/go-crawl-books/parser"
)

// Result is the tagged outcome of one detail-page extraction.
type Result struct {
	URL  string
	Book *models.Book
	Err  error
}

// Dispatcher fans detail-page extractions over a bounded worker pool.
// Workers hand results back over a channel and the calling goroutine
// performs all accumulation, so there is no shared mutable state.
type Dispatcher struct {
	fetcher *Fetcher
	workers int
	metrics *Metrics
}

// NewDispatcher builds a Dispatcher with the given pool size.
func NewDispatcher(fetcher *Fetcher, workers int, metrics *Metrics) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	return &Dispatcher{fetcher: fetcher, workers: workers, metrics: metrics}
}

// Dispatch runs one extraction per URL across the pool. Books are
// returned in completion order; failures carry the offending URL and
// classified error. len(books)+len(failures) == len(urls), always.
func (d *Dispatcher) Dispatch(ctx context.Context, urls []string) ([]*models.Book, []Result) {
	if len(urls) == 0 {
		return nil, nil
	}

	jobs := make(chan string)
	results := make(chan Result)

	var wg sync.WaitGroup
	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rawURL := range jobs {
				book, err := d.extract(ctx, rawURL)
				results <- Result{URL: rawURL, Book: book, Err: err}
			}
		}()
	}

	go func() {
		for _, rawURL := range urls {
			jobs <- rawURL
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	var books []*models.Book
	var failures []Result
	total := len(urls)
	done := 0

	for result := range results {
		done++
		if result.Err != nil {
			failures = append(failures, result)
			slog.Error("book extraction failed",
				slog.String("url", result.URL),
				slog.Any("error", result.Err),
			)
		} else {
			books = append(books, result.Book)
		}
		slog.Info("progress",
			slog.Int("done", done),
			slog.Int("total", total),
			slog.Int("failed", len(failures)),
		)
	}

	return books, failures
}

// extract fetches and parses one detail page. Any fault, including a
// panic while traversing the document, comes back as an error so the
// batch never aborts.
func (d *Dispatcher) extract(ctx context.Context, rawURL string) (book *models.Book, err error) {
	defer func() {
		if r := recover(); r != nil {
			book = nil
			err = fmt.Errorf("extract %s: panic: %v", rawURL, r)
		}
	}()

	resp, err := d.fetcher.Fetch(ctx, PhaseDetail, rawURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rawURL, err)
	}

	book = parser.ExtractBook(doc, rawURL)
	d.metrics.IncBooks()
	return book, nil
}
