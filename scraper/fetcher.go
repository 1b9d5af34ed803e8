package scraper

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/aluiziolira/go-crawl-books/config"
)

// Request phases, used as metrics labels.
const (
	PhaseProbe     = "probe"
	PhaseCatalogue = "catalogue"
	PhaseDetail    = "detail"
)

// FetchResponse carries the outcome of a single GET.
type FetchResponse struct {
	URL        string
	StatusCode int
	Body       []byte
}

// Fetcher issues single synchronous GETs through colly, sharing one
// tuned transport across all callers. Safe for concurrent use: every
// Fetch runs on its own collector clone.
type Fetcher struct {
	cfg       *config.Config
	base      *colly.Collector
	transport http.RoundTripper
	metrics   *Metrics
}

// NewFetcher builds a Fetcher configured from cfg.
func NewFetcher(cfg *config.Config, metrics *Metrics) (*Fetcher, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("base url must include a host")
	}

	collector := colly.NewCollector(
		colly.AllowedDomains(parsed.Host),
		colly.UserAgent(cfg.UserAgent),
	)
	collector.IgnoreRobotsTxt = true
	// Scheduled runs revisit the same pages every day.
	collector.AllowURLRevisit = true
	collector.SetRequestTimeout(cfg.Timeout)

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	collector.WithTransport(transport)

	return &Fetcher{
		cfg:       cfg,
		base:      collector,
		transport: transport,
		metrics:   metrics,
	}, nil
}

// WithTransport replaces the shared round tripper. Used by tests; must
// not be called once fetches are in flight.
func (f *Fetcher) WithTransport(rt http.RoundTripper) {
	f.transport = rt
	f.base.WithTransport(rt)
}

// Fetch performs one GET and returns status and body. Non-success
// statuses and transport failures come back as classified errors; the
// response (with whatever status was observed) is returned alongside.
func (f *Fetcher) Fetch(ctx context.Context, phase, rawURL string) (FetchResponse, error) {
	resp := FetchResponse{URL: rawURL}
	if ctx != nil && ctx.Err() != nil {
		return resp, fmt.Errorf("fetch %s: %w", rawURL, ctx.Err())
	}

	// The clone shares the base collector's tuned backend; callbacks
	// below are registered on the clone only, so concurrent fetches do
	// not observe each other.
	collector := f.base.Clone()

	var fetchErr error
	collector.OnResponse(func(r *colly.Response) {
		resp.URL = r.Request.URL.String()
		resp.StatusCode = r.StatusCode
		resp.Body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			resp.StatusCode = r.StatusCode
		}
		fetchErr = err
	})

	start := time.Now()
	if f.metrics != nil {
		f.metrics.IncRequest(phase)
	}

	visitErr := collector.Visit(rawURL)
	collector.Wait()

	if f.metrics != nil {
		f.metrics.ObserveDuration(time.Since(start))
	}

	if fetchErr == nil {
		fetchErr = visitErr
	}
	if fetchErr != nil {
		classified := classifyError(fetchErr, resp.StatusCode)
		if f.metrics != nil {
			f.metrics.IncError(errorTypeLabel(classified))
		}
		return resp, fmt.Errorf("fetch %s: %w", rawURL, classified)
	}
	return resp, nil
}
