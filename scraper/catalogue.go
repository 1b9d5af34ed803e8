package scraper

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/aluiziolira/go-crawl-books/config"
	"github.com/aluiziolira/go-crawl-books/parser"
)

// Walker discovers detail-page URLs by stepping catalogue pages in
// strictly increasing page order.
type Walker struct {
	cfg     *config.Config
	fetcher *Fetcher
	metrics *Metrics
}

// NewWalker builds a Walker over the shared fetcher.
func NewWalker(cfg *config.Config, fetcher *Fetcher, metrics *Metrics) *Walker {
	return &Walker{cfg: cfg, fetcher: fetcher, metrics: metrics}
}

// Walk fetches catalogue pages starting at 1 and returns every detail
// URL discovered before the first unreachable or empty page, resolved
// absolute against the page that listed it. Termination is not an
// error; URLs collected before it are kept. The second return value is
// the number of pages walked.
func (w *Walker) Walk(ctx context.Context) ([]string, int) {
	var collected []string
	pages := 0

	for page := 1; ; page++ {
		if w.cfg.MaxPages > 0 && page > w.cfg.MaxPages {
			slog.Debug("page cap reached", slog.Int("page", page-1))
			break
		}
		if ctx != nil && ctx.Err() != nil {
			slog.Info("catalogue walk canceled", slog.Int("page", page))
			break
		}

		pageURL := fmt.Sprintf(w.cfg.CatalogueTemplate, page)
		resp, err := w.fetcher.Fetch(ctx, PhaseCatalogue, pageURL)
		if err != nil {
			slog.Info("catalogue page unreachable, stopping discovery",
				slog.Int("page", page),
				slog.Any("error", err),
			)
			break
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
		if err != nil {
			slog.Error("catalogue page unparseable, stopping discovery",
				slog.Int("page", page),
				slog.Any("error", err),
			)
			break
		}

		links := parser.CatalogueLinks(doc)
		if len(links) == 0 {
			slog.Info("catalogue exhausted", slog.Int("page", page))
			break
		}

		base, err := url.Parse(pageURL)
		if err != nil {
			slog.Error("invalid catalogue page url", slog.String("url", pageURL), slog.Any("error", err))
			break
		}
		for _, href := range links {
			ref, err := url.Parse(href)
			if err != nil {
				slog.Debug("skipping malformed link", slog.String("href", href))
				continue
			}
			collected = append(collected, base.ResolveReference(ref).String())
		}

		pages++
		w.metrics.IncPages()
		slog.Info("catalogue page walked",
			slog.Int("page", page),
			slog.Int("links", len(links)),
			slog.Int("total", len(collected)),
		)
	}

	return collected, pages
}
