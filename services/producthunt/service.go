// Package producthunt implements the product-listing pipeline: scrape the
// Product Hunt daily leaderboard, extract the ranked products with a
// language model, pull per-product details and maker pages, and export
// tweet threads and maker leads as spreadsheets. All stages are keyed by
// a calendar date so a day can be reprocessed at any time.
package producthunt

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"
	"tweetpipe/lib/cachestore"
	"tweetpipe/lib/llm"
)

var tracer = otel.Tracer("services/producthunt")

// Cache directory names, one per stage.
const (
	ListCacheDir    = "producthunt_cache"
	DataCacheDir    = "producthunt_data_cache"
	ProductCacheDir = "producthunt_product_cache"
)

// Scraper fetches a URL and returns its markdown rendition.
type Scraper interface {
	Scrape(ctx context.Context, url string) (string, error)
}

type Service struct {
	cache     cachestore.Store
	scraper   Scraper
	generator llm.Generator
	limiter   *rate.Limiter
}

type Options struct {
	Scraper   Scraper
	Generator llm.Generator
	// ScrapeInterval paces the per-product page fetches. Zero disables
	// pacing.
	ScrapeInterval time.Duration
}

func NewService(cache cachestore.Store, opts Options) Service {
	limit := rate.Inf
	if opts.ScrapeInterval > 0 {
		limit = rate.Every(opts.ScrapeInterval)
	}
	return Service{
		cache:     cache,
		scraper:   opts.Scraper,
		generator: opts.Generator,
		limiter:   rate.NewLimiter(limit, 1),
	}
}

// Run executes the full pipeline for one leaderboard day.
func (s Service) Run(ctx context.Context, date time.Time) error {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	slog.Info("starting producthunt run", "date", date.Format(datePrefix))

	products, err := s.List(ctx, date)
	if err != nil {
		return err
	}
	slog.Info("extracted leaderboard products", "count", len(products.Products))

	if err := s.Details(ctx, date); err != nil {
		return err
	}
	if err := s.Tweets(ctx, date); err != nil {
		return err
	}
	if err := s.Leads(ctx, date); err != nil {
		return err
	}

	slog.Info("producthunt run finished", "date", date.Format(datePrefix))
	return nil
}
