package producthunt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"tweetpipe/lib/llm"
)

func leaderboardUrl(date time.Time) string {
	return fmt.Sprintf(
		"https://www.producthunt.com/leaderboard/daily/%d/%d/%d",
		date.Year(), int(date.Month()), date.Day(),
	)
}

func buildProductsPrompt(markdown string) string {
	return fmt.Sprintf(`You are a data extractor. Read the markdown capture of a Product Hunt daily leaderboard and extract every listed product.

For each product extract:
- name
- description
- url (the product's page on producthunt.com)

Return ONLY a JSON object of this exact shape, with null for anything missing:

{
    "products": [
        {"name": "...", "description": "...", "url": "..."}
    ]
}

Do not make up any data. Do not wrap the response in markdown code blocks.

The markdown content is:
%s`, markdown)
}

func parseProducts(response string) (Products, error) {
	var products Products
	err := json.Unmarshal([]byte(llm.StripFences(response)), &products)
	if err != nil {
		return Products{}, fmt.Errorf("%w: %s", ErrParse, err)
	}
	return products, nil
}

// List scrapes the leaderboard for the given day, caches the raw
// markdown, extracts the product list with the generator and caches that
// too. Both cache entries are stamped with the leaderboard date, not the
// wall clock.
func (s Service) List(ctx context.Context, date time.Time) (Products, error) {
	ctx, span := tracer.Start(ctx, "List")
	defer span.End()

	url := leaderboardUrl(date)
	span.SetAttributes(attribute.String("url", url))
	slog.Info("scraping leaderboard", "url", url)

	markdown, err := s.scraper.Scrape(ctx, url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "leaderboard scrape failed")
		return Products{}, err
	}

	path, err := s.cache.WriteAt(ctx, ListCacheDir, markdown, date, "md")
	if err != nil {
		return Products{}, err
	}
	slog.Info("cached leaderboard markdown", "path", path)

	return s.extract(ctx, date)
}

// extract runs the latest leaderboard capture through the generator.
// Split out so a cached capture can be re-extracted without scraping.
func (s Service) extract(ctx context.Context, date time.Time) (Products, error) {
	cacheFile, err := s.cache.Latest(ctx, ListCacheDir, "md")
	if err != nil {
		return Products{}, err
	}
	contents, err := os.ReadFile(cacheFile)
	if err != nil {
		return Products{}, err
	}

	response, err := s.generator.Generate(ctx, buildProductsPrompt(string(contents)))
	if err != nil {
		return Products{}, err
	}
	products, err := parseProducts(response)
	if err != nil {
		return Products{}, err
	}

	path, err := s.cache.WriteAt(ctx, DataCacheDir, products, date, "json")
	if err != nil {
		return Products{}, err
	}
	slog.Info("cached extracted products", "path", path, "count", len(products.Products))

	return products, nil
}
