package producthunt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/codes"
)

// Details reads the latest extracted product list and scrapes every
// product page plus its /makers page, writing both as dated markdown
// files into the product cache. Scrapes are paced by the service
// limiter; a failed scrape aborts the stage so a partial day is never
// mistaken for a complete one.
func (s Service) Details(ctx context.Context, date time.Time) error {
	ctx, span := tracer.Start(ctx, "Details")
	defer span.End()

	cacheFile, err := s.cache.Latest(ctx, DataCacheDir, "json")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "no product data cache entry")
		return err
	}
	contents, err := os.ReadFile(cacheFile)
	if err != nil {
		return err
	}
	var products Products
	if err := json.Unmarshal(contents, &products); err != nil {
		return fmt.Errorf("product data cache is not valid json: %w", err)
	}
	if len(products.Products) == 0 {
		return ErrNoProducts
	}

	cacheDir := s.cache.Dir(ProductCacheDir)
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return err
	}

	prefix := date.Format(datePrefix)
	for _, product := range products.Products {
		if product.Url == "" {
			slog.Warn("skipping product without url", "name", product.Name)
			continue
		}

		details, err := s.scrapePaced(ctx, product.Url)
		if err != nil {
			return fmt.Errorf("failed to scrape product %s: %w", product.Url, err)
		}
		makers, err := s.scrapePaced(ctx, product.Url+"/makers")
		if err != nil {
			return fmt.Errorf("failed to scrape makers for %s: %w", product.Url, err)
		}

		base := fmt.Sprintf("%s_%s", prefix, product.Slug())
		detailsPath := filepath.Join(cacheDir, base+"_details.md")
		err = os.WriteFile(detailsPath, []byte("# Product Details\n"+details), 0644)
		if err != nil {
			return err
		}
		makersPath := filepath.Join(cacheDir, base+"_makers.md")
		err = os.WriteFile(makersPath, []byte("# Team/Makers\n"+makers), 0644)
		if err != nil {
			return err
		}

		slog.Info("saved product pages", "name", product.Name, "details", detailsPath, "makers", makersPath)
	}

	return nil
}

func (s Service) scrapePaced(ctx context.Context, url string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return s.scraper.Scrape(ctx, url)
}
