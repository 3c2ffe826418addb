// Package firecrawl wraps the Firecrawl scraping API. When no API endpoint
// is configured the caller can fall back to DirectFetcher, which pulls the
// page itself and reduces the HTML to plain text.
package firecrawl

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"tweetpipe/lib/telemetry"
)

var tracer = otel.Tracer("lib/firecrawl")

const DefaultApiUrl = "https://api.firecrawl.dev"

type ClientOptions struct {
	// defaults to the hosted api.firecrawl.dev endpoint
	ApiUrl string
	ApiKey string
}

type Client struct {
	http *resty.Client
}

func NewClient(opts ClientOptions) *Client {
	apiUrl := opts.ApiUrl
	if apiUrl == "" {
		apiUrl = DefaultApiUrl
	}

	client := resty.New()
	client.SetBaseURL(apiUrl)
	client.SetTimeout(time.Second * 90)
	if opts.ApiKey != "" {
		client.SetAuthToken(opts.ApiKey)
	}
	telemetry.InstrumentResty(client, "lib/firecrawl/http")

	return &Client{http: client}
}

type scrapeRequest struct {
	Url     string   `json:"url"`
	Formats []string `json:"formats"`
}

type scrapeResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		Markdown string `json:"markdown"`
		Html     string `json:"html"`
	} `json:"data"`
}

// Scrape fetches a URL through the scraping API and returns its markdown
// rendition.
func (c *Client) Scrape(ctx context.Context, url string) (string, error) {
	ctx, span := tracer.Start(ctx, "Scrape")
	defer span.End()
	span.SetAttributes(attribute.String("url", url))

	var out scrapeResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(scrapeRequest{
			Url:     url,
			Formats: []string{"markdown", "html"},
		}).
		SetResult(&out).
		Post("/v1/scrape")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "scrape request failed")
		return "", err
	}
	if res.IsError() {
		err := fmt.Errorf("scrape api returned status %s", res.Status())
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	if !out.Success {
		err := fmt.Errorf("scrape api reported failure: %s", out.Error)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return out.Data.Markdown, nil
}
