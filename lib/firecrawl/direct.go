package firecrawl

import (
	"bytes"
	"context"
	"fmt"
	"net/http/cookiejar"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	browser "github.com/EDDYCJY/fake-useragent"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"tweetpipe/lib/telemetry"
)

// DirectFetcher scrapes pages without the API, for development and for
// targets that don't need javascript rendering.
type DirectFetcher struct {
	http *resty.Client
}

func NewDirectFetcher() (*DirectFetcher, error) {
	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", browser.Chrome())
	client.SetTimeout(time.Second * 30)
	telemetry.InstrumentResty(client, "lib/firecrawl/direct")

	return &DirectFetcher{http: client}, nil
}

// Scrape fetches the URL and flattens the document into markdown-ish
// plain text: the title as a heading, then paragraph and heading text.
func (f *DirectFetcher) Scrape(ctx context.Context, url string) (string, error) {
	ctx, span := tracer.Start(ctx, "direct:Scrape")
	defer span.End()
	span.SetAttributes(attribute.String("url", url))

	res, err := f.http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return "", err
	}
	if res.IsError() {
		err := fmt.Errorf("fetch returned status %s", res.Status())
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return "", err
	}
	return flatten(doc), nil
}

func flatten(doc *goquery.Document) string {
	var b strings.Builder

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title != "" {
		b.WriteString("# ")
		b.WriteString(title)
		b.WriteString("\n\n")
	}

	doc.Find("h1, h2, h3, p, li").Each(func(_ int, sel *goquery.Selection) {
		text := strings.Join(strings.Fields(sel.Text()), " ")
		if text == "" {
			return
		}
		switch goquery.NodeName(sel) {
		case "h1":
			b.WriteString("# ")
		case "h2":
			b.WriteString("## ")
		case "h3":
			b.WriteString("### ")
		case "li":
			b.WriteString("- ")
		}
		b.WriteString(text)
		b.WriteString("\n")
	})

	return strings.TrimSpace(b.String())
}
