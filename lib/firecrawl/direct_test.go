package firecrawl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"tweetpipe/lib/telemetry"
)

const samplePage = `<html>
<head><title>Release  Notes</title></head>
<body>
	<h1>Version 2.0</h1>
	<p>The big rewrite is
	finally out.</p>
	<h2>Changes</h2>
	<ul>
		<li>Faster startup</li>
		<li>New config format</li>
	</ul>
	<p></p>
</body>
</html>`

func TestFlatten(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(samplePage))
	require.NoError(t, err)

	require.Equal(t, `# Release Notes

# Version 2.0
The big rewrite is finally out.
## Changes
- Faster startup
- New config format`, flatten(doc))
}

func TestDirectFetcherScrape(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:lib/firecrawl")
	defer cleanup()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(samplePage))
	}))
	defer server.Close()

	fetcher, err := NewDirectFetcher()
	require.NoError(t, err)

	text, err := fetcher.Scrape(context.Background(), server.URL)
	require.NoError(t, err)
	require.Contains(t, text, "# Release Notes")
	require.Contains(t, text, "- Faster startup")
}

func TestDirectFetcherScrapeErrorStatus(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:lib/firecrawl")
	defer cleanup()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	fetcher, err := NewDirectFetcher()
	require.NoError(t, err)

	_, err = fetcher.Scrape(context.Background(), server.URL)
	require.Error(t, err)
}
