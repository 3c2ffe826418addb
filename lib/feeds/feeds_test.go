package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"tweetpipe/lib/telemetry"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
	<title>Dev News</title>
	<item>
		<title>New Runtime Released</title>
		<link>https://example.com/runtime</link>
		<description>A faster runtime is out.</description>
		<category>ai</category>
		<category> devtools </category>
		<category></category>
	</item>
	<item>
		<title>Older Story</title>
		<link>https://example.com/older</link>
		<description>Yesterday's news.</description>
	</item>
</channel>
</rss>`

func serveFeed(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFetchReturnsNewestItem(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:lib/feeds")
	defer cleanup()

	server := serveFeed(t, sampleFeed)
	source := NewSource("devnews", server.URL)
	require.Equal(t, "devnews", source.Name())

	article, err := source.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, "New Runtime Released", article.Title)
	require.Equal(t, "https://example.com/runtime", article.Link)
	require.Equal(t, "A faster runtime is out.", article.Description)
	require.Equal(t, []string{"ai", "devtools"}, article.Topics)
}

func TestFetchEmptyFeed(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:lib/feeds")
	defer cleanup()

	server := serveFeed(t, `<?xml version="1.0"?><rss version="2.0"><channel><title>Empty</title></channel></rss>`)
	source := NewSource("empty", server.URL)

	_, err := source.Fetch(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "no items")
}
