package tweet

import (
	"context"
	"encoding/json"

	"tweetpipe/lib/browser"
	"tweetpipe/lib/feeds"
	"tweetpipe/lib/firecrawl"
)

// newsAgentTask instructs the browser agent to pull the newest developer
// AI article and report it as structured JSON.
const newsAgentTask = `
1. Go to https://www.developer-tech.com/categories/developer-ai/
2. Click on the first article
3. Read the contents of the article
4. Extract the contents of the article and return only a JSON object in
   the following format. Do not return anything extra. Do not return
   placeholder data, only return real data.

   {"title": string, "full_content": string, "url": string, "author": string or null}
`

// AgentFetcher drives a browser session against the news target.
type AgentFetcher struct {
	session browser.Session
}

func NewAgentFetcher(session browser.Session) AgentFetcher {
	return AgentFetcher{session: session}
}

func (f AgentFetcher) Fetch(ctx context.Context) (Raw, error) {
	result, err := f.session.Run(ctx, newsAgentTask)
	if err != nil {
		return Raw{}, err
	}

	raw := Raw{Text: result}
	var data map[string]any
	if err := json.Unmarshal([]byte(result), &data); err == nil {
		raw.Data = data
	}
	return raw, nil
}

// FeedFetcher acquires the newest article of an RSS feed and presents it
// in the summary shape.
type FeedFetcher struct {
	source *feeds.Source
}

func NewFeedFetcher(source *feeds.Source) FeedFetcher {
	return FeedFetcher{source: source}
}

func (f FeedFetcher) Fetch(ctx context.Context) (Raw, error) {
	article, err := f.source.Fetch(ctx)
	if err != nil {
		return Raw{}, err
	}

	topics := make([]any, 0, len(article.Topics))
	for _, t := range article.Topics {
		topics = append(topics, t)
	}
	data := map[string]any{
		"title":       article.Title,
		"description": article.Description,
		"topics":      topics,
		"link":        article.Link,
	}
	text, err := json.Marshal(data)
	if err != nil {
		return Raw{}, err
	}
	return Raw{Text: string(text), Data: data}, nil
}

// scraper is the slice of the firecrawl clients the ingest stage needs.
type scraper interface {
	Scrape(ctx context.Context, url string) (string, error)
}

var _ scraper = (*firecrawl.Client)(nil)
var _ scraper = (*firecrawl.DirectFetcher)(nil)

// ScrapeFetcher pulls a page as markdown and presents it in the article
// shape with the markdown as the full content.
type ScrapeFetcher struct {
	client scraper
	url    string
}

func NewScrapeFetcher(client scraper, url string) ScrapeFetcher {
	return ScrapeFetcher{client: client, url: url}
}

func (f ScrapeFetcher) Fetch(ctx context.Context) (Raw, error) {
	markdown, err := f.client.Scrape(ctx, f.url)
	if err != nil {
		return Raw{}, err
	}
	return Raw{
		Text: markdown,
		Data: map[string]any{
			"raw_content": markdown,
			"topics":      []any{},
			"link":        f.url,
		},
	}, nil
}
