// Package feeds acquires article content from RSS/Atom feeds, the
// lightweight alternative to driving a browser agent at the same target.
package feeds

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("lib/feeds")

// Article is the first entry of a feed, reduced to the fields the ingest
// stage cares about.
type Article struct {
	Title       string
	Description string
	Link        string
	Topics      []string
}

type Source struct {
	name   string
	url    string
	parser *gofeed.Parser
}

func NewSource(name, url string) *Source {
	return &Source{
		name:   name,
		url:    url,
		parser: gofeed.NewParser(),
	}
}

func (s *Source) Name() string {
	return s.name
}

// Fetch parses the feed and returns its newest item.
func (s *Source) Fetch(ctx context.Context) (Article, error) {
	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("url", s.url))

	feed, err := s.parser.ParseURLWithContext(s.url, ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse feed")
		return Article{}, fmt.Errorf("failed to fetch %s: %w", s.url, err)
	}
	if len(feed.Items) == 0 {
		err := fmt.Errorf("feed %s has no items", s.url)
		span.SetStatus(codes.Error, err.Error())
		return Article{}, err
	}

	entry := feed.Items[0]
	description := entry.Description
	if description == "" {
		description = entry.Content
	}

	topics := make([]string, 0, len(entry.Categories))
	for _, category := range entry.Categories {
		category = strings.TrimSpace(category)
		if category != "" {
			topics = append(topics, category)
		}
	}

	return Article{
		Title:       entry.Title,
		Description: description,
		Link:        entry.Link,
		Topics:      topics,
	}, nil
}
