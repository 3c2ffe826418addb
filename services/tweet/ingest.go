package tweet

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Raw is what an acquisition backend hands back: the verbatim response
// text plus, when the backend already produced one, a structured result.
type Raw struct {
	Text string
	Data map[string]any
}

// Fetcher acquires content from the pipeline's fixed target. The target
// descriptor (URL, feed address or agent instruction script) is baked in
// at construction.
type Fetcher interface {
	Fetch(ctx context.Context) (Raw, error)
}

// Result is the normalized output of the ingest stage.
type Result struct {
	FullContent string   `json:"full_content"`
	Topics      []string `json:"topics"`
	Links       []string `json:"links"`
}

func emptyResult() Result {
	return Result{Topics: []string{}, Links: []string{}}
}

func (r Result) ToMap() map[string]any {
	return map[string]any{
		"full_content": r.FullContent,
		"topics":       r.Topics,
		"links":        r.Links,
	}
}

// The backend's structured result arrives in one of a closed set of
// shapes. Matchers run in priority order; the first hit wins. Keeping
// the fallback order in a table makes it reviewable instead of being
// implicit in nested conditionals.
type shape struct {
	name  string
	match func(map[string]any) (Result, bool)
}

var shapes = []shape{
	{"article", matchArticle},
	{"summary", matchSummary},
	{"upvoted", matchUpvoted},
}

// Normalize maps a structured backend result onto Result via the shape
// table. The returned name identifies which shape matched.
func Normalize(data map[string]any) (Result, string, bool) {
	for _, s := range shapes {
		if result, ok := s.match(data); ok {
			return result, s.name, true
		}
	}
	return emptyResult(), "", false
}

// {raw_content|full_content, topics, link|links}
func matchArticle(data map[string]any) (Result, bool) {
	content, ok := firstString(data, "raw_content", "full_content")
	if !ok {
		return Result{}, false
	}
	result := emptyResult()
	result.FullContent = content
	result.Topics = stringSlice(data["topics"])
	if link, ok := firstString(data, "link"); ok && link != "" {
		result.Links = []string{link}
	} else {
		result.Links = stringSlice(data["links"])
	}
	return result, true
}

// {title, description, topics|main_topics}
func matchSummary(data map[string]any) (Result, bool) {
	title, hasTitle := firstString(data, "title")
	description, hasDescription := firstString(data, "description")
	if !hasTitle && !hasDescription {
		return Result{}, false
	}
	result := emptyResult()
	result.FullContent = strings.TrimSpace(title + "\n\n" + description)
	result.Topics = stringSlice(data["topics"])
	if len(result.Topics) == 0 {
		result.Topics = stringSlice(data["main_topics"])
	}
	if link, ok := firstString(data, "link", "url"); ok && link != "" {
		result.Links = []string{link}
	}
	return result, true
}

// {most_upvoted_posts: [...]}
func matchUpvoted(data map[string]any) (Result, bool) {
	posts, ok := data["most_upvoted_posts"].([]any)
	if !ok || len(posts) == 0 {
		return Result{}, false
	}
	result := emptyResult()
	var lines []string
	for _, raw := range posts {
		post, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if line, ok := firstString(post, "title", "content"); ok && line != "" {
			lines = append(lines, line)
		}
		if link, ok := firstString(post, "link", "url"); ok && link != "" {
			result.Links = append(result.Links, link)
		}
	}
	result.FullContent = strings.Join(lines, "\n")
	return result, true
}

func firstString(data map[string]any, keys ...string) (string, bool) {
	for _, key := range keys {
		if v, ok := data[key].(string); ok {
			return v, true
		}
	}
	return "", false
}

func stringSlice(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Ingest acquires content from the backend, persists the verbatim
// response to the raw cache, normalizes it and writes the result to the
// ingest cache. Backend failures never propagate: the stage degrades to
// an empty result so downstream stages fail fast on the empty payload
// instead of on the backend's error type.
func (s Service) Ingest(ctx context.Context) (Result, error) {
	ctx, span := tracer.Start(ctx, "Ingest")
	defer span.End()

	slog.Info("fetching content", "target", "ingest backend")

	raw, err := s.fetcher.Fetch(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "backend fetch failed")
		slog.Error("error fetching content, continuing with empty result", "err", err)
		raw = Raw{}
	}

	// preserve forensic evidence before any normalization happens
	if raw.Text != "" {
		ext := "md"
		if json.Valid([]byte(raw.Text)) {
			ext = "json"
		}
		_, err := s.cache.Write(ctx, RawCacheDir, raw.Text, ext)
		if err != nil {
			slog.Warn("failed to save raw cache", "err", err)
		}
	}

	data := raw.Data
	if data == nil && raw.Text != "" {
		if err := json.Unmarshal([]byte(raw.Text), &data); err != nil {
			slog.Warn("backend response is not structured", "err", err)
		}
	}

	result := emptyResult()
	if data != nil {
		matched, shapeName, ok := Normalize(data)
		if ok {
			result = matched
			span.SetAttributes(attribute.String("shape", shapeName))
		} else {
			slog.Warn("unrecognized ingest response shape, using empty result")
		}
	}

	path, err := s.cache.Write(ctx, IngestCacheDir, result.ToMap(), "json")
	if err != nil {
		slog.Warn("failed to save ingest cache", "err", err)
	} else {
		slog.Info("cached ingest result", "path", path)
	}

	return result, nil
}
