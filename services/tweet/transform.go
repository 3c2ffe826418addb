package tweet

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"tweetpipe/lib/llm"
)

func buildPrompt(content string, topics []string) string {
	topicsStr := "general tech news"
	hashtagHint := "#tech #news"
	if len(topics) > 0 {
		topicsStr = strings.Join(topics, ", ")
		hashtagHint = topicsStr
	}

	return fmt.Sprintf(`You are an expert social media manager creating engaging Twitter threads about %s.

Here's the content to create tweets from:
---
%s
---

Create a Twitter thread (1-3 tweets) that is engaging and informative. The first tweet should indicate that this is a thread and be attractive enough to make the reader want to read the rest of the thread. Follow these rules:
1. Each tweet must be under 280 characters
2. Include relevant hashtags from: %s
3. Make it engaging and conversational
4. If multiple tweets, make them flow naturally in a thread
5. Don't include tweet numbers (1/2, 2/2, etc.)
6. Return ONLY a JSON array of tweet objects, like this:

[
    {
        "content": "Your first tweet here...",
        "char_count": 123
    },
    {
        "content": "Your second tweet here...",
        "char_count": 123
    }
]

IMPORTANT:
- Only return the raw JSON array, without any markdown code blocks or additional text
- Do not wrap the response in `+"```json"+` or any other markdown
- The response should start with [ and end with ]
- No additional text before or after the JSON array`, topicsStr, content, hashtagHint)
}

// augmentHashtags appends every topic not already present as a hashtag.
// The scan over existing hashtags is case-insensitive, so augmenting an
// already augmented tweet is a no-op.
func augmentHashtags(content string, topics []string) string {
	existing := map[string]bool{}
	for _, token := range strings.Fields(content) {
		if strings.HasPrefix(token, "#") {
			existing[strings.ToLower(token)] = true
		}
	}

	for _, topic := range topics {
		topic = strings.TrimLeft(topic, "#")
		if topic == "" {
			continue
		}
		if !existing["#"+strings.ToLower(topic)] {
			content += " #" + topic
		}
	}
	return content
}

// parseThread decodes a generation response into a Thread.
//
// The response is defensively parsed: fence markers are stripped, a
// double-encoded JSON string is decoded twice, a single object is
// treated as a one-element array, and elements without a content key are
// skipped. A response that still isn't valid JSON yields ErrParse, the
// one failure this stage never swallows.
func parseThread(response string, topics []string) (Thread, error) {
	cleaned := llm.StripFences(response)

	var decoded any
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return Thread{}, fmt.Errorf("%w: %s", ErrParse, err)
	}
	if inner, ok := decoded.(string); ok {
		if err := json.Unmarshal([]byte(inner), &decoded); err != nil {
			return Thread{}, fmt.Errorf("%w: %s", ErrParse, err)
		}
	}

	elements, ok := decoded.([]any)
	if !ok {
		elements = []any{decoded}
	}

	var items []Tweet
	for _, element := range elements {
		data, ok := element.(map[string]any)
		if !ok {
			continue
		}
		content, ok := data["content"].(string)
		if !ok {
			continue
		}

		content = strings.TrimSpace(augmentHashtags(content, topics))

		// a numeric char_count from the generator is trusted as-is
		charCount, ok := intValue(data["char_count"])
		if !ok {
			charCount = utf8.RuneCountInString(content)
		}

		items = append(items, Tweet{Content: content, CharCount: charCount})
	}

	return NewThread(items), nil
}

// Transform reads the latest ingest cache entry, generates a thread from
// it and persists the result to the transform cache.
func (s Service) Transform(ctx context.Context) (Thread, error) {
	ctx, span := tracer.Start(ctx, "Transform")
	defer span.End()

	cacheFile, err := s.cache.Latest(ctx, IngestCacheDir, "json")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "no ingest cache entry")
		return Thread{}, err
	}
	slog.Info("using ingest cache file", "path", cacheFile)
	span.SetAttributes(attribute.String("cache_file", cacheFile))

	contents, err := os.ReadFile(cacheFile)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read ingest cache")
		return Thread{}, err
	}

	var data map[string]any
	if err := json.Unmarshal(contents, &data); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "ingest cache is not a json object")
		return Thread{}, fmt.Errorf("%w: ingest cache is not a json object: %s", ErrBadFormat, err)
	}

	content, _ := data["full_content"].(string)
	content = strings.TrimSpace(content)
	topics := stringSlice(data["topics"])

	thread, err := s.generate(ctx, content, topics)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Thread{}, err
	}
	slog.Info("transformed content", "tweets", len(thread.Items), "is_thread", thread.IsThread)

	// the in-memory thread survives a failed cache write
	itemMaps := make([]map[string]any, 0, len(thread.Items))
	for _, item := range thread.Items {
		itemMaps = append(itemMaps, item.ToMap())
	}
	path, err := s.cache.Write(ctx, TransformCacheDir, itemMaps, "json")
	if err != nil {
		slog.Warn("failed to save transform cache", "err", err)
	} else {
		slog.Info("cached transform result", "path", path)
	}

	return thread, nil
}

// generate runs the prompt through the generation backend and parses the
// response. Split out so tests can exercise it without cache files.
func (s Service) generate(ctx context.Context, content string, topics []string) (Thread, error) {
	if content == "" {
		return Thread{}, ErrNoContent
	}

	prompt := buildPrompt(content, topics)
	response, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return Thread{}, fmt.Errorf("%w: %s", ErrBackend, err)
	}
	slog.Debug("generated tweets", "model", s.generator.ModelName(), "response", response)

	return parseThread(response, topics)
}
