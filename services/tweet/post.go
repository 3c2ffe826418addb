package tweet

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"tweetpipe/lib/configutil"
)

// Status is the outcome record of the post stage. Expected failures are
// reported here instead of as errors.
type Status struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Post reads the latest transform cache entry and drives the browser
// session through login and compose steps, one compose step per tweet.
// A malformed cache entry or missing credential aborts before any
// backend call; a failing navigation yields an error Status.
func (s Service) Post(ctx context.Context) (Status, error) {
	ctx, span := tracer.Start(ctx, "Post")
	defer span.End()

	cacheFile, err := s.cache.Latest(ctx, TransformCacheDir, "json")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "no transform cache entry")
		return Status{}, err
	}
	slog.Info("using transform cache file", "path", cacheFile)
	span.SetAttributes(attribute.String("cache_file", cacheFile))

	contents, err := os.ReadFile(cacheFile)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read transform cache")
		return Status{}, err
	}

	items, err := decodeTweetList(contents)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "bad transform cache format")
		return Status{}, err
	}
	slog.Info("found tweets to post", "count", len(items))

	email, err := configutil.RequireEnv("TWITTER_EMAIL")
	if err != nil {
		return Status{}, fmt.Errorf("%w: %s", ErrMissingConfig, err)
	}
	password, err := configutil.RequireEnv("TWITTER_PASSWORD")
	if err != nil {
		return Status{}, fmt.Errorf("%w: %s", ErrMissingConfig, err)
	}

	task := buildPostTask(email, password, items)
	result, err := s.session.Run(ctx, task)
	if err != nil {
		// navigation failures are an expected outcome of driving an
		// external browser, reported as status rather than raised
		span.RecordError(err)
		span.SetStatus(codes.Error, "browser task failed")
		slog.Error("error during posting", "err", err)
		return Status{Status: "error", Error: err.Error()}, nil
	}
	slog.Debug("browser task finished", "result", result)

	return Status{
		Status:  "success",
		Message: fmt.Sprintf("composed %d tweet(s)", len(items)),
	}, nil
}

// decodeTweetList enforces the transform cache contract: a JSON array of
// objects. Anything else is ErrBadFormat.
func decodeTweetList(contents []byte) ([]map[string]any, error) {
	var decoded any
	if err := json.Unmarshal(contents, &decoded); err != nil {
		return nil, fmt.Errorf("%w: transform cache is not valid json: %s", ErrBadFormat, err)
	}
	list, ok := decoded.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a list of tweet objects", ErrBadFormat)
	}

	items := make([]map[string]any, 0, len(list))
	for _, element := range list {
		m, ok := element.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: expected a list of tweet objects", ErrBadFormat)
		}
		items = append(items, m)
	}
	return items, nil
}

func buildPostTask(email, password string, items []map[string]any) string {
	var b strings.Builder
	b.WriteString("# Phase 1: Login\n")
	b.WriteString("1. Go to https://x.com/i/flow/login?redirect_after_login=%2Fhome\n")
	b.WriteString("2. Wait for the login page to load completely\n")
	fmt.Fprintf(&b, "3. Find the email input field and enter the email: %s\n", email)
	b.WriteString("4. Click the 'Next' button\n")
	b.WriteString("5. Wait for the password input field to appear\n")
	fmt.Fprintf(&b, "6. Find the password input field and enter the password: %s\n", password)
	b.WriteString("7. Click the 'Log in' button\n")
	b.WriteString("8. Wait for the home timeline to load\n")
	b.WriteString("\n# Phase 2: Navigate to compose tweet\n")
	b.WriteString("9. Go to https://x.com/compose/post\n")
	b.WriteString("10. Wait for the compose dialog to appear\n")
	b.WriteString("\n# Phase 3: Compose tweets from the list\n")
	b.WriteString(composeInstructions(items))
	b.WriteString("\nImportant:\n")
	b.WriteString("- If already logged in, just verify you're on the home timeline\n")
	b.WriteString("- If any security checks appear, wait for them to complete\n")
	b.WriteString("- Do NOT click the 'Post' button\n")
	return b.String()
}

func composeInstructions(items []map[string]any) string {
	if len(items) == 0 {
		return ""
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("11. Find the tweet input field and type: %s", content(items[0])))
	for i, item := range items[1:] {
		n := i + 2
		lines = append(lines,
			fmt.Sprintf("%d. Click the 'Add' button to add another tweet", 10+n*2-1),
			fmt.Sprintf("%d. Type in the next tweet: %s", 10+n*2, content(item)),
		)
	}
	return strings.Join(lines, "\n") + "\n"
}

func content(item map[string]any) string {
	c, _ := item["content"].(string)
	return c
}
