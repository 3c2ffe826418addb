package producthunt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel/codes"
	"tweetpipe/lib/llm"
)

func buildThreadPrompt(details string) string {
	return fmt.Sprintf(`You are an expert at creating engaging social media content for technical audiences. Write a compelling Twitter thread about the product described below. The thread should be informative, engaging and encourage interaction, with an effective hook in the first tweet.

For each tweet return the tweet number and the content of the tweet.
Do not make up any data.
Return ONLY a JSON object of this exact shape:

{
    "tweets": [
        {"tweet_number": 1, "content": "..."}
    ]
}

Do not wrap the response in markdown code blocks.

Product Information:
%s`, details)
}

func parseThread(response string) (generatedThread, error) {
	var thread generatedThread
	err := json.Unmarshal([]byte(llm.StripFences(response)), &thread)
	if err != nil {
		return generatedThread{}, fmt.Errorf("%w: %s", ErrParse, err)
	}
	return thread, nil
}

// Tweets generates a tweet thread for every product scraped on the given
// day and collects them into one workbook, a sheet per product. Products
// the generator returns nothing for are skipped; parse failures abort.
func (s Service) Tweets(ctx context.Context, date time.Time) error {
	ctx, span := tracer.Start(ctx, "Tweets")
	defer span.End()

	cacheDir := s.cache.Dir(ProductCacheDir)
	prefix := date.Format(datePrefix)
	files, err := datedFiles(cacheDir, prefix, "_details.md")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list product cache")
		return err
	}
	if len(files) == 0 {
		slog.Warn("no product detail files for date", "date", prefix)
		return nil
	}

	workbook := excelize.NewFile()
	defer workbook.Close()
	written := 0

	for _, file := range files {
		product := strings.TrimSuffix(strings.TrimPrefix(file, prefix+"_"), "_details.md")
		slog.Info("generating tweet thread", "product", product)

		contents, err := os.ReadFile(filepath.Join(cacheDir, file))
		if err != nil {
			return err
		}
		response, err := s.generator.Generate(ctx, buildThreadPrompt(string(contents)))
		if err != nil {
			return fmt.Errorf("thread generation failed for %s: %w", product, err)
		}
		thread, err := parseThread(response)
		if err != nil {
			return fmt.Errorf("bad thread response for %s: %w", product, err)
		}
		if len(thread.Tweets) == 0 {
			slog.Warn("no tweets generated", "product", product)
			continue
		}

		sheet := sanitizeSheetName(product)
		if _, err := workbook.NewSheet(sheet); err != nil {
			return err
		}

		sizer := newColumnSizer(100)
		header := []any{"Tweet Number", "Content"}
		sizer.observe(header)
		if err := workbook.SetSheetRow(sheet, "A1", &header); err != nil {
			return err
		}
		for i, tweet := range thread.Tweets {
			row := []any{i + 1, tweet.Content}
			sizer.observe(row)
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return err
			}
			if err := workbook.SetSheetRow(sheet, cell, &row); err != nil {
				return err
			}
		}
		if err := sizer.apply(workbook, sheet); err != nil {
			return err
		}
		written++
	}

	if written == 0 {
		slog.Warn("no tweet threads were generated", "date", prefix)
		return nil
	}

	if err := workbook.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	output := filepath.Join(cacheDir, prefix+"_tweet_threads.xlsx")
	if err := workbook.SaveAs(output); err != nil {
		return err
	}
	slog.Info("saved tweet threads", "path", output, "products", written)
	return nil
}

// datedFiles lists the cache filenames carrying both the date prefix and
// the stage suffix, in directory order.
func datedFiles(dir, prefix, suffix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
			continue
		}
		out = append(out, name)
	}
	return out, nil
}
