package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"tweetpipe/lib/browser"
	"tweetpipe/lib/cachestore"
	"tweetpipe/lib/feeds"
	"tweetpipe/lib/runlog"
	"tweetpipe/lib/serviceutil"
	"tweetpipe/services/tweet"
)

var tweetStage *string

func init() {
	tweetStage = tweetCmd.Flags().String("stage", "", "Run only a specific stage (ingest, transform, post).")
	rootCmd.AddCommand(tweetCmd)
}

var tweetCmd = &cobra.Command{
	Use:   "tweet [--stage <ingest|transform|post>]",
	Short: "Run the tweet pipeline or a single stage of it.",
	Run: func(cmd *cobra.Command, args []string) {
		if !tweet.ValidStage(*tweetStage) {
			serviceutil.Fatal("unknown stage, expected ingest, transform or post", nil)
		}

		config := loadConfig()
		store := cachestore.New(config.CacheDir)

		var ledger *runlog.Store
		if config.Runlog != "" {
			var err error
			ledger, err = runlog.Open(config.Runlog)
			if err != nil {
				slog.Warn("failed to open run ledger", "path", config.Runlog, "err", err)
			} else {
				defer ledger.Close()
			}
		}

		ctx := cmd.Context()
		session := newSession(config)
		defer session.Close(context.Background())

		service := tweet.NewService(store, tweet.Options{
			Fetcher:   newFetcher(config, session),
			Generator: newGenerator(config),
			Session:   session,
			Ledger:    ledger,
		})

		if err := service.Run(ctx, *tweetStage); err != nil {
			serviceutil.Fatal("pipeline failed", err)
		}

		if *tweetStage == "" || *tweetStage == tweet.StageTransform {
			printLatestThread(ctx, store)
		}
	},
}

func newFetcher(config Config, session browser.Session) tweet.Fetcher {
	switch config.Ingest.Backend {
	case "feed":
		url := config.Ingest.FeedUrl
		if url == "" {
			serviceutil.Fatal("feed backend selected but no feed_url configured", nil)
		}
		return tweet.NewFeedFetcher(feeds.NewSource("news", url))
	case "scrape":
		url := config.Ingest.ScrapeUrl
		if url == "" {
			serviceutil.Fatal("scrape backend selected but no scrape_url configured", nil)
		}
		return tweet.NewScrapeFetcher(newScraper(config), url)
	}
	return tweet.NewAgentFetcher(session)
}

// printLatestThread renders the freshly generated thread so a dry run is
// reviewable without opening cache files.
func printLatestThread(ctx context.Context, store cachestore.Store) {
	path, err := store.Latest(ctx, tweet.TransformCacheDir, "json")
	if err != nil {
		return
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var items []map[string]any
	if err := json.Unmarshal(contents, &items); err != nil {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"#", "Content", "Chars"})
	for i, item := range items {
		t.AppendRow(table.Row{i + 1, item["content"], item["char_count"]})
	}
	t.Render()
	fmt.Printf("thread cached at %s\n", path)
}
