package commands

import (
	"time"

	"github.com/spf13/cobra"
	"tweetpipe/lib/cachestore"
	"tweetpipe/lib/serviceutil"
	"tweetpipe/services/producthunt"
)

var producthuntDate *string

func init() {
	producthuntDate = producthuntCmd.Flags().String("date", "", "Leaderboard date as YYYY-MM-DD, defaults to today.")
	rootCmd.AddCommand(producthuntCmd)
}

var producthuntCmd = &cobra.Command{
	Use:   "producthunt [--date YYYY-MM-DD]",
	Short: "Scrape a Product Hunt leaderboard day and export tweet threads and maker leads.",
	Run: func(cmd *cobra.Command, args []string) {
		date := time.Now()
		if *producthuntDate != "" {
			parsed, err := time.Parse("2006-01-02", *producthuntDate)
			if err != nil {
				serviceutil.Fatal("invalid --date, expected YYYY-MM-DD", err)
			}
			date = parsed
		}

		config := loadConfig()
		interval := time.Duration(config.ScrapeIntervalSeconds) * time.Second
		if interval == 0 {
			interval = 2 * time.Second
		}

		service := producthunt.NewService(cachestore.New(config.CacheDir), producthunt.Options{
			Scraper:        newScraper(config),
			Generator:      newGenerator(config),
			ScrapeInterval: interval,
		})
		if err := service.Run(cmd.Context(), date); err != nil {
			serviceutil.Fatal("producthunt pipeline failed", err)
		}
	},
}
