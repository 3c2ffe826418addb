package commands

import (
	"log/slog"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(retweetCmd, commentCmd)
}

// TODO: implement retweet and comment once the browser agent exposes
// timeline navigation.
var retweetCmd = &cobra.Command{
	Use:   "retweet",
	Short: "Retweet from the timeline (not implemented).",
	Run: func(cmd *cobra.Command, args []string) {
		slog.Warn("retweet is not implemented yet")
	},
}

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Comment on a tweet (not implemented).",
	Run: func(cmd *cobra.Command, args []string) {
		slog.Warn("comment is not implemented yet")
	},
}
