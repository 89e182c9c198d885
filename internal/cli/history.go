package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/galaksio/quote-engine/internal/app"
)

var (
	historyLimit int
	historyPurge time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent comparison outcomes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().History(cmd.Context(), app.HistoryOptions{
			Limit:          historyLimit,
			PurgeOlderThan: historyPurge,
		})
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum entries to show")
	historyCmd.Flags().DurationVar(&historyPurge, "purge-older-than", 0, "Delete entries older than this age first")
}
