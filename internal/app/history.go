package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"
)

// HistoryOptions control the history listing. A non-zero PurgeOlderThan
// deletes entries older than that age before listing.
type HistoryOptions struct {
	Limit          int
	PurgeOlderThan time.Duration
}

// History prints recent comparison outcomes from the audit log.
func (a *App) History(ctx context.Context, opts HistoryOptions) error {
	if opts.Limit <= 0 {
		opts.Limit = 20
	}

	store, closeStore, err := a.openHistory(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot show history")
	}
	defer closeStore()

	if opts.PurgeOlderThan > 0 {
		cutoff := time.Now().UTC().Add(-opts.PurgeOlderThan)
		purged, err := store.DeleteComparisonsBefore(ctx, cutoff)
		if err != nil {
			return err
		}
		a.Logger.Info().Int64("purged", purged).Time("cutoff", cutoff).Msg("purged history entries")
	}

	records, err := store.ListRecentComparisons(ctx, opts.Limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stdout, "no history found")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Time (UTC)\tCategory\tBest Provider\tPrice (USD)\tBilling\tQuotes")

	for _, rec := range records {
		price := "-"
		if rec.BestPriceUSD.Valid {
			price = "$" + rec.BestPriceUSD.Decimal.StringFixed(2)
		}
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%s\t%d\n",
			rec.CreatedAt.UTC().Format(time.RFC3339),
			rec.Category,
			rec.BestProvider,
			price,
			rec.BillingPeriod,
			rec.QuoteCount,
		)
	}

	return writer.Flush()
}
