package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"finantrack/internal/currency"
	"finantrack/internal/storage"
)

// Show prints the most recent archived quote samples, or every sample in the
// trailing window when Since is set.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot show samples")
	}
	if closeStore != nil {
		defer closeStore()
	}

	var samples []storage.QuoteSample
	if opts.Since > 0 {
		to := time.Now().UTC()
		samples, err = store.ListSamplesBetween(ctx, to.Add(-opts.Since), to)
	} else {
		samples, err = store.ListRecentSamples(ctx, opts.Limit)
	}
	if err != nil {
		return err
	}
	total, err := store.CountSamples(ctx)
	if err != nil {
		return err
	}

	writeSamples(a.Out, samples, a.Config.Location())
	fmt.Fprintf(a.Out, "%d of %d samples\n", len(samples), total)
	return nil
}

func writeSamples(out io.Writer, samples []storage.QuoteSample, loc *time.Location) {
	if len(samples) == 0 {
		fmt.Fprintln(out, "no samples found")
		return
	}

	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Time\tCurrency\tRate\tSource")
	for _, sample := range samples {
		fmt.Fprintf(
			writer,
			"%s\t%s %s\t%s\t%s\n",
			formatBucket(sample.Bucket, loc),
			currency.Flag(sample.Currency),
			sample.Currency,
			currency.Format(sample.Rate, sample.LocalCurrency),
			sample.Source,
		)
	}
	writer.Flush()
}
