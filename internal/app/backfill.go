package app

import (
	"context"
	"errors"
	"fmt"

	"finantrack/internal/currency"
	"finantrack/internal/history"
	"finantrack/internal/storage"
)

// Backfill stores the daily history window in the quote archive.
func (a *App) Backfill(ctx context.Context, opts BackfillOptions) error {
	days := a.Config.ResolveDays(opts.Days)
	codes := a.Config.TrackedCurrencies()

	series, err := history.Collect(ctx, a.newHistory(), codes, days)
	if err != nil {
		return fmt.Errorf("collect history: %w", err)
	}
	samples := samplesFromSeries(a.Config.LocalCurrency(), series)

	if opts.DryRun {
		a.Logger.Warn().Int("samples", len(samples)).Msg("backfill dry-run: nothing written")
		writeSamples(a.Out, samples, a.Config.Location())
		return nil
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database.dsn not configured; cannot backfill")
	}
	if closeStore != nil {
		defer closeStore()
	}

	if err := store.UpsertQuoteSamples(ctx, samples); err != nil {
		return err
	}

	a.Logger.Info().Int("days", days).Int("samples", len(samples)).Msg("backfill complete")
	fmt.Fprintf(a.Out, "stored %d samples\n", len(samples))
	return nil
}

// samplesFromSeries converts daily points into archive rows bucketed by the
// provider timestamp.
func samplesFromSeries(local currency.Code, series []history.Series) []storage.QuoteSample {
	var samples []storage.QuoteSample
	for _, s := range series {
		for _, p := range s.Points {
			samples = append(samples, storage.QuoteSample{
				Bucket:        p.Day,
				Currency:      s.Code,
				LocalCurrency: local,
				Rate:          p.Rate,
				Source:        storage.SourceDaily,
			})
		}
	}
	return samples
}
