package history

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"finantrack/internal/currency"
	"finantrack/internal/fetcher"
)

// Collect fetches the daily series of every code concurrently and returns
// them in codes order once all requests have completed.
func Collect(ctx context.Context, source fetcher.HistoryFetcher, codes []currency.Code, days int) ([]Series, error) {
	series := make([]Series, len(codes))

	g, gctx := errgroup.WithContext(ctx)
	for i, code := range codes {
		i, code := i, code
		g.Go(func() error {
			points, err := source.FetchDaily(gctx, code, days)
			if err != nil {
				return fmt.Errorf("fetch %s history: %w", code, err)
			}
			series[i] = Series{Code: code, Points: points}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return series, nil
}
