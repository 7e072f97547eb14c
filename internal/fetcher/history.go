package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"finantrack/internal/currency"
)

const dailyPath = "/json/daily/"

// History fetches trailing daily series, one currency per call.
type History struct {
	opts   Options
	logger zerolog.Logger
	client *http.Client
}

// NewHistory constructs a daily history fetcher.
func NewHistory(opts Options, logger zerolog.Logger) *History {
	opts = opts.normalise()
	return &History{
		opts:   opts,
		logger: logger.With().Str("component", "history_fetcher").Logger(),
		client: &http.Client{Timeout: opts.Timeout},
	}
}

type dailyRecord struct {
	High      string      `json:"high"`
	Timestamp json.Number `json:"timestamp"`
}

// FetchDaily returns the provider's points for the last days, in provider order.
func (h *History) FetchDaily(ctx context.Context, code currency.Code, days int) ([]currency.DailyPoint, error) {
	if days <= 0 {
		return nil, errors.New("days must be greater than zero")
	}

	path := fmt.Sprintf("%s%s/%d", dailyPath, currency.Pair(code, h.opts.LocalCurrency), days)

	var records []dailyRecord
	if err := getJSON(ctx, h.client, h.opts, path, &records); err != nil {
		return nil, err
	}

	points := make([]currency.DailyPoint, 0, len(records))
	for i, rec := range records {
		secs, err := rec.Timestamp.Int64()
		if err != nil {
			return nil, fmt.Errorf("parse %s timestamp #%d: %w", code, i, err)
		}
		rate, err := decimal.NewFromString(rec.High)
		if err != nil {
			return nil, fmt.Errorf("parse %s high #%d: %w", code, i, err)
		}
		points = append(points, currency.DailyPoint{
			Day:  time.Unix(secs, 0).UTC(),
			Code: code,
			Rate: rate,
		})
	}

	h.logger.Debug().Str("currency", string(code)).Int("points", len(points)).Msg("daily history fetched")
	return points, nil
}

var _ HistoryFetcher = (*History)(nil)
