package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"finantrack/internal/currency"
)

const lastQuotePath = "/json/last/"

// Quotes fetches the latest high quote of each pair in a single call.
type Quotes struct {
	opts   Options
	logger zerolog.Logger
	client *http.Client
	now    func() time.Time
}

// NewQuotes constructs a latest-quote fetcher.
func NewQuotes(opts Options, logger zerolog.Logger) *Quotes {
	opts = opts.normalise()
	return &Quotes{
		opts:   opts,
		logger: logger.With().Str("component", "quote_fetcher").Logger(),
		client: &http.Client{Timeout: opts.Timeout},
		now:    time.Now,
	}
}

type lastQuote struct {
	High string `json:"high"`
}

// FetchQuotes returns one quote per requested currency.
func (q *Quotes) FetchQuotes(ctx context.Context, codes []currency.Code) (currency.QuoteSet, error) {
	if len(codes) == 0 {
		return nil, errors.New("no currencies requested")
	}

	pairs := make([]string, len(codes))
	for i, code := range codes {
		pairs[i] = currency.Pair(code, q.opts.LocalCurrency)
	}

	var res map[string]lastQuote
	if err := getJSON(ctx, q.client, q.opts, lastQuotePath+strings.Join(pairs, ","), &res); err != nil {
		return nil, err
	}

	captured := q.now()
	set := make(currency.QuoteSet, len(codes))
	for _, code := range codes {
		key := currency.PairKey(code, q.opts.LocalCurrency)
		entry, ok := res[key]
		if !ok {
			return nil, fmt.Errorf("quote for %s missing from response", key)
		}
		rate, err := decimal.NewFromString(entry.High)
		if err != nil {
			return nil, fmt.Errorf("parse %s high: %w", key, err)
		}
		set[code] = currency.Quote{Code: code, Rate: rate, CapturedAt: captured}
	}

	q.logger.Debug().Int("pairs", len(set)).Msg("quotes fetched")
	return set, nil
}

var _ QuoteFetcher = (*Quotes)(nil)
