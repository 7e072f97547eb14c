package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"finantrack/internal/currency"
)

const (
	defaultBaseURL   = "https://economia.awesomeapi.com.br"
	defaultUserAgent = "finantrack/1.0"
)

// QuoteFetcher retrieves the latest quotes for a set of currencies.
type QuoteFetcher interface {
	FetchQuotes(ctx context.Context, codes []currency.Code) (currency.QuoteSet, error)
}

// HistoryFetcher retrieves the trailing daily series of one currency.
type HistoryFetcher interface {
	FetchDaily(ctx context.Context, code currency.Code, days int) ([]currency.DailyPoint, error)
}

// Options parameterise the quote API clients.
type Options struct {
	BaseURL       string
	LocalCurrency currency.Code
	Timeout       time.Duration
	UserAgent     string
}

func (o Options) normalise() Options {
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.BaseURL == "" {
		o.BaseURL = defaultBaseURL
	}
	if o.LocalCurrency == "" {
		o.LocalCurrency = currency.BRL
	}
	if strings.TrimSpace(o.UserAgent) == "" {
		o.UserAgent = defaultUserAgent
	}
	return o
}

func getJSON(ctx context.Context, client *http.Client, opts Options, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", opts.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return parseHTTPError(resp.StatusCode, payload)
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

type errorResponse struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func parseHTTPError(status int, payload []byte) error {
	var apiErr errorResponse
	if err := json.Unmarshal(payload, &apiErr); err == nil {
		if apiErr.Message != "" {
			return fmt.Errorf("quote api error (%d): %s", status, apiErr.Message)
		}
		if apiErr.Code != "" {
			return fmt.Errorf("quote api error (%d): %s", status, apiErr.Code)
		}
	}
	if len(payload) > 0 {
		return fmt.Errorf("quote api error (%d): %s", status, strings.TrimSpace(string(payload)))
	}
	return fmt.Errorf("quote api error (%d)", status)
}
