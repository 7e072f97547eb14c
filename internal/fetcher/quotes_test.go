package fetcher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"finantrack/internal/currency"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestQuotesFetchSuccess(t *testing.T) {
	var gotPath, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"USDBRL": map[string]string{"code": "USD", "high": "5.00"},
			"EURBRL": map[string]string{"code": "EUR", "high": "6.00"},
			"BTCBRL": map[string]string{"code": "BTC", "high": "300000.00"},
		})
	}))
	defer srv.Close()

	q := NewQuotes(Options{BaseURL: srv.URL + "/", Timeout: time.Second, UserAgent: "test"}, noopLogger())
	fixed := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	q.now = func() time.Time { return fixed }

	set, err := q.FetchQuotes(context.Background(), currency.Tracked)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/json/last/USD-BRL,EUR-BRL,BTC-BRL" {
		t.Fatalf("unexpected path %s", gotPath)
	}
	if gotUA != "test" {
		t.Fatalf("unexpected user agent %q", gotUA)
	}
	if len(set) != 3 {
		t.Fatalf("expected 3 quotes, got %d", len(set))
	}
	if !set[currency.BTC].Rate.Equal(decimal.NewFromInt(300000)) {
		t.Fatalf("unexpected BTC rate %s", set[currency.BTC].Rate)
	}
	if !set[currency.USD].CapturedAt.Equal(fixed) {
		t.Fatalf("capture time not set")
	}
}

func TestQuotesFetchMissingPair(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"USDBRL": map[string]string{"high": "5.00"},
		})
	}))
	defer srv.Close()

	q := NewQuotes(Options{BaseURL: srv.URL}, noopLogger())
	if _, err := q.FetchQuotes(context.Background(), []currency.Code{currency.USD, currency.EUR}); err == nil {
		t.Fatal("missing pair should fail")
	}
}

func TestQuotesFetchBadDecimal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"USDBRL": map[string]string{"high": "n/a"},
		})
	}))
	defer srv.Close()

	q := NewQuotes(Options{BaseURL: srv.URL}, noopLogger())
	if _, err := q.FetchQuotes(context.Background(), []currency.Code{currency.USD}); err == nil {
		t.Fatal("malformed decimal should fail")
	}
}

func TestQuotesFetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{"status": 404, "code": "CoinNotExists", "message": "moeda nao encontrada"})
	}))
	defer srv.Close()

	q := NewQuotes(Options{BaseURL: srv.URL}, noopLogger())
	_, err := q.FetchQuotes(context.Background(), []currency.Code{currency.USD})
	if err == nil {
		t.Fatal("HTTP 404 should fail")
	}
	if !strings.Contains(err.Error(), "moeda nao encontrada") {
		t.Fatalf("error should carry provider message: %v", err)
	}
}

func TestQuotesFetchNoCodes(t *testing.T) {
	q := NewQuotes(Options{}, noopLogger())
	if _, err := q.FetchQuotes(context.Background(), nil); err == nil {
		t.Fatal("empty request should fail")
	}
}
