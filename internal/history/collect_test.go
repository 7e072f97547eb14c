package history

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"finantrack/internal/currency"
)

type fakeSource struct {
	mu    sync.Mutex
	calls map[currency.Code]int
	fail  currency.Code
	days  int
}

func (f *fakeSource) FetchDaily(ctx context.Context, code currency.Code, days int) ([]currency.DailyPoint, error) {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = make(map[currency.Code]int)
	}
	f.calls[code]++
	f.days = days
	f.mu.Unlock()

	if code == f.fail {
		return nil, errors.New("boom")
	}
	return []currency.DailyPoint{{Day: day(2024, 5, 10), Code: code, Rate: decimal.NewFromInt(int64(len(code)))}}, nil
}

func TestCollectKeepsCodeOrder(t *testing.T) {
	src := &fakeSource{}
	series, err := Collect(context.Background(), src, currency.Tracked, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 3 {
		t.Fatalf("expected 3 series, got %d", len(series))
	}
	for i, code := range currency.Tracked {
		if series[i].Code != code {
			t.Fatalf("series %d should be %s, got %s", i, code, series[i].Code)
		}
		if src.calls[code] != 1 {
			t.Fatalf("expected one request for %s, got %d", code, src.calls[code])
		}
	}
	if src.days != 7 {
		t.Fatalf("window not forwarded, got %d", src.days)
	}
}

func TestCollectFailsWhenAnySeriesFails(t *testing.T) {
	src := &fakeSource{fail: currency.EUR}
	if _, err := Collect(context.Background(), src, currency.Tracked, 7); err == nil {
		t.Fatal("a failing series should fail the collection")
	}
}
