package currency

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Code identifies a currency tracked by the tool.
type Code string

const (
	USD Code = "USD"
	EUR Code = "EUR"
	BTC Code = "BTC"
	BRL Code = "BRL"
)

// Tracked lists the foreign currencies in their fixed display order.
var Tracked = []Code{USD, EUR, BTC}

var known = map[Code]struct{}{USD: {}, EUR: {}, BTC: {}, BRL: {}}

// ErrZeroRate is returned when converting against a zero rate.
var ErrZeroRate = errors.New("currency: rate must be non-zero")

// ParseCode normalises and validates a currency code.
func ParseCode(s string) (Code, error) {
	code := Code(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := known[code]; !ok {
		return "", fmt.Errorf("unknown currency %q", s)
	}
	return code, nil
}

// ParseCodes parses a list of codes, keeping their order.
func ParseCodes(values []string) ([]Code, error) {
	codes := make([]Code, 0, len(values))
	for _, v := range values {
		code, err := ParseCode(v)
		if err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, nil
}

// Pair returns the provider pair name, e.g. USD-BRL.
func Pair(code, local Code) string {
	return string(code) + "-" + string(local)
}

// PairKey returns the key used by the provider's response object, e.g. USDBRL.
func PairKey(code, local Code) string {
	return string(code) + string(local)
}

// Quote is the latest known rate of a currency in local currency units.
type Quote struct {
	Code       Code
	Rate       decimal.Decimal
	CapturedAt time.Time
}

// QuoteSet holds one quote per currency.
type QuoteSet map[Code]Quote

// Rate returns the rate for code if present and non-zero.
func (q QuoteSet) Rate(code Code) (decimal.Decimal, bool) {
	quote, ok := q[code]
	if !ok || quote.Rate.IsZero() {
		return decimal.Decimal{}, false
	}
	return quote.Rate, true
}

// DailyPoint is one daily observation returned by the history provider.
type DailyPoint struct {
	Day  time.Time
	Code Code
	Rate decimal.Decimal
}

// Convert returns amount expressed in the foreign currency quoted at rate.
func Convert(amount, rate decimal.Decimal) (decimal.Decimal, error) {
	if rate.IsZero() {
		return decimal.Decimal{}, ErrZeroRate
	}
	return amount.Div(rate), nil
}
