package storage

import (
	"time"

	"github.com/shopspring/decimal"

	"finantrack/internal/currency"
)

// Sample sources.
const (
	SourceLive  = "live"
	SourceDaily = "daily"
)

// QuoteSample is one archived rate of a currency for a time bucket.
type QuoteSample struct {
	Bucket        time.Time
	Currency      currency.Code
	LocalCurrency currency.Code
	Rate          decimal.Decimal
	Source        string
	CreatedAt     time.Time
}
