// Package history combines per-currency daily series into chart-ready records.
package history

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"finantrack/internal/currency"
)

// DefaultDateLayout renders dates as dd/mm/yyyy.
const DefaultDateLayout = "02/01/2006"

// Series is one currency's daily points in provider order.
type Series struct {
	Code   currency.Code
	Points []currency.DailyPoint
}

// Record holds the rates of every currency observed on one date.
// Currencies without a point on that date have no entry in Rates.
type Record struct {
	Date  string
	Day   time.Time
	Rates map[currency.Code]decimal.Decimal
}

// Rate returns the rate of code on this date, if any.
func (r Record) Rate(code currency.Code) (decimal.Decimal, bool) {
	rate, ok := r.Rates[code]
	return rate, ok
}

// Merger keys daily points by their formatted calendar date.
type Merger struct {
	Location   *time.Location
	Layout     string
	SortByDate bool
}

// Merge returns one record per distinct date across all series.
//
// Series are traversed in argument order and points in slice order; the last
// point seen for a (date, currency) pair wins. Records keep first-seen order
// unless SortByDate is set.
func (m Merger) Merge(series ...Series) []Record {
	loc := m.Location
	if loc == nil {
		loc = time.UTC
	}
	layout := m.Layout
	if layout == "" {
		layout = DefaultDateLayout
	}

	index := make(map[string]int)
	records := make([]Record, 0)

	for _, s := range series {
		for _, p := range s.Points {
			local := p.Day.In(loc)
			key := local.Format(layout)

			i, ok := index[key]
			if !ok {
				i = len(records)
				index[key] = i
				records = append(records, Record{
					Date:  key,
					Day:   time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc),
					Rates: make(map[currency.Code]decimal.Decimal),
				})
			}
			records[i].Rates[s.Code] = p.Rate
		}
	}

	if m.SortByDate {
		sort.SliceStable(records, func(a, b int) bool {
			return records[a].Day.Before(records[b].Day)
		})
	}
	return records
}
