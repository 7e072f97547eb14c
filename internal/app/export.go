package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"finantrack/internal/config"
	"finantrack/internal/currency"
	"finantrack/internal/history"
)

// ErrNotEnoughHistory is returned when a chart has fewer than two dates.
var ErrNotEnoughHistory = errors.New("at least two dates are needed to draw a chart")

// History fetches the daily series, merges them by date and prints a table,
// optionally exporting CSV and PNG.
func (a *App) History(ctx context.Context, opts HistoryOptions) error {
	sess := a.newSession(opts.Days, opts.Sort)
	if err := sess.RefreshHistory(ctx); err != nil {
		return err
	}

	codes := a.Config.TrackedCurrencies()
	records := sess.History
	a.Logger.Info().Int("dates", len(records)).Msg("history merged")

	writeHistoryTable(a.Out, codes, records)

	if opts.CSVPath != "" {
		if err := writeFile(opts.CSVPath, func(w io.Writer) error {
			return writeHistoryCSV(w, codes, records)
		}); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		a.Logger.Info().Str("path", opts.CSVPath).Msg("history csv written")
	}

	if opts.PNGPath != "" {
		if err := writeFile(opts.PNGPath, func(w io.Writer) error {
			return renderHistoryPNG(w, codes, records, a.Config.Export)
		}); err != nil {
			return fmt.Errorf("write png: %w", err)
		}
		a.Logger.Info().Str("path", opts.PNGPath).Msg("history chart written")
	}

	return nil
}

func writeHistoryTable(out io.Writer, codes []currency.Code, records []history.Record) {
	if len(records) == 0 {
		fmt.Fprintln(out, "no history available")
		return
	}
	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprint(writer, "Date")
	for _, code := range codes {
		fmt.Fprintf(writer, "\t%s", code)
	}
	fmt.Fprintln(writer)

	for _, rec := range records {
		fmt.Fprint(writer, rec.Date)
		for _, code := range codes {
			cell := "-"
			if rate, ok := rec.Rate(code); ok {
				cell = rate.String()
			}
			fmt.Fprintf(writer, "\t%s", cell)
		}
		fmt.Fprintln(writer)
	}
	writer.Flush()
}

// writeHistoryCSV writes one row per date; missing rates are empty cells.
func writeHistoryCSV(w io.Writer, codes []currency.Code, records []history.Record) error {
	writer := csv.NewWriter(w)

	header := make([]string, 0, len(codes)+1)
	header = append(header, "date")
	for _, code := range codes {
		header = append(header, string(code))
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, rec := range records {
		row := make([]string, 0, len(codes)+1)
		row = append(row, rec.Date)
		for _, code := range codes {
			cell := ""
			if rate, ok := rec.Rate(code); ok {
				cell = rate.String()
			}
			row = append(row, cell)
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

type axisSeries struct {
	series   chart.TimeSeries
	min, max float64
}

// renderHistoryPNG draws one line per currency. Dates where a currency has no
// rate are skipped for that line.
func renderHistoryPNG(w io.Writer, codes []currency.Code, records []history.Record, cfg config.ExportConfig) error {
	secondary := make(map[currency.Code]bool, len(cfg.SecondaryAxis))
	for _, raw := range cfg.SecondaryAxis {
		if code, err := currency.ParseCode(raw); err == nil {
			secondary[code] = true
		}
	}

	days := make(map[int64]struct{})
	var primary, other []axisSeries
	for _, code := range codes {
		s := axisSeries{
			series: chart.TimeSeries{Name: string(code)},
			min:    math.Inf(1),
			max:    math.Inf(-1),
		}
		for _, rec := range records {
			rate, ok := rec.Rate(code)
			if !ok {
				continue
			}
			v := rate.InexactFloat64()
			s.series.XValues = append(s.series.XValues, rec.Day)
			s.series.YValues = append(s.series.YValues, v)
			s.min = math.Min(s.min, v)
			s.max = math.Max(s.max, v)
			days[rec.Day.Unix()] = struct{}{}
		}
		if len(s.series.XValues) == 0 {
			continue
		}
		if secondary[code] {
			other = append(other, s)
		} else {
			primary = append(primary, s)
		}
	}

	if len(days) < 2 {
		return ErrNotEnoughHistory
	}
	// a lone secondary group is drawn on the primary axis
	if len(primary) == 0 {
		primary, other = other, nil
	}

	dateFormatter := func(v interface{}) string {
		return chart.TimeValueFormatterWithFormat("02/01")(v)
	}
	rateFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.2f")
	}

	graph := chart.Chart{
		Width:  cfg.Width,
		Height: cfg.Height,
		XAxis: chart.XAxis{
			ValueFormatter: dateFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Rate",
			ValueFormatter: rateFormatter,
			Range:          paddedRange(primary),
		},
	}
	for _, s := range primary {
		graph.Series = append(graph.Series, s.series)
	}
	if len(other) > 0 {
		graph.YAxisSecondary = chart.YAxis{
			Name:           "Rate (secondary)",
			ValueFormatter: rateFormatter,
			Range:          paddedRange(other),
		}
		for _, s := range other {
			s.series.YAxis = chart.YAxisSecondary
			graph.Series = append(graph.Series, s.series)
		}
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return graph.Render(chart.PNG, w)
}

// paddedRange returns an explicit range for flat data, which the renderer
// rejects, and nil otherwise.
func paddedRange(group []axisSeries) chart.Range {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range group {
		lo = math.Min(lo, s.min)
		hi = math.Max(hi, s.max)
	}
	if hi > lo {
		return nil
	}
	pad := math.Abs(lo) * 0.01
	if pad == 0 {
		pad = 1
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func formatBucket(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("02/01/2006 15:04")
}
