package app

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"finantrack/internal/currency"
)

// Quotes prints the latest quote of every tracked currency.
func (a *App) Quotes(ctx context.Context) error {
	sess := a.newSession(0, false)
	if err := sess.RefreshQuotes(ctx); err != nil {
		return err
	}
	writeQuotes(a.Out, a.Config.TrackedCurrencies(), a.Config.LocalCurrency(), sess.Quotes, sess.QuotedAt)
	return nil
}

func writeQuotes(out io.Writer, codes []currency.Code, local currency.Code, quotes currency.QuoteSet, at time.Time) {
	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(writer, "Currency\tRate (%s)\n", local)
	for _, code := range codes {
		rate := "-"
		if r, ok := quotes.Rate(code); ok {
			rate = currency.Format(r, local)
		}
		fmt.Fprintf(writer, "%s %s\t%s\n", currency.Flag(code), code, rate)
	}
	writer.Flush()
	fmt.Fprintf(out, "Updated at %s\n", at.Format("02/01/2006 15:04:05"))
}
