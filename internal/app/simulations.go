package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"finantrack/internal/currency"
	"finantrack/internal/session"
	"finantrack/internal/simulations"
)

// ListSimulations prints saved simulations, optionally filtered by currency.
func (a *App) ListSimulations(ctx context.Context, filter string) error {
	sess := a.newSession(0, false)
	if filter != "" {
		code, err := currency.ParseCode(filter)
		if err != nil {
			return err
		}
		sess.Filter = code
	}
	if err := sess.RefreshSimulations(ctx); err != nil {
		return err
	}
	writeSimulations(a.Out, a.Config.LocalCurrency(), sess.Visible())
	return nil
}

// CreateSimulation converts the amount at the current quote and stores it.
func (a *App) CreateSimulation(ctx context.Context, in SimulationInput) error {
	sess := a.newSession(0, false)
	if err := applyForm(sess, in); err != nil {
		return err
	}
	if err := sess.Validate(ctx); err != nil {
		return err
	}
	if err := sess.RefreshQuotes(ctx); err != nil {
		return err
	}
	if err := sess.Save(ctx); err != nil {
		return err
	}
	writeSimulations(a.Out, a.Config.LocalCurrency(), sess.Visible())
	return nil
}

// UpdateSimulation re-converts an existing simulation at the current quote.
// Currency and amount default to the stored values when not given.
func (a *App) UpdateSimulation(ctx context.Context, in SimulationInput) error {
	sess := a.newSession(0, false)
	if err := applyForm(sess, in); err != nil {
		return err
	}
	// explicit values are checked before the stored simulation is loaded
	if strings.TrimSpace(in.Amount) != "" {
		if err := sess.CheckAmount(ctx, sess.Form.Amount); err != nil {
			return err
		}
	}
	if in.Currency != "" {
		if err := sess.CheckCurrency(ctx, sess.Form.Currency); err != nil {
			return err
		}
	}
	if err := sess.RefreshSimulations(ctx); err != nil {
		return err
	}
	sim, ok := sess.Find(in.ID)
	if !ok {
		return fmt.Errorf("simulation %s: %w", in.ID, simulations.ErrNotFound)
	}
	sess.Edit(sim)
	if err := applyForm(sess, in); err != nil {
		return err
	}
	if err := sess.Validate(ctx); err != nil {
		return err
	}
	if err := sess.RefreshQuotes(ctx); err != nil {
		return err
	}
	if err := sess.Save(ctx); err != nil {
		return err
	}
	writeSimulations(a.Out, a.Config.LocalCurrency(), sess.Visible())
	return nil
}

// DeleteSimulation removes a simulation by id.
func (a *App) DeleteSimulation(ctx context.Context, id simulations.ID) error {
	sess := a.newSession(0, false)
	if err := sess.Delete(ctx, id); err != nil {
		return err
	}
	writeSimulations(a.Out, a.Config.LocalCurrency(), sess.Visible())
	return nil
}

func applyForm(sess *session.Session, in SimulationInput) error {
	if strings.TrimSpace(in.Amount) != "" {
		amount, err := decimal.NewFromString(strings.TrimSpace(in.Amount))
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", in.Amount, err)
		}
		sess.Form.Amount = amount
	}
	if in.Currency != "" {
		code, err := currency.ParseCode(in.Currency)
		if err != nil {
			return err
		}
		sess.Form.Currency = code
	}
	return nil
}

func writeSimulations(out io.Writer, local currency.Code, list []simulations.Simulation) {
	if len(list) == 0 {
		fmt.Fprintln(out, "no simulations found")
		return
	}
	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tCurrency\tAmount\tConverted\tRate")
	for _, sim := range list {
		fmt.Fprintf(writer, "%s\t%s %s\t%s\t%s\t%s\n",
			sim.ID,
			currency.Flag(sim.Currency),
			sim.Currency,
			currency.Format(sim.Amount, local),
			currency.Format(sim.Converted, sim.Currency),
			currency.Format(sim.Rate, local),
		)
	}
	writer.Flush()
}
