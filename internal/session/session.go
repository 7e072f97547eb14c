// Package session holds the view state of one user session and the
// operations that mutate it after each awaited request.
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"finantrack/internal/currency"
	"finantrack/internal/fetcher"
	"finantrack/internal/history"
	"finantrack/internal/notify"
	"finantrack/internal/simulations"
)

var (
	// ErrInvalidAmount is returned when the form amount is not positive.
	ErrInvalidAmount = errors.New("amount must be greater than zero")
	// ErrQuoteUnavailable is returned when no quote is known for the form currency.
	ErrQuoteUnavailable = errors.New("quote unavailable")
	// ErrUnsupportedCurrency is returned when the form currency is not tracked.
	ErrUnsupportedCurrency = errors.New("currency not tracked")
)

const (
	msgInvalidAmount    = "Enter a valid amount greater than zero"
	msgQuoteUnavailable = "No quote available for %s; refresh quotes and try again"
	msgUnsupported      = "Choose one of the tracked currencies"
	msgSaveFailed       = "Failed to save the simulation"
	msgCreated          = "Simulation created"
	msgUpdated          = "Simulation updated"
	msgDeleted          = "Simulation deleted"
)

// Mode tells whether the form creates a new simulation or edits one.
type Mode struct {
	id      simulations.ID
	editing bool
}

// Creating is the default form mode.
func Creating() Mode { return Mode{} }

// Editing targets an existing simulation.
func Editing(id simulations.ID) Mode { return Mode{id: id, editing: true} }

// Editing reports the target id when the mode edits an existing simulation.
func (m Mode) Editing() (simulations.ID, bool) { return m.id, m.editing }

func (m Mode) String() string {
	if m.editing {
		return "editing(" + string(m.id) + ")"
	}
	return "creating"
}

// Form is the simulation being entered.
type Form struct {
	Amount   decimal.Decimal
	Currency currency.Code
	Mode     Mode
}

// Options configure a session.
type Options struct {
	Currencies []currency.Code
	Days       int
	Merger     history.Merger
}

// Session is a single-owner view-state container; it is not safe for
// concurrent use.
type Session struct {
	quotes   fetcher.QuoteFetcher
	history  fetcher.HistoryFetcher
	store    simulations.Store
	notifier notify.Notifier
	logger   zerolog.Logger
	opts     Options
	now      func() time.Time

	Quotes      currency.QuoteSet
	QuotedAt    time.Time
	History     []history.Record
	Simulations []simulations.Simulation
	Form        Form
	Filter      currency.Code
}

// New builds a session.
func New(opts Options, quotes fetcher.QuoteFetcher, hist fetcher.HistoryFetcher, store simulations.Store, notifier notify.Notifier, logger zerolog.Logger) *Session {
	if len(opts.Currencies) == 0 {
		opts.Currencies = currency.Tracked
	}
	if opts.Days <= 0 {
		opts.Days = 7
	}
	return &Session{
		quotes:   quotes,
		history:  hist,
		store:    store,
		notifier: notifier,
		logger:   logger.With().Str("component", "session").Logger(),
		opts:     opts,
		now:      time.Now,
		Form:     Form{Currency: opts.Currencies[0], Mode: Creating()},
	}
}

// RefreshQuotes replaces the quotes wholesale.
func (s *Session) RefreshQuotes(ctx context.Context) error {
	set, err := s.quotes.FetchQuotes(ctx, s.opts.Currencies)
	if err != nil {
		return fmt.Errorf("refresh quotes: %w", err)
	}
	s.Quotes = set
	s.QuotedAt = s.now()
	return nil
}

// RefreshHistory fetches every series concurrently and merges them once all
// have arrived.
func (s *Session) RefreshHistory(ctx context.Context) error {
	series, err := history.Collect(ctx, s.history, s.opts.Currencies, s.opts.Days)
	if err != nil {
		return fmt.Errorf("refresh history: %w", err)
	}
	s.History = s.opts.Merger.Merge(series...)
	return nil
}

// RefreshSimulations reloads the simulation list.
func (s *Session) RefreshSimulations(ctx context.Context) error {
	list, err := s.store.List(ctx)
	if err != nil {
		return fmt.Errorf("refresh simulations: %w", err)
	}
	s.Simulations = list
	return nil
}

// Visible returns the simulations matching the current filter.
func (s *Session) Visible() []simulations.Simulation {
	return simulations.Filter(s.Simulations, s.Filter)
}

// Edit loads a simulation into the form.
func (s *Session) Edit(sim simulations.Simulation) {
	s.Form = Form{Amount: sim.Amount, Currency: sim.Currency, Mode: Editing(sim.ID)}
}

// Cancel drops any edit in progress.
func (s *Session) Cancel() {
	s.Form.Amount = decimal.Zero
	s.Form.Mode = Creating()
}

// Find returns the loaded simulation with id.
func (s *Session) Find(id simulations.ID) (simulations.Simulation, bool) {
	for _, sim := range s.Simulations {
		if sim.ID == id {
			return sim, true
		}
	}
	return simulations.Simulation{}, false
}

// Save validates the form, converts at the current quote and creates or
// updates the simulation. Failures are reported through the notifier and
// leave the form untouched.
func (s *Session) Save(ctx context.Context) error {
	if err := s.Validate(ctx); err != nil {
		return err
	}
	form := s.Form

	rate, ok := s.Quotes.Rate(form.Currency)
	if !ok {
		s.notify(ctx, notify.LevelError, fmt.Sprintf(msgQuoteUnavailable, form.Currency))
		return fmt.Errorf("%w for %s", ErrQuoteUnavailable, form.Currency)
	}

	converted, err := currency.Convert(form.Amount, rate)
	if err != nil {
		s.notify(ctx, notify.LevelError, msgSaveFailed)
		return err
	}

	in := simulations.Input{
		Currency:  form.Currency,
		Amount:    form.Amount,
		Converted: converted,
		Rate:      rate,
	}

	msg := msgCreated
	if id, editing := form.Mode.Editing(); editing {
		err = s.store.Update(ctx, id, in)
		msg = msgUpdated
	} else {
		err = s.store.Create(ctx, in)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("mode", form.Mode.String()).Msg("failed to save simulation")
		s.notify(ctx, notify.LevelError, msgSaveFailed)
		return fmt.Errorf("save simulation: %w", err)
	}

	s.notify(ctx, notify.LevelSuccess, msg)
	s.Form = Form{Amount: decimal.Zero, Currency: form.Currency, Mode: Creating()}

	if err := s.RefreshSimulations(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("simulation saved but list refresh failed")
		return err
	}
	return nil
}

// Validate checks the form without issuing any request. Failures are
// reported through the notifier.
func (s *Session) Validate(ctx context.Context) error {
	if err := s.CheckAmount(ctx, s.Form.Amount); err != nil {
		return err
	}
	return s.CheckCurrency(ctx, s.Form.Currency)
}

// CheckAmount rejects amounts that are not strictly positive.
func (s *Session) CheckAmount(ctx context.Context, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		s.notify(ctx, notify.LevelError, msgInvalidAmount)
		return ErrInvalidAmount
	}
	return nil
}

// CheckCurrency rejects currencies outside the tracked set.
func (s *Session) CheckCurrency(ctx context.Context, code currency.Code) error {
	if !slices.Contains(s.opts.Currencies, code) {
		s.notify(ctx, notify.LevelError, msgUnsupported)
		return fmt.Errorf("%w: %s", ErrUnsupportedCurrency, code)
	}
	return nil
}

// Delete removes a simulation. Request failures are returned as-is and leave
// the cached list untouched.
func (s *Session) Delete(ctx context.Context, id simulations.ID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete simulation %s: %w", id, err)
	}
	s.notify(ctx, notify.LevelInfo, msgDeleted)
	return s.RefreshSimulations(ctx)
}

func (s *Session) notify(ctx context.Context, level notify.Level, msg string) {
	if s.notifier == nil {
		return
	}
	note := notify.Notification{Level: level, Message: msg, At: s.now()}
	if err := s.notifier.Notify(ctx, note); err != nil {
		s.logger.Warn().Err(err).Msg("failed to deliver notification")
	}
}
