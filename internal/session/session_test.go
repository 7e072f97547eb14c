package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"finantrack/internal/currency"
	"finantrack/internal/notify"
	"finantrack/internal/simulations"
)

type staticQuotes struct {
	set currency.QuoteSet
	err error
}

func (s staticQuotes) FetchQuotes(ctx context.Context, codes []currency.Code) (currency.QuoteSet, error) {
	return s.set, s.err
}

type staticHistory map[currency.Code][]currency.DailyPoint

func (s staticHistory) FetchDaily(ctx context.Context, code currency.Code, days int) ([]currency.DailyPoint, error) {
	return s[code], nil
}

type fakeStore struct {
	list      []simulations.Simulation
	created   []simulations.Input
	updated   map[simulations.ID]simulations.Input
	deleted   []simulations.ID
	listCalls int
	saveErr   error
	deleteErr error
}

func (f *fakeStore) List(ctx context.Context) ([]simulations.Simulation, error) {
	f.listCalls++
	return f.list, nil
}

func (f *fakeStore) Create(ctx context.Context, in simulations.Input) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.created = append(f.created, in)
	f.list = append(f.list, simulations.Simulation{ID: "new", Currency: in.Currency, Amount: in.Amount, Converted: in.Converted, Rate: in.Rate})
	return nil
}

func (f *fakeStore) Update(ctx context.Context, id simulations.ID, in simulations.Input) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if f.updated == nil {
		f.updated = make(map[simulations.ID]simulations.Input)
	}
	f.updated[id] = in
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, id simulations.ID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type recorder struct {
	notes []notify.Notification
}

func (r *recorder) Notify(ctx context.Context, note notify.Notification) error {
	r.notes = append(r.notes, note)
	return nil
}

func (r *recorder) last() notify.Notification {
	if len(r.notes) == 0 {
		return notify.Notification{}
	}
	return r.notes[len(r.notes)-1]
}

func quoteSet() currency.QuoteSet {
	return currency.QuoteSet{
		currency.USD: {Code: currency.USD, Rate: decimal.RequireFromString("5.00")},
		currency.EUR: {Code: currency.EUR, Rate: decimal.RequireFromString("6.00")},
		currency.BTC: {Code: currency.BTC, Rate: decimal.RequireFromString("300000.00")},
	}
}

func newSession(store *fakeStore, rec *recorder) *Session {
	s := New(Options{}, staticQuotes{set: quoteSet()}, staticHistory{}, store, rec, zerolog.Nop())
	s.Quotes = quoteSet()
	return s
}

func TestSaveRejectsNonPositiveAmount(t *testing.T) {
	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-10)} {
		store := &fakeStore{}
		rec := &recorder{}
		s := newSession(store, rec)
		s.Form.Amount = amount

		err := s.Save(context.Background())
		if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("amount %s: expected ErrInvalidAmount, got %v", amount, err)
		}
		if rec.last().Level != notify.LevelError {
			t.Fatalf("amount %s: expected an error notification", amount)
		}
		if len(store.created) != 0 || len(store.updated) != 0 || store.listCalls != 0 {
			t.Fatalf("amount %s: no request should be issued", amount)
		}
		if !s.Form.Amount.Equal(amount) {
			t.Fatalf("form should be untouched")
		}
	}
}

func TestSaveCreatesConvertedSimulation(t *testing.T) {
	store := &fakeStore{}
	rec := &recorder{}
	s := newSession(store, rec)
	s.Form = Form{Amount: decimal.NewFromInt(500), Currency: currency.USD, Mode: Creating()}

	if err := s.Save(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.created) != 1 {
		t.Fatalf("expected one create, got %d", len(store.created))
	}
	in := store.created[0]
	if !in.Converted.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected converted 100, got %s", in.Converted)
	}
	if !in.Rate.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("expected rate 5, got %s", in.Rate)
	}
	if rec.last().Level != notify.LevelSuccess {
		t.Fatalf("expected success notification, got %+v", rec.last())
	}
	if !s.Form.Amount.IsZero() {
		t.Fatal("form amount should reset after save")
	}
	if _, editing := s.Form.Mode.Editing(); editing {
		t.Fatal("form should return to creating mode")
	}
	if store.listCalls != 1 || len(s.Simulations) != 1 {
		t.Fatalf("list should be refreshed after save")
	}
}

func TestSaveUpdatesWhenEditing(t *testing.T) {
	store := &fakeStore{list: []simulations.Simulation{
		{ID: "7", Currency: currency.EUR, Amount: decimal.NewFromInt(60)},
	}}
	rec := &recorder{}
	s := newSession(store, rec)
	if err := s.RefreshSimulations(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sim, ok := s.Find("7")
	if !ok {
		t.Fatal("simulation 7 should be loaded")
	}
	s.Edit(sim)
	if id, editing := s.Form.Mode.Editing(); !editing || id != "7" {
		t.Fatalf("expected editing(7), got %s", s.Form.Mode)
	}
	s.Form.Amount = decimal.NewFromInt(120)

	if err := s.Save(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	in, ok := store.updated["7"]
	if !ok {
		t.Fatal("expected an update of simulation 7")
	}
	if len(store.created) != 0 {
		t.Fatal("editing must not create")
	}
	if !in.Converted.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected converted 20, got %s", in.Converted)
	}
}

func TestSaveFailureKeepsForm(t *testing.T) {
	store := &fakeStore{saveErr: errors.New("connection refused")}
	rec := &recorder{}
	s := newSession(store, rec)
	s.Form = Form{Amount: decimal.NewFromInt(500), Currency: currency.USD, Mode: Editing("3")}

	if err := s.Save(context.Background()); err == nil {
		t.Fatal("transport failure should be returned")
	}
	if rec.last().Level != notify.LevelError {
		t.Fatalf("expected error notification, got %+v", rec.last())
	}
	if !s.Form.Amount.Equal(decimal.NewFromInt(500)) {
		t.Fatal("form amount should be left unchanged")
	}
	if id, editing := s.Form.Mode.Editing(); !editing || id != "3" {
		t.Fatal("form mode should be left unchanged")
	}
	if store.listCalls != 0 {
		t.Fatal("list should not be refreshed after a failed save")
	}
}

func TestSaveWithoutQuote(t *testing.T) {
	store := &fakeStore{}
	rec := &recorder{}
	s := newSession(store, rec)
	s.Quotes = nil
	s.Form.Amount = decimal.NewFromInt(10)

	if err := s.Save(context.Background()); !errors.Is(err, ErrQuoteUnavailable) {
		t.Fatalf("expected ErrQuoteUnavailable, got %v", err)
	}
	if len(store.created) != 0 {
		t.Fatal("no request should be issued without a quote")
	}
}

func TestSaveRejectsUntrackedCurrency(t *testing.T) {
	store := &fakeStore{}
	rec := &recorder{}
	s := newSession(store, rec)
	s.Form = Form{Amount: decimal.NewFromInt(10), Currency: currency.BRL, Mode: Creating()}

	if err := s.Save(context.Background()); !errors.Is(err, ErrUnsupportedCurrency) {
		t.Fatalf("expected ErrUnsupportedCurrency, got %v", err)
	}
	if len(store.created) != 0 {
		t.Fatal("no request should be issued for an untracked currency")
	}
	if len(rec.notes) != 1 || rec.notes[0].Level != notify.LevelError {
		t.Fatalf("expected one error notification, got %+v", rec.notes)
	}
}

func TestDeleteFailureKeepsList(t *testing.T) {
	cached := []simulations.Simulation{{ID: "1", Currency: currency.USD}}
	store := &fakeStore{list: cached, deleteErr: &simulations.StatusError{Method: "DELETE", Path: "/simulacao/99", Status: 404}}
	rec := &recorder{}
	s := newSession(store, rec)
	s.Simulations = cached

	err := s.Delete(context.Background(), "99")
	if !errors.Is(err, simulations.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
	if len(rec.notes) != 0 {
		t.Fatal("delete failures are not notified")
	}
	if len(s.Simulations) != 1 || s.Simulations[0].ID != "1" {
		t.Fatal("cached list should be untouched")
	}
}

func TestDeleteRefreshesList(t *testing.T) {
	store := &fakeStore{}
	rec := &recorder{}
	s := newSession(store, rec)
	s.Simulations = []simulations.Simulation{{ID: "1"}}

	if err := s.Delete(context.Background(), "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "1" {
		t.Fatalf("unexpected deletes %v", store.deleted)
	}
	if rec.last().Level != notify.LevelInfo {
		t.Fatalf("expected info notification")
	}
	if len(s.Simulations) != 0 {
		t.Fatalf("list should be refreshed, got %v", s.Simulations)
	}
}

func TestCancelAndFilter(t *testing.T) {
	s := newSession(&fakeStore{}, &recorder{})
	s.Simulations = []simulations.Simulation{
		{ID: "1", Currency: currency.USD},
		{ID: "2", Currency: currency.BTC},
	}
	s.Edit(s.Simulations[1])
	s.Cancel()
	if _, editing := s.Form.Mode.Editing(); editing || !s.Form.Amount.IsZero() {
		t.Fatal("cancel should reset the form")
	}

	s.Filter = currency.BTC
	if got := s.Visible(); len(got) != 1 || got[0].ID != "2" {
		t.Fatalf("unexpected visible list %v", got)
	}
}

func TestRefreshQuotesAndHistory(t *testing.T) {
	day := time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)
	hist := staticHistory{
		currency.USD: {{Day: day, Code: currency.USD, Rate: decimal.NewFromInt(5)}},
		currency.EUR: {{Day: day, Code: currency.EUR, Rate: decimal.NewFromInt(6)}},
	}
	s := New(Options{}, staticQuotes{set: quoteSet()}, hist, &fakeStore{}, nil, zerolog.Nop())
	fixed := time.Date(2024, 5, 10, 18, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	if err := s.RefreshQuotes(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Quotes) != 3 || !s.QuotedAt.Equal(fixed) {
		t.Fatalf("quotes not refreshed: %v %s", s.Quotes, s.QuotedAt)
	}

	if err := s.RefreshHistory(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.History) != 1 {
		t.Fatalf("expected one merged record, got %d", len(s.History))
	}
	rec := s.History[0]
	if rec.Date != "10/05/2024" {
		t.Fatalf("unexpected date %s", rec.Date)
	}
	if _, ok := rec.Rate(currency.BTC); ok {
		t.Fatal("BTC should be unset")
	}
}

func TestRefreshQuotesFailureKeepsState(t *testing.T) {
	s := New(Options{}, staticQuotes{err: errors.New("down")}, staticHistory{}, &fakeStore{}, nil, zerolog.Nop())
	s.Quotes = quoteSet()
	if err := s.RefreshQuotes(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if len(s.Quotes) != 3 {
		t.Fatal("previous quotes should be kept on failure")
	}
}

