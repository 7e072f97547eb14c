package app

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"finantrack/internal/config"
	"finantrack/internal/currency"
	"finantrack/internal/fetcher"
	"finantrack/internal/history"
	"finantrack/internal/notify"
	"finantrack/internal/scheduler"
	"finantrack/internal/service"
	"finantrack/internal/session"
	"finantrack/internal/simulations"
	"finantrack/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Out    io.Writer
}

// NewApp constructs a new application handle writing command output to stdout.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{
		Config: cfg,
		Logger: logger.With().Str("component", "app").Logger(),
		Out:    os.Stdout,
	}
}

func (a *App) quoteOptions() fetcher.Options {
	return fetcher.Options{
		BaseURL:       a.Config.Quotes.BaseURL,
		LocalCurrency: a.Config.LocalCurrency(),
		Timeout:       a.Config.Quotes.RequestTimeout,
		UserAgent:     a.Config.Quotes.UserAgent,
	}
}

func (a *App) newQuotes() *fetcher.Quotes {
	return fetcher.NewQuotes(a.quoteOptions(), a.Logger)
}

func (a *App) newHistory() *fetcher.History {
	return fetcher.NewHistory(a.quoteOptions(), a.Logger)
}

func (a *App) newSimulations() *simulations.Client {
	return simulations.NewClient(simulations.Options{
		BaseURL:   a.Config.Simulations.BaseURL,
		Timeout:   a.Config.Simulations.RequestTimeout,
		UserAgent: a.Config.Quotes.UserAgent,
	}, a.Logger)
}

func (a *App) newNotifier() notify.Notifier {
	cfg := a.Config.Notify

	var notifiers notify.Multi
	if cfg.Console {
		notifiers = append(notifiers, notify.NewConsoleNotifier(a.Out))
	}
	if cfg.Log {
		notifiers = append(notifiers, notify.NewLogNotifier(a.Logger))
	}
	if cfg.Telegram.Enabled {
		tg := cfg.Telegram
		notifiers = append(notifiers, notify.NewTelegramNotifier(tg.BotToken, tg.ChatID, tg.APIBase, tg.Timeout, a.Logger))
	}
	if len(notifiers) == 0 {
		return nil
	}
	return notifiers
}

func (a *App) newMerger(sortByDate bool) history.Merger {
	return history.Merger{
		Location:   a.Config.Location(),
		Layout:     a.Config.History.DateLayout,
		SortByDate: sortByDate || a.Config.History.SortByDate,
	}
}

func (a *App) newSession(days int, sortByDate bool) *session.Session {
	return session.New(session.Options{
		Currencies: a.Config.TrackedCurrencies(),
		Days:       a.Config.ResolveDays(days),
		Merger:     a.newMerger(sortByDate),
	}, a.newQuotes(), a.newHistory(), a.newSimulations(), a.newNotifier(), a.Logger)
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	store, err := storage.Open(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, nil, err
	}
	return store, store.Close, nil
}

// Watch runs the long-lived quote archiver until interrupted.
func (a *App) Watch(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		a.Logger.Warn().Msg("database.dsn not configured; quotes will not be archived")
	}
	if closeStore != nil {
		defer closeStore()
	}

	sched, err := scheduler.New(scheduler.Options{
		Interval:      a.Config.Scheduler.Interval,
		AlignToBucket: a.Config.Scheduler.AlignToBucket,
		StartupDelay:  a.Config.Scheduler.StartupDelay,
		Immediate:     true,
	}, a.Logger)
	if err != nil {
		return err
	}

	var sampleStore storage.QuoteSampleStore
	if store != nil {
		sampleStore = store
	}

	codes := a.Config.TrackedCurrencies()
	local := a.Config.LocalCurrency()
	svc := service.New(service.Options{
		Currencies:    codes,
		LocalCurrency: local,
		LockKey:       a.Config.Scheduler.AdvisoryLockKey,
	}, sched, a.newQuotes(), sampleStore, a.newNotifier(), a.Logger)
	svc.OnSample = func(bucket time.Time, quotes currency.QuoteSet) {
		writeQuotes(a.Out, codes, local, quotes, bucket.In(a.Config.Location()))
	}

	a.Logger.Info().Dur("interval", a.Config.Scheduler.Interval).Msg("starting quote watcher")
	err = svc.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("watcher terminated with error")
		return err
	}

	a.Logger.Info().Msg("quote watcher stopped")
	return nil
}

// HistoryOptions configure the history command.
type HistoryOptions struct {
	Days    int
	Sort    bool
	CSVPath string
	PNGPath string
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Limit int
	Since time.Duration
}

// BackfillOptions configure the backfill job.
type BackfillOptions struct {
	Days   int
	DryRun bool
}

// SimulationInput carries create/update arguments from the CLI.
type SimulationInput struct {
	ID       simulations.ID
	Amount   string
	Currency string
}
