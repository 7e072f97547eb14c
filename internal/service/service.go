package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"finantrack/internal/currency"
	"finantrack/internal/fetcher"
	"finantrack/internal/notify"
	"finantrack/internal/scheduler"
	"finantrack/internal/storage"
)

// Options configure the archiver.
type Options struct {
	Currencies    []currency.Code
	LocalCurrency currency.Code
	LockKey       int64
}

// Service archives live quotes once per scheduler bucket.
type Service struct {
	scheduler *scheduler.Scheduler
	quotes    fetcher.QuoteFetcher
	store     storage.QuoteSampleStore
	locker    storage.AdvisoryLocker
	notifier  notify.Notifier
	logger    zerolog.Logger
	opts      Options

	// OnSample, when set, receives every fetched quote set.
	OnSample func(bucket time.Time, quotes currency.QuoteSet)
}

// New constructs the archiver. store and notifier may be nil.
func New(opts Options, sched *scheduler.Scheduler, quotes fetcher.QuoteFetcher, store storage.QuoteSampleStore, notifier notify.Notifier, logger zerolog.Logger) *Service {
	var locker storage.AdvisoryLocker
	if l, ok := store.(storage.AdvisoryLocker); ok {
		locker = l
	}

	return &Service{
		scheduler: sched,
		quotes:    quotes,
		store:     store,
		locker:    locker,
		notifier:  notifier,
		logger:    logger.With().Str("component", "archiver").Logger(),
		opts:      opts,
	}
}

// Run begins the sampling loop.
func (s *Service) Run(ctx context.Context) error {
	if s.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return s.scheduler.Run(ctx, s.ProcessBucket)
}

// ProcessBucket fetches quotes for one bucket and persists a sample per currency.
func (s *Service) ProcessBucket(ctx context.Context, bucket time.Time) error {
	unlock, proceed, err := s.acquireLock(ctx)
	if err != nil {
		return err
	}
	if !proceed {
		s.logger.Debug().Time("bucket", bucket).Msg("skip bucket because advisory lock held elsewhere")
		return nil
	}
	if unlock != nil {
		defer unlock()
	}

	quotes, err := s.quotes.FetchQuotes(ctx, s.opts.Currencies)
	if err != nil {
		s.report(ctx, notify.LevelError, fmt.Sprintf("Failed to fetch quotes: %v", err))
		return fmt.Errorf("fetch quotes: %w", err)
	}

	if s.OnSample != nil {
		s.OnSample(bucket, quotes)
	}

	samples := SamplesFromQuotes(bucket, s.opts.LocalCurrency, s.opts.Currencies, quotes)
	if s.store != nil {
		if err := s.store.UpsertQuoteSamples(ctx, samples); err != nil {
			return fmt.Errorf("persist samples: %w", err)
		}
	}

	event := s.logger.Info().Time("bucket", bucket).Int("samples", len(samples))
	for _, sample := range samples {
		event = event.Str(string(sample.Currency), sample.Rate.String())
	}
	event.Msg("quotes archived")
	return nil
}

// SamplesFromQuotes turns a quote set into live archive rows in currency order.
func SamplesFromQuotes(bucket time.Time, local currency.Code, codes []currency.Code, quotes currency.QuoteSet) []storage.QuoteSample {
	samples := make([]storage.QuoteSample, 0, len(codes))
	for _, code := range codes {
		rate, ok := quotes.Rate(code)
		if !ok {
			continue
		}
		samples = append(samples, storage.QuoteSample{
			Bucket:        bucket,
			Currency:      code,
			LocalCurrency: local,
			Rate:          rate,
			Source:        storage.SourceLive,
		})
	}
	return samples
}

func (s *Service) report(ctx context.Context, level notify.Level, msg string) {
	if s.notifier == nil {
		return
	}
	note := notify.Notification{Level: level, Message: msg, At: time.Now()}
	if err := s.notifier.Notify(ctx, note); err != nil {
		s.logger.Error().Err(err).Msg("failed to dispatch notification")
	}
}

func (s *Service) acquireLock(ctx context.Context) (func(), bool, error) {
	if s.opts.LockKey == 0 || s.locker == nil {
		return nil, true, nil
	}
	unlock, acquired, err := s.locker.TryAdvisoryLock(ctx, s.opts.LockKey)
	if err != nil {
		return nil, false, fmt.Errorf("acquire advisory lock: %w", err)
	}
	if !acquired {
		return nil, false, nil
	}
	return unlock, true, nil
}
