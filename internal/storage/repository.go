package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"finantrack/internal/currency"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	upsertQuoteSampleSQL = `INSERT INTO quote_samples (
        bucket_ts,
        currency,
        local_currency,
        rate,
        source
    ) VALUES (
        $1,$2,$3,$4,$5
    )
    ON CONFLICT (bucket_ts, currency) DO UPDATE
    SET
        local_currency = EXCLUDED.local_currency,
        rate           = EXCLUDED.rate,
        source         = EXCLUDED.source;`

	listSamplesBetweenSQL = `SELECT
        bucket_ts,
        currency,
        local_currency,
        rate,
        source,
        created_at
    FROM quote_samples
    WHERE bucket_ts >= $1
      AND bucket_ts < $2
    ORDER BY bucket_ts, currency;`

	listRecentSamplesSQL = `SELECT
        bucket_ts,
        currency,
        local_currency,
        rate,
        source,
        created_at
    FROM quote_samples
    ORDER BY bucket_ts DESC, currency
    LIMIT $1;`

	countSamplesSQL = `SELECT COUNT(*) FROM quote_samples;`

	tryAdvisoryLockSQL = `SELECT pg_try_advisory_lock($1);`
	advisoryUnlockSQL  = `SELECT pg_advisory_unlock($1);`
)

// QuoteSampleStore defines operations for the quote archive.
type QuoteSampleStore interface {
	UpsertQuoteSamples(ctx context.Context, samples []QuoteSample) error
	ListSamplesBetween(ctx context.Context, from, to time.Time) ([]QuoteSample, error)
	ListRecentSamples(ctx context.Context, limit int) ([]QuoteSample, error)
	CountSamples(ctx context.Context) (int64, error)
}

// AdvisoryLocker exposes advisory lock helpers.
type AdvisoryLocker interface {
	TryAdvisoryLock(ctx context.Context, key int64) (unlock func(), acquired bool, err error)
}

// Store provides access to archived quote samples.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// TryAdvisoryLock attempts to acquire a postgres advisory lock and returns a release func.
func (s *Store) TryAdvisoryLock(ctx context.Context, key int64) (func(), bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, false, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, tryAdvisoryLockSQL, key).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	unlock := func() {
		ctxUnlock, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		// session locks also drop when the connection closes
		_, _ = conn.Exec(ctxUnlock, advisoryUnlockSQL, key)
		conn.Release()
	}
	return unlock, true, nil
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// UpsertQuoteSamples persists a batch of samples in one round trip.
func (s *Store) UpsertQuoteSamples(ctx context.Context, samples []QuoteSample) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, sample := range samples {
		batch.Queue(upsertQuoteSampleSQL,
			sample.Bucket,
			string(sample.Currency),
			string(sample.LocalCurrency),
			sample.Rate.String(),
			sample.Source,
		)
	}

	results := pool.SendBatch(ctx, batch)
	defer results.Close()

	for range samples {
		if _, execErr := results.Exec(); execErr != nil {
			return fmt.Errorf("upsert quote sample: %w", execErr)
		}
	}
	return nil
}

// ListSamplesBetween lists samples within a time window.
func (s *Store) ListSamplesBetween(ctx context.Context, from, to time.Time) ([]QuoteSample, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listSamplesBetweenSQL, from, to)
	if queryErr != nil {
		return nil, fmt.Errorf("list samples between: %w", queryErr)
	}
	defer rows.Close()

	return collectSamples(rows, 0)
}

// ListRecentSamples lists the most recent samples ordered by descending bucket.
func (s *Store) ListRecentSamples(ctx context.Context, limit int) ([]QuoteSample, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentSamplesSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent samples: %w", queryErr)
	}
	defer rows.Close()

	return collectSamples(rows, limit)
}

// CountSamples counts stored samples.
func (s *Store) CountSamples(ctx context.Context) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if scanErr := pool.QueryRow(ctx, countSamplesSQL).Scan(&count); scanErr != nil {
		return 0, fmt.Errorf("count samples: %w", scanErr)
	}
	return count, nil
}

func collectSamples(rows pgx.Rows, capacity int) ([]QuoteSample, error) {
	samples := make([]QuoteSample, 0, capacity)
	for rows.Next() {
		sample, scanErr := scanQuoteSample(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		samples = append(samples, sample)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return samples, nil
}

func scanQuoteSample(rows pgx.Rows) (QuoteSample, error) {
	var (
		bucket    time.Time
		code      string
		local     string
		rateStr   string
		source    string
		createdAt time.Time
	)

	if err := rows.Scan(
		&bucket,
		&code,
		&local,
		&rateStr,
		&source,
		&createdAt,
	); err != nil {
		return QuoteSample{}, err
	}

	rate, err := decimal.NewFromString(rateStr)
	if err != nil {
		return QuoteSample{}, fmt.Errorf("parse rate: %w", err)
	}

	return QuoteSample{
		Bucket:        bucket,
		Currency:      currency.Code(code),
		LocalCurrency: currency.Code(local),
		Rate:          rate,
		Source:        source,
		CreatedAt:     createdAt,
	}, nil
}

var (
	_ QuoteSampleStore = (*Store)(nil)
	_ AdvisoryLocker   = (*Store)(nil)
)
