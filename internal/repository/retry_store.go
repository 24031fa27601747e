package repository

import (
	"context"
	apperr "courtbooking/internal/errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"
)

// RetryStore decorates a RowStore with bounded exponential backoff on transient
// failures and an optional request rate limit. Errors that survive are wrapped in
// a PersistenceError.
type RetryStore struct {
	next      RowStore
	retryable func(error) bool
	limiter   *rate.Limiter
	maxTries  uint
	initial   time.Duration
	logger    *slog.Logger
}

type RetryOption func(*RetryStore)

// WithRateLimit caps calls per minute; zero disables the limiter.
func WithRateLimit(perMinute int) RetryOption {
	return func(s *RetryStore) {
		if perMinute > 0 {
			s.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
		}
	}
}

func WithInitialInterval(d time.Duration) RetryOption {
	return func(s *RetryStore) { s.initial = d }
}

func WithLogger(l *slog.Logger) RetryOption {
	return func(s *RetryStore) { s.logger = l }
}

func NewRetryStore(next RowStore, retryable func(error) bool, maxTries int, opts ...RetryOption) *RetryStore {
	if maxTries < 1 {
		maxTries = 1
	}
	if retryable == nil {
		retryable = func(error) bool { return false }
	}
	s := &RetryStore{
		next:      next,
		retryable: retryable,
		maxTries:  uint(maxTries),
		initial:   time.Second,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RetryStore) ReadRows(ctx context.Context, rng Range) ([][]string, error) {
	return retry(ctx, s, "read "+rng.A1(), func() ([][]string, error) {
		return s.next.ReadRows(ctx, rng)
	})
}

func (s *RetryStore) WriteRows(ctx context.Context, rng Range, rows [][]string) error {
	_, err := retry(ctx, s, "write "+rng.A1(), func() (struct{}, error) {
		return struct{}{}, s.next.WriteRows(ctx, rng, rows)
	})
	return err
}

func (s *RetryStore) AppendRow(ctx context.Context, rng Range, row []string) (int, error) {
	return retry(ctx, s, "append "+rng.A1(), func() (int, error) {
		return s.next.AppendRow(ctx, rng, row)
	})
}

func (s *RetryStore) AppendRows(ctx context.Context, rng Range, rows [][]string) error {
	_, err := retry(ctx, s, "append "+rng.A1(), func() (struct{}, error) {
		return struct{}{}, s.next.AppendRows(ctx, rng, rows)
	})
	return err
}

func (s *RetryStore) ClearRows(ctx context.Context, rng Range) error {
	_, err := retry(ctx, s, "clear "+rng.A1(), func() (struct{}, error) {
		return struct{}{}, s.next.ClearRows(ctx, rng)
	})
	return err
}

func (s *RetryStore) UpdateCell(ctx context.Context, tab string, row, col int, value string) error {
	_, err := retry(ctx, s, "update cell", func() (struct{}, error) {
		return struct{}{}, s.next.UpdateCell(ctx, tab, row, col, value)
	})
	return err
}

func (s *RetryStore) EnsureTabsExist(ctx context.Context, names []string) error {
	_, err := retry(ctx, s, "ensure tabs", func() (struct{}, error) {
		return struct{}{}, s.next.EnsureTabsExist(ctx, names)
	})
	return err
}

func retry[T any](ctx context.Context, s *RetryStore, op string, call func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.initial
	b.Multiplier = 2
	b.RandomizationFactor = 0.5

	attempt := 0
	v, err := backoff.Retry(ctx, func() (T, error) {
		attempt++
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return *new(T), backoff.Permanent(err)
			}
		}
		v, err := call()
		if err == nil {
			return v, nil
		}
		if !s.retryable(err) {
			return v, backoff.Permanent(err)
		}
		s.logger.Warn("row store call failed, retrying", "op", op, "attempt", attempt, "error", err)
		return v, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(s.maxTries),
	)
	if err != nil {
		return v, apperr.NewPersistenceError(op, err)
	}
	return v, nil
}
