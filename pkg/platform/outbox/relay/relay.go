package relay

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"registrar/pkg/platform/outbox"
)

const (
	defaultInterval  = time.Second
	defaultBatchSize = 100
)

// Relay drains the outbox into a Publisher on a fixed interval.
type Relay struct {
	source    outbox.Source
	publisher outbox.Publisher
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
	metrics   *Metrics
}

type Option func(*Relay)

func WithInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(r *Relay) {
		r.metrics = m
	}
}

func New(source outbox.Source, publisher outbox.Publisher, opts ...Option) *Relay {
	r := &Relay{
		source:    source,
		publisher: publisher,
		interval:  defaultInterval,
		batchSize: defaultBatchSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run flushes until ctx is cancelled. A failed batch is logged and retried on
// the next tick; it is never dropped.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := r.Drain(ctx); err != nil && !errors.Is(err, context.Canceled) {
				r.logger.ErrorContext(ctx, "outbox relay batch failed", "error", err)
			}
		}
	}
}

// Drain publishes batches until the outbox is empty or a batch fails.
// Returns the number of entries published.
func (r *Relay) Drain(ctx context.Context) (int, error) {
	total := 0
	for {
		n, err := r.Flush(ctx)
		total += n
		if err != nil {
			return total, err
		}
		if n < r.batchSize {
			return total, nil
		}
	}
}

// Flush publishes at most one batch.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	start := time.Now()
	n, err := r.source.ProcessBatch(ctx, r.batchSize, r.publisher.Publish)
	r.metrics.observeBatch(time.Since(start).Seconds())
	if err != nil {
		r.metrics.incPublishFailures()
		return 0, err
	}
	r.metrics.addPublished(n)
	return n, nil
}
