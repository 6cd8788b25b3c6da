package mailer

import (
	"context"
	"log/slog"
	"time"
)

// Redeliverer periodically puts deliveries that never completed back on the
// queue: rows left pending by a full queue or a restart, failed rows still
// below the attempt limit, and rows whose worker died mid-send.
type Redeliverer struct {
	repo        RepositoryAPI
	queue       Queue
	interval    time.Duration
	grace       time.Duration
	lease       time.Duration
	maxAttempts int
	batch       int
	logger      *slog.Logger
}

func NewRedeliverer(repo RepositoryAPI, queue Queue, interval time.Duration, maxAttempts int, logger *slog.Logger) *Redeliverer {
	if interval <= 0 {
		interval = time.Minute
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Redeliverer{
		repo:        repo,
		queue:       queue,
		interval:    interval,
		grace:       interval,
		lease:       DefaultLease,
		maxAttempts: maxAttempts,
		batch:       DefaultQueueSize,
		logger:      logger,
	}
}

// Run sweeps once immediately and then every interval until ctx ends.
func (r *Redeliverer) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if _, err := r.Sweep(ctx); err != nil {
			r.logger.Error("mail redelivery sweep failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Sweep enqueues retryable deliveries untouched for at least the grace
// period and returns how many were queued.
func (r *Redeliverer) Sweep(ctx context.Context) (int, error) {
	now := time.Now()
	rows, err := r.repo.ListRetryable(ctx, r.maxAttempts, now.Add(-r.grace), now.Add(-r.lease), r.batch)
	if err != nil {
		return 0, err
	}

	queued := 0
	for _, d := range rows {
		if !r.queue.Enqueue(JobFromDelivery(d)) {
			break
		}
		queued++
	}
	if len(rows) > 0 {
		r.logger.Info("mail redelivery sweep", "found", len(rows), "queued", queued)
	}
	return queued, nil
}

// WithGrace overrides how long a row must sit untouched before it is retried.
func (r *Redeliverer) WithGrace(grace time.Duration) *Redeliverer {
	r.grace = grace
	return r
}

// WithLease overrides how long a sending row may go quiet before it is
// considered abandoned. Keep it equal to the dispatcher's lease.
func (r *Redeliverer) WithLease(lease time.Duration) *Redeliverer {
	r.lease = lease
	return r
}
