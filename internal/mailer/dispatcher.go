package mailer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/mastersight/internal/metrics"
)

type DispatcherConfig struct {
	Workers      int
	QueueSize    int
	MaxAttempts  int
	RetryBackoff time.Duration
	SendTimeout  time.Duration
	Lease        time.Duration
}

type worker struct {
	id         int
	workerPool chan chan Job
	jobs       chan Job
	logger     *slog.Logger
}

func (w *worker) start(ctx context.Context, wg *sync.WaitGroup, process func(context.Context, Job)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case w.workerPool <- w.jobs:
			case <-ctx.Done():
				return
			}

			select {
			case job := <-w.jobs:
				w.logger.Debug("worker sending mail", "worker_id", w.id, "delivery_id", job.DeliveryID)
				process(ctx, job)
			case <-ctx.Done():
				w.logger.Debug("worker shutting down", "worker_id", w.id)
				return
			}
		}
	}()
}

// Dispatcher feeds queued jobs to idle workers.
type Dispatcher struct {
	sender   Sender
	repo     RepositoryAPI
	recorder metrics.Recorder
	cfg      DispatcherConfig
	logger   *slog.Logger

	queue      chan Job
	workerPool chan chan Job
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

func NewDispatcher(sender Sender, repo RepositoryAPI, recorder metrics.Recorder, cfg DispatcherConfig, logger *slog.Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = DefaultRetryBackoff
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = DefaultSendTimeout
	}
	if cfg.Lease <= 0 {
		cfg.Lease = DefaultLease
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		sender:     sender,
		repo:       repo,
		recorder:   recorder,
		cfg:        cfg,
		logger:     logger,
		queue:      make(chan Job, cfg.QueueSize),
		workerPool: make(chan chan Job, cfg.Workers),
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (d *Dispatcher) Start() {
	d.once.Do(func() {
		for i := 0; i < d.cfg.Workers; i++ {
			w := &worker{id: i, workerPool: d.workerPool, jobs: make(chan Job), logger: d.logger}
			w.start(d.ctx, &d.wg, d.process)
		}

		d.wg.Add(1)
		go d.dispatch()

		d.logger.Info("mail worker pool started",
			"workers", d.cfg.Workers,
			"queue_size", d.cfg.QueueSize)
	})
}

func (d *Dispatcher) dispatch() {
	defer d.wg.Done()

	for {
		select {
		case job := <-d.queue:
			select {
			case jobs := <-d.workerPool:
				select {
				case jobs <- job:
				case <-d.ctx.Done():
					return
				}
			case <-d.ctx.Done():
				return
			}
		case <-d.ctx.Done():
			d.logger.Info("mail dispatcher shutting down")
			return
		}
	}
}

// Enqueue never blocks. It reports false when the queue is full; the
// delivery stays pending for the redelivery worker.
func (d *Dispatcher) Enqueue(job Job) bool {
	select {
	case d.queue <- job:
		return true
	default:
		d.logger.Warn("mail queue full, leaving delivery pending",
			"delivery_id", job.DeliveryID,
			"queue_capacity", cap(d.queue))
		return false
	}
}

// Shutdown stops the workers; a send in progress is cancelled and its row
// stays claimed until the lease runs out, then a sweep picks it up again.
func (d *Dispatcher) Shutdown() {
	d.cancel()
	d.wg.Wait()
	d.logger.Info("mail worker pool stopped")
}

// process claims the row first. The same delivery can be queued twice, once
// by the event handler and once by a sweep; only one worker gets to send it.
func (d *Dispatcher) process(ctx context.Context, job Job) {
	log := d.logger.With("delivery_id", job.DeliveryID, "kind", job.Kind)

	row, err := d.repo.Claim(ctx, job.DeliveryID, d.cfg.MaxAttempts, time.Now().Add(-d.cfg.Lease))
	if err != nil {
		log.Error("failed to claim mail delivery", "error", err)
		return
	}
	if row == nil {
		log.Debug("mail delivery claimed elsewhere or finished, dropping job")
		return
	}
	job = JobFromDelivery(row)

	var lastErr error

	for attempt := job.Attempts + 1; attempt <= d.cfg.MaxAttempts; attempt++ {
		sendCtx, cancel := context.WithTimeout(ctx, d.cfg.SendTimeout)
		lastErr = d.sender.Send(sendCtx, job.Recipient, job.Subject, job.Body)
		cancel()

		if lastErr == nil {
			if err := d.repo.MarkSent(ctx, job.DeliveryID, attempt, time.Now()); err != nil {
				log.Error("mail sent but status not recorded", "error", err)
			}
			d.recorder.RecordMailDelivery(string(job.Kind), "sent")
			log.Info("mail sent", "attempt", attempt)
			return
		}

		d.recorder.RecordMailDelivery(string(job.Kind), "retry")
		log.Warn("mail send failed", "attempt", attempt, "error", lastErr)
		if attempt == d.cfg.MaxAttempts {
			break
		}
		if err := d.repo.RecordAttempt(ctx, job.DeliveryID, attempt, lastErr.Error()); err != nil {
			log.Error("failed to record mail attempt", "error", err)
		}
		if !sleepCtx(ctx, d.backoff(attempt)) {
			return
		}
	}

	reason := "attempt limit reached"
	if lastErr != nil {
		reason = lastErr.Error()
	}
	if err := d.repo.MarkFailed(ctx, job.DeliveryID, d.cfg.MaxAttempts, reason); err != nil {
		log.Error("failed to record mail failure", "error", err)
	}
	d.recorder.RecordMailDelivery(string(job.Kind), "failed")
	log.Error("mail delivery failed", "attempts", d.cfg.MaxAttempts, "error", reason)
}

// backoff doubles per attempt.
func (d *Dispatcher) backoff(attempt int) time.Duration {
	return d.cfg.RetryBackoff << (attempt - 1)
}

func sleepCtx(ctx context.Context, dur time.Duration) bool {
	t := time.NewTimer(dur)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
