// Package mailer delivers transactional mail. Services publish events; the
// event handler renders and persists a delivery, then hands it to a bounded
// worker pool that sends with retry and records the outcome.
package mailer

import (
	"context"
	"time"

	mailDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/maildelivery"
)

const (
	DefaultWorkers      = 4
	DefaultQueueSize    = 100
	DefaultMaxAttempts  = 5
	DefaultRetryBackoff = 2 * time.Second
	DefaultSendTimeout  = 30 * time.Second
	// DefaultLease is how long a claimed row may go without an update before
	// it is treated as abandoned. It must outlast one send plus one backoff.
	DefaultLease = 5 * time.Minute
)

type RepositoryAPI interface {
	Create(ctx context.Context, d *mailDatamodel.Delivery) error
	Find(ctx context.Context, id int64) (*mailDatamodel.Delivery, error)
	// Claim moves a pending or failed row below maxAttempts, or a sending row
	// whose lease ran out before staleBefore, to sending. It returns nil when
	// another worker owns the row or it is already finished.
	Claim(ctx context.Context, id int64, maxAttempts int, staleBefore time.Time) (*mailDatamodel.Delivery, error)
	// RecordAttempt stores a failed attempt and renews the claim.
	RecordAttempt(ctx context.Context, id int64, attempts int, lastErr string) error
	// MarkSent and MarkFailed finish the row and clear its body, which may
	// carry a reset link or a temporary password.
	MarkSent(ctx context.Context, id int64, attempts int, at time.Time) error
	MarkFailed(ctx context.Context, id int64, attempts int, lastErr string) error
	// ListRetryable returns unfinished rows below maxAttempts: pending or
	// failed ones untouched since before, and sending ones untouched since
	// staleBefore.
	ListRetryable(ctx context.Context, maxAttempts int, before, staleBefore time.Time, limit int) ([]*mailDatamodel.Delivery, error)
}

// Job is one delivery handed to the pool.
type Job struct {
	DeliveryID int64
	Kind       Kind
	Recipient  string
	Subject    string
	Body       string
	Attempts   int
}

func JobFromDelivery(d *mailDatamodel.Delivery) Job {
	return Job{
		DeliveryID: d.ID,
		Kind:       Kind(d.Kind),
		Recipient:  d.Recipient,
		Subject:    d.Subject,
		Body:       d.Body,
		Attempts:   d.Attempts,
	}
}
