package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	mailDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/maildelivery"
	"github.com/frahmantamala/mastersight/internal/mailer"
)

type DeliveryRepository struct {
	db *gorm.DB
}

func NewDeliveryRepository(db *gorm.DB) mailer.RepositoryAPI {
	return &DeliveryRepository{db: db}
}

func (r *DeliveryRepository) Create(ctx context.Context, d *mailDatamodel.Delivery) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DeliveryRepository) Find(ctx context.Context, id int64) (*mailDatamodel.Delivery, error) {
	var d mailDatamodel.Delivery
	if err := r.db.WithContext(ctx).First(&d, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *DeliveryRepository) Claim(ctx context.Context, id int64, maxAttempts int, staleBefore time.Time) (*mailDatamodel.Delivery, error) {
	res := r.db.WithContext(ctx).
		Model(&mailDatamodel.Delivery{}).
		Where("id = ? AND attempts < ? AND body <> ''", id, maxAttempts).
		Where("(status IN ? OR (status = ? AND updated_at < ?))",
			[]string{mailDatamodel.StatusPending, mailDatamodel.StatusFailed},
			mailDatamodel.StatusSending, staleBefore).
		Updates(map[string]interface{}{
			"status":     mailDatamodel.StatusSending,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.Find(ctx, id)
}

func (r *DeliveryRepository) RecordAttempt(ctx context.Context, id int64, attempts int, lastErr string) error {
	return r.update(ctx, id, map[string]interface{}{
		"status":     mailDatamodel.StatusSending,
		"attempts":   attempts,
		"last_error": lastErr,
		"updated_at": time.Now(),
	})
}

func (r *DeliveryRepository) MarkSent(ctx context.Context, id int64, attempts int, at time.Time) error {
	return r.update(ctx, id, map[string]interface{}{
		"status":     mailDatamodel.StatusSent,
		"attempts":   attempts,
		"last_error": "",
		"body":       "",
		"sent_at":    at,
	})
}

func (r *DeliveryRepository) MarkFailed(ctx context.Context, id int64, attempts int, lastErr string) error {
	return r.update(ctx, id, map[string]interface{}{
		"status":     mailDatamodel.StatusFailed,
		"attempts":   attempts,
		"last_error": lastErr,
		"body":       "",
	})
}

// ListRetryable skips rows whose body was cleared; there is nothing left to send.
func (r *DeliveryRepository) ListRetryable(ctx context.Context, maxAttempts int, before, staleBefore time.Time, limit int) ([]*mailDatamodel.Delivery, error) {
	var rows []*mailDatamodel.Delivery
	err := r.db.WithContext(ctx).
		Where("attempts < ? AND body <> ''", maxAttempts).
		Where("((status IN ? AND updated_at < ?) OR (status = ? AND updated_at < ?))",
			[]string{mailDatamodel.StatusPending, mailDatamodel.StatusFailed}, before,
			mailDatamodel.StatusSending, staleBefore).
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *DeliveryRepository) update(ctx context.Context, id int64, cols map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&mailDatamodel.Delivery{}).
		Where("id = ?", id).
		Updates(cols).Error
}
