package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	feedbackDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/feedback"
	"github.com/frahmantamala/mastersight/internal/feedback"
)

type FeedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) feedback.RepositoryAPI {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) List(ctx context.Context, companyID, userID int64) ([]*feedbackDatamodel.Feedback, error) {
	q := r.db.WithContext(ctx).Where("company_id = ?", companyID)
	if userID > 0 {
		q = q.Where("user_id = ?", userID)
	}

	var rows []*feedbackDatamodel.Feedback
	if err := q.Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *FeedbackRepository) Create(ctx context.Context, f *feedbackDatamodel.Feedback) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *FeedbackRepository) FindByID(ctx context.Context, id int64) (*feedbackDatamodel.Feedback, error) {
	var f feedbackDatamodel.Feedback
	if err := r.db.WithContext(ctx).First(&f, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

func (r *FeedbackRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&feedbackDatamodel.Feedback{}, id)
	return res.RowsAffected > 0, res.Error
}
