// Package feedback stores scored notes one member leaves about another.
package feedback

import (
	"time"

	feedbackDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/feedback"
)

const (
	MinScore = 0
	MaxScore = 10

	MessageAdded   = "feedback-added"
	MessageDeleted = "feedback-deleted"
)

type Feedback struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"companyId"`
	UserID    int64     `json:"userId"`
	CreatorID int64     `json:"creatorId"`
	Score     int       `json:"score"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func (f *Feedback) ToDataModel() *feedbackDatamodel.Feedback {
	return &feedbackDatamodel.Feedback{
		ID:        f.ID,
		CompanyID: f.CompanyID,
		UserID:    f.UserID,
		CreatorID: f.CreatorID,
		Score:     f.Score,
		Content:   f.Content,
		CreatedAt: f.CreatedAt,
	}
}

func FromDataModel(m *feedbackDatamodel.Feedback) *Feedback {
	return &Feedback{
		ID:        m.ID,
		CompanyID: m.CompanyID,
		UserID:    m.UserID,
		CreatorID: m.CreatorID,
		Score:     m.Score,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}
