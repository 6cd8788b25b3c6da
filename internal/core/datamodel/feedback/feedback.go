package feedback

import "time"

type Feedback struct {
	ID        int64     `gorm:"primaryKey"`
	CompanyID int64     `gorm:"column:company_id;index;not null"`
	UserID    int64     `gorm:"column:user_id;index;not null"`
	CreatorID int64     `gorm:"column:creator_id;not null"`
	Score     int       `gorm:"column:score;not null"`
	Content   string    `gorm:"column:content"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Feedback) TableName() string {
	return "company_feedbacks"
}
