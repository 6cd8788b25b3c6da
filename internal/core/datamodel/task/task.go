package task

import "time"

type Task struct {
	ID        int64     `gorm:"primaryKey"`
	CompanyID int64     `gorm:"column:company_id;index;not null"`
	UserID    int64     `gorm:"column:user_id;index;not null"`
	Title     string    `gorm:"column:title;not null"`
	Status    string    `gorm:"column:status;not null;default:pending"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Task) TableName() string {
	return "company_tasks"
}
