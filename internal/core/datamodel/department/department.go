package department

import "time"

type Department struct {
	ID          int64     `gorm:"primaryKey"`
	CompanyID   int64     `gorm:"column:company_id;index;not null"`
	Name        string    `gorm:"column:name;not null"`
	Description string    `gorm:"column:description"`
	Salary      float64   `gorm:"column:salary"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Department) TableName() string {
	return "company_departments"
}
