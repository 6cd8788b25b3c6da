package role

import "time"

type Role struct {
	ID           int64     `gorm:"primaryKey"`
	CompanyID    int64     `gorm:"column:company_id;index;not null"`
	DepartmentID int64     `gorm:"column:department_id;index;not null"`
	Name         string    `gorm:"column:name;not null"`
	Salary       float64   `gorm:"column:salary"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Role) TableName() string {
	return "company_roles"
}
