package company

import "time"

type Company struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	CNPJ      string    `gorm:"column:cnpj"`
	Address   string    `gorm:"column:address"`
	Domain    string    `gorm:"column:domain"`
	Color     string    `gorm:"column:color"`
	Image     string    `gorm:"column:image"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Company) TableName() string {
	return "companies"
}
