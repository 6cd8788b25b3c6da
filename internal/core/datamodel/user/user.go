package user

import "time"

type User struct {
	ID           int64      `gorm:"primaryKey"`
	Email        string     `gorm:"column:email;uniqueIndex;not null"`
	Name         string     `gorm:"column:name;not null"`
	PasswordHash *string    `gorm:"column:password_hash"`
	CPF          *string    `gorm:"column:cpf;uniqueIndex"`
	Birthday     *time.Time `gorm:"column:birthday"`
	Image        string     `gorm:"column:image"`
	Description  string     `gorm:"column:description"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// Admin is a platform operator. Admins authenticate against their own table
// and are never members of a company.
type Admin struct {
	ID           int64     `gorm:"primaryKey"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	Name         string    `gorm:"column:name;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Master       bool      `gorm:"column:master;default:false"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Admin) TableName() string {
	return "admins"
}
