package passwordreset

import "time"

type PasswordReset struct {
	ID        int64      `gorm:"primaryKey"`
	Token     string     `gorm:"column:token;uniqueIndex;not null"`
	Email     string     `gorm:"column:email;index;not null"`
	ExpiresAt time.Time  `gorm:"column:expires_at;not null"`
	UsedAt    *time.Time `gorm:"column:used_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (PasswordReset) TableName() string {
	return "password_resets"
}
