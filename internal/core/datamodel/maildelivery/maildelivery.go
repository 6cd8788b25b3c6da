package maildelivery

import "time"

const (
	StatusPending = "pending"
	StatusSending = "sending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

type Delivery struct {
	ID        int64      `gorm:"primaryKey"`
	Kind      string     `gorm:"column:kind;not null"`
	Recipient string     `gorm:"column:recipient;not null"`
	Subject   string     `gorm:"column:subject;not null"`
	Body      string     `gorm:"column:body;not null"`
	Status    string     `gorm:"column:status;index;not null;default:pending"`
	Attempts  int        `gorm:"column:attempts;not null;default:0"`
	LastError string     `gorm:"column:last_error"`
	SentAt    *time.Time `gorm:"column:sent_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Delivery) TableName() string {
	return "mail_deliveries"
}
