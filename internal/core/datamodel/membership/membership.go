package membership

import "time"

const (
	StatusActive  = "active"
	StatusInvited = "invited"
)

// Membership links a user to a company. Its existence is the only evidence
// of tenant membership.
type Membership struct {
	ID                 int64        `gorm:"primaryKey"`
	CompanyID          int64        `gorm:"column:company_id;not null;uniqueIndex:idx_company_users_company_user"`
	UserID             int64        `gorm:"column:user_id;not null;uniqueIndex:idx_company_users_company_user"`
	RoleID             int64        `gorm:"column:role_id"`
	DepartmentID       int64        `gorm:"column:department_id"`
	Salary             float64      `gorm:"column:salary"`
	Permissions        []string     `gorm:"column:permissions;type:jsonb;serializer:json"`
	Status             string       `gorm:"column:status;not null;default:active"`
	Competences        []Competence `gorm:"column:competences;type:jsonb;serializer:json"`
	CompetencesVersion int64        `gorm:"column:competences_version;not null;default:0"`
	LastAccess         *time.Time   `gorm:"column:last_access"`
	CreatedAt          time.Time    `gorm:"column:created_at;autoCreateTime"`
}

func (Membership) TableName() string {
	return "company_users"
}

// Competence is an element of the embedded competences array.
type Competence struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Documents   []string `json:"documents"`
}
