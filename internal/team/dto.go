package team

import "github.com/frahmantamala/mastersight/internal/core/common/money"

// AddMemberDTO adds a teammate by email. Permissions win over Preset when both
// are sent.
type AddMemberDTO struct {
	CompanyID    int64    `json:"companyId"`
	Email        string   `json:"email"`
	Name         string   `json:"name"`
	DepartmentID int64    `json:"department"`
	RoleID       int64    `json:"role"`
	Permissions  []string `json:"permissions"`
	Preset       string   `json:"preset"`
}

// RemoveMemberDTO addresses the membership row. Older clients send it as userId.
type RemoveMemberDTO struct {
	CompanyID int64 `json:"companyId"`
	MemberID  int64 `json:"memberId"`
	UserID    int64 `json:"userId"`
}

func (d RemoveMemberDTO) Member() int64 {
	if d.MemberID > 0 {
		return d.MemberID
	}
	return d.UserID
}

type EditMemberDTO struct {
	CompanyID    int64       `json:"companyId"`
	MemberID     int64       `json:"memberId"`
	UserID       int64       `json:"userId"`
	DepartmentID int64       `json:"department"`
	RoleID       int64       `json:"role"`
	Salary       money.Input `json:"salary"`
	Permissions  []string    `json:"permissions"`
}

func (d EditMemberDTO) Member() int64 {
	if d.MemberID > 0 {
		return d.MemberID
	}
	return d.UserID
}

// MemberUpdate carries the columns an edit overwrites. Zero ids and nil
// permissions leave the stored values alone; the salary is always written.
type MemberUpdate struct {
	DepartmentID int64
	RoleID       int64
	Salary       float64
	Permissions  []string
}

type TeamResponse struct {
	Team []Member `json:"team"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}
