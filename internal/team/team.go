package team

import (
	"time"

	membershipDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/membership"
	userDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/user"
)

const (
	minNameLength = 3

	MessageCreatedAndAdded = "user-created-and-added"
	MessageInvited         = "user-invited"
	MessageEdited          = "user-edited"
)

// Placeholders shown when the membership outlived its user row.
const (
	missingName  = "Usuário deletado"
	missingEmail = "E-mail indisponível"
	missingCPF   = "CPF indisponível"
)

// Member is a membership joined with the public part of its user profile.
type Member struct {
	ID           int64                            `json:"id"`
	CompanyID    int64                            `json:"companyId"`
	UserID       int64                            `json:"userId"`
	RoleID       int64                            `json:"role"`
	DepartmentID int64                            `json:"department"`
	Salary       float64                          `json:"salary"`
	Permissions  []string                         `json:"permissions"`
	Status       string                           `json:"status"`
	Competences  []membershipDatamodel.Competence `json:"competences"`
	LastAccess   *time.Time                       `json:"lastAccess"`
	CreatedAt    time.Time                        `json:"createdAt"`

	Name        string  `json:"name"`
	Email       string  `json:"email"`
	CPF         string  `json:"cpf"`
	Description string  `json:"description"`
	Image       *string `json:"image"`
	Admin       bool    `json:"admin"`
}

// NewMember combines a membership with its user. u may be nil.
func NewMember(m *membershipDatamodel.Membership, u *userDatamodel.User, admin bool) Member {
	member := Member{
		ID:           m.ID,
		CompanyID:    m.CompanyID,
		UserID:       m.UserID,
		RoleID:       m.RoleID,
		DepartmentID: m.DepartmentID,
		Salary:       m.Salary,
		Permissions:  m.Permissions,
		Status:       m.Status,
		Competences:  m.Competences,
		LastAccess:   m.LastAccess,
		CreatedAt:    m.CreatedAt,
		Name:         missingName,
		Email:        missingEmail,
		CPF:          missingCPF,
		Admin:        admin,
	}
	if member.Permissions == nil {
		member.Permissions = []string{}
	}
	if member.Competences == nil {
		member.Competences = []membershipDatamodel.Competence{}
	}
	if u == nil {
		return member
	}

	if u.Name != "" {
		member.Name = u.Name
	}
	if u.Email != "" {
		member.Email = u.Email
	}
	if u.CPF != nil && *u.CPF != "" {
		member.CPF = *u.CPF
	}
	member.Description = u.Description
	if u.Image != "" {
		img := u.Image
		member.Image = &img
	}
	return member
}
