// Package user serves the signed-in account: its profile, password, the
// companies it belongs to and the invitations waiting for it.
package user

import (
	"strings"
	"time"
	"unicode"

	companyDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/company"
	membershipDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/membership"
	userDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/user"
)

const (
	minNameLength = 3
	cpfDigits     = 11
	birthdayDate  = "2006-01-02"
)

// User is the profile returned for both account kinds. Admin profiles leave
// the personal fields empty.
type User struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	CPF         *string    `json:"cpf"`
	Birthday    *time.Time `json:"birthday"`
	Image       string     `json:"image"`
	Description string     `json:"description"`
	Admin       bool       `json:"admin"`
	Master      bool       `json:"master,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		CPF:         u.CPF,
		Birthday:    u.Birthday,
		Image:       u.Image,
		Description: u.Description,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func FromAdmin(a *userDatamodel.Admin) *User {
	return &User{
		ID:        a.ID,
		Email:     a.Email,
		Name:      a.Name,
		Admin:     true,
		Master:    a.Master,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.CreatedAt,
	}
}

// CompanyAccess is a company as seen from one of its members.
type CompanyAccess struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	CNPJ        string   `json:"cnpj"`
	Address     string   `json:"address"`
	Domain      string   `json:"domain"`
	Color       string   `json:"color"`
	Image       string   `json:"image"`
	LastAccess  *int64   `json:"lastAccess,omitempty"`
	Permissions []string `json:"permissions"`
}

func NewCompanyAccess(c *companyDatamodel.Company, m *membershipDatamodel.Membership) CompanyAccess {
	access := CompanyAccess{
		ID:          c.ID,
		Name:        c.Name,
		CNPJ:        c.CNPJ,
		Address:     c.Address,
		Domain:      c.Domain,
		Color:       c.Color,
		Image:       c.Image,
		Permissions: m.Permissions,
	}
	if m.LastAccess != nil {
		ms := m.LastAccess.UnixMilli()
		access.LastAccess = &ms
	}
	if access.Permissions == nil {
		access.Permissions = []string{}
	}
	return access
}

type Invite struct {
	CompanyID    int64     `json:"companyId"`
	CompanyName  string    `json:"companyName"`
	CompanyImage string    `json:"companyImage"`
	InvitedAt    time.Time `json:"invitedAt"`
}

// NormalizeCPF strips punctuation and reports whether eleven digits remain.
func NormalizeCPF(raw string) (string, bool) {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '.' || r == '-' || unicode.IsSpace(r):
		default:
			return "", false
		}
	}
	cpf := b.String()
	return cpf, len(cpf) == cpfDigits
}

// ParseBirthday accepts a date or an RFC 3339 timestamp.
func ParseBirthday(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(birthdayDate, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}
