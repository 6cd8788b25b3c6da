package role

import (
	"time"

	roleDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/role"
)

const minNameLength = 3

type Role struct {
	ID           int64     `json:"id"`
	CompanyID    int64     `json:"companyId"`
	DepartmentID int64     `json:"departmentId"`
	Name         string    `json:"name"`
	Salary       float64   `json:"salary"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Summary is a role as listed: the department name replaces the id and the
// member count is attached.
type Summary struct {
	Role
	Department string `json:"department"`
	Users      int    `json:"users"`
}

func ToDataModel(r *Role) *roleDatamodel.Role {
	return &roleDatamodel.Role{
		ID:           r.ID,
		CompanyID:    r.CompanyID,
		DepartmentID: r.DepartmentID,
		Name:         r.Name,
		Salary:       r.Salary,
		CreatedAt:    r.CreatedAt,
	}
}

func FromDataModel(r *roleDatamodel.Role) *Role {
	return &Role{
		ID:           r.ID,
		CompanyID:    r.CompanyID,
		DepartmentID: r.DepartmentID,
		Name:         r.Name,
		Salary:       r.Salary,
		CreatedAt:    r.CreatedAt,
	}
}
