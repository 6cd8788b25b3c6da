package department

import (
	"time"

	departmentDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/department"
)

const minNameLength = 2

type Department struct {
	ID          int64     `json:"id"`
	CompanyID   int64     `json:"companyId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Salary      float64   `json:"salary"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Summary is a department as listed, with role and member counts.
type Summary struct {
	Department
	Roles int `json:"roles"`
	Users int `json:"users"`
}

func ToDataModel(d *Department) *departmentDatamodel.Department {
	return &departmentDatamodel.Department{
		ID:          d.ID,
		CompanyID:   d.CompanyID,
		Name:        d.Name,
		Description: d.Description,
		Salary:      d.Salary,
		CreatedAt:   d.CreatedAt,
	}
}

func FromDataModel(d *departmentDatamodel.Department) *Department {
	return &Department{
		ID:          d.ID,
		CompanyID:   d.CompanyID,
		Name:        d.Name,
		Description: d.Description,
		Salary:      d.Salary,
		CreatedAt:   d.CreatedAt,
	}
}
