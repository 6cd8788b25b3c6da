// Package company serves a tenant's profile: its identity fields, which need
// changeCompanyInfos, and its appearance, which needs changeCompanyAppearance.
package company

import (
	"time"

	companyDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/company"
	"github.com/frahmantamala/mastersight/internal/department"
	"github.com/frahmantamala/mastersight/internal/role"
)

type Company struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CNPJ      string    `json:"cnpj"`
	Address   string    `json:"address"`
	Domain    string    `json:"domain"`
	Color     string    `json:"color"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Details is a company with its departments and roles.
type Details struct {
	Company
	Departments []department.Department `json:"departments"`
	Roles       []role.Role             `json:"roles"`
}

func FromDataModel(c *companyDatamodel.Company) *Company {
	return &Company{
		ID:        c.ID,
		Name:      c.Name,
		CNPJ:      c.CNPJ,
		Address:   c.Address,
		Domain:    c.Domain,
		Color:     c.Color,
		Image:     c.Image,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// Patch holds the fields of an update. Empty fields keep their stored value.
type Patch struct {
	Name    string
	CNPJ    string
	Address string
	Domain  string
	Color   string
	Image   string
}

func (p Patch) TouchesInfos() bool {
	return p.Name != "" || p.CNPJ != "" || p.Address != "" || p.Domain != ""
}

func (p Patch) TouchesAppearance() bool {
	return p.Color != "" || p.Image != ""
}

// Apply returns the columns to write.
func (p Patch) Apply() map[string]interface{} {
	cols := make(map[string]interface{})
	set := func(col, v string) {
		if v != "" {
			cols[col] = v
		}
	}
	set("name", p.Name)
	set("cnpj", p.CNPJ)
	set("address", p.Address)
	set("domain", p.Domain)
	set("color", p.Color)
	set("image", p.Image)
	return cols
}
