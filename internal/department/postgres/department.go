package postgres

import (
	"context"

	"gorm.io/gorm"

	departmentDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/department"
	membershipDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/membership"
	roleDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/role"
	"github.com/frahmantamala/mastersight/internal/department"
)

type DepartmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) department.RepositoryAPI {
	return &DepartmentRepository{db: db}
}

// ListWithCounts counts roles per department, and members whose role belongs
// to the department.
func (r *DepartmentRepository) ListWithCounts(ctx context.Context, companyID int64) ([]department.Summary, error) {
	db := r.db.WithContext(ctx)

	var rows []*departmentDatamodel.Department
	if err := db.Where("company_id = ?", companyID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	var roles []roleDatamodel.Role
	if err := db.Select("id", "department_id").Where("company_id = ?", companyID).Find(&roles).Error; err != nil {
		return nil, err
	}

	var members []membershipDatamodel.Membership
	if err := db.Select("id", "role_id").Where("company_id = ?", companyID).Find(&members).Error; err != nil {
		return nil, err
	}

	roleDepartment := make(map[int64]int64, len(roles))
	roleCount := make(map[int64]int)
	for _, role := range roles {
		roleDepartment[role.ID] = role.DepartmentID
		roleCount[role.DepartmentID]++
	}
	userCount := make(map[int64]int)
	for _, m := range members {
		if deptID, ok := roleDepartment[m.RoleID]; ok {
			userCount[deptID]++
		}
	}

	out := make([]department.Summary, 0, len(rows))
	for _, row := range rows {
		out = append(out, department.Summary{
			Department: *department.FromDataModel(row),
			Roles:      roleCount[row.ID],
			Users:      userCount[row.ID],
		})
	}
	return out, nil
}

func (r *DepartmentRepository) Create(ctx context.Context, d *departmentDatamodel.Department) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DepartmentRepository) Update(ctx context.Context, d *departmentDatamodel.Department) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&departmentDatamodel.Department{}).
		Where("id = ? AND company_id = ?", d.ID, d.CompanyID).
		Updates(map[string]interface{}{
			"name":        d.Name,
			"description": d.Description,
			"salary":      d.Salary,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *DepartmentRepository) Delete(ctx context.Context, companyID, id int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", id, companyID).
		Delete(&departmentDatamodel.Department{})
	return res.RowsAffected > 0, res.Error
}
