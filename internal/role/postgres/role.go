package postgres

import (
	"context"

	"gorm.io/gorm"

	departmentDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/department"
	membershipDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/membership"
	roleDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/role"
	"github.com/frahmantamala/mastersight/internal/role"
)

type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) role.RepositoryAPI {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) ListWithCounts(ctx context.Context, companyID int64) ([]role.Summary, error) {
	db := r.db.WithContext(ctx)

	var rows []*roleDatamodel.Role
	if err := db.Where("company_id = ?", companyID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	var departments []departmentDatamodel.Department
	if err := db.Select("id", "name").Where("company_id = ?", companyID).Find(&departments).Error; err != nil {
		return nil, err
	}

	type roleCount struct {
		RoleID int64
		Users  int
	}
	var counts []roleCount
	err := db.Model(&membershipDatamodel.Membership{}).
		Select("role_id, COUNT(*) AS users").
		Where("company_id = ?", companyID).
		Group("role_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	names := make(map[int64]string, len(departments))
	for _, d := range departments {
		names[d.ID] = d.Name
	}
	users := make(map[int64]int, len(counts))
	for _, c := range counts {
		users[c.RoleID] = c.Users
	}

	out := make([]role.Summary, 0, len(rows))
	for _, row := range rows {
		out = append(out, role.Summary{
			Role:       *role.FromDataModel(row),
			Department: names[row.DepartmentID],
			Users:      users[row.ID],
		})
	}
	return out, nil
}

func (r *RoleRepository) DepartmentExists(ctx context.Context, companyID, departmentID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&departmentDatamodel.Department{}).
		Where("id = ? AND company_id = ?", departmentID, companyID).
		Count(&count).Error
	return count > 0, err
}

func (r *RoleRepository) Create(ctx context.Context, row *roleDatamodel.Role) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *RoleRepository) Update(ctx context.Context, row *roleDatamodel.Role) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&roleDatamodel.Role{}).
		Where("id = ? AND company_id = ?", row.ID, row.CompanyID).
		Updates(map[string]interface{}{
			"department_id": row.DepartmentID,
			"name":          row.Name,
			"salary":        row.Salary,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *RoleRepository) Delete(ctx context.Context, companyID, id int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", id, companyID).
		Delete(&roleDatamodel.Role{})
	return res.RowsAffected > 0, res.Error
}
