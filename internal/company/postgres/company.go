package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/mastersight/internal/company"
	companyDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/company"
	departmentDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/department"
	roleDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/role"
)

type CompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) company.RepositoryAPI {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) FindByID(ctx context.Context, id int64) (*companyDatamodel.Company, error) {
	var c companyDatamodel.Company
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *CompanyRepository) ListDepartments(ctx context.Context, companyID int64) ([]*departmentDatamodel.Department, error) {
	var rows []*departmentDatamodel.Department
	err := r.db.WithContext(ctx).Where("company_id = ?", companyID).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *CompanyRepository) ListRoles(ctx context.Context, companyID int64) ([]*roleDatamodel.Role, error) {
	var rows []*roleDatamodel.Role
	err := r.db.WithContext(ctx).Where("company_id = ?", companyID).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *CompanyRepository) Update(ctx context.Context, id int64, cols map[string]interface{}) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&companyDatamodel.Company{}).
		Where("id = ?", id).
		Updates(cols)
	return res.RowsAffected > 0, res.Error
}
