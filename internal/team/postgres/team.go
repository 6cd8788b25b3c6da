package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	companyDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/company"
	departmentDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/department"
	feedbackDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/feedback"
	membershipDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/membership"
	roleDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/role"
	taskDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/task"
	userDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/user"
	"github.com/frahmantamala/mastersight/internal/team"
)

type TeamRepository struct {
	db *gorm.DB
}

func NewTeamRepository(db *gorm.DB) team.RepositoryAPI {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) ListMembers(ctx context.Context, companyID int64) ([]team.Member, error) {
	db := r.db.WithContext(ctx)

	var memberships []*membershipDatamodel.Membership
	if err := db.Where("company_id = ?", companyID).Order("id ASC").Find(&memberships).Error; err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return []team.Member{}, nil
	}

	userIDs := make([]int64, 0, len(memberships))
	for _, m := range memberships {
		userIDs = append(userIDs, m.UserID)
	}

	var users []*userDatamodel.User
	if err := db.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, err
	}
	byID := make(map[int64]*userDatamodel.User, len(users))
	emails := make([]string, 0, len(users))
	for _, u := range users {
		byID[u.ID] = u
		emails = append(emails, u.Email)
	}

	var adminEmails []string
	if len(emails) > 0 {
		if err := db.Model(&userDatamodel.Admin{}).Where("email IN ?", emails).Pluck("email", &adminEmails).Error; err != nil {
			return nil, err
		}
	}
	isAdmin := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		isAdmin[e] = true
	}

	out := make([]team.Member, 0, len(memberships))
	for _, m := range memberships {
		u := byID[m.UserID]
		admin := u != nil && isAdmin[u.Email]
		out = append(out, team.NewMember(m, u, admin))
	}
	return out, nil
}

func (r *TeamRepository) FindCompany(ctx context.Context, id int64) (*companyDatamodel.Company, error) {
	var c companyDatamodel.Company
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *TeamRepository) FindUserByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	if err := r.db.WithContext(ctx).Where("LOWER(email) = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *TeamRepository) FindUserByID(ctx context.Context, id int64) (*userDatamodel.User, error) {
	var u userDatamodel.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *TeamRepository) MembershipExists(ctx context.Context, companyID, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&membershipDatamodel.Membership{}).
		Where("company_id = ? AND user_id = ?", companyID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *TeamRepository) DepartmentExists(ctx context.Context, companyID, departmentID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&departmentDatamodel.Department{}).
		Where("id = ? AND company_id = ?", departmentID, companyID).
		Count(&count).Error
	return count > 0, err
}

func (r *TeamRepository) RoleExists(ctx context.Context, companyID, roleID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&roleDatamodel.Role{}).
		Where("id = ? AND company_id = ?", roleID, companyID).
		Count(&count).Error
	return count > 0, err
}

func (r *TeamRepository) CreateUserWithMembership(ctx context.Context, u *userDatamodel.User, m *membershipDatamodel.Membership) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		m.UserID = u.ID
		return tx.Create(m).Error
	})
}

func (r *TeamRepository) CreateMembership(ctx context.Context, m *membershipDatamodel.Membership) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *TeamRepository) UpdateMember(ctx context.Context, companyID, memberID int64, upd team.MemberUpdate) (bool, error) {
	fields := map[string]interface{}{
		"salary": upd.Salary,
	}
	if upd.DepartmentID > 0 {
		fields["department_id"] = upd.DepartmentID
	}
	if upd.RoleID > 0 {
		fields["role_id"] = upd.RoleID
	}

	db := r.db.WithContext(ctx).
		Model(&membershipDatamodel.Membership{}).
		Where("id = ? AND company_id = ?", memberID, companyID)

	// Permissions go through the struct form so the json serializer applies.
	if upd.Permissions != nil {
		res := db.Select(mapKeys(fields, "permissions")).Updates(&membershipDatamodel.Membership{
			Salary:       upd.Salary,
			DepartmentID: upd.DepartmentID,
			RoleID:       upd.RoleID,
			Permissions:  upd.Permissions,
		})
		return res.RowsAffected > 0, res.Error
	}

	res := db.Updates(fields)
	return res.RowsAffected > 0, res.Error
}

func (r *TeamRepository) RemoveMember(ctx context.Context, companyID, memberID int64) (bool, error) {
	removed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m membershipDatamodel.Membership
		if err := tx.Where("id = ? AND company_id = ?", memberID, companyID).First(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		if err := tx.Where("company_id = ? AND user_id = ?", companyID, m.UserID).Delete(&taskDatamodel.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("company_id = ? AND user_id = ?", companyID, m.UserID).Delete(&feedbackDatamodel.Feedback{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&membershipDatamodel.Membership{}, m.ID).Error; err != nil {
			return err
		}
		removed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

// mapKeys returns the column names of fields plus extra, for Select.
func mapKeys(fields map[string]interface{}, extra ...string) []string {
	keys := make([]string, 0, len(fields)+len(extra))
	for k := range fields {
		keys = append(keys, k)
	}
	return append(keys, extra...)
}
