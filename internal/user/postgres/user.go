package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	companyDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/company"
	membershipDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/membership"
	userDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/user"
	"github.com/frahmantamala/mastersight/internal/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindUser(ctx context.Context, id int64) (*userDatamodel.User, error) {
	var u userDatamodel.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindAdmin(ctx context.Context, id int64) (*userDatamodel.Admin, error) {
	var a userDatamodel.Admin
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *UserRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("LOWER(email) = LOWER(?)", email).
		Count(&n).Error
	return n > 0, err
}

func (r *UserRepository) CPFTaken(ctx context.Context, cpf string, exceptID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("cpf = ? AND id <> ?", cpf, exceptID).
		Count(&n).Error
	return n > 0, err
}

func (r *UserRepository) Create(ctx context.Context, u *userDatamodel.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepository) Update(ctx context.Context, id int64, cols map[string]interface{}) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Updates(cols)
	return res.RowsAffected > 0, res.Error
}

// memberships loads the user's memberships with the given status together
// with their companies, keyed by company id.
func (r *UserRepository) memberships(ctx context.Context, userID int64, status string) ([]*membershipDatamodel.Membership, map[int64]*companyDatamodel.Company, error) {
	db := r.db.WithContext(ctx)

	var rows []*membershipDatamodel.Membership
	if err := db.Where("user_id = ? AND status = ?", userID, status).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return rows, map[int64]*companyDatamodel.Company{}, nil
	}

	ids := make([]int64, 0, len(rows))
	for _, m := range rows {
		ids = append(ids, m.CompanyID)
	}
	var companies []*companyDatamodel.Company
	if err := db.Where("id IN ?", ids).Find(&companies).Error; err != nil {
		return nil, nil, err
	}
	byID := make(map[int64]*companyDatamodel.Company, len(companies))
	for _, c := range companies {
		byID[c.ID] = c
	}
	return rows, byID, nil
}

func (r *UserRepository) ListCompanies(ctx context.Context, userID int64) ([]user.CompanyAccess, error) {
	rows, companies, err := r.memberships(ctx, userID, membershipDatamodel.StatusActive)
	if err != nil {
		return nil, err
	}
	out := make([]user.CompanyAccess, 0, len(rows))
	for _, m := range rows {
		if c, ok := companies[m.CompanyID]; ok {
			out = append(out, user.NewCompanyAccess(c, m))
		}
	}
	return out, nil
}

func (r *UserRepository) TouchLastAccess(ctx context.Context, userID, companyID int64, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&membershipDatamodel.Membership{}).
		Where("user_id = ? AND company_id = ? AND status = ?", userID, companyID, membershipDatamodel.StatusActive).
		Update("last_access", at)
	return res.RowsAffected > 0, res.Error
}

func (r *UserRepository) ListInvites(ctx context.Context, userID int64) ([]user.Invite, error) {
	rows, companies, err := r.memberships(ctx, userID, membershipDatamodel.StatusInvited)
	if err != nil {
		return nil, err
	}
	out := make([]user.Invite, 0, len(rows))
	for _, m := range rows {
		c, ok := companies[m.CompanyID]
		if !ok {
			continue
		}
		out = append(out, user.Invite{
			CompanyID:    c.ID,
			CompanyName:  c.Name,
			CompanyImage: c.Image,
			InvitedAt:    m.CreatedAt,
		})
	}
	return out, nil
}

func (r *UserRepository) AcceptInvite(ctx context.Context, userID, companyID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&membershipDatamodel.Membership{}).
		Where("user_id = ? AND company_id = ? AND status = ?", userID, companyID, membershipDatamodel.StatusInvited).
		Update("status", membershipDatamodel.StatusActive)
	return res.RowsAffected > 0, res.Error
}

func (r *UserRepository) DeclineInvite(ctx context.Context, userID, companyID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND company_id = ? AND status = ?", userID, companyID, membershipDatamodel.StatusInvited).
		Delete(&membershipDatamodel.Membership{})
	return res.RowsAffected > 0, res.Error
}
