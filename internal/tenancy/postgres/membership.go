package postgres

import (
	"context"
	"errors"

	membershipDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/membership"
	"github.com/frahmantamala/mastersight/internal/tenancy"
	"gorm.io/gorm"
)

type MembershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) tenancy.RepositoryAPI {
	return &MembershipRepository{db: db}
}

func (r *MembershipRepository) FindMembership(ctx context.Context, companyID, userID int64) (*membershipDatamodel.Membership, error) {
	var m membershipDatamodel.Membership
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND user_id = ?", companyID, userID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}
