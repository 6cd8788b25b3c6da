package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/mastersight/internal/competence"
	membershipDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/membership"
)

type CompetenceRepository struct {
	db *gorm.DB
}

func NewCompetenceRepository(db *gorm.DB) competence.RepositoryAPI {
	return &CompetenceRepository{db: db}
}

func (r *CompetenceRepository) Load(ctx context.Context, companyID, memberID int64) (*competence.Set, error) {
	var m membershipDatamodel.Membership
	err := r.db.WithContext(ctx).
		Select("id", "competences", "competences_version").
		Where("id = ? AND company_id = ?", memberID, companyID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &competence.Set{
		MemberID: m.ID,
		Version:  m.CompetencesVersion,
		Items:    m.Competences,
	}, nil
}

func (r *CompetenceRepository) Save(ctx context.Context, companyID, memberID, expected int64, items []competence.Competence) (bool, error) {
	if items == nil {
		items = []competence.Competence{}
	}
	res := r.db.WithContext(ctx).
		Model(&membershipDatamodel.Membership{}).
		Where("id = ? AND company_id = ? AND competences_version = ?", memberID, companyID, expected).
		Select("competences", "competences_version").
		Updates(&membershipDatamodel.Membership{
			Competences:        items,
			CompetencesVersion: expected + 1,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
