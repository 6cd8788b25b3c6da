package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/mastersight/internal/auth"
	resetDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/passwordreset"
	userDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) auth.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where("LOWER(email) = ?", email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindAdminByEmail(ctx context.Context, email string) (*userDatamodel.Admin, error) {
	var a userDatamodel.Admin
	err := r.db.WithContext(ctx).Where("LOWER(email) = ?", email).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, u *userDatamodel.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

type ResetRepository struct {
	db *gorm.DB
}

func NewResetRepository(db *gorm.DB) auth.ResetRepository {
	return &ResetRepository{db: db}
}

func (r *ResetRepository) Create(ctx context.Context, reset *resetDatamodel.PasswordReset) error {
	return r.db.WithContext(ctx).Create(reset).Error
}

func (r *ResetRepository) FindByToken(ctx context.Context, token string) (*resetDatamodel.PasswordReset, error) {
	var reset resetDatamodel.PasswordReset
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&reset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reset, nil
}

func (r *ResetRepository) Consume(ctx context.Context, id int64, email, passwordHash string, at time.Time) (bool, error) {
	consumed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&resetDatamodel.PasswordReset{}).
			Where("id = ? AND used_at IS NULL", id).
			Update("used_at", at)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		if err := tx.Model(&userDatamodel.User{}).
			Where("LOWER(email) = LOWER(?)", email).
			Update("password_hash", passwordHash).Error; err != nil {
			return err
		}
		consumed = true
		return nil
	})
	return consumed, err
}
