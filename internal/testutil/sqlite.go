// Package testutil opens throwaway databases for repository and handler tests.
package testutil

import (
	"fmt"
	"sync/atomic"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	companyDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/company"
	departmentDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/department"
	feedbackDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/feedback"
	mailDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/maildelivery"
	membershipDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/membership"
	resetDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/passwordreset"
	roleDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/role"
	taskDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/task"
	userDatamodel "github.com/frahmantamala/mastersight/internal/core/datamodel/user"
)

var dbSeq atomic.Int64

// OpenSQLite returns a migrated in-memory database. Each call gets its own
// named shared-cache database so transactions see the same data while tests
// stay isolated from each other.
func OpenSQLite() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:mastersight_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&userDatamodel.User{},
		&userDatamodel.Admin{},
		&companyDatamodel.Company{},
		&departmentDatamodel.Department{},
		&roleDatamodel.Role{},
		&membershipDatamodel.Membership{},
		&taskDatamodel.Task{},
		&feedbackDatamodel.Feedback{},
		&resetDatamodel.PasswordReset{},
		&mailDatamodel.Delivery{},
	)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Close releases the underlying connection.
func Close(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
