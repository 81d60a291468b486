package database

import (
	"fmt"
	"reflect"

	"github.com/qatrack/logger"
	"github.com/qatrack/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const copyBatchSize = 500

// Models lists every persisted model in dependency order, parents first
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Environment{},
		&models.Project{},
		&models.Page{},
		&models.PageEnvironment{},
		&models.PageSummary{},
		&models.UserAssignment{},
		&models.Issue{},
		&models.IssuePage{},
		&models.Asset{},
		&models.TimeLog{},
		&models.ActivityLog{},
		&models.Notification{},
	}
}

// Migrate migrates the database schema
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}
	return nil
}

// CopyData copies every table from source to target in dependency order,
// soft-deleted rows included. The target schema must already be migrated;
// rows whose key already exists in the target are left untouched.
func CopyData(source, target *gorm.DB) error {
	logger.L().Info("Starting data copy from source to target")

	return target.Transaction(func(tx *gorm.DB) error {
		for _, model := range Models() {
			count, err := copyTable(source, tx, model)
			if err != nil {
				return err
			}
			logger.L().Info("Copied table", zap.String("model", fmt.Sprintf("%T", model)), zap.Int("rows", count))
		}
		return nil
	})
}

func copyTable(source, target *gorm.DB, model interface{}) (int, error) {
	rows := reflect.New(reflect.SliceOf(reflect.TypeOf(model).Elem()))
	if err := source.Unscoped().Model(model).Find(rows.Interface()).Error; err != nil {
		return 0, fmt.Errorf("failed to fetch %T: %w", model, err)
	}
	n := rows.Elem().Len()
	if n == 0 {
		return 0, nil
	}

	// Select("*") writes zero values as-is instead of column defaults
	err := target.Session(&gorm.Session{SkipHooks: true}).
		Select("*").
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(rows.Interface(), copyBatchSize).Error
	if err != nil {
		return 0, fmt.Errorf("failed to copy %T: %w", model, err)
	}
	return n, nil
}
