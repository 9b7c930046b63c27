package db

import (
	"github.com/omsapp/oms-backend/internal/app/model"
	"github.com/omsapp/oms-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every table owned by the service, in dependency order
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.PasswordReset{},
		&model.Customer{},
		&model.Product{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	if err := AutoMigrate(DB); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(Models()),
	})
	return nil
}

// AutoMigrate creates or updates the schema on the given connection
func AutoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(Models()...)
}
