package db

import (
	"github.com/ikkim/manajir-storefront/internal/app/model"
	"github.com/ikkim/manajir-storefront/pkg/logger"
)

// Migrate creates the tables of the postgres snapshot backend
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.StorageSnapshot{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}
