// internal/database/connection.go
package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/assetdesk/assetdesk-backend/internal/config"
	"github.com/assetdesk/assetdesk-backend/internal/models"
)

var DB *gorm.DB

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	// Connect to database
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.Info("Database connection established successfully")
	return DB, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Error("Error getting underlying sql.DB")
		return
	}

	if err := sqlDB.Close(); err != nil {
		logrus.WithError(err).Error("Error closing database connection")
	} else {
		logrus.Info("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	logrus.Info("Running database migrations...")

	// Enable UUID extension
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return fmt.Errorf("failed to create UUID extension: %w", err)
	}

	// Run auto-migrations
	err := db.AutoMigrate(
		&models.User{},
		&models.Device{},
		&models.DeviceAssignment{},
		&models.License{},
		&models.LicenseAllocation{},
		&models.ExpiryAlert{},
		&models.AuditLog{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	logrus.Info("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)",
		"CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)",
		"CREATE INDEX IF NOT EXISTS idx_users_role_status ON users(role, status)",
		"CREATE INDEX IF NOT EXISTS idx_users_department ON users(department)",

		// Device indexes
		"CREATE INDEX IF NOT EXISTS idx_devices_asset_tag ON devices(asset_tag)",
		"CREATE INDEX IF NOT EXISTS idx_devices_category_status ON devices(category, status)",
		"CREATE INDEX IF NOT EXISTS idx_devices_warranty ON devices(warranty_expiry)",
		"CREATE INDEX IF NOT EXISTS idx_device_assignments_device ON device_assignments(device_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_device_assignments_user ON device_assignments(user_id, status)",

		// License indexes
		"CREATE INDEX IF NOT EXISTS idx_licenses_vendor_product ON licenses(vendor, product_name)",
		"CREATE INDEX IF NOT EXISTS idx_licenses_expiry ON licenses(expiry_date)",
		"CREATE INDEX IF NOT EXISTS idx_licenses_pricing_model ON licenses(pricing_model)",
		"CREATE INDEX IF NOT EXISTS idx_license_allocations_license ON license_allocations(license_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_license_allocations_user ON license_allocations(user_id, status)",

		// Alert and audit indexes
		"CREATE INDEX IF NOT EXISTS idx_expiry_alerts_license_status ON expiry_alerts(license_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_user_action ON audit_logs(user_id, action)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_resource ON audit_logs(resource_type, resource_id)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at DESC)",

		// Full-text search indexes
		"CREATE INDEX IF NOT EXISTS idx_devices_search ON devices USING GIN(to_tsvector('english', model_name || ' ' || coalesce(manufacturer, '')))",
		"CREATE INDEX IF NOT EXISTS idx_licenses_search ON licenses USING GIN(to_tsvector('english', product_name || ' ' || coalesce(vendor, '')))",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			logrus.WithError(err).Warnf("Failed to create index: %s", index)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
