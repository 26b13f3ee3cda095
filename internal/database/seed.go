// internal/database/seed.go
package database

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/assetdesk/assetdesk-backend/internal/models"
)

// SeedInitialData creates the default admin account and, when the
// tables are empty, a set of demo users, devices, and licenses for
// trying out the API.
func SeedInitialData(db *gorm.DB, seedDemoData bool) error {
	logrus.Info("Seeding initial data...")

	// Create default admin user
	var adminCount int64
	db.Model(&models.User{}).Where("role = ?", models.UserRoleAdmin).Count(&adminCount)

	if adminCount == 0 {
		admin := &models.User{
			Username:   "admin",
			Email:      "admin@assetdesk.local",
			Role:       models.UserRoleAdmin,
			Status:     models.UserStatusActive,
			Department: "IT",
			JobTitle:   "System Administrator",
			ProfileData: models.JSONB{
				"first_name": "System",
				"last_name":  "Administrator",
			},
		}

		if err := admin.SetPassword("admin123!@#"); err != nil {
			return fmt.Errorf("failed to set admin password: %w", err)
		}

		if err := db.Create(admin).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		logrus.Info("Default admin user created successfully")
	}

	if seedDemoData {
		if err := seedDemoRecords(db); err != nil {
			return err
		}
	}

	logrus.Info("Initial data seeding completed")
	return nil
}

func seedDemoRecords(db *gorm.DB) error {
	var userCount int64
	db.Model(&models.User{}).Where("role <> ?", models.UserRoleAdmin).Count(&userCount)
	if userCount > 0 {
		return nil
	}

	demoUsers := []models.User{
		{
			Username:   "mvasquez",
			Email:      "m.vasquez@assetdesk.local",
			Role:       models.UserRoleManager,
			Status:     models.UserStatusActive,
			Department: "IT",
			JobTitle:   "IT Manager",
		},
		{
			Username:   "tchen",
			Email:      "t.chen@assetdesk.local",
			Role:       models.UserRoleEmployee,
			Status:     models.UserStatusActive,
			Department: "Engineering",
			JobTitle:   "Software Engineer",
		},
		{
			Username:   "akowalski",
			Email:      "a.kowalski@assetdesk.local",
			Role:       models.UserRoleEmployee,
			Status:     models.UserStatusActive,
			Department: "Finance",
			JobTitle:   "Accountant",
		},
	}

	for i := range demoUsers {
		if err := demoUsers[i].SetPassword("Demo123!user"); err != nil {
			return fmt.Errorf("failed to set demo user password: %w", err)
		}
		if err := db.Create(&demoUsers[i]).Error; err != nil {
			return fmt.Errorf("failed to create demo user %s: %w", demoUsers[i].Username, err)
		}
	}

	purchaseDate := time.Now().AddDate(-1, 0, 0)
	warrantyExpiry := purchaseDate.AddDate(3, 0, 0)

	demoDevices := []models.Device{
		{
			AssetTag:       "AD-000101",
			SerialNumber:   "C02ZK1DEMO01",
			ModelName:      "MacBook Pro 14",
			Manufacturer:   "Apple",
			Category:       "laptop",
			PurchasePrice:  decimal.RequireFromString("2399.00"),
			PurchaseDate:   &purchaseDate,
			WarrantyExpiry: &warrantyExpiry,
			Status:         models.DeviceStatusInStock,
		},
		{
			AssetTag:       "AD-000102",
			SerialNumber:   "5CG1DEMO02",
			ModelName:      "EliteBook 840 G9",
			Manufacturer:   "HP",
			Category:       "laptop",
			PurchasePrice:  decimal.RequireFromString("1549.00"),
			PurchaseDate:   &purchaseDate,
			WarrantyExpiry: &warrantyExpiry,
			Status:         models.DeviceStatusInStock,
		},
	}

	for i := range demoDevices {
		if err := db.Create(&demoDevices[i]).Error; err != nil {
			return fmt.Errorf("failed to create demo device %s: %w", demoDevices[i].AssetTag, err)
		}
	}

	yearAhead := time.Now().AddDate(1, 0, 0)
	soonExpiry := time.Now().AddDate(0, 0, 20)

	demoLicenses := []models.License{
		{
			ProductName:    "Office Suite",
			Vendor:         "Contoso",
			PricingModel:   models.PricingModelMonthly,
			UnitPrice:      decimal.RequireFromString("12.50"),
			TotalCount:     50,
			AvailableCount: 50,
			ExpiryDate:     &yearAhead,
		},
		{
			ProductName:    "IDE Professional",
			Vendor:         "DevTools Inc",
			PricingModel:   models.PricingModelYearly,
			UnitPrice:      decimal.RequireFromString("499.00"),
			TotalCount:     20,
			AvailableCount: 20,
			ExpiryDate:     &soonExpiry,
		},
		{
			ProductName:    "CAD Workstation",
			Vendor:         "DraftWorks",
			PricingModel:   models.PricingModelPerpetual,
			UnitPrice:      decimal.RequireFromString("3200.00"),
			TotalCount:     5,
			AvailableCount: 5,
		},
	}

	for i := range demoLicenses {
		if err := db.Create(&demoLicenses[i]).Error; err != nil {
			return fmt.Errorf("failed to create demo license %s: %w", demoLicenses[i].ProductName, err)
		}
	}

	logrus.Info("Demo users, devices, and licenses created")
	return nil
}
