// internal/services/license_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/assetdesk/assetdesk-backend/internal/database"
	"github.com/assetdesk/assetdesk-backend/internal/models"
	"github.com/assetdesk/assetdesk-backend/internal/pricing"
	"github.com/assetdesk/assetdesk-backend/internal/utils"
)

type LicenseService struct {
	db *gorm.DB
}

type CreateLicenseRequest struct {
	ProductName  string              `json:"product_name" validate:"required,max=255"`
	Vendor       string              `json:"vendor,omitempty" validate:"max=100"`
	LicenseKey   string              `json:"license_key,omitempty" validate:"max=255"`
	PricingModel models.PricingModel `json:"pricing_model" validate:"required,pricing_model"`
	UnitPrice    decimal.Decimal     `json:"unit_price"`
	TotalCount   int                 `json:"total_count" validate:"gte=0"`
	ExpiryDate   *time.Time          `json:"expiry_date,omitempty"`
	Notes        string              `json:"notes,omitempty"`
}

type UpdateLicenseRequest struct {
	ProductName  *string              `json:"product_name,omitempty" validate:"omitempty,max=255"`
	Vendor       *string              `json:"vendor,omitempty" validate:"omitempty,max=100"`
	LicenseKey   *string              `json:"license_key,omitempty" validate:"omitempty,max=255"`
	PricingModel *models.PricingModel `json:"pricing_model,omitempty" validate:"omitempty,pricing_model"`
	UnitPrice    *decimal.Decimal     `json:"unit_price,omitempty"`
	TotalCount   *int                 `json:"total_count,omitempty" validate:"omitempty,gte=0"`
	ExpiryDate   *time.Time           `json:"expiry_date,omitempty"`
	Notes        *string              `json:"notes,omitempty"`
}

type AllocateSeatRequest struct {
	UserID   uuid.UUID  `json:"user_id" validate:"required"`
	DeviceID *uuid.UUID `json:"device_id,omitempty"`
}

type LicenseSearchParams struct {
	utils.PaginationParams
	Vendor       *string              `json:"vendor,omitempty"`
	PricingModel *models.PricingModel `json:"pricing_model,omitempty"`
	ExpiringOnly bool                 `json:"expiring_only,omitempty"`
	ExpiringDays int                  `json:"expiring_days,omitempty"`
}

func NewLicenseService(db *gorm.DB) *LicenseService {
	return &LicenseService{db: db}
}

func (s *LicenseService) CreateLicense(req *CreateLicenseRequest) (*models.License, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if req.UnitPrice.IsNegative() {
		return nil, errors.New("unit price must not be negative")
	}

	license := &models.License{
		ProductName:    req.ProductName,
		Vendor:         req.Vendor,
		LicenseKey:     req.LicenseKey,
		PricingModel:   req.PricingModel,
		UnitPrice:      req.UnitPrice,
		TotalCount:     req.TotalCount,
		AvailableCount: req.TotalCount,
		ExpiryDate:     req.ExpiryDate,
		Notes:          req.Notes,
	}

	if err := s.db.Create(license).Error; err != nil {
		return nil, fmt.Errorf("failed to create license: %w", err)
	}

	return license, nil
}

func (s *LicenseService) GetLicense(id uuid.UUID) (*models.License, error) {
	var license models.License
	if err := s.db.Preload("Allocations", "status = ?", models.AllocationStatusActive).
		Preload("Allocations.User").
		First(&license, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("license not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &license, nil
}

func (s *LicenseService) SearchLicenses(params LicenseSearchParams) ([]models.License, int64, error) {
	query := s.db.Model(&models.License{})

	if params.Vendor != nil {
		query = query.Where("vendor = ?", *params.Vendor)
	}
	if params.PricingModel != nil {
		query = query.Where("pricing_model = ?", *params.PricingModel)
	}
	if params.ExpiringOnly {
		days := params.ExpiringDays
		if days < 0 {
			days = pricing.DefaultExpiryThresholdDays
		}
		cutoff := time.Now().AddDate(0, 0, days)
		query = query.Where("expiry_date IS NOT NULL AND expiry_date <= ?", cutoff)
	}
	if params.Search != "" {
		searchTerm := "%" + params.Search + "%"
		query = query.Where("product_name ILIKE ? OR vendor ILIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count licenses: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "product_name", "vendor", "expiry_date", "unit_price"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields, "product_name")
	query = utils.ApplyPagination(query, params.PaginationParams)

	var licenses []models.License
	if err := query.Find(&licenses).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch licenses: %w", err)
	}

	return licenses, total, nil
}

func (s *LicenseService) UpdateLicense(id uuid.UUID, req *UpdateLicenseRequest) (*models.License, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var license models.License
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Clauses(lockForUpdate()).First(&license, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("license not found")
			}
			return fmt.Errorf("database error: %w", err)
		}

		if req.ProductName != nil {
			license.ProductName = *req.ProductName
		}
		if req.Vendor != nil {
			license.Vendor = *req.Vendor
		}
		if req.LicenseKey != nil {
			license.LicenseKey = *req.LicenseKey
		}
		if req.PricingModel != nil {
			license.PricingModel = *req.PricingModel
		}
		if req.UnitPrice != nil {
			if req.UnitPrice.IsNegative() {
				return errors.New("unit price must not be negative")
			}
			license.UnitPrice = *req.UnitPrice
		}
		if req.TotalCount != nil {
			if err := license.ResizePool(*req.TotalCount); err != nil {
				return err
			}
		}
		if req.ExpiryDate != nil {
			license.ExpiryDate = req.ExpiryDate
		}
		if req.Notes != nil {
			license.Notes = *req.Notes
		}

		if err := tx.Save(&license).Error; err != nil {
			return fmt.Errorf("failed to update license: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &license, nil
}

func (s *LicenseService) DeleteLicense(id uuid.UUID) error {
	var license models.License
	if err := s.db.First(&license, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("license not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	var activeAllocations int64
	if err := s.db.Model(&models.LicenseAllocation{}).
		Where("license_id = ? AND status = ?", id, models.AllocationStatusActive).
		Count(&activeAllocations).Error; err != nil {
		return fmt.Errorf("failed to check allocations: %w", err)
	}
	if activeAllocations > 0 {
		return errors.New("cannot delete a license with active seat allocations")
	}

	if err := s.db.Delete(&license).Error; err != nil {
		return fmt.Errorf("failed to delete license: %w", err)
	}
	return nil
}

// AllocateSeat consumes one seat for a user. The row lock plus the
// available-count check keep 0 <= available <= total under concurrent
// allocations.
func (s *LicenseService) AllocateSeat(licenseID uuid.UUID, allocatorID uuid.UUID, req *AllocateSeatRequest) (*models.LicenseAllocation, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var allocation *models.LicenseAllocation
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var license models.License
		if err := tx.Clauses(lockForUpdate()).First(&license, licenseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("license not found")
			}
			return fmt.Errorf("database error: %w", err)
		}

		if err := license.ConsumeSeat(); err != nil {
			return err
		}

		var user models.User
		if err := tx.First(&user, req.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("user not found")
			}
			return fmt.Errorf("database error: %w", err)
		}

		if user.Status != models.UserStatusActive {
			return errors.New("cannot allocate a seat to a suspended user")
		}

		var existing int64
		if err := tx.Model(&models.LicenseAllocation{}).
			Where("license_id = ? AND user_id = ? AND status = ?",
				licenseID, req.UserID, models.AllocationStatusActive).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to check existing allocations: %w", err)
		}
		if existing > 0 {
			return errors.New("user already holds a seat for this license")
		}

		if req.DeviceID != nil {
			var device models.Device
			if err := tx.First(&device, *req.DeviceID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errors.New("device not found")
				}
				return fmt.Errorf("database error: %w", err)
			}
		}

		allocation = &models.LicenseAllocation{
			LicenseID:     licenseID,
			UserID:        req.UserID,
			DeviceID:      req.DeviceID,
			AllocatedByID: allocatorID,
			AllocatedAt:   time.Now(),
			Status:        models.AllocationStatusActive,
		}

		if err := tx.Create(allocation).Error; err != nil {
			return fmt.Errorf("failed to create allocation: %w", err)
		}

		if err := tx.Save(&license).Error; err != nil {
			return fmt.Errorf("failed to update license seat count: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.db.Preload("License").Preload("User").First(allocation, allocation.ID)
	return allocation, nil
}

func (s *LicenseService) ReleaseSeat(licenseID uuid.UUID, allocationID uuid.UUID) (*models.LicenseAllocation, error) {
	var allocation models.LicenseAllocation
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var license models.License
		if err := tx.Clauses(lockForUpdate()).First(&license, licenseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("license not found")
			}
			return fmt.Errorf("database error: %w", err)
		}

		if err := tx.Where("id = ? AND license_id = ?", allocationID, licenseID).
			First(&allocation).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("allocation not found")
			}
			return fmt.Errorf("database error: %w", err)
		}

		if allocation.Status != models.AllocationStatusActive {
			return errors.New("allocation is already released")
		}

		now := time.Now()
		allocation.ReleasedAt = &now
		allocation.Status = models.AllocationStatusReleased
		if err := tx.Save(&allocation).Error; err != nil {
			return fmt.Errorf("failed to release allocation: %w", err)
		}

		license.RestoreSeat()
		if err := tx.Save(&license).Error; err != nil {
			return fmt.Errorf("failed to update license seat count: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.db.Preload("License").Preload("User").First(&allocation, allocation.ID)
	return &allocation, nil
}

// GetCostBreakdown derives cost figures for a stored license, with an
// optional explicit usage override.
func (s *LicenseService) GetCostBreakdown(id uuid.UUID, usageOverride *int) (*pricing.CostBreakdown, error) {
	var license models.License
	if err := s.db.First(&license, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("license not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var breakdown pricing.CostBreakdown
	if usageOverride != nil {
		breakdown = pricing.CalculateCostForUsage(&license, *usageOverride)
	} else {
		breakdown = pricing.CalculateCost(&license)
	}

	return &breakdown, nil
}

// GetExpiringLicenses returns licenses whose expiry date falls within
// the look-ahead window, most urgent first.
// A zero threshold is meaningful: it narrows the window to licenses
// expiring today or already expired.
func (s *LicenseService) GetExpiringLicenses(daysThreshold int) ([]models.License, error) {
	if daysThreshold < 0 {
		daysThreshold = pricing.DefaultExpiryThresholdDays
	}

	var candidates []models.License
	cutoff := time.Now().AddDate(0, 0, daysThreshold)
	if err := s.db.Where("expiry_date IS NOT NULL AND expiry_date <= ?", cutoff).
		Order("expiry_date asc").
		Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch expiring licenses: %w", err)
	}

	// Re-check at date granularity; the SQL cutoff is a coarse filter.
	expiring := make([]models.License, 0, len(candidates))
	for _, license := range candidates {
		if pricing.IsExpiringSoon(license.ExpiryDate, daysThreshold) {
			expiring = append(expiring, license)
		}
	}

	return expiring, nil
}
