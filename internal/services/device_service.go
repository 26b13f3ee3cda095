// internal/services/device_service.go
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

type DeviceService struct {
	db *gorm.DB
}

type CreateDeviceRequest struct {
	AssetTag       string                 `json:"asset_tag,omitempty" validate:"omitempty,asset_tag"`
	SerialNumber   string                 `json:"serial_number" validate:"required,max=100"`
	ModelName      string                 `json:"model_name" validate:"required,max=255"`
	Manufacturer   string                 `json:"manufacturer,omitempty" validate:"max=100"`
	Category       string                 `json:"category,omitempty" validate:"max=100"`
	PurchasePrice  decimal.Decimal        `json:"purchase_price"`
	PurchaseDate   *time.Time             `json:"purchase_date,omitempty"`
	WarrantyExpiry *time.Time             `json:"warranty_expiry,omitempty"`
	Tags           []string               `json:"tags,omitempty"`
	Specifications map[string]interface{} `json:"specifications,omitempty"`
	Notes          string                 `json:"notes,omitempty"`
}

type UpdateDeviceRequest struct {
	ModelName      *string                `json:"model_name,omitempty" validate:"omitempty,max=255"`
	Manufacturer   *string                `json:"manufacturer,omitempty" validate:"omitempty,max=100"`
	Category       *string                `json:"category,omitempty" validate:"omitempty,max=100"`
	PurchasePrice  *decimal.Decimal       `json:"purchase_price,omitempty"`
	PurchaseDate   *time.Time             `json:"purchase_date,omitempty"`
	WarrantyExpiry *time.Time             `json:"warranty_expiry,omitempty"`
	Status         *models.DeviceStatus   `json:"status,omitempty" validate:"omitempty,oneof=in_stock assigned in_repair retired"`
	Tags           []string               `json:"tags,omitempty"`
	Specifications map[string]interface{} `json:"specifications,omitempty"`
	Notes          *string                `json:"notes,omitempty"`
}

type AssignDeviceRequest struct {
	UserID        uuid.UUID `json:"user_id" validate:"required"`
	ConditionNote string    `json:"condition_note,omitempty"`
}

type ReturnDeviceRequest struct {
	ConditionNote string `json:"condition_note,omitempty"`
	ToRepair      bool   `json:"to_repair,omitempty"`
}

type DeviceSearchParams struct {
	utils.PaginationParams
	Status       *models.DeviceStatus `json:"status,omitempty"`
	Category     *string              `json:"category,omitempty"`
	Manufacturer *string              `json:"manufacturer,omitempty"`
	AssignedTo   *uuid.UUID           `json:"assigned_to,omitempty"`
}

func NewDeviceService(db *gorm.DB) *DeviceService {
	return &DeviceService{db: db}
}

func (s *DeviceService) CreateDevice(req *CreateDeviceRequest) (*models.Device, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if req.PurchasePrice.IsNegative() {
		return nil, errors.New("purchase price must not be negative")
	}

	assetTag := req.AssetTag
	if assetTag == "" {
		var err error
		assetTag, err = utils.GenerateAssetTag()
		if err != nil {
			return nil, fmt.Errorf("failed to generate asset tag: %w", err)
		}
	}

	var existing models.Device
	if err := s.db.Where("asset_tag = ? OR serial_number = ?", assetTag, req.SerialNumber).
		First(&existing).Error; err == nil {
		if existing.SerialNumber == req.SerialNumber {
			return nil, errors.New("device with this serial number already exists")
		}
		return nil, errors.New("asset tag already in use")
	}

	device := &models.Device{
		AssetTag:       assetTag,
		SerialNumber:   req.SerialNumber,
		ModelName:      req.ModelName,
		Manufacturer:   req.Manufacturer,
		Category:       req.Category,
		PurchasePrice:  req.PurchasePrice,
		PurchaseDate:   req.PurchaseDate,
		WarrantyExpiry: req.WarrantyExpiry,
		Status:         models.DeviceStatusInStock,
		Tags:           req.Tags,
		Specifications: models.JSONB(req.Specifications),
		Notes:          req.Notes,
	}

	if err := s.db.Create(device).Error; err != nil {
		return nil, fmt.Errorf("failed to create device: %w", err)
	}

	return device, nil
}

func (s *DeviceService) GetDevice(id uuid.UUID) (*models.Device, error) {
	var device models.Device
	if err := s.db.Preload("Assignments", "status = ?", models.AssignmentStatusActive).
		Preload("Assignments.User").
		First(&device, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("device not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &device, nil
}

func (s *DeviceService) SearchDevices(params DeviceSearchParams) ([]models.Device, int64, error) {
	query := s.db.Model(&models.Device{})

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Category != nil {
		query = query.Where("category = ?", *params.Category)
	}
	if params.Manufacturer != nil {
		query = query.Where("manufacturer = ?", *params.Manufacturer)
	}
	if params.AssignedTo != nil {
		query = query.Where("id IN (SELECT device_id FROM device_assignments WHERE user_id = ? AND status = ?)",
			*params.AssignedTo, models.AssignmentStatusActive)
	}
	if params.Search != "" {
		searchTerm := "%" + params.Search + "%"
		query = query.Where("model_name ILIKE ? OR serial_number ILIKE ? OR asset_tag ILIKE ?",
			searchTerm, searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count devices: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "asset_tag", "model_name", "category", "status", "purchase_date"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields, "asset_tag")
	query = utils.ApplyPagination(query, params.PaginationParams)

	var devices []models.Device
	if err := query.Find(&devices).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch devices: %w", err)
	}

	return devices, total, nil
}

func (s *DeviceService) UpdateDevice(id uuid.UUID, req *UpdateDeviceRequest) (*models.Device, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var device models.Device
	if err := s.db.First(&device, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("device not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if req.ModelName != nil {
		device.ModelName = *req.ModelName
	}
	if req.Manufacturer != nil {
		device.Manufacturer = *req.Manufacturer
	}
	if req.Category != nil {
		device.Category = *req.Category
	}
	if req.PurchasePrice != nil {
		if req.PurchasePrice.IsNegative() {
			return nil, errors.New("purchase price must not be negative")
		}
		device.PurchasePrice = *req.PurchasePrice
	}
	if req.PurchaseDate != nil {
		device.PurchaseDate = req.PurchaseDate
	}
	if req.WarrantyExpiry != nil {
		device.WarrantyExpiry = req.WarrantyExpiry
	}
	if req.Status != nil {
		if *req.Status == models.DeviceStatusAssigned && device.Status != models.DeviceStatusAssigned {
			return nil, errors.New("use the assign operation to assign a device")
		}
		device.Status = *req.Status
	}
	if req.Tags != nil {
		device.Tags = req.Tags
	}
	if req.Specifications != nil {
		device.Specifications = models.JSONB(req.Specifications)
	}
	if req.Notes != nil {
		device.Notes = *req.Notes
	}

	if err := s.db.Save(&device).Error; err != nil {
		return nil, fmt.Errorf("failed to update device: %w", err)
	}

	return &device, nil
}

func (s *DeviceService) DeleteDevice(id uuid.UUID) error {
	var device models.Device
	if err := s.db.First(&device, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("device not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	if device.Status == models.DeviceStatusAssigned {
		return errors.New("cannot delete an assigned device")
	}

	if err := s.db.Delete(&device).Error; err != nil {
		return fmt.Errorf("failed to delete device: %w", err)
	}
	return nil
}

// AssignDevice creates an active assignment and flips the device
// status, inside one transaction so a device never carries two active
// assignments.
func (s *DeviceService) AssignDevice(deviceID uuid.UUID, assignerID uuid.UUID, req *AssignDeviceRequest) (*models.DeviceAssignment, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var assignment *models.DeviceAssignment
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var device models.Device
		if err := tx.Clauses(lockForUpdate()).First(&device, deviceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("device not found")
			}
			return fmt.Errorf("database error: %w", err)
		}

		if device.Status != models.DeviceStatusInStock {
			return fmt.Errorf("device is not available for assignment (status: %s)", device.Status)
		}

		var user models.User
		if err := tx.First(&user, req.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("user not found")
			}
			return fmt.Errorf("database error: %w", err)
		}

		if user.Status != models.UserStatusActive {
			return errors.New("cannot assign a device to a suspended user")
		}

		assignment = &models.DeviceAssignment{
			DeviceID:      deviceID,
			UserID:        req.UserID,
			AssignedByID:  assignerID,
			AssignedAt:    time.Now(),
			ConditionNote: req.ConditionNote,
			Status:        models.AssignmentStatusActive,
		}

		if err := tx.Create(assignment).Error; err != nil {
			return fmt.Errorf("failed to create assignment: %w", err)
		}

		device.Status = models.DeviceStatusAssigned
		if err := tx.Save(&device).Error; err != nil {
			return fmt.Errorf("failed to update device status: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.db.Preload("Device").Preload("User").First(assignment, assignment.ID)
	return assignment, nil
}

func (s *DeviceService) ReturnDevice(deviceID uuid.UUID, req *ReturnDeviceRequest) (*models.DeviceAssignment, error) {
	var assignment models.DeviceAssignment
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var device models.Device
		if err := tx.Clauses(lockForUpdate()).First(&device, deviceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("device not found")
			}
			return fmt.Errorf("database error: %w", err)
		}

		if err := tx.Where("device_id = ? AND status = ?", deviceID, models.AssignmentStatusActive).
			First(&assignment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("device has no active assignment")
			}
			return fmt.Errorf("database error: %w", err)
		}

		now := time.Now()
		assignment.ReturnedAt = &now
		assignment.Status = models.AssignmentStatusReturned
		if req.ConditionNote != "" {
			assignment.ConditionNote = req.ConditionNote
		}

		if err := tx.Save(&assignment).Error; err != nil {
			return fmt.Errorf("failed to close assignment: %w", err)
		}

		device.Status = models.DeviceStatusInStock
		if req.ToRepair {
			device.Status = models.DeviceStatusInRepair
		}
		if err := tx.Save(&device).Error; err != nil {
			return fmt.Errorf("failed to update device status: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.db.Preload("Device").Preload("User").First(&assignment, assignment.ID)
	return &assignment, nil
}

// DeviceStats is the per-device usage view.
type DeviceStats struct {
	AssignmentCount   int64                    `json:"assignment_count"`
	DaysAssigned      int                      `json:"days_assigned"`
	CurrentAssignment *models.DeviceAssignment `json:"current_assignment,omitempty"`
	WarrantyExpiring  bool                     `json:"warranty_expiring"`
}

func (s *DeviceService) GetDeviceStats(deviceID uuid.UUID, warrantyThresholdDays int) (*DeviceStats, error) {
	var device models.Device
	if err := s.db.First(&device, deviceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("device not found")
		}
		return nil, fmt.Errorf("failed to fetch device: %w", err)
	}

	stats := &DeviceStats{
		WarrantyExpiring: pricing.IsExpiringSoon(device.WarrantyExpiry, warrantyThresholdDays),
	}

	if err := s.db.Model(&models.DeviceAssignment{}).
		Where("device_id = ?", deviceID).
		Count(&stats.AssignmentCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count assignments: %w", err)
	}

	var assignments []models.DeviceAssignment
	if err := s.db.Where("device_id = ?", deviceID).Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}

	now := time.Now()
	for i := range assignments {
		assignment := &assignments[i]
		end := now
		if assignment.ReturnedAt != nil {
			end = *assignment.ReturnedAt
		}
		stats.DaysAssigned += int(end.Sub(assignment.AssignedAt).Hours() / 24)

		if assignment.Status == models.AssignmentStatusActive {
			stats.CurrentAssignment = assignment
		}
	}

	if stats.CurrentAssignment != nil {
		s.db.Preload("User").First(stats.CurrentAssignment, stats.CurrentAssignment.ID)
	}

	return stats, nil
}

func (s *DeviceService) GetAssignmentHistory(deviceID uuid.UUID, params utils.PaginationParams) ([]models.DeviceAssignment, int64, error) {
	query := s.db.Model(&models.DeviceAssignment{}).
		Where("device_id = ?", deviceID).
		Preload("User").Preload("AssignedBy")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count assignments: %w", err)
	}

	allowedSortFields := []string{"created_at", "assigned_at", "returned_at"}
	query = utils.ApplySort(query, params, allowedSortFields, "assigned_at")
	query = utils.ApplyPagination(query, params)

	var assignments []models.DeviceAssignment
	if err := query.Find(&assignments).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch assignments: %w", err)
	}

	return assignments, total, nil
}
