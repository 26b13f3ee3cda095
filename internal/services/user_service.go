// internal/services/user_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/assetdesk/assetdesk-backend/internal/models"
	"github.com/assetdesk/assetdesk-backend/internal/utils"
)

type UserService struct {
	db *gorm.DB
}

type UpdateProfileRequest struct {
	Email       *string                `json:"email,omitempty" validate:"omitempty,email"`
	Department  *string                `json:"department,omitempty"`
	JobTitle    *string                `json:"job_title,omitempty"`
	ProfileData map[string]interface{} `json:"profile_data,omitempty"`
}

type UpdateUserStatusRequest struct {
	Status models.UserStatus `json:"status" validate:"required,oneof=active suspended"`
	Reason string            `json:"reason,omitempty"`
}

type UpdateUserRoleRequest struct {
	Role models.UserRole `json:"role" validate:"required,oneof=admin manager employee"`
}

type UserSearchParams struct {
	utils.PaginationParams
	Role       *models.UserRole   `json:"role,omitempty"`
	Status     *models.UserStatus `json:"status,omitempty"`
	Department *string            `json:"department,omitempty"`
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) GetUser(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

func (s *UserService) SearchUsers(params UserSearchParams) ([]models.User, int64, error) {
	query := s.db.Model(&models.User{})

	if params.Role != nil {
		query = query.Where("role = ?", *params.Role)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Department != nil {
		query = query.Where("department = ?", *params.Department)
	}
	if params.Search != "" {
		searchTerm := "%" + params.Search + "%"
		query = query.Where("username ILIKE ? OR email ILIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "username", "email", "department", "role", "status"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields, "username")
	query = utils.ApplyPagination(query, params.PaginationParams)

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}

	return users, total, nil
}

func (s *UserService) UpdateProfile(userID uuid.UUID, req *UpdateProfileRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if req.Email != nil && *req.Email != user.Email {
		var count int64
		s.db.Model(&models.User{}).Where("email = ? AND id <> ?", *req.Email, userID).Count(&count)
		if count > 0 {
			return nil, errors.New("email already in use")
		}
		user.Email = *req.Email
	}
	if req.Department != nil {
		user.Department = *req.Department
	}
	if req.JobTitle != nil {
		user.JobTitle = *req.JobTitle
	}
	if req.ProfileData != nil {
		user.ProfileData = models.JSONB(req.ProfileData)
	}

	if err := s.db.Save(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return &user, nil
}

func (s *UserService) UpdateUserStatus(userID uuid.UUID, req *UpdateUserStatusRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	user.Status = req.Status
	if req.Reason != "" {
		if user.ProfileData == nil {
			user.ProfileData = make(models.JSONB)
		}
		user.ProfileData["status_reason"] = req.Reason
	}

	if err := s.db.Save(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}

	return &user, nil
}

func (s *UserService) UpdateUserRole(userID uuid.UUID, req *UpdateUserRoleRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	user.Role = req.Role
	if err := s.db.Save(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to update user role: %w", err)
	}

	return &user, nil
}

// GetUserEquipment returns the user's active device assignments and
// license allocations, for the "what does this employee hold" view.
func (s *UserService) GetUserEquipment(userID uuid.UUID) (map[string]interface{}, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var assignments []models.DeviceAssignment
	if err := s.db.Preload("Device").
		Where("user_id = ? AND status = ?", userID, models.AssignmentStatusActive).
		Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}

	var allocations []models.LicenseAllocation
	if err := s.db.Preload("License").
		Where("user_id = ? AND status = ?", userID, models.AllocationStatusActive).
		Find(&allocations).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch allocations: %w", err)
	}

	return map[string]interface{}{
		"devices":  assignments,
		"licenses": allocations,
	}, nil
}
