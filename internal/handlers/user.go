// internal/handlers/user.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/assetdesk/assetdesk-backend/internal/models"
	"github.com/assetdesk/assetdesk-backend/internal/services"
	"github.com/assetdesk/assetdesk-backend/internal/utils"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GET /users
func (h *UserHandler) GetUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	searchParams := services.UserSearchParams{
		PaginationParams: params,
	}

	if role := c.Query("role"); role != "" {
		userRole := models.UserRole(role)
		searchParams.Role = &userRole
	}
	if status := c.Query("status"); status != "" {
		userStatus := models.UserStatus(status)
		searchParams.Status = &userStatus
	}
	if department := c.Query("department"); department != "" {
		searchParams.Department = &department
	}

	users, total, err := h.userService.SearchUsers(searchParams)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(users, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	user, err := h.userService.GetUser(id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "User")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"user": user,
	})
}

// GET /users/:id/equipment
func (h *UserHandler) GetUserEquipment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	equipment, err := h.userService.GetUserEquipment(id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "User")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, equipment)
}

// PUT /users/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	user, err := h.userService.UpdateProfile(userID, &req)
	if err != nil {
		if strings.Contains(err.Error(), "already in use") {
			utils.ConflictResponse(c, err.Error())
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"user": user,
	})
}

// PUT /users/:id/status
func (h *UserHandler) UpdateUserStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	var req services.UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	user, err := h.userService.UpdateUserStatus(id, &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "User")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"user": user,
	})
}

// PUT /users/:id/role
func (h *UserHandler) UpdateUserRole(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	var req services.UpdateUserRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	user, err := h.userService.UpdateUserRole(id, &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "User")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"user": user,
	})
}
