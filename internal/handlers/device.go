// internal/handlers/device.go
package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/assetdesk/assetdesk-backend/internal/models"
	"github.com/assetdesk/assetdesk-backend/internal/pricing"
	"github.com/assetdesk/assetdesk-backend/internal/services"
	"github.com/assetdesk/assetdesk-backend/internal/utils"
)

type DeviceHandler struct {
	deviceService *services.DeviceService
}

func NewDeviceHandler(deviceService *services.DeviceService) *DeviceHandler {
	return &DeviceHandler{
		deviceService: deviceService,
	}
}

// POST /devices
func (h *DeviceHandler) CreateDevice(c *gin.Context) {
	var req services.CreateDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	device, err := h.deviceService.CreateDevice(&req)
	if err != nil {
		if strings.Contains(err.Error(), "already") {
			utils.ConflictResponse(c, err.Error())
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"device": device,
	})
}

// GET /devices
func (h *DeviceHandler) GetDevices(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	searchParams := services.DeviceSearchParams{
		PaginationParams: params,
	}

	if status := c.Query("status"); status != "" {
		deviceStatus := models.DeviceStatus(status)
		searchParams.Status = &deviceStatus
	}
	if category := c.Query("category"); category != "" {
		searchParams.Category = &category
	}
	if manufacturer := c.Query("manufacturer"); manufacturer != "" {
		searchParams.Manufacturer = &manufacturer
	}
	if assignedTo := c.Query("assigned_to"); assignedTo != "" {
		if userID, err := uuid.Parse(assignedTo); err == nil {
			searchParams.AssignedTo = &userID
		}
	}

	devices, total, err := h.deviceService.SearchDevices(searchParams)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(devices, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /devices/:id
func (h *DeviceHandler) GetDevice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid device ID", nil)
		return
	}

	device, err := h.deviceService.GetDevice(id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Device")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"device": device,
	})
}

// PUT /devices/:id
func (h *DeviceHandler) UpdateDevice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid device ID", nil)
		return
	}

	var req services.UpdateDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	device, err := h.deviceService.UpdateDevice(id, &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Device")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"device": device,
	})
}

// DELETE /devices/:id
func (h *DeviceHandler) DeleteDevice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid device ID", nil)
		return
	}

	if err := h.deviceService.DeleteDevice(id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Device")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": "Device deleted",
	})
}

// POST /devices/:id/assign
func (h *DeviceHandler) AssignDevice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid device ID", nil)
		return
	}

	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	assignerID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	var req services.AssignDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	assignment, err := h.deviceService.AssignDevice(id, assignerID, &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Device")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"assignment": assignment,
	})
}

// POST /devices/:id/return
func (h *DeviceHandler) ReturnDevice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid device ID", nil)
		return
	}

	var req services.ReturnDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	assignment, err := h.deviceService.ReturnDevice(id, &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Device")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"assignment": assignment,
	})
}

// GET /devices/:id/history
func (h *DeviceHandler) GetAssignmentHistory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid device ID", nil)
		return
	}

	params := utils.GetPaginationParams(c)

	assignments, total, err := h.deviceService.GetAssignmentHistory(id, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(assignments, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /devices/:id/stats
func (h *DeviceHandler) GetDeviceStats(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid device ID", nil)
		return
	}

	days := pricing.DefaultExpiryThresholdDays
	if daysStr := c.Query("days"); daysStr != "" {
		parsed, err := strconv.Atoi(daysStr)
		if err != nil || parsed < 0 {
			utils.BadRequestResponse(c, "Invalid days parameter", nil)
			return
		}
		days = parsed
	}

	stats, err := h.deviceService.GetDeviceStats(id, days)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Device")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"stats": stats,
	})
}
