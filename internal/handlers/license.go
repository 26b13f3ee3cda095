// internal/handlers/license.go
package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/assetdesk/assetdesk-backend/internal/models"
	"github.com/assetdesk/assetdesk-backend/internal/pricing"
	"github.com/assetdesk/assetdesk-backend/internal/services"
	"github.com/assetdesk/assetdesk-backend/internal/utils"
)

type LicenseHandler struct {
	licenseService *services.LicenseService
}

func NewLicenseHandler(licenseService *services.LicenseService) *LicenseHandler {
	return &LicenseHandler{
		licenseService: licenseService,
	}
}

// CostPreviewRequest describes an ad-hoc license for cost calculation
// without touching the database.
type CostPreviewRequest struct {
	PricingModel   models.PricingModel `json:"pricing_model" validate:"required,pricing_model"`
	UnitPrice      decimal.Decimal     `json:"unit_price"`
	TotalCount     int                 `json:"total_count" validate:"gte=0"`
	AvailableCount int                 `json:"available_count" validate:"gte=0"`
	UsageCount     *int                `json:"usage_count,omitempty" validate:"omitempty,gte=0"`
	ExpiryDate     *time.Time          `json:"expiry_date,omitempty"`
	DaysThreshold  *int                `json:"days_threshold,omitempty" validate:"omitempty,gte=0"`
}

// POST /licenses
func (h *LicenseHandler) CreateLicense(c *gin.Context) {
	var req services.CreateLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	license, err := h.licenseService.CreateLicense(&req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"license": license,
	})
}

// GET /licenses
func (h *LicenseHandler) GetLicenses(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	searchParams := services.LicenseSearchParams{
		PaginationParams: params,
	}

	if vendor := c.Query("vendor"); vendor != "" {
		searchParams.Vendor = &vendor
	}
	if pricingModel := c.Query("pricing_model"); pricingModel != "" {
		model := models.PricingModel(pricingModel)
		searchParams.PricingModel = &model
	}
	if c.Query("expiring_only") == "true" {
		searchParams.ExpiringOnly = true
	}

	licenses, total, err := h.licenseService.SearchLicenses(searchParams)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(licenses, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /licenses/expiring
func (h *LicenseHandler) GetExpiringLicenses(c *gin.Context) {
	days := pricing.DefaultExpiryThresholdDays
	if daysStr := c.Query("days"); daysStr != "" {
		parsed, err := strconv.Atoi(daysStr)
		if err != nil || parsed < 0 {
			utils.BadRequestResponse(c, "Invalid days parameter", nil)
			return
		}
		days = parsed
	}

	licenses, err := h.licenseService.GetExpiringLicenses(days)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"days_threshold": days,
		"licenses":       licenses,
	})
}

// GET /licenses/:id
func (h *LicenseHandler) GetLicense(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid license ID", nil)
		return
	}

	license, err := h.licenseService.GetLicense(id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "License")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"license": license,
	})
}

// PUT /licenses/:id
func (h *LicenseHandler) UpdateLicense(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid license ID", nil)
		return
	}

	var req services.UpdateLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	license, err := h.licenseService.UpdateLicense(id, &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "License")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"license": license,
	})
}

// DELETE /licenses/:id
func (h *LicenseHandler) DeleteLicense(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid license ID", nil)
		return
	}

	if err := h.licenseService.DeleteLicense(id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "License")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": "License deleted",
	})
}

// POST /licenses/:id/allocate
func (h *LicenseHandler) AllocateSeat(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid license ID", nil)
		return
	}

	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	allocatorID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	var req services.AllocateSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	allocation, err := h.licenseService.AllocateSeat(id, allocatorID, &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "License")
			return
		}
		if strings.Contains(err.Error(), "already holds") {
			utils.ConflictResponse(c, err.Error())
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"allocation": allocation,
	})
}

// POST /licenses/:id/allocations/:allocationId/release
func (h *LicenseHandler) ReleaseSeat(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid license ID", nil)
		return
	}

	allocationID, err := uuid.Parse(c.Param("allocationId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid allocation ID", nil)
		return
	}

	allocation, err := h.licenseService.ReleaseSeat(id, allocationID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Allocation")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"allocation": allocation,
	})
}

// GET /licenses/:id/cost
func (h *LicenseHandler) GetLicenseCost(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid license ID", nil)
		return
	}

	var usageOverride *int
	if usageStr := c.Query("usage"); usageStr != "" {
		usage, err := strconv.Atoi(usageStr)
		if err != nil || usage < 0 {
			utils.BadRequestResponse(c, "Invalid usage parameter", nil)
			return
		}
		usageOverride = &usage
	}

	breakdown, err := h.licenseService.GetCostBreakdown(id, usageOverride)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "License")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"cost": breakdown,
	})
}

// POST /licenses/cost-preview
//
// Computes a cost breakdown for license terms that are not stored yet,
// for procurement what-if checks.
func (h *LicenseHandler) CostPreview(c *gin.Context) {
	var req CostPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	if req.AvailableCount > req.TotalCount {
		utils.BadRequestResponse(c, "available_count must not exceed total_count", nil)
		return
	}
	if req.UnitPrice.IsNegative() {
		utils.BadRequestResponse(c, "unit_price must not be negative", nil)
		return
	}

	license := &models.License{
		PricingModel:   req.PricingModel,
		UnitPrice:      req.UnitPrice,
		TotalCount:     req.TotalCount,
		AvailableCount: req.AvailableCount,
		ExpiryDate:     req.ExpiryDate,
	}

	var breakdown pricing.CostBreakdown
	if req.UsageCount != nil {
		breakdown = pricing.CalculateCostForUsage(license, *req.UsageCount)
	} else {
		breakdown = pricing.CalculateCost(license)
	}

	// An explicit zero threshold means "expiring today"; only an
	// omitted value falls back to the default window.
	days := pricing.DefaultExpiryThresholdDays
	if req.DaysThreshold != nil {
		days = *req.DaysThreshold
	}

	utils.SuccessResponse(c, gin.H{
		"cost":          breakdown,
		"expiring_soon": pricing.IsExpiringSoon(req.ExpiryDate, days),
	})
}
