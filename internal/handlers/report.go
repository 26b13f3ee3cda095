// internal/handlers/report.go
package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/assetdesk/assetdesk-backend/internal/pricing"
	"github.com/assetdesk/assetdesk-backend/internal/services"
	"github.com/assetdesk/assetdesk-backend/internal/utils"
)

type ReportHandler struct {
	reportService *services.ReportService
	alertService  *services.AlertService
	exportService *services.ExportService
	expiryDays    int
}

func NewReportHandler(reportService *services.ReportService, alertService *services.AlertService, exportService *services.ExportService, expiryDays int) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		alertService:  alertService,
		exportService: exportService,
		expiryDays:    expiryDays,
	}
}

func (h *ReportHandler) daysParam(c *gin.Context) (int, bool) {
	days := h.expiryDays
	if days <= 0 {
		days = pricing.DefaultExpiryThresholdDays
	}
	if daysStr := c.Query("days"); daysStr != "" {
		parsed, err := strconv.Atoi(daysStr)
		if err != nil || parsed < 0 {
			utils.BadRequestResponse(c, "Invalid days parameter", nil)
			return 0, false
		}
		days = parsed
	}
	return days, true
}

// GET /reports/dashboard
func (h *ReportHandler) GetDashboard(c *gin.Context) {
	days, ok := h.daysParam(c)
	if !ok {
		return
	}

	stats, err := h.reportService.GetDashboardStats(days)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"stats": stats,
	})
}

// GET /reports/license-spend
func (h *ReportHandler) GetLicenseSpend(c *gin.Context) {
	lines, summary, err := h.reportService.GetLicenseSpendReport()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"lines":   lines,
		"summary": summary,
	})
}

// GET /reports/expiring-licenses
func (h *ReportHandler) GetExpiringReport(c *gin.Context) {
	days, ok := h.daysParam(c)
	if !ok {
		return
	}

	lines, err := h.reportService.GetExpiringLicenseReport(days)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"days_threshold": days,
		"lines":          lines,
	})
}

// POST /reports/license-spend/export
func (h *ReportHandler) ExportLicenseSpend(c *gin.Context) {
	lines, summary, err := h.reportService.GetLicenseSpendReport()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	data, err := h.exportService.RenderLicenseSpendCSV(lines, summary)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result, err := h.exportService.UploadReport("license-spend", data, len(lines))
	if err != nil {
		if strings.Contains(err.Error(), "not configured") {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.CreatedResponse(c, gin.H{
		"export": result,
	})
}

// POST /reports/expiring-licenses/export
func (h *ReportHandler) ExportExpiringLicenses(c *gin.Context) {
	days, ok := h.daysParam(c)
	if !ok {
		return
	}

	lines, err := h.reportService.GetExpiringLicenseReport(days)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	data, err := h.exportService.RenderExpiringLicensesCSV(lines)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result, err := h.exportService.UploadReport("expiring-licenses", data, len(lines))
	if err != nil {
		if strings.Contains(err.Error(), "not configured") {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.CreatedResponse(c, gin.H{
		"export": result,
	})
}

// GET /alerts
func (h *ReportHandler) GetAlerts(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	unreadOnly := c.Query("unread_only") == "true"

	alerts, total, err := h.alertService.ListAlerts(params, unreadOnly)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(alerts, total, params)
	utils.PaginatedResponse(c, result)
}

// PUT /alerts/:id/read
func (h *ReportHandler) MarkAlertRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid alert ID", nil)
		return
	}

	alert, err := h.alertService.MarkAlertRead(id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Alert")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"alert": alert,
	})
}

// POST /alerts/scan
func (h *ReportHandler) ScanAlerts(c *gin.Context) {
	days, ok := h.daysParam(c)
	if !ok {
		return
	}

	created, err := h.alertService.ScanExpiringLicenses(days)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"days_threshold": days,
		"alerts_created": created,
	})
}
