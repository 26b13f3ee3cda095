// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/assetdesk/assetdesk-backend/internal/config"
	"github.com/assetdesk/assetdesk-backend/internal/handlers"
	"github.com/assetdesk/assetdesk-backend/internal/middleware"
	"github.com/assetdesk/assetdesk-backend/internal/services"
	"github.com/assetdesk/assetdesk-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	authService := services.NewAuthService(db, cfg)
	userService := services.NewUserService(db)
	deviceService := services.NewDeviceService(db)
	licenseService := services.NewLicenseService(db)
	reportService := services.NewReportService(db)
	alertService := services.NewAlertService(db)

	exportService, err := services.NewExportService(cfg)
	if err != nil {
		logrus.WithError(err).Warn("Report export storage unavailable, uploads disabled")
		exportService = services.NewLocalExportService(cfg)
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	deviceHandler := handlers.NewDeviceHandler(deviceService)
	licenseHandler := handlers.NewLicenseHandler(licenseService)
	reportHandler := handlers.NewReportHandler(reportService, alertService, exportService, cfg.Assets.ExpiryThresholdDays)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", middleware.AuthRequired(), authHandler.Logout)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// User routes
		users := v1.Group("/users")
		users.Use(middleware.AuthRequired())
		{
			users.PUT("/profile", userHandler.UpdateProfile)
			users.GET("/:id", userHandler.GetUser)
			users.GET("/:id/equipment", userHandler.GetUserEquipment)

			// Manager routes
			managed := users.Group("")
			managed.Use(middleware.ManagerRequired())
			{
				managed.GET("", userHandler.GetUsers)
				managed.PUT("/:id/status", userHandler.UpdateUserStatus)
			}

			users.PUT("/:id/role", middleware.AdminRequired(), userHandler.UpdateUserRole)
		}

		// Device routes
		devices := v1.Group("/devices")
		devices.Use(middleware.AuthRequired())
		{
			devices.GET("", deviceHandler.GetDevices)
			devices.GET("/:id", deviceHandler.GetDevice)
			devices.GET("/:id/assignments", deviceHandler.GetAssignmentHistory)
			devices.GET("/:id/stats", deviceHandler.GetDeviceStats)

			// Manager routes
			managed := devices.Group("")
			managed.Use(middleware.ManagerRequired())
			{
				managed.POST("", deviceHandler.CreateDevice)
				managed.PUT("/:id", deviceHandler.UpdateDevice)
				managed.POST("/:id/assign", deviceHandler.AssignDevice)
				managed.POST("/:id/return", deviceHandler.ReturnDevice)
			}

			devices.DELETE("/:id", middleware.AdminRequired(), deviceHandler.DeleteDevice)
		}

		// License routes
		licenses := v1.Group("/licenses")
		licenses.Use(middleware.AuthRequired())
		{
			licenses.GET("", licenseHandler.GetLicenses)
			licenses.GET("/expiring", licenseHandler.GetExpiringLicenses)
			licenses.POST("/cost-preview", licenseHandler.CostPreview)
			licenses.GET("/:id", licenseHandler.GetLicense)
			licenses.GET("/:id/cost", licenseHandler.GetLicenseCost)

			// Manager routes
			managed := licenses.Group("")
			managed.Use(middleware.ManagerRequired())
			{
				managed.POST("", licenseHandler.CreateLicense)
				managed.PUT("/:id", licenseHandler.UpdateLicense)
				managed.POST("/:id/allocate", licenseHandler.AllocateSeat)
				managed.POST("/:id/allocations/:allocationId/release", licenseHandler.ReleaseSeat)
			}

			licenses.DELETE("/:id", middleware.AdminRequired(), licenseHandler.DeleteLicense)
		}

		// Report routes
		reports := v1.Group("/reports")
		reports.Use(middleware.AuthRequired(), middleware.ManagerRequired())
		{
			reports.GET("/dashboard", reportHandler.GetDashboard)
			reports.GET("/license-spend", reportHandler.GetLicenseSpend)
			reports.GET("/expiring-licenses", reportHandler.GetExpiringReport)

			exports := reports.Group("")
			exports.Use(middleware.ExportRateLimit(cfg.Assets.ExportsPerMinute))
			{
				exports.POST("/license-spend/export", reportHandler.ExportLicenseSpend)
				exports.POST("/expiring-licenses/export", reportHandler.ExportExpiringLicenses)
			}
		}

		// Alert routes
		alerts := v1.Group("/alerts")
		alerts.Use(middleware.AuthRequired(), middleware.ManagerRequired())
		{
			alerts.GET("", reportHandler.GetAlerts)
			alerts.PUT("/:id/read", reportHandler.MarkAlertRead)
			alerts.POST("/scan", middleware.AdminRequired(), reportHandler.ScanAlerts)
		}
	}

	return r
}
